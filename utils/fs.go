package utils

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

type Fs struct {
	AppFs afero.Fs
}

func NewFs(appFs afero.Fs) Fs {
	return Fs{AppFs: appFs}
}

// WriteJSON replaces filePath with the indented JSON encoding of data. The parent
// directory is created when missing. The file is first written next to its target
// and renamed into place, so filePath is either fully rewritten or left untouched.
func (fs Fs) WriteJSON(filePath string, data interface{}) error {
	b, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return xerrors.Errorf("failed to marshal JSON: %w", err)
	}

	dir := filepath.Dir(filePath)
	if err = fs.AppFs.MkdirAll(dir, os.ModePerm); err != nil {
		return xerrors.Errorf("failed to mkdir: %w", err)
	}

	f, err := afero.TempFile(fs.AppFs, dir, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return xerrors.Errorf("unable to open a file: %w", err)
	}
	tmpName := f.Name()

	if _, err = f.Write(b); err != nil {
		_ = f.Close()
		_ = fs.AppFs.Remove(tmpName)
		return xerrors.Errorf("failed to save a file: %w", err)
	}
	if err = f.Close(); err != nil {
		_ = fs.AppFs.Remove(tmpName)
		return xerrors.Errorf("failed to close a file: %w", err)
	}

	// temp files are created 0600, the feed is read by the web server
	if err = fs.AppFs.Chmod(tmpName, 0644); err != nil {
		_ = fs.AppFs.Remove(tmpName)
		return xerrors.Errorf("failed to chmod %s: %w", tmpName, err)
	}

	if err = fs.AppFs.Rename(tmpName, filePath); err != nil {
		_ = fs.AppFs.Remove(tmpName)
		return xerrors.Errorf("failed to rename %s: %w", tmpName, err)
	}
	return nil
}
