package cisa

import (
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// AllTargets selects every known target.
const AllTargets = "all"

type Target struct {
	Name       string `yaml:"name"`
	URL        string `yaml:"url"`
	Output     string `yaml:"output"`
	SourceName string `yaml:"source_name"`
}

type targetsFile struct {
	Targets []Target `yaml:"targets"`
}

var Targets = map[string]Target{
	"ics": {
		Name:   "ics",
		URL:    "https://www.cisa.gov/cybersecurity-advisories/ics-advisories.xml",
		Output: "/var/www/MISP/app/files/feed/cisa_ics_advisories.json",
	},
	// The medical feed used to require an existing output directory; it is now
	// created like the one of the ics target.
	"ics-medical": {
		Name:   "ics-medical",
		URL:    "https://www.cisa.gov/cybersecurity-advisories/ics-medical-advisories.xml",
		Output: "/var/www/MISP/feed_output/cisa_ics_medical.json",
	},
}

// TargetNames returns the sorted names of targets.
func TargetNames(targets map[string]Target) []string {
	names := lo.Keys(targets)
	slices.Sort(names)
	return names
}

// LoadTargets merges the targets of a YAML file into a copy of base. A target
// of the file replaces the one of base with the same name.
//
//	targets:
//	  - name: ics
//	    url: https://www.cisa.gov/cybersecurity-advisories/ics-advisories.xml
//	    output: /srv/misp/feed/cisa_ics_advisories.json
func LoadTargets(fs afero.Fs, path string, base map[string]Target) (map[string]Target, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", path, err)
	}

	var tf targetsFile
	if err = yaml.UnmarshalStrict(b, &tf); err != nil {
		return nil, xerrors.Errorf("failed to unmarshal %s: %w", path, err)
	}

	targets := lo.Assign(base)
	for i, t := range tf.Targets {
		switch {
		case t.Name == "":
			return nil, xerrors.Errorf("target #%d: name is required", i)
		case t.Name == AllTargets:
			return nil, xerrors.Errorf("target #%d: %q is reserved", i, AllTargets)
		case t.URL == "":
			return nil, xerrors.Errorf("target %s: url is required", t.Name)
		case t.Output == "":
			return nil, xerrors.Errorf("target %s: output is required", t.Name)
		}
		targets[t.Name] = t
	}
	return targets, nil
}

// Select returns the target called name, or every target in name order for AllTargets.
func Select(targets map[string]Target, name string) ([]Target, error) {
	if name == AllTargets {
		return lo.Map(TargetNames(targets), func(n string, _ int) Target {
			return targets[n]
		}), nil
	}
	t, ok := targets[name]
	if !ok {
		return nil, xerrors.Errorf("unknown target: %s", name)
	}
	return []Target{t}, nil
}
