package cisa

import (
	"log"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/misp-feeds/ics-stix-update/rss"
	"github.com/misp-feeds/ics-stix-update/stix"
	"github.com/misp-feeds/ics-stix-update/utils"
)

const (
	defaultTarget = "ics"
	sourceName    = "CISA"
)

type Config struct {
	*options
}

type option func(*options)

type options struct {
	name         string
	url          string
	outputPath   string
	sourceName   string
	retry        int
	timeout      time.Duration
	appFs        afero.Fs
	builderOpts  []stix.BuilderOption
	fetchOptions []utils.FetchOption
}

func WithTarget(t Target) option {
	return func(opts *options) {
		opts.name = t.Name
		opts.url = t.URL
		opts.outputPath = t.Output
		if t.SourceName != "" {
			opts.sourceName = t.SourceName
		}
	}
}

func WithURL(url string) option {
	return func(opts *options) { opts.url = url }
}

func WithOutputPath(path string) option {
	return func(opts *options) { opts.outputPath = path }
}

func WithSourceName(name string) option {
	return func(opts *options) { opts.sourceName = name }
}

// WithRetry enables up to retry additional fetch attempts with backoff.
func WithRetry(retry int) option {
	return func(opts *options) { opts.retry = retry }
}

func WithTimeout(timeout time.Duration) option {
	return func(opts *options) { opts.timeout = timeout }
}

func WithFs(fs afero.Fs) option {
	return func(opts *options) { opts.appFs = fs }
}

func WithBuilderOptions(bo ...stix.BuilderOption) option {
	return func(opts *options) { opts.builderOpts = append(opts.builderOpts, bo...) }
}

func WithFetchOptions(fo ...utils.FetchOption) option {
	return func(opts *options) { opts.fetchOptions = append(opts.fetchOptions, fo...) }
}

// NewConfig defaults to the ICS advisories feed with a single fetch attempt.
func NewConfig(opts ...option) Config {
	t := Targets[defaultTarget]
	o := &options{
		name:       t.Name,
		url:        t.URL,
		outputPath: t.Output,
		sourceName: sourceName,
		appFs:      afero.NewOsFs(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return Config{
		options: o,
	}
}

type Result struct {
	Target     string
	OutputPath string
	Indicators int
}

// Update runs one fetch-transform-write cycle. The output file is only written
// when every advisory of the feed was converted.
func (c Config) Update() (Result, error) {
	log.Printf("Fetching CISA %s advisories from %s", c.name, c.url)

	fetchOpts := c.fetchOptions
	if c.timeout > 0 {
		fetchOpts = append([]utils.FetchOption{utils.WithTimeout(c.timeout)}, fetchOpts...)
	}
	res, err := utils.FetchURL(c.url, c.retry, fetchOpts...)
	if err != nil {
		return Result{}, xerrors.Errorf("failed to fetch CISA %s feed: %w", c.name, err)
	}

	items, err := rss.Parse(res)
	if err != nil {
		return Result{}, xerrors.Errorf("failed to parse CISA %s feed: %w", c.name, err)
	}

	bundle := c.convert(items)

	if err = utils.NewFs(c.appFs).WriteJSON(c.outputPath, bundle); err != nil {
		return Result{}, xerrors.Errorf("unable to write a STIX bundle: %w", err)
	}

	return Result{
		Target:     c.name,
		OutputPath: c.outputPath,
		Indicators: len(bundle.Objects),
	}, nil
}

func (c Config) convert(items []rss.Item) stix.Bundle {
	builder := stix.NewBuilder(c.sourceName, c.builderOpts...)

	bar := pb.StartNew(len(items))
	indicators := builder.BuildAll(items, func() { bar.Increment() })
	bar.Finish()

	return builder.Bundle(indicators)
}
