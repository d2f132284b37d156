package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/misp-feeds/ics-stix-update/cisa"
	"github.com/misp-feeds/ics-stix-update/metrics"
	"github.com/misp-feeds/ics-stix-update/utils"
)

var (
	target      = flag.String("target", cisa.AllTargets, "update target ("+strings.Join(append(cisa.TargetNames(cisa.Targets), cisa.AllTargets), ", ")+")")
	configPath  = flag.String("config", utils.LookupEnv("STIX_FEED_CONFIG", ""), "YAML file overriding or adding targets")
	retry       = flag.Int("retry", 0, "additional fetch attempts with backoff (default: a single attempt)")
	timeout     = flag.Duration("timeout", 0, "HTTP request timeout (default: none)")
	metricsFile = flag.String("metrics-file", "", "write run metrics in the node exporter textfile format")
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()
	appFs := afero.NewOsFs()

	targets := cisa.Targets
	if *configPath != "" {
		var err error
		if targets, err = cisa.LoadTargets(appFs, *configPath, cisa.Targets); err != nil {
			return xerrors.Errorf("config error: %w", err)
		}
	}

	selected, err := cisa.Select(targets, *target)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	err = update(os.Stdout, appFs, selected, recorder)

	if *metricsFile != "" {
		if merr := recorder.WriteTextfile(*metricsFile); merr != nil {
			log.Printf("metrics error: %s", merr)
		}
	}
	return err
}

// update runs the targets in order and writes one confirmation line per bundle to w.
func update(w io.Writer, appFs afero.Fs, targets []cisa.Target, recorder *metrics.Recorder) error {
	for _, t := range targets {
		c := cisa.NewConfig(
			cisa.WithTarget(t),
			cisa.WithRetry(*retry),
			cisa.WithTimeout(*timeout),
			cisa.WithFs(appFs),
		)

		started := time.Now()
		res, err := c.Update()
		if err != nil {
			recorder.Failure(t.Name, started, time.Now())
			return xerrors.Errorf("error in CISA %s update: %w", t.Name, err)
		}
		recorder.Success(t.Name, res.Indicators, started, time.Now())

		if _, err = fmt.Fprintf(w, "STIX bundle saved to %s\n", res.OutputPath); err != nil {
			return xerrors.Errorf("failed to print the bundle path: %w", err)
		}
	}
	return nil
}
