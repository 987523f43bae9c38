package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"grimm.is/georules/internal/config"
	"grimm.is/georules/internal/pipeline"
)

// BuildOptions carries the command-line overrides for a build.
type BuildOptions struct {
	ConfigFile     string
	ConfigExplicit bool

	OutputDir       string
	CSVPath         string
	Accept          bool
	Workers         int
	ContinueOnError bool
	Collisions      string
	Verbose         bool
}

// loadBuildConfig loads the config file and layers the flags on top.
func loadBuildConfig(opts BuildOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigFile, opts.ConfigExplicit)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.Accept {
		cfg.Rules.Actions = []string{config.ActionDrop, config.ActionAccept}
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.ContinueOnError {
		cfg.ContinueOnError = true
	}
	if opts.Collisions != "" {
		cfg.Collisions = opts.Collisions
	}

	if errs := cfg.Validate(); errs.HasErrors() {
		return nil, fmt.Errorf("invalid options: %w", errs)
	}
	return cfg, nil
}

// RunBuild generates the per-country rule sets. Without a CSV path the
// dataset is downloaded and extracted first.
func RunBuild(ctx context.Context, opts BuildOptions) error {
	cfg, err := loadBuildConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, opts.Verbose)

	runner, closeFn, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	var report *pipeline.Report
	if opts.CSVPath != "" {
		report, err = runner.Run(ctx, opts.CSVPath, cfg.OutputDir)
	} else {
		report, err = runner.FetchAndRun(ctx, cfg.OutputDir)
	}

	if report != nil {
		printReport(report, opts.Verbose)
	}
	return err
}

func printReport(r *pipeline.Report, verbose bool) {
	Printer.Printf("Run %s: %d countries, %d ranges, %d rule files in %s\n",
		r.RunID, r.Countries, r.Ranges, r.RuleFiles, r.Duration.Round(time.Millisecond))
	if r.GeoIPChecked > 0 {
		Printer.Printf("GeoIP cross-check: %d checked, %d mismatches\n", r.GeoIPChecked, r.GeoIPMismatches)
	}

	failed := r.Failed()
	if !verbose && len(failed) == 0 {
		return
	}

	rows := r.Results
	if !verbose {
		rows = failed
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	Printer.Fprintln(w, "COUNTRY\tTOKEN\tRANGES\tRULES\tSTATUS")
	for _, res := range rows {
		status := "ok"
		if res.Err != nil {
			status = "failed"
		}
		Printer.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", res.Country, res.Token, res.Ranges, res.Rules, status)
	}
	w.Flush()
}
