package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"grimm.is/georules/internal/brand"
	"grimm.is/georules/internal/config"
	"grimm.is/georules/internal/pipeline"
)

// RunCheck validates the configuration file syntax and semantics.
func RunCheck(configFile string, verbose bool) error {
	if len(configFile) == 0 {
		return fmt.Errorf("usage: %s check [-v] <config-file>\nExample: %s check -v %s", brand.BinaryName, brand.BinaryName, brand.DefaultConfigPath())
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	Printer.Printf("Configuration valid!\n")
	Printer.Printf("Schema Version: %s\n", cfg.SchemaVersion)
	Printer.Printf("Output: %s\n", cfg.OutputDir)
	Printer.Printf("Rule prefix: %s\n", opts.Rules.RulePrefix())
	Printer.Printf("Actions: %s\n", strings.Join(cfg.Rules.Actions, ", "))

	if verbose {
		Printer.Println()
		printSummary(cfg)
	}
	return nil
}

func printSummary(cfg *config.Config) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	Printer.Fprintln(w, "SETTING\tVALUE")
	Printer.Fprintf(w, "source.url\t%s\n", cfg.Source.URL)
	Printer.Fprintf(w, "source.format\t%s\n", cfg.Source.Format)
	Printer.Fprintf(w, "source.member\t%s\n", orDash(cfg.Source.Member))
	Printer.Fprintf(w, "source.cache_dir\t%s\n", cfg.Source.CacheDir)
	Printer.Fprintf(w, "source.max_age\t%s\n", cfg.Source.MaxAge)
	Printer.Fprintf(w, "rules.layout\t%s\n", cfg.Rules.Layout)
	Printer.Fprintf(w, "rules.rules_dir\t%s\n", orDash(cfg.Rules.RulesDir))
	Printer.Fprintf(w, "workers\t%d\n", cfg.Workers)
	Printer.Fprintf(w, "collisions\t%s\n", cfg.Collisions)
	Printer.Fprintf(w, "continue_on_error\t%t\n", cfg.ContinueOnError)
	Printer.Fprintf(w, "metrics_file\t%s\n", orDash(cfg.MetricsFile))

	geo := "disabled"
	if cfg.GeoIP.IsEnabled() {
		geo = cfg.GeoIP.DatabasePath
	}
	Printer.Fprintf(w, "geoip\t%s\n", geo)
	w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
