package cmd

import (
	"context"

	"grimm.is/georules/internal/config"
	"grimm.is/georules/internal/pipeline"
)

// RunFetch downloads and extracts the dataset and prints the CSV path.
func RunFetch(ctx context.Context, configFile string, explicit, verbose bool) error {
	cfg, err := config.LoadOrDefault(configFile, explicit)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, verbose)

	runner, closeFn, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	path, err := runner.Fetch(ctx)
	if err != nil {
		return err
	}
	Printer.Println(path)
	return nil
}
