package pipeline

import (
	"fmt"

	"grimm.is/georules/internal/config"
	"grimm.is/georules/internal/dataset"
	"grimm.is/georules/internal/firewall"
)

// Options are the per-run policies.
type Options struct {
	Layout          dataset.Layout
	Rules           firewall.RuleConfig
	Collisions      firewall.CollisionPolicy
	Workers         int
	ContinueOnError bool
	// MetricsFile receives a Prometheus textfile after each run when set.
	MetricsFile string
}

// DefaultOptions is a sequential, fail-fast, DROP-only run over the default
// row layout.
func DefaultOptions() Options {
	return Options{
		Layout:     dataset.DefaultLayout,
		Rules:      firewall.DefaultRuleConfig(),
		Collisions: firewall.CollisionFail,
		Workers:    1,
	}
}

// OptionsFromConfig maps a loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	cfg.ApplyDefaults()

	layout, err := dataset.LayoutFor(cfg.Source.Format)
	if err != nil {
		return Options{}, fmt.Errorf("source: %w", err)
	}

	actions := []string{firewall.ActionDrop}
	if cfg.Rules.Bidirectional() {
		actions = append(actions, firewall.ActionAccept)
	}

	return Options{
		Layout: layout,
		Rules: firewall.RuleConfig{
			Prefix:    cfg.Rules.Prefix,
			Chain:     cfg.Rules.Chain,
			Interface: cfg.Rules.Interface,
			Actions:   actions,
			Layout:    cfg.Rules.Layout,
			RulesDir:  cfg.Rules.RulesDir,
		},
		Collisions:      firewall.CollisionPolicy(cfg.Collisions),
		Workers:         cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
		MetricsFile:     cfg.MetricsFile,
	}, nil
}
