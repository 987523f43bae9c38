package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the gauges describing one rule generation run.
type Registry struct {
	reg *prometheus.Registry

	Countries       prometheus.Gauge
	Ranges          prometheus.Gauge
	RuleFiles       prometheus.Gauge
	Failures        prometheus.Gauge
	RunDuration     prometheus.Gauge
	LastSuccess     prometheus.Gauge
	GeoIPMismatches prometheus.Gauge

	// Per-country
	CountryRanges *prometheus.GaugeVec
	CountryErrors *prometheus.GaugeVec
}

// RunSummary is what a finished run reports.
type RunSummary struct {
	Countries       int
	Ranges          int
	RuleFiles       int
	Failures        int
	GeoIPMismatches int
	Duration        time.Duration
	FinishedAt      time.Time
}

// NewRegistry creates a Registry backed by its own prometheus registry so
// runs never share state through the global default.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	r := &Registry{reg: reg}

	r.Countries = factory.NewGauge(prometheus.GaugeOpts{
		Name: "georules_countries",
		Help: "Distinct countries in the last run",
	})
	r.Ranges = factory.NewGauge(prometheus.GaugeOpts{
		Name: "georules_ranges",
		Help: "IP ranges read in the last run",
	})
	r.RuleFiles = factory.NewGauge(prometheus.GaugeOpts{
		Name: "georules_rule_files",
		Help: "Rule artifacts written in the last run",
	})
	r.Failures = factory.NewGauge(prometheus.GaugeOpts{
		Name: "georules_failures",
		Help: "Countries that failed in the last run",
	})
	r.RunDuration = factory.NewGauge(prometheus.GaugeOpts{
		Name: "georules_run_duration_seconds",
		Help: "Wall time of the last run",
	})
	r.LastSuccess = factory.NewGauge(prometheus.GaugeOpts{
		Name: "georules_last_success_timestamp_seconds",
		Help: "Unix timestamp of the last run without failures",
	})
	r.GeoIPMismatches = factory.NewGauge(prometheus.GaugeOpts{
		Name: "georules_geoip_mismatches",
		Help: "Countries whose first range disagreed with the GeoIP database",
	})

	r.CountryRanges = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "georules_country_ranges",
		Help: "Ranges written per country token",
	}, []string{"token"})
	r.CountryErrors = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "georules_country_error",
		Help: "1 if the country failed in the last run",
	}, []string{"token"})

	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// RecordCountry records the outcome for one country token.
func (r *Registry) RecordCountry(token string, ranges int, err error) {
	if err != nil {
		r.CountryErrors.WithLabelValues(token).Set(1)
		return
	}
	r.CountryErrors.WithLabelValues(token).Set(0)
	r.CountryRanges.WithLabelValues(token).Set(float64(ranges))
}

// RecordRun records run totals. LastSuccess only moves on a clean run.
func (r *Registry) RecordRun(s RunSummary) {
	r.Countries.Set(float64(s.Countries))
	r.Ranges.Set(float64(s.Ranges))
	r.RuleFiles.Set(float64(s.RuleFiles))
	r.Failures.Set(float64(s.Failures))
	r.GeoIPMismatches.Set(float64(s.GeoIPMismatches))
	r.RunDuration.Set(s.Duration.Seconds())
	if s.Failures == 0 {
		r.LastSuccess.Set(float64(s.FinishedAt.Unix()))
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
