package pipeline

import (
	"time"
)

// CountryResult is the outcome for one country.
type CountryResult struct {
	Country   string
	Token     string
	Ranges    int
	Rules     int
	Dir       string
	Artifacts []string
	Err       error
}

// Report summarizes a run. A failed run still returns the partial report.
type Report struct {
	RunID     string
	Source    string
	OutputDir string
	StartedAt time.Time
	Duration  time.Duration

	Countries int
	Ranges    int
	RuleFiles int
	Failures  int

	GeoIPChecked    int
	GeoIPMismatches int

	// Results holds processed countries in sorted name order.
	Results []CountryResult
}

// OK reports whether every processed country succeeded.
func (r *Report) OK() bool {
	return r.Failures == 0
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []CountryResult {
	var out []CountryResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}
