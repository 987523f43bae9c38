package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"grimm.is/georules/internal/clock"
	"grimm.is/georules/internal/dataset"
	"grimm.is/georules/internal/firewall"
	"grimm.is/georules/internal/geoip"
	"grimm.is/georules/internal/logging"
	"grimm.is/georules/internal/metrics"
)

// Source locates and unpacks the dataset for FetchAndRun.
type Source struct {
	URL       string
	WorkDir   string
	Fetcher   *dataset.Fetcher
	Extractor *dataset.Extractor
}

// Runner turns a dataset into per-country rule sets.
type Runner struct {
	opts     Options
	fs       afero.Fs
	clock    clock.Clock
	logger   *logging.Logger
	synth    *firewall.Synthesizer
	metrics  *metrics.Registry
	verifier *geoip.Verifier
	source   *Source
}

// Option configures a Runner.
type Option func(*Runner)

// WithFs sets the filesystem the dataset is read from and rules written to.
func WithFs(fs afero.Fs) Option {
	return func(r *Runner) { r.fs = fs }
}

// WithClock sets the clock used for run timing.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithMetrics records run gauges into reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(r *Runner) { r.metrics = reg }
}

// WithVerifier enables the GeoIP cross-check.
func WithVerifier(v *geoip.Verifier) Option {
	return func(r *Runner) { r.verifier = v }
}

// WithSource enables Fetch and FetchAndRun.
func WithSource(s *Source) Option {
	return func(r *Runner) { r.source = s }
}

// NewRunner validates opts and returns a Runner.
func NewRunner(opts Options, logger *logging.Logger, ropts ...Option) (*Runner, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Collisions == "" {
		opts.Collisions = firewall.CollisionFail
	}

	r := &Runner{
		opts:   opts,
		fs:     afero.NewOsFs(),
		clock:  clock.RealClock{},
		logger: logging.OrDefault(logger).WithComponent("pipeline"),
	}
	for _, o := range ropts {
		o(r)
	}

	synth, err := firewall.NewSynthesizer(r.fs, opts.Rules, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid rule config: %w", err)
	}
	r.synth = synth

	if r.metrics == nil && opts.MetricsFile != "" {
		r.metrics = metrics.NewRegistry()
	}
	return r, nil
}

// Options returns the policies in effect.
func (r *Runner) Options() Options {
	return r.opts
}

// Run reads csvPath and writes one rule set per country under outDir.
//
// Nothing is written when the dataset is missing, malformed or has colliding
// country names. With ContinueOnError every country is attempted and the
// failures are joined; otherwise the first failure stops the run. The
// returned Report is populated even when err is non-nil.
func (r *Runner) Run(ctx context.Context, csvPath, outDir string) (*Report, error) {
	start := r.clock.Now()
	report := &Report{
		RunID:     uuid.NewString(),
		Source:    csvPath,
		OutputDir: outDir,
		StartedAt: start,
	}
	log := r.logger.WithFields(map[string]any{"run_id": report.RunID})

	log.Info("Starting run", "source", csvPath, "output", outDir, "workers", r.opts.Workers)

	err := r.run(ctx, log, report, csvPath, outDir)
	report.Duration = r.clock.Since(start)
	r.recordMetrics(report, err)

	if err != nil {
		log.Error("Run failed", "error", err, "failures", report.Failures)
		return report, err
	}

	log.Info("Run complete",
		"countries", report.Countries,
		"ranges", report.Ranges,
		"rule_files", report.RuleFiles,
		"duration", report.Duration)
	return report, nil
}

func (r *Runner) run(ctx context.Context, log *logging.Logger, report *Report, csvPath, outDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := dataset.ReadFile(r.fs, csvPath, r.opts.Layout)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	ix := dataset.BuildIndex(records)
	report.Countries = ix.Len()
	report.Ranges = ix.RangeCount()
	log.Debug("Indexed dataset", "rows", len(records), "countries", ix.Len())

	countries := ix.Countries()
	tokens, err := firewall.AssignTokens(countries, r.opts.Collisions)
	if err != nil {
		return err
	}

	if r.verifier != nil {
		s := r.verifier.Verify(ix)
		report.GeoIPChecked = s.Checked
		report.GeoIPMismatches = len(s.Mismatches)
	}

	if err := r.fs.MkdirAll(outDir, 0755); err != nil {
		return &firewall.IOError{Op: "mkdir", Path: outDir, Err: err}
	}

	results := make([]CountryResult, len(countries))
	done := make([]bool, len(countries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, country := range countries {
		if gctx.Err() != nil {
			break
		}
		token := tokens[country]
		ranges := ix.Ranges(country)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := r.processCountry(outDir, country, token, ranges)
			results[i] = res
			done[i] = true
			if res.Err != nil {
				log.Warn("Country failed", "country", country, "token", token, "error", res.Err)
				if !r.opts.ContinueOnError {
					return res.Err
				}
			}
			return nil
		})
	}
	waitErr := g.Wait()

	var failures []error
	for i, res := range results {
		if !done[i] {
			continue
		}
		report.Results = append(report.Results, res)
		report.RuleFiles += len(res.Artifacts)
		if res.Err != nil {
			report.Failures++
			failures = append(failures, res.Err)
		}
	}

	if waitErr != nil {
		return waitErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(failures...)
}

func (r *Runner) processCountry(outDir, country, token string, ranges []string) CountryResult {
	res := CountryResult{Country: country, Token: token, Ranges: len(ranges)}

	path, err := firewall.WriteRangeFile(r.fs, outDir, token, ranges)
	if err != nil {
		res.Err = &CountryError{Country: country, Token: token, Err: err}
		return res
	}

	out, err := r.synth.Synthesize(path)
	res.Dir = out.Dir
	res.Artifacts = out.Artifacts
	res.Rules = out.Rules
	if err != nil {
		res.Err = &CountryError{Country: country, Token: token, Err: err}
	}
	return res
}

func (r *Runner) recordMetrics(report *Report, runErr error) {
	if r.metrics == nil {
		return
	}

	for _, res := range report.Results {
		r.metrics.RecordCountry(res.Token, res.Ranges, res.Err)
	}

	failures := report.Failures
	if runErr != nil && failures == 0 {
		failures = 1
	}
	r.metrics.RecordRun(metrics.RunSummary{
		Countries:       report.Countries,
		Ranges:          report.Ranges,
		RuleFiles:       report.RuleFiles,
		Failures:        failures,
		GeoIPMismatches: report.GeoIPMismatches,
		Duration:        report.Duration,
		FinishedAt:      r.clock.Now(),
	})

	if r.opts.MetricsFile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.opts.MetricsFile); err != nil {
		r.logger.Warn("Failed to write metrics", "path", r.opts.MetricsFile, "error", err)
	}
}

// Fetch downloads and unpacks the configured dataset, returning the CSV path.
func (r *Runner) Fetch(ctx context.Context) (string, error) {
	if r.source == nil || r.source.Fetcher == nil || r.source.Extractor == nil {
		return "", errors.New("no dataset source configured")
	}

	archive, err := r.source.Fetcher.Fetch(ctx, r.source.URL)
	if err != nil {
		return "", err
	}

	workDir := r.source.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(archive)
	}
	csvPath, err := r.source.Extractor.Extract(archive, workDir)
	if err != nil {
		return "", fmt.Errorf("failed to extract dataset: %w", err)
	}
	return csvPath, nil
}

// FetchAndRun fetches the dataset and runs over it.
func (r *Runner) FetchAndRun(ctx context.Context, outDir string) (*Report, error) {
	csvPath, err := r.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, csvPath, outDir)
}
