package pipeline

import (
	"grimm.is/georules/internal/config"
	"grimm.is/georules/internal/dataset"
	"grimm.is/georules/internal/geoip"
	"grimm.is/georules/internal/logging"
)

// FromConfig builds a Runner with its dataset source and optional GeoIP
// cross-check wired from cfg. The returned close func releases the GeoIP
// database and is always non-nil.
func FromConfig(cfg *config.Config, logger *logging.Logger, ropts ...Option) (*Runner, func() error, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger = logging.OrDefault(logger)

	source := &Source{
		URL:       cfg.Source.URL,
		WorkDir:   cfg.Source.CacheDir,
		Fetcher:   dataset.NewFetcher(cfg.Source.CacheDir, logger, dataset.WithMaxAge(cfg.CacheMaxAge())),
		Extractor: dataset.NewExtractor(nil, cfg.Source.Member, logger),
	}
	all := []Option{WithSource(source)}

	closer := func() error { return nil }
	if cfg.GeoIP.IsEnabled() {
		db, err := geoip.Open(cfg.GeoIP.DatabasePath)
		if err != nil {
			// The cross-check is advisory; carry on without it.
			logger.Warn("GeoIP cross-check disabled", "error", err)
		} else {
			all = append(all, WithVerifier(geoip.NewVerifier(db, logger)))
			closer = db.Close
		}
	}

	r, err := NewRunner(opts, logger, append(all, ropts...)...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return r, closer, nil
}
