// Package config loads and validates the georules configuration.
//
// Configuration is written in HCL (JSON and YAML are accepted too) and covers
// the dataset source, the rule emission layout, the per-run policies and the
// optional GeoIP cross-check.
package config

import (
	"time"

	"grimm.is/georules/internal/brand"
)

// CurrentSchemaVersion defines the current schema version of the configuration.
const CurrentSchemaVersion = "1.0"

// Collision policies.
const (
	CollisionsFail   = "fail"
	CollisionsSuffix = "suffix"
)

// Dataset formats.
const (
	FormatDefault           = "default"
	FormatGeoIPCountryWhois = "geoip-country-whois"
)

// Rule directory layouts.
const (
	LayoutInPlace = "inplace"
	LayoutNested  = "nested"
)

// Rule actions.
const (
	ActionDrop   = "DROP"
	ActionAccept = "ACCEPT"
)

// DefaultSourceURL is the legacy GeoLite country CSV archive.
const DefaultSourceURL = "https://geolite.maxmind.com/download/geoip/database/GeoIPCountryCSV.zip"

// DefaultMember is the CSV file inside the legacy archive.
const DefaultMember = "GeoIPCountryWhois.csv"

// Config is the top-level georules configuration.
type Config struct {
	SchemaVersion string `hcl:"schema_version,optional" json:"schema_version,omitempty" yaml:"schema_version,omitempty"`

	// OutputDir receives the per-country rule directories.
	OutputDir string `hcl:"output_dir,optional" json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	// Workers bounds concurrent per-country processing. 0 or 1 is sequential.
	Workers int `hcl:"workers,optional" json:"workers,omitempty" yaml:"workers,omitempty"`

	// ContinueOnError keeps processing remaining countries after one fails
	// and reports all failures at the end. Default is fail-fast.
	ContinueOnError bool `hcl:"continue_on_error,optional" json:"continue_on_error,omitempty" yaml:"continue_on_error,omitempty"`

	// Collisions selects what happens when two country names sanitize to
	// the same token: "fail" (default) or "suffix".
	Collisions string `hcl:"collisions,optional" json:"collisions,omitempty" yaml:"collisions,omitempty"`

	// MetricsFile, when set, receives a Prometheus textfile with run gauges.
	MetricsFile string `hcl:"metrics_file,optional" json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`

	Source *SourceConfig `hcl:"source,block" json:"source,omitempty" yaml:"source,omitempty"`
	Rules  *RulesConfig  `hcl:"rules,block" json:"rules,omitempty" yaml:"rules,omitempty"`
	GeoIP  *GeoIPConfig  `hcl:"geoip,block" json:"geoip,omitempty" yaml:"geoip,omitempty"`
	Log    *LogConfig    `hcl:"log,block" json:"log,omitempty" yaml:"log,omitempty"`
}

// SourceConfig describes where the dataset comes from and how it is laid out.
type SourceConfig struct {
	URL      string `hcl:"url,optional" json:"url,omitempty" yaml:"url,omitempty"`
	CacheDir string `hcl:"cache_dir,optional" json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
	// Member is the CSV file inside the archive. Empty picks the first *.csv.
	Member string `hcl:"member,optional" json:"member,omitempty" yaml:"member,omitempty"`
	Format string `hcl:"format,optional" json:"format,omitempty" yaml:"format,omitempty"`
	// MaxAge is how long a cached archive is reused, e.g. "24h". "0" disables the cache.
	MaxAge string `hcl:"max_age,optional" json:"max_age,omitempty" yaml:"max_age,omitempty"`
}

// RulesConfig controls rule line synthesis.
type RulesConfig struct {
	Chain     string `hcl:"chain,optional" json:"chain,omitempty" yaml:"chain,omitempty"`
	Interface string `hcl:"interface,optional" json:"interface,omitempty" yaml:"interface,omitempty"`
	// Prefix overrides the chain/interface derived prefix verbatim.
	Prefix  string   `hcl:"prefix,optional" json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Actions []string `hcl:"actions,optional" json:"actions,omitempty" yaml:"actions,omitempty"`
	Layout  string   `hcl:"layout,optional" json:"layout,omitempty" yaml:"layout,omitempty"`
	// RulesDir is the parent of per-country rule directories in the nested layout.
	RulesDir string `hcl:"rules_dir,optional" json:"rules_dir,omitempty" yaml:"rules_dir,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level string `hcl:"level,optional" json:"level,omitempty" yaml:"level,omitempty"`
	JSON  bool   `hcl:"json,optional" json:"json,omitempty" yaml:"json,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field. It is idempotent.
func (c *Config) ApplyDefaults() {
	if c.SchemaVersion == "" {
		c.SchemaVersion = CurrentSchemaVersion
	}
	if c.OutputDir == "" {
		c.OutputDir = brand.GetOutputDir()
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Collisions == "" {
		c.Collisions = CollisionsFail
	}

	if c.Source == nil {
		c.Source = &SourceConfig{}
	}
	if c.Source.URL == "" {
		c.Source.URL = DefaultSourceURL
	}
	if c.Source.CacheDir == "" {
		c.Source.CacheDir = brand.GetCacheDir()
	}
	if c.Source.Format == "" {
		c.Source.Format = FormatDefault
	}
	if c.Source.MaxAge == "" {
		c.Source.MaxAge = "24h"
	}

	if c.Rules == nil {
		c.Rules = &RulesConfig{}
	}
	if c.Rules.Chain == "" {
		c.Rules.Chain = "INPUT"
	}
	if len(c.Rules.Actions) == 0 {
		c.Rules.Actions = []string{ActionDrop}
	}
	if c.Rules.Layout == "" {
		c.Rules.Layout = LayoutInPlace
	}

	if c.GeoIP == nil {
		c.GeoIP = &GeoIPConfig{}
	}
	if c.GeoIP.DatabasePath == "" {
		c.GeoIP.DatabasePath = "/var/lib/georules/GeoLite2-Country.mmdb"
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// CacheMaxAge returns the parsed source max age. Invalid values are caught by
// Validate; here they fall back to zero (no caching).
func (c *Config) CacheMaxAge() time.Duration {
	if c.Source == nil {
		return 0
	}
	d, err := time.ParseDuration(c.Source.MaxAge)
	if err != nil {
		return 0
	}
	return d
}

// Bidirectional reports whether ACCEPT rules are emitted alongside DROP.
func (r *RulesConfig) Bidirectional() bool {
	for _, a := range r.Actions {
		if a == ActionAccept {
			return true
		}
	}
	return false
}
