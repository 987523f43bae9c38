package config

// GeoIPConfig configures the optional cross-check of generated ranges against
// a MaxMind (GeoLite2-Country.mmdb) or DB-IP (dbip-country-lite.mmdb) database.
type GeoIPConfig struct {
	Enabled      bool   `hcl:"enabled,optional" json:"enabled" yaml:"enabled"`
	DatabasePath string `hcl:"database_path,optional" json:"database_path,omitempty" yaml:"database_path,omitempty"`
}

// IsEnabled reports whether the GeoIP cross-check should run.
func (g *GeoIPConfig) IsEnabled() bool {
	return g != nil && g.Enabled && g.DatabasePath != ""
}
