// Package brand provides centralized naming and default locations for georules.
//
// The identity is loaded from brand.json at compile time via go:embed so that
// packaging scripts can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Vendor           string `json:"vendor"`
	Website          string `json:"website"`
	Repository       string `json:"repository"`
	Description      string `json:"description"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	DefaultOutputDir string `json:"defaultOutputDir"`
	DefaultCacheDir  string `json:"defaultCacheDir"`
	BinaryName       string `json:"binaryName"`
	ConfigFileName   string `json:"configFileName"`
	License          string `json:"license"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Vendor = b.Vendor
	Website = b.Website
	Repository = b.Repository
	Description = b.Description
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	DefaultOutputDir = b.DefaultOutputDir
	DefaultCacheDir = b.DefaultCacheDir
	BinaryName = b.BinaryName
	ConfigFileName = b.ConfigFileName
	License = b.License
}

var (
	Name             string
	LowerName        string
	Vendor           string
	Website          string
	Repository       string
	Description      string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	DefaultOutputDir string
	DefaultCacheDir  string
	BinaryName       string
	ConfigFileName   string
	License          string

	// Version is set at build time via -ldflags
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Get returns the full Brand struct
func Get() Brand {
	return b
}

// UserAgent returns a User-Agent string for dataset downloads.
func UserAgent(version string) string {
	if version == "" {
		version = "dev"
	}
	return Name + "/" + version
}

// GetOutputDir returns the rule output directory, checking env vars first.
// Priority: GEORULES_OUTPUT_DIR > GEORULES_PREFIX/rules > DefaultOutputDir
func GetOutputDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_OUTPUT_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "rules")
	}
	return DefaultOutputDir
}

// GetCacheDir returns the download cache directory, checking env vars first.
// Priority: GEORULES_CACHE_DIR > GEORULES_PREFIX/cache > DefaultCacheDir
func GetCacheDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_CACHE_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "cache")
	}
	return DefaultCacheDir
}

// GetConfigDir returns the config directory, checking env vars first.
// Priority: GEORULES_CONFIG_DIR > GEORULES_PREFIX/config > DefaultConfigDir
func GetConfigDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "config")
	}
	return DefaultConfigDir
}

// DefaultConfigPath returns the config file used when none is given.
func DefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}
