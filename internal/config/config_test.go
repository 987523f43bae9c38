package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	t.Setenv("GEORULES_OUTPUT_DIR", "/tmp/georules-out")
	t.Setenv("GEORULES_CACHE_DIR", "/tmp/georules-cache")

	cfg := Default()

	assert.Equal(t, CurrentSchemaVersion, cfg.SchemaVersion)
	assert.Equal(t, "/tmp/georules-out", cfg.OutputDir)
	assert.Equal(t, "/tmp/georules-cache", cfg.Source.CacheDir)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, CollisionsFail, cfg.Collisions)
	assert.Equal(t, DefaultSourceURL, cfg.Source.URL)
	assert.Equal(t, FormatDefault, cfg.Source.Format)
	assert.Equal(t, "INPUT", cfg.Rules.Chain)
	assert.Equal(t, []string{ActionDrop}, cfg.Rules.Actions)
	assert.Equal(t, LayoutInPlace, cfg.Rules.Layout)
	assert.False(t, cfg.GeoIP.IsEnabled())
	assert.Equal(t, 24*time.Hour, cfg.CacheMaxAge())
	assert.Empty(t, cfg.Validate())
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{Workers: 3, Rules: &RulesConfig{Actions: []string{ActionDrop, ActionAccept}}}
	cfg.ApplyDefaults()
	first := *cfg.Rules
	cfg.ApplyDefaults()

	assert.Equal(t, first, *cfg.Rules)
	assert.Equal(t, 3, cfg.Workers)
}

func TestCacheMaxAge_Invalid(t *testing.T) {
	cfg := Default()
	cfg.Source.MaxAge = "soon"
	assert.Zero(t, cfg.CacheMaxAge())
}
