package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/georules/internal/config"
)

func TestRunConfig_InitThenCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "georules.hcl")
	var out bytes.Buffer

	require.NoError(t, RunConfig([]string{"init", "-o", path}, &out))
	assert.Contains(t, out.String(), "Wrote "+path)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Rules.Actions, cfg.Rules.Actions)
	assert.Equal(t, config.DefaultMember, cfg.Source.Member)
	assert.NoError(t, RunCheck(path, false))

	// A second init refuses to clobber without --force.
	assert.Error(t, RunConfig([]string{"init", "-o", path}, &out))
	assert.NoError(t, RunConfig([]string{"init", "-o", path, "--force"}, &out))
}

func TestRunConfig_Show(t *testing.T) {
	path := filepath.Join(t.TempDir(), "georules.hcl")
	require.NoError(t, os.WriteFile(path, []byte("workers = 3\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, RunConfig([]string{"show", path}, &out))
	assert.Contains(t, out.String(), "workers")
	assert.Contains(t, out.String(), "3")
	assert.Contains(t, out.String(), "rules {")
}

func TestRunConfig_Unknown(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, RunConfig(nil, &out))
	assert.Error(t, RunConfig([]string{"frobnicate"}, &out))
	assert.Contains(t, out.String(), "Unknown config command")
}
