package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/georules/internal/dataset"
)

func writeDataset(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "geo.csv")
	var data []byte
	for _, l := range lines {
		data = append(data, l+"\n"...)
	}
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRunBuild_LocalCSV(t *testing.T) {
	dir := t.TempDir()
	csv := writeDataset(t, dir,
		`"x","1.0.0.0","x","1.0.0.255","x","United States","x"`,
		`"x","2.0.0.0","x","2.0.0.255","x","France","x"`,
	)
	out := filepath.Join(dir, "rules")

	err := RunBuild(context.Background(), BuildOptions{
		CSVPath:   csv,
		OutputDir: out,
		Accept:    true,
		Workers:   2,
	})
	require.NoError(t, err)

	drop, err := os.ReadFile(filepath.Join(out, "United_States", "DROP"))
	require.NoError(t, err)
	assert.Equal(t, "-A INPUT -m iprange --src-range 1.0.0.0-1.0.0.255 -j DROP\n", string(drop))

	accept, err := os.ReadFile(filepath.Join(out, "France", "ACCEPT"))
	require.NoError(t, err)
	assert.Equal(t, "-A INPUT -m iprange --src-range 2.0.0.0-2.0.0.255 -j ACCEPT\n", string(accept))

	_, err = os.Stat(filepath.Join(out, "France.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunBuild_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	csv := writeDataset(t, dir, `"1.0.0.0","1.0.0.255","16777216","16777471","AU","Australia"`)
	out := filepath.Join(dir, "rules")
	cfgPath := filepath.Join(dir, "georules.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
output_dir = "`+out+`"

source {
  format = "geoip-country-whois"
}

rules {
  chain     = "GEO"
  interface = "eth0"
}
`), 0644))

	err := RunBuild(context.Background(), BuildOptions{ConfigFile: cfgPath, ConfigExplicit: true, CSVPath: csv})
	require.NoError(t, err)

	drop, err := os.ReadFile(filepath.Join(out, "Australia", "DROP"))
	require.NoError(t, err)
	assert.Equal(t, "-A GEO -i eth0 -m iprange --src-range 1.0.0.0-1.0.0.255 -j DROP\n", string(drop))
}

func TestRunBuild_MalformedCSV(t *testing.T) {
	dir := t.TempDir()
	csv := writeDataset(t, dir, `"only","three","fields"`)
	out := filepath.Join(dir, "rules")

	err := RunBuild(context.Background(), BuildOptions{CSVPath: csv, OutputDir: out})
	var pe *dataset.ParseError
	require.ErrorAs(t, err, &pe)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunBuild_MissingCSV(t *testing.T) {
	dir := t.TempDir()
	err := RunBuild(context.Background(), BuildOptions{CSVPath: filepath.Join(dir, "nope.csv"), OutputDir: dir})
	var me *dataset.MissingInputError
	assert.ErrorAs(t, err, &me)
}

func TestRunBuild_MissingExplicitConfig(t *testing.T) {
	err := RunBuild(context.Background(), BuildOptions{
		ConfigFile:     filepath.Join(t.TempDir(), "absent.hcl"),
		ConfigExplicit: true,
	})
	assert.Error(t, err)
}

func TestRunBuild_BadOverride(t *testing.T) {
	err := RunBuild(context.Background(), BuildOptions{
		CSVPath:    "/unused.csv",
		OutputDir:  t.TempDir(),
		Collisions: "rename",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collisions")
}
