package firewall

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRangeFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))

	path, err := WriteRangeFile(fs, "/out", "United_States", []string{"1.0.0.0-1.0.0.255", "3.0.0.0-3.0.0.255"})
	require.NoError(t, err)
	assert.Equal(t, "/out/United_States.txt", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0.0-1.0.0.255\n3.0.0.0-3.0.0.255\n", string(data))
}

func TestWriteRangeFile_Truncates(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/France.txt", []byte("stale-1\nstale-2\nstale-3\n"), 0644))

	_, err := WriteRangeFile(fs, "/out", "France", []string{"2.0.0.0-2.0.0.255"})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/out/France.txt")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0.0-2.0.0.255\n", string(data))
}

func TestWriteRangeFile_IOError(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := WriteRangeFile(fs, "/out", "France", []string{"2.0.0.0-2.0.0.255"})
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, "write", ioe.Op)
	assert.Equal(t, "/out/France.txt", ioe.Path)
}
