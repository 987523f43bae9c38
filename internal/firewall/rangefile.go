package firewall

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// RangeFileExt is the extension of the transient per-country range file.
const RangeFileExt = ".txt"

// WriteRangeFile writes one range per line to <outDir>/<token>.txt,
// truncating any previous content, and returns the path.
func WriteRangeFile(fs afero.Fs, outDir, token string, ranges []string) (string, error) {
	path := filepath.Join(outDir, token+RangeFileExt)

	var sb strings.Builder
	for _, r := range ranges {
		sb.WriteString(r)
		sb.WriteByte('\n')
	}

	if err := afero.WriteFile(fs, path, []byte(sb.String()), 0644); err != nil {
		return "", &IOError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}
