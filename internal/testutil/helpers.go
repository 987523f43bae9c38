// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// Row renders one dataset line in the default layout.
func Row(start, end, country string) string {
	return fmt.Sprintf(`"0","%s","0","%s","XX","%s","x"`, start, end, country)
}

// WriteCSV writes rows, newline terminated, to path on fs.
func WriteCSV(t *testing.T, fs afero.Fs, path string, rows ...string) {
	t.Helper()
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(r)
		sb.WriteByte('\n')
	}
	if err := afero.WriteFile(fs, path, []byte(sb.String()), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadTree returns every regular file under root keyed by its path relative
// to root. A missing root yields an empty map.
func ReadTree(t *testing.T, fs afero.Fs, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)

	if ok, _ := afero.DirExists(fs, root); !ok {
		return tree
	}

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return tree
}
