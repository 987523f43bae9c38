package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
)

// ErrRulesDiffer is returned by RunDiff when the two trees differ.
var ErrRulesDiffer = errors.New("rule sets differ")

// RunDiff prints a unified diff of every rule artifact between two output
// directories.
func RunDiff(fs afero.Fs, oldDir, newDir string, out io.Writer) error {
	oldTree, err := readArtifacts(fs, oldDir)
	if err != nil {
		return err
	}
	newTree, err := readArtifacts(fs, newDir)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(oldTree)+len(newTree))
	for p := range oldTree {
		paths = append(paths, p)
	}
	for p := range newTree {
		if _, ok := oldTree[p]; !ok {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)

	changed := 0
	for _, p := range paths {
		a, b := oldTree[p], newTree[p]
		if a == b {
			continue
		}
		changed++

		from, to := "a/"+p, "b/"+p
		if _, ok := oldTree[p]; !ok {
			from = "/dev/null"
		}
		if _, ok := newTree[p]; !ok {
			to = "/dev/null"
		}

		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(a),
			B:        difflib.SplitLines(b),
			FromFile: from,
			ToFile:   to,
			Context:  3,
		})
		if err != nil {
			return fmt.Errorf("failed to diff %s: %w", p, err)
		}
		fmt.Fprint(out, text)
	}

	if changed == 0 {
		Printer.Fprintln(out, "No changes detected.")
		return nil
	}
	Printer.Fprintf(out, "%d rule files differ\n", changed)
	return ErrRulesDiffer
}

// readArtifacts loads every rule file under root keyed by relative path.
// Transient range files and temporaries are skipped.
func readArtifacts(fs afero.Fs, root string) (map[string]string, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	tree := make(map[string]string)
	err = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		// Rule artifacts live one level down; top-level files are range files.
		if filepath.Dir(rel) == "." {
			return nil
		}
		if name := filepath.Base(rel); len(name) > 0 && name[0] == '.' {
			return nil
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return tree, nil
}
