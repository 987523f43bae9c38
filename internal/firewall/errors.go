package firewall

import (
	"fmt"
	"strings"
)

// IOError reports a filesystem operation that failed while producing rule
// artifacts.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// CollisionError reports distinct country names that sanitize to the same
// token.
type CollisionError struct {
	Token string
	Names []string
}

func (e *CollisionError) Error() string {
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf("country names %s all map to file name %q", strings.Join(quoted, ", "), e.Token)
}
