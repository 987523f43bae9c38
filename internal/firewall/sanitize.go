package firewall

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// CollisionPolicy decides what happens when two country names share a token.
type CollisionPolicy string

const (
	// CollisionFail rejects the run before anything is written.
	CollisionFail CollisionPolicy = "fail"
	// CollisionSuffix keeps the first name (in sorted order) on the bare token
	// and numbers the rest _2, _3, ...
	CollisionSuffix CollisionPolicy = "suffix"
)

var tokenReplacer = strings.NewReplacer(
	" ", "_",
	"(", "",
	")", "",
	"'", "",
	",", "",
	"/", "",
)

// Sanitize maps a country name to a file name token: spaces become
// underscores and ( ) ' , / are dropped. A result that is empty or only
// dots gets a leading underscore so it never names "." or "..".
func Sanitize(name string) string {
	token := tokenReplacer.Replace(name)
	if strings.Trim(token, ".") == "" {
		token = "_" + token
	}
	return token
}

// AssignTokens sanitizes every distinct name and resolves collisions
// according to policy. The result maps each name to its token.
func AssignTokens(names []string, policy CollisionPolicy) (map[string]string, error) {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	natural := make(map[string]string, len(sorted))
	owners := make(map[string][]string)
	for _, name := range sorted {
		tok := Sanitize(name)
		natural[name] = tok
		owners[tok] = append(owners[tok], name)
	}

	switch policy {
	case CollisionFail, "":
		var errs []error
		for _, name := range sorted {
			tok := natural[name]
			if o := owners[tok]; len(o) > 1 && o[0] == name {
				errs = append(errs, &CollisionError{Token: tok, Names: o})
			}
		}
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return natural, nil

	case CollisionSuffix:
		taken := make(map[string]bool, len(owners))
		for tok := range owners {
			taken[tok] = true
		}

		assigned := make(map[string]string, len(sorted))
		for _, name := range sorted {
			tok := natural[name]
			if owners[tok][0] == name {
				assigned[name] = tok
				continue
			}
			for n := 2; ; n++ {
				cand := fmt.Sprintf("%s_%d", tok, n)
				if !taken[cand] {
					taken[cand] = true
					assigned[name] = cand
					break
				}
			}
		}
		return assigned, nil
	}

	return nil, fmt.Errorf("unknown collision policy %q", policy)
}
