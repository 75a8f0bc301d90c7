package convergence

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SortVersions orders version strings ascending. Versions that parse as
// semantic versions ("2.4", "31.0-jre", "1.7.36") compare semantically and
// sort before the rest, which compare lexically ("4.1.100.Final").
func SortVersions(versions []string) []string {
	type parsed struct {
		raw string
		v   *semver.Version
	}
	ps := make([]parsed, len(versions))
	for i, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			v = nil
		}
		ps[i] = parsed{raw: raw, v: v}
	}

	slices.SortStableFunc(ps, func(a, b parsed) int {
		switch {
		case a.v != nil && b.v != nil:
			if c := a.v.Compare(b.v); c != 0 {
				return c
			}
			return strings.Compare(a.raw, b.raw)
		case a.v != nil:
			return -1
		case b.v != nil:
			return 1
		default:
			return strings.Compare(a.raw, b.raw)
		}
	})

	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.raw
	}
	return out
}
