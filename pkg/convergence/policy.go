package convergence

import (
	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/pattern"
)

// Policy decides whether a node's artifact must converge.
type Policy func(artifact.Coordinate) bool

// RequireAll is the policy used when no rules are configured.
func RequireAll(artifact.Coordinate) bool { return true }

// Rules holds the include and exclude patterns of one check.
//
// A nil or empty list means "no rule of this kind", which is not the same as
// a list holding the catch-all "*".
type Rules struct {
	Excludes []pattern.Pattern
	Includes []pattern.Pattern
}

// NewRules parses rule strings into Rules.
func NewRules(excludes, includes []string) Rules {
	return Rules{
		Excludes: pattern.ParseAll(excludes),
		Includes: pattern.ParseAll(includes),
	}
}

// RequiresConvergence applies the filter table:
//
//	excludes  includes  result
//	-         -         true
//	set       -         true unless an exclude matches
//	-         set       true only if an include matches
//	set       set       true only if an include matches
func (r Rules) RequiresConvergence(c artifact.Coordinate) bool {
	if len(r.Includes) > 0 {
		return pattern.MatchAny(r.Includes, c)
	}
	return !pattern.MatchAny(r.Excludes, c)
}

// Policy returns r as a Policy value.
func (r Rules) Policy() Policy {
	if len(r.Includes) == 0 && len(r.Excludes) == 0 {
		return RequireAll
	}
	return r.RequiresConvergence
}
