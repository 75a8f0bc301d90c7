// Package pattern matches artifacts against include/exclude rules.
//
// A rule string has the form
//
//	groupId[:artifactId[:version]]
//
// Each segment is trimmed of surrounding whitespace and may be the wildcard
// "*". Matching considers the groupId and artifactId segments only; a
// version segment is kept on the [Pattern] but never evaluated. A pattern
// with a single segment matches on groupId alone, so "commons-lang" matches
// every artifact in that group.
//
// Patterns never fail to parse. A rule with no usable segment (for example
// "" or "   ") yields a pattern that matches nothing.
package pattern

import (
	"strings"

	"github.com/matzehuels/converge/pkg/artifact"
)

// Wildcard matches any value in its position.
const Wildcard = "*"

// Pattern is a parsed rule string. The zero value matches nothing.
type Pattern struct {
	raw      string
	segments []string
}

// Parse splits s on ':' and trims every segment.
func Parse(s string) Pattern {
	if strings.TrimSpace(s) == "" {
		return Pattern{raw: s}
	}
	segments := strings.Split(s, ":")
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}
	// "g:" and "g::" behave like "g".
	for len(segments) > 0 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	return Pattern{raw: s, segments: segments}
}

// ParseAll parses every rule string in order. A nil or empty input yields a
// nil slice.
func ParseAll(rules []string) []Pattern {
	if len(rules) == 0 {
		return nil
	}
	out := make([]Pattern, len(rules))
	for i, r := range rules {
		out[i] = Parse(r)
	}
	return out
}

// String returns the rule string the pattern was parsed from.
func (p Pattern) String() string { return p.raw }

// Segments returns a copy of the trimmed segments.
func (p Pattern) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Version returns the third segment, if present. It is informational only.
func (p Pattern) Version() (string, bool) {
	if len(p.segments) > 2 {
		return p.segments[2], true
	}
	return "", false
}

// Matches reports whether c falls under the pattern. Only groupId and
// artifactId are compared; comparisons are exact and case-sensitive.
func (p Pattern) Matches(c artifact.Coordinate) bool {
	if len(p.segments) == 0 {
		return false
	}
	if !segmentMatches(p.segments[0], c.GroupID) {
		return false
	}
	if len(p.segments) > 1 {
		return segmentMatches(p.segments[1], c.ArtifactID)
	}
	return true
}

func segmentMatches(segment, value string) bool {
	return segment == Wildcard || segment == value
}

// MatchAny reports whether any pattern matches c.
func MatchAny(patterns []Pattern, c artifact.Coordinate) bool {
	for _, p := range patterns {
		if p.Matches(c) {
			return true
		}
	}
	return false
}
