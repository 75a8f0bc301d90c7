package convergence

import (
	"github.com/matzehuels/converge/pkg/tree"
)

// Conflict is one artifact identity with disagreeing occurrences.
//
// Occurrences are in first-seen order. In the default mode there is one
// occurrence per distinct version; with unique versions every occurrence of
// the artifact is listed.
type Conflict struct {
	Key         string        // "groupId:artifactId"
	Occurrences []tree.NodeID // at least two
}

type entry struct {
	versions    map[string]struct{}
	occurrences []tree.NodeID
}

// VersionMap accumulates occurrences per artifact identity while a tree is
// walked. It implements [tree.Visitor] and never prunes the walk.
//
// A VersionMap belongs to a single check of a single tree and is not safe
// for concurrent use.
type VersionMap struct {
	policy         Policy
	uniqueVersions bool

	keys    []string // first-seen order
	entries map[string]*entry
	visited map[tree.NodeID]struct{}
}

// NewVersionMap creates an empty map. A nil policy checks every node.
func NewVersionMap(policy Policy, uniqueVersions bool) *VersionMap {
	if policy == nil {
		policy = RequireAll
	}
	return &VersionMap{
		policy:         policy,
		uniqueVersions: uniqueVersions,
		entries:        make(map[string]*entry),
		visited:        make(map[tree.NodeID]struct{}),
	}
}

// Visit records id if the policy requires it to converge. It always returns
// true so that the whole tree is walked and every conflict collected.
func (m *VersionMap) Visit(t *tree.Tree, id tree.NodeID) bool {
	if _, dup := m.visited[id]; dup {
		return true
	}
	m.visited[id] = struct{}{}

	c := t.Coordinate(id)
	if !m.policy(c) {
		return true
	}

	key := c.Key()
	e, ok := m.entries[key]
	if !ok {
		m.keys = append(m.keys, key)
		m.entries[key] = &entry{
			versions:    map[string]struct{}{c.Version: {}},
			occurrences: []tree.NodeID{id},
		}
		return true
	}

	if _, seen := e.versions[c.Version]; seen && !m.uniqueVersions {
		return true
	}
	e.versions[c.Version] = struct{}{}
	e.occurrences = append(e.occurrences, id)
	return true
}

// Len returns the number of distinct artifact identities recorded.
func (m *VersionMap) Len() int { return len(m.keys) }

// Conflicts returns every identity with two or more recorded occurrences,
// in the order the identities were first seen.
func (m *VersionMap) Conflicts() []Conflict {
	var out []Conflict
	for _, key := range m.keys {
		e := m.entries[key]
		if len(e.occurrences) < 2 {
			continue
		}
		out = append(out, Conflict{
			Key:         key,
			Occurrences: append([]tree.NodeID(nil), e.occurrences...),
		})
	}
	return out
}

var _ tree.Visitor = (*VersionMap)(nil)
