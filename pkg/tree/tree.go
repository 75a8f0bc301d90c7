package tree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/converge/pkg/artifact"
)

var (
	// ErrEmptyTree is returned by [Tree.Validate] for a tree without a root.
	ErrEmptyTree = errors.New("tree has no root")

	// ErrUnknownParent is returned by [Tree.Add] when the parent ID does not
	// refer to an existing node.
	ErrUnknownParent = errors.New("unknown parent node")
)

// NodeID indexes a node within its Tree.
type NodeID int

// NoParent is the parent of the root node.
const NoParent NodeID = -1

type node struct {
	coord    artifact.Coordinate
	parent   NodeID
	depth    int
	children []NodeID
}

// Tree is a rooted, ordered dependency tree.
//
// The zero value is an empty tree; use [New] to create one with a root.
type Tree struct {
	nodes []node
}

// New creates a tree containing only root.
func New(root artifact.Coordinate) (*Tree, error) {
	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	return &Tree{nodes: []node{{coord: root, parent: NoParent}}}, nil
}

// Add appends a child of parent carrying c and returns its ID.
func (t *Tree) Add(parent NodeID, c artifact.Coordinate) (NodeID, error) {
	if !t.valid(parent) {
		return NoParent, fmt.Errorf("%w: %d", ErrUnknownParent, parent)
	}
	if err := c.Validate(); err != nil {
		return NoParent, fmt.Errorf("child of %s: %w", t.nodes[parent].coord, err)
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{coord: c, parent: parent, depth: t.nodes[parent].depth + 1})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id, nil
}

// Root returns the root ID. It is only meaningful when Len() > 0.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Coordinate returns the artifact held by id.
func (t *Tree) Coordinate(id NodeID) artifact.Coordinate { return t.nodes[id].coord }

// Parent returns the parent of id, or (NoParent, false) for the root.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	p := t.nodes[id].parent
	return p, p != NoParent
}

// Children returns the ordered children of id. The slice must not be
// modified.
func (t *Tree) Children(id NodeID) []NodeID { return t.nodes[id].children }

// Depth returns the number of edges between the root and id.
func (t *Tree) Depth(id NodeID) int { return t.nodes[id].depth }

// Path returns the IDs from the root down to id, inclusive. A node at depth
// D yields D+1 entries.
func (t *Tree) Path(id NodeID) []NodeID {
	path := make([]NodeID, 0, t.nodes[id].depth+1)
	for cur := id; cur != NoParent; cur = t.nodes[cur].parent {
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

// Validate checks structural invariants: a root exists, every coordinate
// has an identity, and parent links agree with child lists. Trees built
// through [New] and [Tree.Add] always pass; Validate guards trees decoded
// from external input.
func (t *Tree) Validate() error {
	if t == nil || len(t.nodes) == 0 {
		return ErrEmptyTree
	}
	for i, n := range t.nodes {
		if err := n.coord.Validate(); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		if i == 0 {
			if n.parent != NoParent {
				return fmt.Errorf("root has parent %d", n.parent)
			}
			continue
		}
		if !t.valid(n.parent) || n.parent >= NodeID(i) {
			return fmt.Errorf("node %d: %w: %d", i, ErrUnknownParent, n.parent)
		}
		if !slices.Contains(t.nodes[n.parent].children, NodeID(i)) {
			return fmt.Errorf("node %d missing from children of %d", i, n.parent)
		}
	}
	return nil
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}
