package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/tree"
)

type jsonNode struct {
	Coordinate string      `json:"coordinate"`
	Type       string      `json:"type,omitempty"`
	Classifier string      `json:"classifier,omitempty"`
	Scope      string      `json:"scope,omitempty"`
	Children   []*jsonNode `json:"children,omitempty"`
}

func (n *jsonNode) coordinate() (artifact.Coordinate, error) {
	c, err := artifact.Parse(n.Coordinate)
	if err != nil {
		return c, err
	}
	c.Type, c.Classifier, c.Scope = n.Type, n.Classifier, n.Scope
	return c, nil
}

// WriteJSON encodes t as nested JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(t *tree.Tree, w io.Writer) error {
	if err := t.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidNode, err, "export tree")
	}

	nodes := make([]jsonNode, t.Len())
	for i := range nodes {
		c := t.Coordinate(tree.NodeID(i))
		nodes[i] = jsonNode{Coordinate: c.String(), Type: c.Type, Classifier: c.Classifier, Scope: c.Scope}
		for _, child := range t.Children(tree.NodeID(i)) {
			nodes[i].Children = append(nodes[i].Children, &nodes[child])
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&nodes[t.Root()]); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes t to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(t *tree.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSON decodes a nested JSON tree from r.
//
// Every node needs a parseable "coordinate". Errors are INVALID_FORMAT for
// malformed JSON and INVALID_NODE for bad coordinates, naming the offending
// node. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*tree.Tree, error) {
	var root jsonNode
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree")
	}

	rc, err := root.coordinate()
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	t, err := tree.New(rc)
	if err != nil {
		return nil, err
	}

	type frame struct {
		id   tree.NodeID
		node *jsonNode
	}
	stack := []frame{{t.Root(), &root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ids := make([]frame, 0, len(f.node.Children))
		for _, child := range f.node.Children {
			if child == nil {
				continue
			}
			c, err := child.coordinate()
			if err != nil {
				return nil, fmt.Errorf("child of %s: %w", t.Coordinate(f.id), err)
			}
			id, err := t.Add(f.id, c)
			if err != nil {
				return nil, err
			}
			ids = append(ids, frame{id, child})
		}
		for i := len(ids) - 1; i >= 0; i-- {
			stack = append(stack, ids[i])
		}
	}
	return t, nil
}

// ImportJSON reads a JSON tree file at path.
func ImportJSON(path string) (*tree.Tree, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

func open(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "path cannot be empty")
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
