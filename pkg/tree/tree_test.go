package tree

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/converge/pkg/artifact"
	cerrors "github.com/matzehuels/converge/pkg/errors"
)

// sample builds:
//
//	app:1.0
//	├── libA:1.0
//	│   └── commons-lang:2.1
//	└── libB:1.0
//	    └── commons-lang:2.4
func sample(t *testing.T) (*Tree, map[string]NodeID) {
	t.Helper()
	tr, err := New(artifact.MustParse("com.example:app:1.0"))
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]NodeID{"app": tr.Root()}
	add := func(name string, parent NodeID, coord string) {
		id, err := tr.Add(parent, artifact.MustParse(coord))
		if err != nil {
			t.Fatal(err)
		}
		ids[name] = id
	}
	add("libA", ids["app"], "com.example:libA:1.0")
	add("langA", ids["libA"], "commons-lang:commons-lang:2.1")
	add("libB", ids["app"], "com.example:libB:1.0")
	add("langB", ids["libB"], "commons-lang:commons-lang:2.4")
	return tr, ids
}

func TestAdd(t *testing.T) {
	tr, ids := sample(t)

	if got := tr.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
	if p, ok := tr.Parent(ids["langB"]); !ok || p != ids["libB"] {
		t.Errorf("Parent(langB) = %d, %v", p, ok)
	}
	if _, ok := tr.Parent(tr.Root()); ok {
		t.Error("root should have no parent")
	}
	if got := tr.Children(tr.Root()); !slices.Equal(got, []NodeID{ids["libA"], ids["libB"]}) {
		t.Errorf("Children(root) = %v", got)
	}
	if got := tr.Depth(ids["langA"]); got != 2 {
		t.Errorf("Depth(langA) = %d, want 2", got)
	}
	if got := tr.Coordinate(ids["langA"]).Version; got != "2.1" {
		t.Errorf("Coordinate(langA).Version = %q", got)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	tr, _ := sample(t)

	if _, err := tr.Add(NodeID(99), artifact.MustParse("g:a:1")); !errors.Is(err, ErrUnknownParent) {
		t.Errorf("Add(unknown parent) error = %v, want ErrUnknownParent", err)
	}
	if _, err := tr.Add(NoParent, artifact.MustParse("g:a:1")); !errors.Is(err, ErrUnknownParent) {
		t.Errorf("Add(NoParent) error = %v, want ErrUnknownParent", err)
	}

	_, err := tr.Add(tr.Root(), artifact.Coordinate{GroupID: "g", Version: "1"})
	if !cerrors.Is(err, cerrors.ErrCodeInvalidNode) {
		t.Errorf("Add(empty artifactId) error = %v, want INVALID_NODE", err)
	}
	if tr.Len() != 5 {
		t.Errorf("failed Add must not grow the tree, Len() = %d", tr.Len())
	}

	if _, err := New(artifact.Coordinate{}); !cerrors.Is(err, cerrors.ErrCodeInvalidNode) {
		t.Errorf("New(empty) error = %v, want INVALID_NODE", err)
	}
}

func TestPath(t *testing.T) {
	tr, ids := sample(t)

	path := tr.Path(ids["langB"])
	want := []NodeID{ids["app"], ids["libB"], ids["langB"]}
	if !slices.Equal(path, want) {
		t.Errorf("Path(langB) = %v, want %v", path, want)
	}
	if got := len(tr.Path(tr.Root())); got != 1 {
		t.Errorf("len(Path(root)) = %d, want 1", got)
	}
	for _, id := range []NodeID{ids["libA"], ids["langA"]} {
		if got := len(tr.Path(id)); got != tr.Depth(id)+1 {
			t.Errorf("len(Path(%d)) = %d, want depth+1 = %d", id, got, tr.Depth(id)+1)
		}
	}
}

func TestAcceptPreOrder(t *testing.T) {
	tr, ids := sample(t)

	var order []NodeID
	tr.Walk(func(id NodeID) { order = append(order, id) })

	want := []NodeID{ids["app"], ids["libA"], ids["langA"], ids["libB"], ids["langB"]}
	if !slices.Equal(order, want) {
		t.Errorf("pre-order = %v, want %v", order, want)
	}
}

func TestAcceptPrune(t *testing.T) {
	tr, ids := sample(t)

	var seen []NodeID
	tr.Accept(VisitorFunc(func(_ *Tree, id NodeID) bool {
		seen = append(seen, id)
		return id != ids["libA"]
	}))

	if slices.Contains(seen, ids["langA"]) {
		t.Error("children of pruned node were visited")
	}
	if !slices.Contains(seen, ids["langB"]) {
		t.Error("siblings of pruned node must still be visited")
	}
}

func TestAcceptDeepTree(t *testing.T) {
	tr, err := New(artifact.MustParse("g:root:1"))
	if err != nil {
		t.Fatal(err)
	}
	parent := tr.Root()
	for range 100000 {
		parent, err = tr.Add(parent, artifact.MustParse("g:chain:1"))
		if err != nil {
			t.Fatal(err)
		}
	}

	count := 0
	tr.Walk(func(NodeID) { count++ })
	if count != tr.Len() {
		t.Errorf("visited %d nodes, want %d", count, tr.Len())
	}
}

func TestValidate(t *testing.T) {
	tr, _ := sample(t)
	if err := tr.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	var empty Tree
	if err := empty.Validate(); !errors.Is(err, ErrEmptyTree) {
		t.Errorf("empty Validate() = %v, want ErrEmptyTree", err)
	}
	var nilTree *Tree
	if err := nilTree.Validate(); !errors.Is(err, ErrEmptyTree) {
		t.Errorf("nil Validate() = %v, want ErrEmptyTree", err)
	}

	empty.Accept(VisitorFunc(func(*Tree, NodeID) bool {
		t.Error("empty tree must not visit")
		return true
	}))
}
