// Package tree provides the resolved dependency tree that convergence checks
// walk.
//
// # Overview
//
// A [Tree] stores its nodes in a single slice and refers to them by
// [NodeID]. Parent-to-child edges are owned by the parent (an ordered child
// list); child-to-parent links are plain IDs used only to rebuild paths.
// There are no pointers between nodes, so a tree can be copied, encoded or
// shared between goroutines for reading without aliasing concerns.
//
// # Building
//
//	t, _ := tree.New(artifact.MustParse("com.example:app:1.0"))
//	a, _ := t.Add(t.Root(), artifact.MustParse("com.example:libA:1.0"))
//	_, _ = t.Add(a, artifact.MustParse("commons-lang:commons-lang:2.1"))
//
// Nodes are only ever appended, and [Tree.Add] rejects coordinates without a
// groupId or artifactId.
//
// # Traversal
//
// [Tree.Accept] walks the tree depth-first in pre-order: a node is visited
// before any of its children, and children are visited in insertion order.
// Every node is visited exactly once.
//
// # Concurrency
//
// A Tree is not safe for concurrent mutation. Once built, concurrent reads
// (including Accept with independent visitors) are safe.
package tree
