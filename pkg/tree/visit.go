package tree

// Visitor receives nodes during [Tree.Accept].
//
// Visit returns whether the children of id should be visited. Returning
// false prunes the subtree; the walk still continues with siblings.
type Visitor interface {
	Visit(t *Tree, id NodeID) bool
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(t *Tree, id NodeID) bool

// Visit calls f(t, id).
func (f VisitorFunc) Visit(t *Tree, id NodeID) bool { return f(t, id) }

// Accept walks the tree in pre-order starting at the root. A parent is
// visited before its children and children in insertion order. Each node is
// visited at most once.
func (t *Tree) Accept(v Visitor) {
	if t.Len() == 0 {
		return
	}
	// Explicit stack: deep trees must not exhaust the goroutine stack.
	stack := []NodeID{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !v.Visit(t, id) {
			continue
		}
		children := t.nodes[id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Walk calls fn for every node in pre-order.
func (t *Tree) Walk(fn func(id NodeID)) {
	t.Accept(VisitorFunc(func(_ *Tree, id NodeID) bool {
		fn(id)
		return true
	}))
}
