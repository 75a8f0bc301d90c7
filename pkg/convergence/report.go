package convergence

import (
	"strings"

	"github.com/matzehuels/converge/pkg/tree"
)

// RenderPath renders the path from the root to id, one line per node. Line
// i is indented by 2*i spaces and prefixed with "+-".
func RenderPath(t *tree.Tree, id tree.NodeID) string {
	var b strings.Builder
	for i, n := range t.Path(id) {
		b.WriteString(strings.Repeat("  ", i))
		b.WriteString("+-")
		b.WriteString(t.Coordinate(n).String())
		b.WriteByte('\n')
	}
	return b.String()
}

// BuildReport renders one conflict: a header naming the first occurrence,
// then every occurrence path separated by "and" lines.
func BuildReport(t *tree.Tree, c Conflict) string {
	if len(c.Occurrences) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nDependency convergence error for ")
	b.WriteString(t.Coordinate(c.Occurrences[0]).String())
	b.WriteString(" paths to dependency are:\n")
	for i, id := range c.Occurrences {
		if i > 0 {
			b.WriteString("and\n")
		}
		b.WriteString(RenderPath(t, id))
	}
	return b.String()
}

// BuildReports renders every conflict, preserving order.
func BuildReports(t *tree.Tree, conflicts []Conflict) []string {
	msgs := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		msgs = append(msgs, BuildReport(t, c))
	}
	return msgs
}
