package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	ltree "github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/converge/pkg/convergence"
	"github.com/matzehuels/converge/pkg/tree"
)

// stdout receives all user-facing output. Tests redirect it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleConflict for versions that fail to converge.
	StyleConflict = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Fprintln(stdout)
}

// =============================================================================
// Check Output
// =============================================================================

// printStats prints check statistics on a single line.
func printStats(nodes, conflicts int) {
	parts := []string{
		fmt.Sprintf("%d nodes", nodes),
		fmt.Sprintf("%d conflicts", conflicts),
	}
	fmt.Fprintln(stdout, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// printSummaryTable prints one row per conflicting artifact.
func printSummaryTable(summaries []convergence.Summary) {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Artifact,
			StyleConflict.Render(strings.Join(s.Versions, ", ")),
			strconv.Itoa(s.Occurrences),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("ARTIFACT", "VERSIONS", "PATHS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return styleTableCell
		})
	fmt.Fprintln(stdout, t.Render())
}

// printCheckResult prints the human-readable outcome of a check.
func printCheckResult(res *convergence.Result, failing bool) {
	root := res.Tree().Coordinate(res.Tree().Root())
	printKeyValue("Project", root.String())
	printKeyValue("Run", res.RunID)
	printStats(res.Nodes, len(res.Conflicts))
	printNewline()

	if res.Passed() {
		printSuccess("All checked dependencies converge")
		return
	}

	printSummaryTable(res.Summaries())
	if failing {
		printError("%d %s failed to converge", len(res.Conflicts), plural(len(res.Conflicts), "artifact", "artifacts"))
	} else {
		printWarning("%d %s failed to converge (warn only)", len(res.Conflicts), plural(len(res.Conflicts), "artifact", "artifacts"))
	}
	printNextStep("See the paths as a graph", appName+" check --graph conflicts.svg")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// =============================================================================
// Tree Output
// =============================================================================

// renderTree draws t with box-drawing branches. Artifacts in highlight are
// styled as conflicts.
func renderTree(t *tree.Tree, highlight map[string]bool) string {
	items := make([]any, t.Len())
	for i := t.Len() - 1; i >= 0; i-- {
		id := tree.NodeID(i)
		label := nodeLabel(t, id, highlight)
		children := t.Children(id)
		if len(children) == 0 && id != t.Root() {
			items[i] = label
			continue
		}
		node := ltree.Root(label).
			Enumerator(ltree.RoundedEnumerator).
			EnumeratorStyle(StyleDim)
		for _, c := range children {
			node.Child(items[c])
		}
		items[i] = node
	}
	return items[t.Root()].(*ltree.Tree).String()
}

func nodeLabel(t *tree.Tree, id tree.NodeID, highlight map[string]bool) string {
	c := t.Coordinate(id)
	label := c.Key() + ":"
	if highlight[c.Key()] {
		label += StyleConflict.Render(c.Version)
	} else {
		label += StyleHighlight.Render(c.Version)
	}
	if c.Scope != "" && c.Scope != "compile" {
		label += " " + StyleDim.Render("("+c.Scope+")")
	}
	return label
}
