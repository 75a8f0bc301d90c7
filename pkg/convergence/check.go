package convergence

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/tree"
)

// Options configures one check. All fields are read once before the walk.
type Options struct {
	Excludes       []string // patterns exempted from the check
	Includes       []string // patterns that alone decide eligibility when set
	UniqueVersions bool     // any repeated artifact is a conflict
}

// Rules returns the parsed filter rules.
func (o Options) Rules() Rules {
	return NewRules(o.Excludes, o.Includes)
}

// Result is the outcome of a check.
type Result struct {
	RunID     string     // unique per invocation
	Nodes     int        // nodes walked
	Conflicts []Conflict // first-seen order
	Messages  []string   // one rendered report per conflict

	tree *tree.Tree
}

// Check walks t once and collects every convergence conflict.
//
// The returned error is reserved for input-contract violations (an empty or
// malformed tree, reported as INVALID_NODE). Conflicts are reported through
// the Result.
func Check(t *tree.Tree, opts Options) (*Result, error) {
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNode, err, "invalid dependency tree")
	}

	vm := NewVersionMap(opts.Rules().Policy(), opts.UniqueVersions)
	t.Accept(vm)

	conflicts := vm.Conflicts()
	return &Result{
		RunID:     uuid.NewString(),
		Nodes:     t.Len(),
		Conflicts: conflicts,
		Messages:  BuildReports(t, conflicts),
		tree:      t,
	}, nil
}

// Passed reports whether no conflict was found.
func (r *Result) Passed() bool { return len(r.Conflicts) == 0 }

// Err returns nil for a passing result, otherwise a CONVERGENCE_VIOLATION
// error whose message concatenates all rendered reports.
func (r *Result) Err() error {
	if r.Passed() {
		return nil
	}
	return errors.New(errors.ErrCodeConvergence,
		"Failed while enforcing releasability the error(s) are [%s]", strings.Join(r.Messages, ", "))
}

// Tree returns the checked tree.
func (r *Result) Tree() *tree.Tree { return r.tree }

// Summary condenses one conflict for tables and JSON output.
type Summary struct {
	Artifact    string   `json:"artifact"`
	Versions    []string `json:"versions"`
	Occurrences int      `json:"occurrences"`
	Paths       []string `json:"paths"`
}

// Summaries returns one Summary per conflict, in conflict order. Versions are
// distinct and sorted with [SortVersions]; Paths are the rendered occurrence
// paths.
func (r *Result) Summaries() []Summary {
	out := make([]Summary, 0, len(r.Conflicts))
	for _, c := range r.Conflicts {
		seen := make(map[string]bool)
		var versions []string
		paths := make([]string, 0, len(c.Occurrences))
		for _, id := range c.Occurrences {
			v := r.tree.Coordinate(id).Version
			if !seen[v] {
				seen[v] = true
				versions = append(versions, v)
			}
			paths = append(paths, RenderPath(r.tree, id))
		}
		out = append(out, Summary{
			Artifact:    c.Key,
			Versions:    SortVersions(versions),
			Occurrences: len(c.Occurrences),
			Paths:       paths,
		})
	}
	return out
}

type jsonReport struct {
	RunID     string    `json:"run_id"`
	Root      string    `json:"root"`
	Nodes     int       `json:"nodes"`
	Passed    bool      `json:"passed"`
	Conflicts []Summary `json:"conflicts"`
}

// WriteJSON encodes the result as an indented JSON report.
func (r *Result) WriteJSON(w io.Writer) error {
	rep := jsonReport{
		RunID:     r.RunID,
		Nodes:     r.Nodes,
		Passed:    r.Passed(),
		Conflicts: r.Summaries(),
	}
	if r.tree != nil && r.tree.Len() > 0 {
		rep.Root = r.tree.Coordinate(r.tree.Root()).String()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
