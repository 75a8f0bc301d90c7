package io

import (
	"bufio"
	"io"
	"strings"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/tree"
)

const branchWidth = 3 // "+- ", "\- ", "|  " and "   " are all three wide

// ReadMavenTree parses "mvn dependency:tree" output from r.
//
// Lines before the root (Maven banners, plugin headers) are skipped, and
// reading stops at the first line after the root that is not a tree line.
// A line that skips a depth level is an INVALID_FORMAT error.
func ReadMavenTree(r io.Reader) (*tree.Tree, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		t       *tree.Tree
		parents []tree.NodeID // parents[d] is the last node seen at depth d
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		line := stripLogPrefix(sc.Text())

		if t == nil {
			c, ok := parseEntry(line)
			if !ok {
				continue
			}
			root, err := tree.New(c)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidNode, err, "line %d", lineNo)
			}
			t, parents = root, []tree.NodeID{root.Root()}
			continue
		}

		depth, rest, ok := splitBranch(line)
		if !ok {
			break
		}
		if depth > len(parents) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: depth %d follows depth %d", lineNo, depth, len(parents)-1)
		}
		c, ok := parseEntry(rest)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: cannot parse %q", lineNo, rest)
		}
		id, err := t.Add(parents[depth-1], c)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidNode, err, "line %d", lineNo)
		}
		parents = append(parents[:depth], id)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read tree")
	}
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no dependency tree found")
	}
	return t, nil
}

// ImportMavenTree reads "mvn dependency:tree" output from the file at path.
func ImportMavenTree(path string) (*tree.Tree, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMavenTree(f)
}

func stripLogPrefix(line string) string {
	line = strings.TrimRight(line, " \t\r")
	for _, p := range []string{"[INFO] ", "[WARNING] ", "[DEBUG] "} {
		if rest, ok := strings.CutPrefix(line, p); ok {
			return rest
		}
	}
	if line == "[INFO]" {
		return ""
	}
	return line
}

// splitBranch measures the tree prefix of line. Depth 1 is a direct child
// of the root.
func splitBranch(line string) (depth int, rest string, ok bool) {
	for i := 0; i+branchWidth <= len(line); i += branchWidth {
		switch unit := line[i : i+branchWidth]; unit {
		case "+- ", "\\- ":
			return i/branchWidth + 1, line[i+branchWidth:], true
		case "|  ", "   ":
		default:
			return 0, "", false
		}
	}
	return 0, "", false
}

// parseEntry parses "g:a:type[:classifier]:v[:scope]" with optional
// verbose decorations: surrounding parentheses and trailing notes such as
// " - omitted for duplicate" or " (optional)".
func parseEntry(s string) (artifact.Coordinate, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	if i := strings.IndexAny(s, " )"); i >= 0 {
		s = s[:i]
	}
	if strings.Count(s, ":") < 3 {
		return artifact.Coordinate{}, false
	}
	c, err := artifact.Parse(s)
	if err != nil {
		return artifact.Coordinate{}, false
	}
	return c, true
}
