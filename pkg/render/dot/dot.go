package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/converge/pkg/convergence"
	"github.com/matzehuels/converge/pkg/tree"
)

// Options configures graph generation.
type Options struct {
	// Full draws every node of the tree. When false, only the paths from
	// the root to conflicting occurrences are drawn.
	Full bool
}

// palette colors conflicting artifacts, one color per conflict.
var palette = []string{"#e4572e", "#f3a712", "#a51c30", "#5b2a86", "#1b998b", "#2e86ab"}

// ToDOT converts a tree and its conflicts to Graphviz DOT.
//
// Identical coordinates are merged into one graph node, so the drawing is
// the dependency graph behind the tree. Nodes of a conflicting artifact
// share a fill color and carry their version in bold.
func ToDOT(t *tree.Tree, conflicts []convergence.Conflict, opts Options) string {
	colors := map[string]string{}
	for i, c := range conflicts {
		colors[c.Key] = palette[i%len(palette)]
	}

	keep := make([]bool, t.Len())
	if opts.Full {
		for i := range keep {
			keep[i] = true
		}
	} else {
		keep[t.Root()] = true
		for _, c := range conflicts {
			for _, occ := range c.Occurrences {
				for _, id := range t.Path(occ) {
					keep[id] = true
				}
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	seen := map[string]bool{}
	t.Walk(func(id tree.NodeID) {
		if !keep[id] {
			return
		}
		c := t.Coordinate(id)
		name := c.String()
		if seen[name] {
			return
		}
		seen[name] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(fmtAttrs(c.GroupID, c.ArtifactID, c.Version, colors[c.Key()]), ", "))
	})

	buf.WriteString("\n")
	edges := map[[2]string]bool{}
	t.Walk(func(id tree.NodeID) {
		parent, ok := t.Parent(id)
		if !ok || !keep[id] {
			return
		}
		e := [2]string{t.Coordinate(parent).String(), t.Coordinate(id).String()}
		if edges[e] {
			return
		}
		edges[e] = true
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	})

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(group, artifact, version, color string) []string {
	if color == "" {
		return []string{fmt.Sprintf("label=%q", group+":"+artifact+"\n"+version)}
	}
	label := fmt.Sprintf("<%s:%s<br/><b>%s</b>>", escape(group), escape(artifact), escape(version))
	return []string{"label=" + label, fmt.Sprintf("fillcolor=%q", color), "fontcolor=white"}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return htmlEscaper.Replace(s) }

// Format is a Graphviz output format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Render lays out a DOT graph with Graphviz and encodes it as format.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gvFormat := graphviz.SVG
	if format == FormatPNG {
		gvFormat = graphviz.PNG
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == FormatPNG {
		return buf.Bytes(), nil
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderSVG renders a DOT graph to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, FormatSVG)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one whose
// viewBox starts at the origin, so the SVG scales cleanly in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
