// Package dot draws dependency trees and their convergence conflicts with
// Graphviz.
//
// # Usage
//
//	res, _ := convergence.Check(t, opts)
//	src := dot.ToDOT(t, res.Conflicts, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// By default only the paths that lead to conflicting occurrences are drawn,
// which keeps the picture small for large trees; set [Options.Full] to draw
// everything. Each conflicting artifact gets its own fill color.
//
// [ToDOT] output can also be saved as a .dot file and processed with
// external Graphviz tools.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz, so
// no external binaries are needed.
package dot
