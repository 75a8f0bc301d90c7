// Package render groups the visual outputs of converge.
//
// The [dot] subpackage draws conflict paths as Graphviz graphs (DOT, SVG,
// PNG). Terminal output lives with the CLI.
//
// [dot]: github.com/matzehuels/converge/pkg/render/dot
package render
