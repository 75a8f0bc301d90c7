package io

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/tree"
)

// Format identifies an input file kind.
type Format string

const (
	FormatJSON      Format = "json"
	FormatMavenTree Format = "mvn-tree"
	FormatPOM       Format = "pom"
)

// DetectFormat classifies an input from its name and leading bytes.
// ".json" and ".xml" extensions decide on their own; otherwise content
// starting with '{' is JSON, '<' is a POM, and anything else is treated
// as dependency:tree output.
func DetectFormat(path string, head []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".xml", ".pom":
		return FormatPOM
	}
	switch trimmed := bytes.TrimSpace(head); {
	case bytes.HasPrefix(trimmed, []byte("{")):
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatPOM
	default:
		return FormatMavenTree
	}
}

// Sniff reads the start of path and returns its format.
func Sniff(path string) (Format, error) {
	f, err := open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := f.Read(head)
	return DetectFormat(path, head[:n]), nil
}

// Import reads a tree file in JSON or dependency:tree format. POM files are
// rejected with UNSUPPORTED: they need resolving, not importing.
func Import(path string) (*tree.Tree, error) {
	format, err := Sniff(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return ImportJSON(path)
	case FormatMavenTree:
		return ImportMavenTree(path)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "%s is a POM; resolve it instead of importing", path)
	}
}
