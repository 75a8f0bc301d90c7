package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/tree"
)

const verboseTree = `[INFO] Scanning for projects...
[INFO]
[INFO] ------------------------< com.example:app >-------------------------
[INFO] Building app 1.0
[INFO] --- maven-dependency-plugin:3.6.1:tree (default-cli) @ app ---
[INFO] com.example:app:jar:1.0
[INFO] +- com.example:libA:jar:1.0:compile
[INFO] |  \- commons-lang:commons-lang:jar:2.1:compile
[INFO] +- com.example:libB:jar:1.0:runtime
[INFO] |  \- (commons-lang:commons-lang:jar:2.6:runtime - omitted for conflict with 2.1)
[INFO] \- org.example:native:jar:linux-x86_64:3.0:compile (optional)
[INFO]    \- org.example:deep:jar:1.1:compile
[INFO] ------------------------------------------------------------------------
[INFO] BUILD SUCCESS
`

// outline renders "depth coordinate scope" per node in pre-order.
func outline(t *tree.Tree) string {
	var b strings.Builder
	t.Walk(func(id tree.NodeID) {
		c := t.Coordinate(id)
		b.WriteString(strings.Repeat(".", t.Depth(id)))
		b.WriteString(c.String())
		if c.Scope != "" {
			b.WriteString(" " + c.Scope)
		}
		b.WriteByte('\n')
	})
	return b.String()
}

func TestReadMavenTree(t *testing.T) {
	got, err := ReadMavenTree(strings.NewReader(verboseTree))
	if err != nil {
		t.Fatalf("ReadMavenTree: %v", err)
	}
	want := `com.example:app:1.0
.com.example:libA:1.0 compile
..commons-lang:commons-lang:2.1 compile
.com.example:libB:1.0 runtime
..commons-lang:commons-lang:2.6 runtime
.org.example:native:3.0 compile
..org.example:deep:1.1 compile
`
	if s := outline(got); s != want {
		t.Errorf("tree:\n%s\nwant:\n%s", s, want)
	}

	native := got.Coordinate(got.Children(got.Root())[2])
	if native.Classifier != "linux-x86_64" || native.Type != "jar" {
		t.Errorf("native = %+v", native)
	}
}

func TestReadMavenTreePlain(t *testing.T) {
	in := "g:root:pom:1\n+- g:a:jar:1:compile\n\\- g:b:jar:1:test\n   +- g:c:jar:1:test\n   \\- g:d:jar:1:test\n"
	got, err := ReadMavenTree(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 5 {
		t.Errorf("Len = %d, want 5", got.Len())
	}
	b := got.Children(got.Root())[1]
	if len(got.Children(b)) != 2 {
		t.Errorf("g:b children = %d", len(got.Children(b)))
	}
}

func TestReadMavenTreeErrors(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"no root":      "[INFO] BUILD SUCCESS\n",
		"skipped level": "g:r:jar:1\n|  \\- g:a:jar:1:compile\n",
		"bad entry":    "g:r:jar:1\n+- not-a-coordinate\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadMavenTree(strings.NewReader(in))
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("err = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig, err := ReadMavenTree(strings.NewReader(verboseTree))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(orig, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if outline(got) != outline(orig) {
		t.Errorf("round trip:\n%s\nwant:\n%s", outline(got), outline(orig))
	}
	for id := range got.Len() {
		if got.Coordinate(tree.NodeID(id)) != orig.Coordinate(tree.NodeID(id)) {
			t.Errorf("node %d: %+v != %+v", id, got.Coordinate(tree.NodeID(id)), orig.Coordinate(tree.NodeID(id)))
		}
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"coordinate": `, errors.ErrCodeInvalidFormat},
		{"missing coordinate", `{"children": []}`, errors.ErrCodeInvalidNode},
		{"bad child", `{"coordinate": "g:a:1", "children": [{"coordinate": ":x:1"}]}`, errors.ErrCodeInvalidNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		head string
		want Format
	}{
		{"tree.json", "", FormatJSON},
		{"pom.xml", "", FormatPOM},
		{"deps", "  {\"coordinate\"", FormatJSON},
		{"deps", "<?xml version", FormatPOM},
		{"deps.txt", "[INFO] g:a:jar:1", FormatMavenTree},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path, []byte(tt.head)); got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %q, want %q", tt.path, tt.head, got, tt.want)
		}
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	root, _ := tree.New(artifact.MustParse("g:root:1"))
	_, _ = root.Add(root.Root(), artifact.MustParse("g:a:1"))

	jsonPath := filepath.Join(dir, "tree.json")
	if err := ExportJSON(root, jsonPath); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	txtPath := filepath.Join(dir, "tree.txt")
	if err := os.WriteFile(txtPath, []byte(verboseTree), 0o644); err != nil {
		t.Fatal(err)
	}
	pomPath := filepath.Join(dir, "pom.xml")
	if err := os.WriteFile(pomPath, []byte("<project/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got, err := Import(jsonPath); err != nil || got.Len() != 2 {
		t.Errorf("Import(json) = %v, %v", got, err)
	}
	if got, err := Import(txtPath); err != nil || got.Len() != 7 {
		t.Errorf("Import(txt) = %v, %v", got, err)
	}
	if _, err := Import(pomPath); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Import(pom) err = %v", err)
	}
	if _, err := Import(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Import(missing) err = %v", err)
	}
	if _, err := Import(""); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Import(\"\") err = %v", err)
	}
}
