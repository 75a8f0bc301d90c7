package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/tree"
)

func TestRenderTree(t *testing.T) {
	tr, err := tree.New(artifact.MustParse("com.example:app:1.0"))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := tr.Add(tr.Root(), artifact.MustParse("org.a:lib-a:jar:1.0:compile"))
	tr.Add(a, artifact.MustParse("org.c:common:jar:1.0:runtime"))
	tr.Add(tr.Root(), artifact.MustParse("org.b:lib-b:jar:2.0:test"))

	out := renderTree(tr, map[string]bool{"org.c:common": true})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}

	wants := []string{"com.example:app:1.0", "org.a:lib-a:1.0", "org.c:common:1.0 (runtime)", "org.b:lib-b:2.0 (test)"}
	for i, want := range wants {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], want)
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[2]), "│") && !strings.Contains(lines[2], "╰──") {
		t.Errorf("nested child not indented under its parent: %q", lines[2])
	}
}

func TestRenderTreeRootOnly(t *testing.T) {
	tr, err := tree.New(artifact.MustParse("com.example:app:1.0"))
	if err != nil {
		t.Fatal(err)
	}
	if got := renderTree(tr, nil); !strings.Contains(got, "com.example:app:1.0") {
		t.Errorf("renderTree() = %q", got)
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "artifact", "artifacts"); got != "artifact" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(3, "artifact", "artifacts"); got != "artifacts" {
		t.Errorf("plural(3) = %q", got)
	}
}
