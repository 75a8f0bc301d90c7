package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/cache"
	"github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/integrations/maven"
	"github.com/matzehuels/converge/pkg/tree"
)

// fakeRepo serves POM documents keyed by "g:a:v".
type fakeRepo struct {
	mu    sync.Mutex
	poms  map[string]string
	calls map[string]int
}

func newFakeRepo(poms map[string]string) *fakeRepo {
	return &fakeRepo{poms: poms, calls: map[string]int{}}
}

func (f *fakeRepo) FetchPOM(_ context.Context, c artifact.Coordinate, _ bool) (*maven.POM, error) {
	f.mu.Lock()
	f.calls[c.String()]++
	f.mu.Unlock()
	doc, ok := f.poms[c.String()]
	if !ok {
		return nil, errors.New(errors.ErrCodeArtifactNotFound, "%s", c)
	}
	return maven.ParsePOM([]byte(doc))
}

// pom renders a minimal POM; deps are "g:a:v[:scope[:optional]]".
func pom(coord string, deps ...string) string {
	c := artifact.MustParse(coord)
	var b strings.Builder
	fmt.Fprintf(&b, "<project><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version><dependencies>",
		c.GroupID, c.ArtifactID, c.Version)
	for _, d := range deps {
		p := strings.Split(d, ":")
		fmt.Fprintf(&b, "<dependency><groupId>%s</groupId><artifactId>%s</artifactId>", p[0], p[1])
		if len(p) > 2 && p[2] != "" {
			fmt.Fprintf(&b, "<version>%s</version>", p[2])
		}
		if len(p) > 3 {
			fmt.Fprintf(&b, "<scope>%s</scope>", p[3])
		}
		if len(p) > 4 {
			b.WriteString("<optional>true</optional>")
		}
		b.WriteString("</dependency>")
	}
	b.WriteString("</dependencies></project>")
	return b.String()
}

// render prints the tree one node per line, indented by depth.
func render(t *tree.Tree) string {
	var b strings.Builder
	t.Walk(func(id tree.NodeID) {
		c := t.Coordinate(id)
		fmt.Fprintf(&b, "%s%s", strings.Repeat("  ", t.Depth(id)), c)
		if c.Scope != "" && c.Scope != "compile" {
			fmt.Fprintf(&b, " (%s)", c.Scope)
		}
		b.WriteByte('\n')
	})
	return b.String()
}

func TestResolve(t *testing.T) {
	repo := newFakeRepo(map[string]string{
		"com:app:1.0": pom("com:app:1.0",
			"com:libA:1.0", "com:libB:1.0", "junit:junit:4.13:test", "com:rt:1.0:runtime"),
		"com:libA:1.0":          pom("com:libA:1.0", "commons-lang:commons-lang:2.1"),
		"com:libB:1.0":          pom("com:libB:1.0", "commons-lang:commons-lang:2.6", "com:hidden:1.0:test", "com:opt:1.0:compile:optional"),
		"commons-lang:commons-lang:2.1": pom("commons-lang:commons-lang:2.1"),
		"commons-lang:commons-lang:2.6": pom("commons-lang:commons-lang:2.6"),
		"com:rt:1.0":            pom("com:rt:1.0", "com:rtdep:1.0"),
		"com:rtdep:1.0":         pom("com:rtdep:1.0"),
	})

	got, err := New(repo).Resolve(context.Background(), artifact.MustParse("com:app:1.0"), Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := `com:app:1.0
  com:libA:1.0
    commons-lang:commons-lang:2.1
  com:libB:1.0
    commons-lang:commons-lang:2.6
  com:rt:1.0 (runtime)
    com:rtdep:1.0 (runtime)
`
	if s := render(got); s != want {
		t.Errorf("tree:\n%s\nwant:\n%s", s, want)
	}
	if repo.calls["com:app:1.0"] != 1 {
		t.Errorf("root fetched %d times", repo.calls["com:app:1.0"])
	}
}

func TestResolveScopes(t *testing.T) {
	repo := newFakeRepo(map[string]string{
		"com:app:1.0":   pom("com:app:1.0", "junit:junit:4.13:test"),
		"junit:junit:4.13": pom("junit:junit:4.13", "org.hamcrest:hamcrest-core:1.3"),
		"org.hamcrest:hamcrest-core:1.3": pom("org.hamcrest:hamcrest-core:1.3"),
	})
	got, err := New(repo).Resolve(context.Background(), artifact.MustParse("com:app:1.0"),
		Options{Scopes: []string{"compile", "test"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "com:app:1.0\n  junit:junit:4.13 (test)\n    org.hamcrest:hamcrest-core:1.3 (test)\n"
	if s := render(got); s != want {
		t.Errorf("tree:\n%s\nwant:\n%s", s, want)
	}
}

func TestResolveCycleAndDepth(t *testing.T) {
	repo := newFakeRepo(map[string]string{
		"com:a:1": pom("com:a:1", "com:b:1"),
		"com:b:1": pom("com:b:1", "com:c:1"),
		"com:c:1": pom("com:c:1", "com:a:2"),
		"com:a:2": pom("com:a:2", "com:b:1"),
	})

	t.Run("cycle", func(t *testing.T) {
		got, err := New(repo).Resolve(context.Background(), artifact.MustParse("com:a:1"), Options{})
		if err != nil {
			t.Fatal(err)
		}
		want := "com:a:1\n  com:b:1\n    com:c:1\n      com:a:2\n"
		if s := render(got); s != want {
			t.Errorf("tree:\n%s\nwant:\n%s", s, want)
		}
	})

	t.Run("max depth", func(t *testing.T) {
		got, err := New(repo).Resolve(context.Background(), artifact.MustParse("com:a:1"), Options{MaxDepth: 2})
		if err != nil {
			t.Fatal(err)
		}
		want := "com:a:1\n  com:b:1\n    com:c:1\n"
		if s := render(got); s != want {
			t.Errorf("tree:\n%s\nwant:\n%s", s, want)
		}
	})

	t.Run("max nodes", func(t *testing.T) {
		var mu sync.Mutex
		var logs []string
		got, err := New(repo).Resolve(context.Background(), artifact.MustParse("com:a:1"), Options{
			MaxNodes: 2,
			Logger: func(f string, args ...any) {
				mu.Lock()
				logs = append(logs, fmt.Sprintf(f, args...))
				mu.Unlock()
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		if got.Len() != 2 {
			t.Errorf("Len = %d, want 2", got.Len())
		}
		if len(logs) == 0 || !strings.Contains(logs[len(logs)-1], "node limit") {
			t.Errorf("logs = %v", logs)
		}
	})
}

func TestResolveFetchFailureKeepsLeaf(t *testing.T) {
	repo := newFakeRepo(map[string]string{
		"com:app:1.0": pom("com:app:1.0", "com:gone:1.0", "com:ok:1.0"),
		"com:ok:1.0":  pom("com:ok:1.0"),
	})
	var mu sync.Mutex
	var logs []string
	got, err := New(repo).Resolve(context.Background(), artifact.MustParse("com:app:1.0"), Options{
		Logger: func(f string, args ...any) {
			mu.Lock()
			defer mu.Unlock()
			logs = append(logs, fmt.Sprintf(f, args...))
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "com:app:1.0\n  com:gone:1.0\n  com:ok:1.0\n"
	if s := render(got); s != want {
		t.Errorf("tree:\n%s\nwant:\n%s", s, want)
	}
	if len(logs) != 1 || !strings.Contains(logs[0], "com:gone:1.0") {
		t.Errorf("logs = %v", logs)
	}
}

func TestResolveTreeCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	root := artifact.MustParse("com:app:1.0")

	repo := newFakeRepo(map[string]string{
		"com:app:1.0": pom("com:app:1.0", "com:lib:1.0"),
		"com:lib:1.0": pom("com:lib:1.0"),
	})
	first, err := New(repo).WithTreeCache(c, time.Hour).Resolve(ctx, root, Options{})
	if err != nil {
		t.Fatal(err)
	}

	empty := newFakeRepo(nil)
	r := New(empty).WithTreeCache(c, time.Hour)
	second, err := r.Resolve(ctx, root, Options{})
	if err != nil {
		t.Fatalf("cached Resolve: %v", err)
	}
	if render(second) != render(first) {
		t.Errorf("cached tree:\n%s\nwant:\n%s", render(second), render(first))
	}
	if len(empty.calls) != 0 {
		t.Errorf("cache hit still fetched: %v", empty.calls)
	}

	if _, err := r.Resolve(ctx, root, Options{MaxDepth: 1}); err == nil {
		t.Error("different options should miss the cache")
	}
	if _, err := r.Resolve(ctx, root, Options{Refresh: true}); err == nil {
		t.Error("refresh should bypass the cache")
	}
}

func TestResolveTreeCacheSkipsIncomplete(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	root := artifact.MustParse("com:app:1.0")

	repo := newFakeRepo(map[string]string{
		"com:app:1.0": pom("com:app:1.0", "com:gone:1.0"),
	})
	if _, err := New(repo).WithTreeCache(c, time.Hour).Resolve(ctx, root, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := New(repo).WithTreeCache(c, time.Hour).Resolve(ctx, root, Options{}); err != nil {
		t.Fatal(err)
	}
	if repo.calls["com:app:1.0"] != 2 {
		t.Errorf("root fetched %d times, want 2", repo.calls["com:app:1.0"])
	}
}

func TestResolveRootFailure(t *testing.T) {
	_, err := New(newFakeRepo(nil)).Resolve(context.Background(), artifact.MustParse("com:none:1"), Options{})
	if !errors.Is(err, errors.ErrCodeArtifactNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestResolveCancelled(t *testing.T) {
	repo := newFakeRepo(map[string]string{"com:a:1": pom("com:a:1", "com:b:1")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(repo).Resolve(ctx, artifact.MustParse("com:a:1"), Options{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestResolveManagementAndExclusions(t *testing.T) {
	repo := newFakeRepo(map[string]string{
		"com:lib:1.0": `<project><groupId>com</groupId><artifactId>lib</artifactId><version>1.0</version>
<dependencies>
  <dependency><groupId>commons-lang</groupId><artifactId>commons-lang</artifactId><version>2.1</version></dependency>
  <dependency><groupId>org.log</groupId><artifactId>log</artifactId><version>1.0</version></dependency>
</dependencies></project>`,
		"commons-lang:commons-lang:2.6": pom("commons-lang:commons-lang:2.6"),
		"org.log:log:1.0":               pom("org.log:log:1.0"),
	})

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pom.xml"), `<project>
  <parent><groupId>com</groupId><artifactId>parent</artifactId><version>1</version></parent>
  <artifactId>app</artifactId>
  <dependencies>
    <dependency>
      <groupId>com</groupId><artifactId>lib</artifactId>
      <exclusions><exclusion><groupId>org.log</groupId><artifactId>*</artifactId></exclusion></exclusions>
    </dependency>
  </dependencies>
</project>`)
	writeFile(t, filepath.Join(dir, "..", "pom.xml"), `<project>
  <groupId>com</groupId><artifactId>parent</artifactId><version>1</version>
  <properties><cl.version>2.6</cl.version></properties>
  <dependencyManagement><dependencies>
    <dependency><groupId>com</groupId><artifactId>lib</artifactId><version>1.0</version></dependency>
    <dependency><groupId>commons-lang</groupId><artifactId>commons-lang</artifactId><version>${cl.version}</version></dependency>
  </dependencies></dependencyManagement>
</project>`)

	got, err := New(repo).ResolveFile(context.Background(), filepath.Join(dir, "pom.xml"), Options{})
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	want := "com:app:1\n  com:lib:1.0\n    commons-lang:commons-lang:2.6\n"
	if s := render(got); s != want {
		t.Errorf("tree:\n%s\nwant:\n%s", s, want)
	}
	if repo.calls["com:parent:1"] != 0 {
		t.Error("local parent should not be fetched")
	}
}

func TestResolveFileErrors(t *testing.T) {
	r := New(newFakeRepo(nil))
	ctx := context.Background()

	if _, err := r.ResolveFile(ctx, filepath.Join(t.TempDir(), "pom.xml"), Options{}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}

	bad := filepath.Join(t.TempDir(), "pom.xml")
	writeFile(t, bad, "<project>")
	if _, err := r.ResolveFile(ctx, bad, Options{}); !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("malformed: err = %v", err)
	}

	if _, err := r.ResolveFile(ctx, filepath.Join(t.TempDir(), ".hidden"), Options{}); !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("hidden: err = %v", err)
	}
}

func TestPropagate(t *testing.T) {
	tests := []struct{ parent, scope, want string }{
		{"compile", "compile", "compile"},
		{"compile", "runtime", "runtime"},
		{"runtime", "compile", "runtime"},
		{"test", "compile", "test"},
		{"provided", "runtime", "provided"},
		{"", "runtime", "runtime"},
	}
	for _, tt := range tests {
		if got := propagate(tt.parent, tt.scope); got != tt.want {
			t.Errorf("propagate(%q, %q) = %q, want %q", tt.parent, tt.scope, got, tt.want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
