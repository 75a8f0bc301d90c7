package maven

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/cache"
	"github.com/matzehuels/converge/pkg/errors"
)

const mylibPOM = `<?xml version="1.0"?>
<project>
  <groupId>org.example</groupId>
  <artifactId>mylib</artifactId>
  <version>1.0.0</version>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>31.0</version>
    </dependency>
  </dependencies>
</project>`

func TestPOMURL(t *testing.T) {
	c := NewClient(nil, "https://repo.example.com/maven2/", 0)
	got := c.POMURL(artifact.MustParse("org.apache.commons:commons-lang3:3.14.0"))
	want := "https://repo.example.com/maven2/org/apache/commons/commons-lang3/3.14.0/commons-lang3-3.14.0.pom"
	if got != want {
		t.Errorf("POMURL = %q, want %q", got, want)
	}
	if NewClient(nil, "", 0).Repository() != DefaultRepository {
		t.Error("empty repository should default to Maven Central")
	}
}

func TestClient_FetchPOM(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/maven2/org/example/mylib/1.0.0/mylib-1.0.0.pom" {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/xml")
			w.Write([]byte(mylibPOM))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	c := NewClient(fc, server.URL+"/maven2", time.Hour)
	ctx := context.Background()
	coord := artifact.MustParse("org.example:mylib:1.0.0")

	for range 2 {
		pom, err := c.FetchPOM(ctx, coord, false)
		if err != nil {
			t.Fatalf("FetchPOM failed: %v", err)
		}
		if pom.Coordinate() != (artifact.Coordinate{GroupID: "org.example", ArtifactID: "mylib", Version: "1.0.0"}) {
			t.Errorf("coordinate = %+v", pom.Coordinate())
		}
		if deps := pom.ResolvedDependencies(); len(deps) != 1 || deps[0].Key() != "com.google.guava:guava" {
			t.Errorf("deps = %+v", deps)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (second fetch cached)", hits.Load())
	}

	if _, err := c.FetchPOM(ctx, coord, true); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("refresh should refetch, hits = %d", hits.Load())
	}
}

func TestClient_FetchPOM_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/org/bad/bad/1/bad-1.pom":
			w.Write([]byte("not xml at all <"))
		case "/org/denied/denied/1/denied-1.pom":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewClient(nil, server.URL, 0)
	tests := []struct {
		coord string
		code  errors.Code
	}{
		{"org.missing:artifact:1.0", errors.ErrCodeArtifactNotFound},
		{"org.bad:bad:1", errors.ErrCodeInvalidManifest},
		{"org.denied:denied:1", errors.ErrCodeNetwork},
		{"org.example:noversion", errors.ErrCodeInvalidNode},
	}
	for _, tt := range tests {
		t.Run(tt.coord, func(t *testing.T) {
			_, err := c.FetchPOM(context.Background(), artifact.MustParse(tt.coord), false)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}
