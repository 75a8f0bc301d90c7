package resolve

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/integrations/maven"
)

// maxParentDepth bounds parent and BOM chains, which also breaks cycles.
const maxParentDepth = 10

// memoSize bounds the effective POMs kept in memory during one resolution.
// Evicted entries are rebuilt from the repository cache.
const memoSize = 4096

// loader builds effective POMs (parents inherited, BOMs imported) and
// remembers them per coordinate for the lifetime of one resolution.
type loader struct {
	fetch   Fetcher
	refresh bool
	logf    func(string, ...any)

	done *lru.Cache[string, loaded]
}

type loaded struct {
	pom *maven.POM
	err error
}

func newLoader(f Fetcher, refresh bool, logf func(string, ...any)) *loader {
	done, _ := lru.New[string, loaded](memoSize) // only fails for a non-positive size
	return &loader{fetch: f, refresh: refresh, logf: logf, done: done}
}

// effective returns the effective POM of c. Results other than context
// errors are memoized.
func (l *loader) effective(ctx context.Context, c artifact.Coordinate, depth int) (*maven.POM, error) {
	key := c.String()
	if r, ok := l.done.Get(key); ok {
		return r.pom, r.err
	}

	pom, err := l.fetch.FetchPOM(ctx, c, l.refresh)
	if err == nil {
		pom = clone(pom)
		l.complete(ctx, pom, "", depth)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	l.done.Add(key, loaded{pom: pom, err: err})
	return pom, err
}

// local reads a POM from disk and completes it, preferring parents found
// on disk through <relativePath>.
func (l *loader) local(ctx context.Context, path string, depth int) (*maven.POM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pom, err := maven.ParsePOM(data)
	if err != nil {
		return nil, err
	}
	l.complete(ctx, pom, filepath.Dir(path), depth)
	return pom, nil
}

// complete merges the parent chain and imported BOMs into pom. Failures
// are logged; the POM stays usable with whatever could be merged.
func (l *loader) complete(ctx context.Context, pom *maven.POM, dir string, depth int) {
	if depth >= maxParentDepth {
		l.logf("parent chain too deep at %s", pom.Coordinate())
		return
	}
	if p := pom.Parent; p != nil {
		parent, err := l.parent(ctx, p, dir, depth+1)
		if err != nil {
			l.logf("parent %s of %s: %v", p.Coordinate(), pom.Coordinate(), err)
		} else {
			pom.Inherit(parent)
		}
	}
	for _, imp := range pom.Imports() {
		bom, err := l.effective(ctx, imp.Coordinate(), depth+1)
		if err != nil {
			l.logf("import %s into %s: %v", imp.Coordinate(), pom.Coordinate(), err)
			continue
		}
		pom.Import(bom)
	}
}

func (l *loader) parent(ctx context.Context, p *maven.Parent, dir string, depth int) (*maven.POM, error) {
	if dir != "" {
		if rel := p.LocalPath(); rel != "" {
			path := filepath.Join(dir, rel)
			pom, err := l.local(ctx, path, depth)
			switch {
			case err == nil && pom.Coordinate().Key() == p.GroupID+":"+p.ArtifactID:
				return pom, nil
			case err != nil && !errors.Is(err, os.ErrNotExist):
				l.logf("local parent %s: %v", path, err)
			}
		}
	}
	return l.effective(ctx, p.Coordinate(), depth)
}

// clone copies the parts of pom that completion mutates, so POMs returned
// by a Fetcher may be shared.
func clone(pom *maven.POM) *maven.POM {
	c := *pom
	c.Properties = maps.Clone(pom.Properties)
	c.Dependencies = slices.Clone(pom.Dependencies)
	c.DependencyManagement = slices.Clone(pom.DependencyManagement)
	return &c
}
