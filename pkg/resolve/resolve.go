package resolve

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/cache"
	"github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/integrations/maven"
	cio "github.com/matzehuels/converge/pkg/io"
	"github.com/matzehuels/converge/pkg/observability"
	"github.com/matzehuels/converge/pkg/tree"
)

// Fetcher retrieves the POM of one exact artifact version.
// [maven.Client] implements it.
type Fetcher interface {
	FetchPOM(ctx context.Context, coord artifact.Coordinate, refresh bool) (*maven.POM, error)
}

// Resolver builds dependency trees from POMs served by a Fetcher.
type Resolver struct {
	fetcher Fetcher

	trees cache.Cache
	ttl   time.Duration
	keys  cache.Keyer
}

// New creates a Resolver.
func New(f Fetcher) *Resolver {
	return &Resolver{fetcher: f, keys: cache.NewKeyer()}
}

// WithTreeCache makes Resolve keep finished trees in c for ttl and serve
// later resolutions of the same coordinate and options from it. Trees that
// logged any problem while resolving are not stored. ResolveFile never
// uses the tree cache.
func (r *Resolver) WithTreeCache(c cache.Cache, ttl time.Duration) *Resolver {
	r.trees, r.ttl = c, ttl
	return r
}

// Resolve fetches the POM of coord and builds its dependency tree.
func (r *Resolver) Resolve(ctx context.Context, coord artifact.Coordinate, opts Options) (*tree.Tree, error) {
	opts = opts.WithDefaults()
	if r.trees == nil {
		return r.resolve(ctx, coord, opts)
	}

	key := r.keys.TreeKey(coord.String(), opts.MaxDepth, opts.MaxNodes, opts.Scopes)
	hooks := observability.Cache()
	if !opts.Refresh {
		if t, ok := r.cachedTree(ctx, key); ok {
			hooks.OnCacheHit(ctx, "tree")
			return t, nil
		}
		hooks.OnCacheMiss(ctx, "tree")
	}

	var problems atomic.Int32
	logf := opts.Logger
	opts.Logger = func(format string, args ...any) {
		problems.Add(1)
		logf(format, args...)
	}
	t, err := r.resolve(ctx, coord, opts)
	if err != nil || problems.Load() > 0 {
		return t, err
	}

	var buf bytes.Buffer
	if err := cio.WriteJSON(t, &buf); err == nil {
		if err := r.trees.Set(ctx, key, buf.Bytes(), r.ttl); err == nil {
			hooks.OnCacheSet(ctx, "tree", buf.Len())
		}
	}
	return t, nil
}

func (r *Resolver) resolve(ctx context.Context, coord artifact.Coordinate, opts Options) (*tree.Tree, error) {
	return r.observe(ctx, coord.String(), func(l *loader) (*maven.POM, error) {
		return l.effective(ctx, coord, 0)
	}, opts)
}

// cachedTree reads a stored tree. Unreadable entries count as misses.
func (r *Resolver) cachedTree(ctx context.Context, key string) (*tree.Tree, bool) {
	data, ok, err := r.trees.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	t, err := cio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	return t, true
}

// ResolveFile builds the dependency tree of a local pom.xml. Parent POMs
// are looked up on disk first, then in the repository.
func (r *Resolver) ResolveFile(ctx context.Context, path string, opts Options) (*tree.Tree, error) {
	opts = opts.WithDefaults()
	if err := errors.ValidateManifestFilename(filepath.Base(path)); err != nil {
		return nil, err
	}
	return r.observe(ctx, path, func(l *loader) (*maven.POM, error) {
		pom, err := l.local(ctx, path, 0)
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
		}
		return pom, err
	}, opts)
}

func (r *Resolver) observe(ctx context.Context, name string, root func(*loader) (*maven.POM, error), opts Options) (*tree.Tree, error) {
	hooks := observability.Check()
	hooks.OnResolveStart(ctx, name)
	start := time.Now()

	l := newLoader(r.fetcher, opts.Refresh, opts.Logger)
	t, err := r.build(ctx, l, root, opts)

	n := 0
	if t != nil {
		n = t.Len()
	}
	hooks.OnResolveComplete(ctx, name, n, time.Since(start), err)
	return t, err
}

type job struct {
	id    tree.NodeID
	pom   *maven.POM
	excls []maven.Exclusion
}

func (r *Resolver) build(ctx context.Context, l *loader, root func(*loader) (*maven.POM, error), opts Options) (*tree.Tree, error) {
	rootPOM, err := root(l)
	if err != nil {
		return nil, err
	}
	t, err := tree.New(rootPOM.Coordinate())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "root pom")
	}

	level := []job{{id: t.Root(), pom: rootPOM}}
	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, full := expand(t, rootPOM, level, opts)
		if err := fetchAll(ctx, l, t, next, opts); err != nil {
			return nil, err
		}
		if full {
			opts.Logger("node limit %d reached, tree truncated", opts.MaxNodes)
			break
		}
		level = next
	}
	return t, nil
}

// expand adds the children of every job in level to t and returns the jobs
// that still need their POM loaded. full reports that MaxNodes was hit.
func expand(t *tree.Tree, root *maven.POM, level []job, opts Options) (next []job, full bool) {
	for _, j := range level {
		if j.pom == nil {
			continue
		}
		parent := t.Coordinate(j.id)
		depth := t.Depth(j.id)

		for _, d := range j.pom.ResolvedDependencies() {
			scope := d.EffectiveScope()
			if depth == 0 {
				if !slices.Contains(opts.Scopes, scope) {
					continue
				}
			} else {
				if !transitive(scope) || d.IsOptional() {
					continue
				}
				if m, ok := root.Managed(d.Key()); ok && m.Version != "" {
					d.Version = m.Version
				}
			}

			c := d.Coordinate()
			if excluded(j.excls, c) {
				continue
			}
			if depth > 0 {
				c.Scope = propagate(parent.Scope, scope)
			}
			if t.Len() >= opts.MaxNodes {
				return next, true
			}

			id, err := t.Add(j.id, c)
			if err != nil {
				opts.Logger("skip dependency of %s: %v", parent, err)
				continue
			}
			switch {
			case c.Version == "":
				opts.Logger("no version for %s in %s", c.Key(), parent)
			case t.Depth(id) >= opts.MaxDepth:
			case onAncestorPath(t, j.id, c.Key()):
			default:
				next = append(next, job{id: id, excls: append(slices.Clone(j.excls), d.Exclusions...)})
			}
		}
	}
	return next, false
}

// fetchAll loads the effective POM of every job concurrently. Failures are
// logged and leave the job's node as a leaf.
func fetchAll(ctx context.Context, l *loader, t *tree.Tree, jobs []job, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range jobs {
		c := t.Coordinate(jobs[i].id)
		g.Go(func() error {
			pom, err := l.effective(gctx, artifact.Coordinate{GroupID: c.GroupID, ArtifactID: c.ArtifactID, Version: c.Version}, 0)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				opts.Logger("fetch failed: %s: %v", c, err)
				return nil
			}
			jobs[i].pom = pom
			return nil
		})
	}
	return g.Wait()
}

func excluded(excls []maven.Exclusion, c artifact.Coordinate) bool {
	for _, e := range excls {
		if e.Matches(c) {
			return true
		}
	}
	return false
}

// onAncestorPath reports whether key is held by id or any of its ancestors.
func onAncestorPath(t *tree.Tree, id tree.NodeID, key string) bool {
	for cur, ok := id, true; ok; cur, ok = t.Parent(cur) {
		if t.Coordinate(cur).Key() == key {
			return true
		}
	}
	return false
}
