// Package resolve builds full dependency trees from Maven POMs.
//
// # Overview
//
// A [Resolver] starts at a root POM (a local pom.xml or a coordinate in a
// repository) and fetches every declared dependency's POM level by level.
// The result is a verbose [tree.Tree]: unlike Maven's mediated tree, every
// occurrence of an artifact is kept with the version its declarer asked
// for, which is exactly what a convergence check needs to see.
//
// # Rules
//
//   - Root dependencies are kept when their scope is in [Options.Scopes]
//     (compile and runtime by default).
//   - Below the root, test, provided, system and optional dependencies are
//     skipped, and scopes propagate the way Maven propagates them.
//   - Exclusions declared on a dependency apply to its whole subtree.
//   - The root POM's dependencyManagement overrides transitive versions.
//   - A node whose groupId:artifactId already appears on its ancestor path
//     is kept as a leaf and not expanded.
//   - Nodes at [Options.MaxDepth] are not expanded, and resolution stops
//     adding nodes at [Options.MaxNodes].
//
// POMs of one level are fetched concurrently, bounded by
// [Options.Concurrency]. A failed fetch below the root is reported through
// [Options.Logger] and the node stays in the tree as a leaf; a failure to
// load the root is returned.
//
// # Tree Cache
//
// [Resolver.WithTreeCache] stores trees resolved from a coordinate, keyed by
// the root and the options that shape the tree:
//
//	r := resolve.New(client).WithTreeCache(c, 24*time.Hour)
//	t, err := r.Resolve(ctx, artifact.MustParse("com.example:app:1.0"), resolve.Options{})
package resolve
