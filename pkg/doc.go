// Package pkg provides the libraries behind converge, a Maven dependency
// convergence checker.
//
// # Overview
//
// A dependency tree may pull the same artifact in at several versions
// through different paths. converge walks the tree once, groups nodes by
// groupId:artifactId and reports every artifact that does not converge
// on a single version, with the full path to each occurrence.
//
// # Architecture
//
// The typical data flow:
//
//	pom.xml / dependency:tree output / tree JSON
//	         ↓
//	    [resolve] or [io] (obtain a tree)
//	         ↓
//	    [tree] (arena of coordinates)
//	         ↓
//	    [convergence] (filter rules, version map, reports)
//	         ↓
//	    text, JSON or [render/dot] graph
//
// # Quick Start
//
//	import (
//	    "context"
//
//	    "github.com/matzehuels/converge/pkg/cache"
//	    "github.com/matzehuels/converge/pkg/convergence"
//	    "github.com/matzehuels/converge/pkg/integrations/maven"
//	    "github.com/matzehuels/converge/pkg/resolve"
//	)
//
//	client := maven.NewClient(cache.NewNullCache(), maven.DefaultRepository, 0)
//	t, err := resolve.New(client).ResolveFile(ctx, "pom.xml", resolve.Options{})
//	if err != nil {
//	    return err
//	}
//	res, err := convergence.Check(t, convergence.Options{Excludes: []string{"org.slf4j"}})
//	if err != nil {
//	    return err
//	}
//	for _, msg := range res.Messages {
//	    fmt.Println(msg)
//	}
//
// # Main Packages
//
//   - [artifact]: Maven coordinates and their parsing
//   - [tree]: arena dependency tree with parent back-references
//   - [pattern]: groupId:artifactId include/exclude patterns
//   - [convergence]: the check, its reports and the aggregate error
//   - [resolve]: building trees from POMs through a repository
//   - [integrations/maven]: POM model and repository client
//   - [io]: JSON and dependency:tree import/export
//   - [render/dot]: Graphviz output of conflict paths
//   - [cache]: file, Redis and null caches for fetched POMs
//   - [config]: TOML/YAML rule files
//   - [observability]: hooks and Prometheus metrics
//   - [errors]: structured errors with codes
//   - [buildinfo]: version information set at build time
package pkg
