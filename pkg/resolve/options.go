package resolve

import (
	"slices"
	"time"
)

const (
	DefaultMaxDepth    = 20               // Default maximum tree depth
	DefaultMaxNodes    = 20000            // Default maximum nodes in one tree
	DefaultConcurrency = 8                // Default concurrent POM fetches
	DefaultCacheTTL    = 7 * 24 * time.Hour // Default POM cache duration
)

// DefaultScopes are the root dependency scopes resolved when none are given.
var DefaultScopes = []string{"compile", "runtime"}

// Options configures tree resolution.
type Options struct {
	MaxDepth    int                  // Maximum depth to expand (default: 20)
	MaxNodes    int                  // Maximum nodes in the tree (default: 20000)
	Scopes      []string             // Root scopes to follow (default: compile, runtime)
	Concurrency int                  // Concurrent POM fetches (default: 8)
	Refresh     bool                 // Bypass cache for fresh data
	Logger      func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = slices.Clone(DefaultScopes)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// propagate returns the scope of a dependency declared with scope below a
// node whose own scope is parent.
func propagate(parent, scope string) string {
	switch parent {
	case "", "compile":
		return scope
	case "runtime":
		if scope == "compile" {
			return "runtime"
		}
		return scope
	default:
		return parent
	}
}

// transitive reports whether a dependency with scope is followed below the root.
func transitive(scope string) bool {
	return scope == "compile" || scope == "runtime"
}
