// Package convergence detects artifacts that appear at more than one version
// in a resolved dependency tree.
//
// # Overview
//
// A check walks a [tree.Tree] once, in pre-order. For every node a [Policy]
// decides whether the node takes part in the check; eligible nodes are fed
// into a [VersionMap] keyed by "groupId:artifactId". After the walk the map
// reports every key whose occurrences disagree, and [BuildReports] renders
// each such conflict as the set of paths from the root to its occurrences:
//
//	Dependency convergence error for commons-lang:commons-lang:2.1 paths to dependency are:
//	+-com.example:app:1.0
//	  +-com.example:libA:1.0
//	    +-commons-lang:commons-lang:2.1
//	and
//	+-com.example:app:1.0
//	  +-com.example:libB:1.0
//	    +-commons-lang:commons-lang:2.4
//
// # Filtering
//
// [Rules] holds include and exclude patterns (see package pattern). With no
// rules every node is checked. Excludes alone remove matching nodes.
// Includes, whenever present, decide on their own: only matching nodes are
// checked, regardless of excludes. This lets a wide exclude such as
// "xerces" coexist with a narrow include such as "xerces:xerces-api".
//
// A node that is filtered out is still traversed; only its own version is
// not recorded.
//
// # Unique Versions
//
// By default a conflict means two occurrences with different version
// strings. With UniqueVersions set, any second occurrence of the same
// artifact is a conflict, even at an identical version.
//
// # Results
//
// Conflicts are data, not errors. [Check] returns a [Result]; [Result.Err]
// turns a failing result into a single CONVERGENCE_VIOLATION error that
// carries every rendered message. [Enforcer] adds the driver policy: log
// each message as a warning, then fail or only warn.
package convergence
