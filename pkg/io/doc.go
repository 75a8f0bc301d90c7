// Package io reads and writes dependency trees.
//
// # Overview
//
// Trees enter the checker either from a resolver or from a file produced
// elsewhere. This package handles the file side in two formats:
//
//   - JSON, a nested tree that round-trips everything a [tree.Tree] holds
//   - the text printed by "mvn dependency:tree", so an existing Maven build
//     can be checked without resolving anything again
//
// # JSON Format
//
// Each node is an object with a required "coordinate" ("g:a:v") and
// optional "type", "classifier", "scope" and "children":
//
//	{
//	  "coordinate": "com.example:app:1.0",
//	  "children": [
//	    {"coordinate": "com.example:libA:1.0", "scope": "compile", "children": [
//	      {"coordinate": "commons-lang:commons-lang:2.1", "scope": "compile"}
//	    ]}
//	  ]
//	}
//
// Decoding is bounded by encoding/json's nesting limit.
//
// # Maven Tree Format
//
// [ReadMavenTree] accepts console output with or without "[INFO] "
// prefixes, including verbose output where omitted nodes are wrapped in
// parentheses:
//
//	[INFO] com.example:app:jar:1.0
//	[INFO] +- com.example:libA:jar:1.0:compile
//	[INFO] |  \- commons-lang:commons-lang:jar:2.1:compile
//	[INFO] \- com.example:libB:jar:1.0:compile
//	[INFO]    \- (commons-lang:commons-lang:jar:2.6:compile - omitted for conflict with 2.1)
//
// Omitted nodes are kept: a convergence check needs every occurrence. Only
// the first tree in the input is read.
//
// # Import
//
// [Import] picks the reader from the file name and content; see
// [DetectFormat].
package io
