// Package artifact defines Maven artifact coordinates.
//
// A [Coordinate] identifies one artifact at one version. Convergence checks
// group occurrences by [Coordinate.Key] ("groupId:artifactId") and compare
// the Version field across occurrences.
//
// Coordinates parse from the two common textual forms:
//
//	groupId:artifactId:version
//	groupId:artifactId:type[:classifier]:version[:scope]
//
// The second form is what "mvn dependency:tree" prints.
package artifact

import (
	"fmt"
	"strings"

	"github.com/matzehuels/converge/pkg/errors"
)

// Coordinate identifies an artifact at a specific version.
//
// GroupID and ArtifactID form the identity used for matching and conflict
// keying. Type, Classifier and Scope are informational and never take part
// in identity.
type Coordinate struct {
	GroupID    string `json:"group_id"`
	ArtifactID string `json:"artifact_id"`
	Version    string `json:"version"`
	Type       string `json:"type,omitempty"`
	Classifier string `json:"classifier,omitempty"`
	Scope      string `json:"scope,omitempty"`
}

// Key returns the logical identity "groupId:artifactId".
func (c Coordinate) Key() string {
	return c.GroupID + ":" + c.ArtifactID
}

// String returns "groupId:artifactId:version", the form used in reports.
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// Validate reports an INVALID_NODE error if the identity fields are empty or
// contain characters that cannot appear in a coordinate. An empty version is
// accepted: trees imported from manifests may carry unversioned roots.
func (c Coordinate) Validate() error {
	if err := errors.ValidateCoordinate("groupId", c.GroupID); err != nil {
		return err
	}
	if err := errors.ValidateCoordinate("artifactId", c.ArtifactID); err != nil {
		return err
	}
	if c.Version != "" {
		return errors.ValidateCoordinate("version", c.Version)
	}
	return nil
}

// Parse parses a colon-separated coordinate.
//
// Accepted layouts, after trimming whitespace around each segment:
//
//	g:a                      version left empty
//	g:a:v
//	g:a:type:v
//	g:a:type:v:scope         as printed by dependency:tree
//	g:a:type:classifier:v:scope
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var c Coordinate
	switch len(parts) {
	case 2:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1]}
	case 3:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}
	case 4:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Version: parts[3]}
	case 5:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Version: parts[3], Scope: parts[4]}
	case 6:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Classifier: parts[3], Version: parts[4], Scope: parts[5]}
	default:
		return Coordinate{}, errors.New(errors.ErrCodeInvalidNode, "invalid coordinate %q (expected groupId:artifactId[:version])", s)
	}

	if err := c.Validate(); err != nil {
		return Coordinate{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	return c, nil
}

// MustParse is like [Parse] but panics on error. Intended for tests and
// static tables.
func MustParse(s string) Coordinate {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}
