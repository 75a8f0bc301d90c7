package maven

import (
	"encoding/xml"
	"strings"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/errors"
)

// maxInterpolationDepth bounds nested ${...} expansion.
const maxInterpolationDepth = 10

// POM is the subset of a Maven project model needed to walk dependencies.
type POM struct {
	GroupID              string       `xml:"groupId"`
	ArtifactID           string       `xml:"artifactId"`
	Version              string       `xml:"version"`
	Packaging            string       `xml:"packaging"`
	Name                 string       `xml:"name"`
	Description          string       `xml:"description"`
	Parent               *Parent      `xml:"parent"`
	Properties           Properties   `xml:"properties"`
	Dependencies         []Dependency `xml:"dependencies>dependency"`
	DependencyManagement []Dependency `xml:"dependencyManagement>dependencies>dependency"`
}

// Parent references the parent POM.
type Parent struct {
	GroupID      string  `xml:"groupId"`
	ArtifactID   string  `xml:"artifactId"`
	Version      string  `xml:"version"`
	RelativePath *string `xml:"relativePath"`
}

// LocalPath returns the parent POM location relative to the child's
// directory, "../pom.xml" unless overridden. An explicitly empty
// <relativePath/> disables local lookup and returns "".
func (p *Parent) LocalPath() string {
	if p.RelativePath == nil {
		return "../pom.xml"
	}
	rp := strings.TrimSpace(*p.RelativePath)
	if rp != "" && !strings.HasSuffix(rp, ".xml") {
		rp += "/pom.xml"
	}
	return rp
}

// Coordinate returns the parent coordinate.
func (p *Parent) Coordinate() artifact.Coordinate {
	return artifact.Coordinate{GroupID: p.GroupID, ArtifactID: p.ArtifactID, Version: p.Version, Type: "pom"}
}

// Dependency is one <dependency> element.
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version"`
	Type       string      `xml:"type"`
	Classifier string      `xml:"classifier"`
	Scope      string      `xml:"scope"`
	Optional   string      `xml:"optional"`
	Exclusions []Exclusion `xml:"exclusions>exclusion"`
}

// Exclusion removes a transitive dependency below the declaring one.
// Either field may be "*".
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// Matches reports whether the exclusion removes c.
func (e Exclusion) Matches(c artifact.Coordinate) bool {
	return (e.GroupID == "*" || e.GroupID == c.GroupID) &&
		(e.ArtifactID == "*" || e.ArtifactID == c.ArtifactID)
}

// Key returns "groupId:artifactId".
func (d Dependency) Key() string { return d.GroupID + ":" + d.ArtifactID }

// IsOptional reports whether the dependency is marked optional.
func (d Dependency) IsOptional() bool { return strings.TrimSpace(d.Optional) == "true" }

// EffectiveScope returns the declared scope, defaulting to compile.
func (d Dependency) EffectiveScope() string {
	if d.Scope == "" {
		return "compile"
	}
	return d.Scope
}

// Coordinate converts the dependency to an artifact coordinate.
func (d Dependency) Coordinate() artifact.Coordinate {
	return artifact.Coordinate{
		GroupID:    d.GroupID,
		ArtifactID: d.ArtifactID,
		Version:    d.Version,
		Type:       d.Type,
		Classifier: d.Classifier,
		Scope:      d.EffectiveScope(),
	}
}

// Properties holds the <properties> block as a flat map.
type Properties map[string]string

// UnmarshalXML decodes arbitrary child elements into the map.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	m := Properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			m[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			*p = m
			return nil
		}
	}
}

// ParsePOM decodes a POM document. Malformed XML is an INVALID_MANIFEST error.
func ParsePOM(data []byte) (*POM, error) {
	var pom POM
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse pom")
	}
	if pom.ArtifactID == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "pom has no artifactId")
	}
	return &pom, nil
}

// Coordinate returns the project coordinate. groupId and version are
// inherited from the parent when the project omits them.
func (p *POM) Coordinate() artifact.Coordinate {
	c := artifact.Coordinate{
		GroupID:    p.GroupID,
		ArtifactID: p.ArtifactID,
		Version:    p.Version,
		Type:       p.Packaging,
	}
	if p.Parent != nil {
		if c.GroupID == "" {
			c.GroupID = p.Parent.GroupID
		}
		if c.Version == "" {
			c.Version = p.Parent.Version
		}
	}
	c.GroupID = p.Interpolate(c.GroupID)
	c.Version = p.Interpolate(c.Version)
	return c
}

// Inherit merges the parent's properties, dependencies and dependency
// management into p. Values declared by p win. Inherited management entries are interpolated
// against the merged properties, so a child can override a version
// property its parent manages with.
func (p *POM) Inherit(parent *POM) {
	if parent == nil {
		return
	}
	if p.Properties == nil {
		p.Properties = Properties{}
	}
	for k, v := range parent.Properties {
		if _, ok := p.Properties[k]; !ok {
			p.Properties[k] = v
		}
	}
	declared := make(map[string]bool, len(p.Dependencies))
	for _, d := range p.Dependencies {
		declared[d.Key()] = true
	}
	for _, d := range parent.Dependencies {
		if !declared[d.Key()] {
			p.Dependencies = append(p.Dependencies, d)
		}
	}
	p.DependencyManagement = append(p.DependencyManagement, parent.DependencyManagement...)
}

// Import appends a BOM's managed dependencies after p's own.
func (p *POM) Import(bom *POM) {
	if bom != nil {
		p.DependencyManagement = append(p.DependencyManagement, bom.resolvedManagement()...)
	}
}

// resolvedManagement returns dependencyManagement with the POM's own
// properties already applied, so entries keep their meaning when merged
// into a child.
func (p *POM) resolvedManagement() []Dependency {
	out := make([]Dependency, len(p.DependencyManagement))
	for i, d := range p.DependencyManagement {
		out[i] = p.interpolateDep(d)
	}
	return out
}

// Imports returns the scope=import, type=pom entries of dependencyManagement.
func (p *POM) Imports() []Dependency {
	var out []Dependency
	for _, d := range p.DependencyManagement {
		if d.Scope == "import" && d.Type == "pom" {
			out = append(out, p.interpolateDep(d))
		}
	}
	return out
}

// Managed returns the managed entry for key. The first declaration wins.
func (p *POM) Managed(key string) (Dependency, bool) {
	for _, d := range p.DependencyManagement {
		if d.Scope == "import" {
			continue
		}
		d = p.interpolateDep(d)
		if d.Key() == key {
			return d, true
		}
	}
	return Dependency{}, false
}

// ResolvedDependencies returns the declared dependencies with properties
// interpolated and missing versions and scopes filled from dependency
// management. Dependencies whose identity still contains a ${...}
// reference are dropped.
func (p *POM) ResolvedDependencies() []Dependency {
	out := make([]Dependency, 0, len(p.Dependencies))
	for _, d := range p.Dependencies {
		d = p.interpolateDep(d)
		if m, ok := p.Managed(d.Key()); ok {
			if d.Version == "" {
				d.Version = m.Version
			}
			if d.Scope == "" {
				d.Scope = m.Scope
			}
			if len(d.Exclusions) == 0 {
				d.Exclusions = m.Exclusions
			}
		}
		if unresolved(d.GroupID) || unresolved(d.ArtifactID) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (p *POM) interpolateDep(d Dependency) Dependency {
	d.GroupID = p.Interpolate(d.GroupID)
	d.ArtifactID = p.Interpolate(d.ArtifactID)
	d.Version = p.Interpolate(d.Version)
	d.Type = p.Interpolate(d.Type)
	d.Classifier = p.Interpolate(d.Classifier)
	d.Scope = strings.TrimSpace(d.Scope)
	return d
}

// Interpolate expands ${...} references from the POM's properties and
// project coordinates. Unknown references are left in place.
func (p *POM) Interpolate(s string) string {
	s = strings.TrimSpace(s)
	for range maxInterpolationDepth {
		if !strings.Contains(s, "${") {
			return s
		}
		next := p.expandOnce(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func (p *POM) expandOnce(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		end += start
		b.WriteString(s[:start])
		name := s[start+2 : end]
		if v, ok := p.lookup(name); ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[start : end+1])
		}
		s = s[end+1:]
	}
}

func (p *POM) lookup(name string) (string, bool) {
	if v, ok := p.Properties[name]; ok {
		return v, true
	}
	switch strings.TrimPrefix(strings.TrimPrefix(name, "project."), "pom.") {
	case "groupId":
		if p.GroupID != "" {
			return p.GroupID, true
		}
		if p.Parent != nil {
			return p.Parent.GroupID, true
		}
	case "artifactId":
		return p.ArtifactID, true
	case "version":
		if p.Version != "" {
			return p.Version, true
		}
		if p.Parent != nil {
			return p.Parent.Version, true
		}
	case "parent.groupId":
		if p.Parent != nil {
			return p.Parent.GroupID, true
		}
	case "parent.version":
		if p.Parent != nil {
			return p.Parent.Version, true
		}
	}
	return "", false
}

func unresolved(s string) bool { return s == "" || strings.Contains(s, "${") }
