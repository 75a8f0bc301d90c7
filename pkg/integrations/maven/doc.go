// Package maven provides an HTTP client for Maven 2 layout repositories.
//
// # Overview
//
// The client downloads the POM of one exact artifact version from Maven
// Central or any repository with the same layout (Nexus, Artifactory):
//
//	client := maven.NewClient(c, maven.DefaultRepository, 24*time.Hour)
//	pom, err := client.FetchPOM(ctx, artifact.MustParse("com.google.guava:guava:33.0.0-jre"), false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range pom.ResolvedDependencies() {
//	    fmt.Println(d.Coordinate())
//	}
//
// # POM Model
//
// [POM] carries coordinates, the parent reference, properties, declared
// dependencies and dependencyManagement. [POM.Interpolate] expands ${...}
// references from properties and project coordinates, and
// [POM.ResolvedDependencies] fills missing versions from dependency
// management. Parent POMs and imported BOMs are merged with [POM.Inherit]
// and [POM.Import]; fetching them is left to the caller.
//
// # Caching
//
// Responses are cached through [cache.Cache], namespaced per repository
// host. Pass refresh=true to bypass the cache.
//
// [cache.Cache]: github.com/matzehuels/converge/pkg/cache.Cache
package maven
