// Package integrations provides HTTP clients for artifact repositories.
//
// # Overview
//
// The [Client] type holds the plumbing shared by repository clients:
// request headers, retries with exponential backoff, an optional request
// rate limit ([Client.SetRateLimit]), response caching via [cache.Cache],
// and request/cache events reported to [observability]. [NewCache] returns
// a zstd-compressed file or Redis cache.
// Repository specifics live in subpackages:
//
//   - [maven]: Maven 2 layout repositories (Maven Central, Nexus, Artifactory)
//
// # Client Pattern
//
//	c, err := integrations.NewCache("")          // file cache
//	client := maven.NewClient(c, maven.DefaultRepository, 24*time.Hour)
//	pom, err := client.FetchPOM(ctx, coord, false) // false = use cache
//
// # Errors
//
// Missing resources wrap [ErrNotFound]; transport failures and 5xx
// responses wrap [ErrNetwork] and are retried.
//
// [maven]: github.com/matzehuels/converge/pkg/integrations/maven
// [cache.Cache]: github.com/matzehuels/converge/pkg/cache.Cache
// [observability]: github.com/matzehuels/converge/pkg/observability
package integrations
