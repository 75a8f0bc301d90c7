package maven

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/converge/pkg/artifact"
	"github.com/matzehuels/converge/pkg/buildinfo"
	"github.com/matzehuels/converge/pkg/cache"
	cerrors "github.com/matzehuels/converge/pkg/errors"
	"github.com/matzehuels/converge/pkg/integrations"
)

// DefaultRepository is Maven Central.
const DefaultRepository = "https://repo1.maven.org/maven2"

// Client fetches POMs from a Maven 2 layout repository.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	repo  string
	keyer cache.Keyer
}

// NewClient creates a client for repo (DefaultRepository when empty).
// Entries in c are namespaced by repository host, so one cache can serve
// several repositories. ttl bounds how long POMs are cached; released POMs
// are immutable, so long TTLs are safe.
func NewClient(c cache.Cache, repo string, ttl time.Duration) *Client {
	if repo == "" {
		repo = DefaultRepository
	}
	repo = strings.TrimSuffix(repo, "/")
	if c != nil {
		c = cache.Prefixed(c, integrations.RepositoryHost(repo)+":")
	}
	return &Client{
		Client: integrations.NewClient(c, "pom", ttl, map[string]string{"User-Agent": buildinfo.UserAgent()}),
		repo:   repo,
		keyer:  cache.NewKeyer(),
	}
}

// Repository returns the repository base URL.
func (c *Client) Repository() string { return c.repo }

// POMURL returns the location of the POM for coord:
// <repo>/<group path>/<artifactId>/<version>/<artifactId>-<version>.pom
func (c *Client) POMURL(coord artifact.Coordinate) string {
	groupPath := strings.ReplaceAll(coord.GroupID, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s/%s-%s.pom",
		c.repo, groupPath, coord.ArtifactID, coord.Version, coord.ArtifactID, coord.Version)
}

// FetchPOM retrieves and parses the POM of one exact artifact version.
//
// If refresh is true, the cache is bypassed and the POM is downloaded again.
//
// Returns:
//   - the parsed [POM] on success
//   - INVALID_NODE if coord is malformed or has no version
//   - ARTIFACT_NOT_FOUND if the repository has no such POM
//   - NETWORK_ERROR for transport failures after retries
//   - INVALID_MANIFEST if the document is not a POM
func (c *Client) FetchPOM(ctx context.Context, coord artifact.Coordinate, refresh bool) (*POM, error) {
	if err := coord.Validate(); err != nil {
		return nil, err
	}
	if coord.Version == "" {
		return nil, cerrors.New(cerrors.ErrCodeInvalidNode, "%s: version required to fetch pom", coord.Key())
	}

	url := c.POMURL(coord)
	key := c.keyer.POMKey(coord.GroupID, coord.ArtifactID, coord.Version)
	data, err := c.Cached(ctx, key, refresh, func() ([]byte, error) {
		return c.Get(ctx, url)
	})
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return nil, cerrors.Wrap(cerrors.ErrCodeArtifactNotFound, err, "%s", coord)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case err != nil:
		return nil, cerrors.Wrap(cerrors.ErrCodeNetwork, err, "fetch %s", coord)
	}
	return ParsePOM(data)
}
