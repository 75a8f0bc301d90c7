package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keyer derives cache keys.
type Keyer struct{}

// NewKeyer returns the default keyer.
func NewKeyer() Keyer { return Keyer{} }

// POMKey is the key of one POM document. Released POMs are immutable, so the
// key is the coordinate itself; repository scoping is done with [Prefixed].
func (Keyer) POMKey(groupID, artifactID, version string) string {
	return "pom:" + groupID + ":" + artifactID + ":" + version
}

// TreeKey is the key of a resolved tree. Options that change the shape of
// the tree (limits, scopes) are hashed into the key.
func (Keyer) TreeKey(root string, maxDepth, maxNodes int, scopes []string) string {
	return hashKey("tree", root, maxDepth, maxNodes, scopes)
}
