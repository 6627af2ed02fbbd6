package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SnapshotKey generates the cache key for a module tree's scan snapshot.
// The key is derived from the tree root and the manifest file name, so
// different installations and manifest conventions never collide.
func SnapshotKey(root, manifestName string) string {
	return fmt.Sprintf("scan:%s", Hash([]byte(root+"\x00"+manifestName)))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
