package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"
)

// FileDigest returns the hex SHA-256 of the file at path, failing the test
// if it cannot be read.
func FileDigest(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
