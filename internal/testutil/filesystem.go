package testutil

import (
	"ct-go/internal/ct"
)

// BlindFilesystemManager wraps a FilesystemManager and always reports that
// nothing exists, so callers skip their pre-checks and hit the creation
// primitives directly. It stands in for a destination that appears between
// the check and the create.
type BlindFilesystemManager struct {
	ct.FilesystemManager
}

func NewBlindFilesystemManager(inner ct.FilesystemManager) *BlindFilesystemManager {
	return &BlindFilesystemManager{FilesystemManager: inner}
}

func (*BlindFilesystemManager) Exists(string) (bool, error) {
	return false, nil
}
