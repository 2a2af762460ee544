package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"ct-go/internal/ct"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
type OSFilesystemManager struct{}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// Resolve makes rawPath absolute and lstats it. Symlinks resolve to
// themselves; devices, named pipes and sockets are rejected.
func (m *OSFilesystemManager) Resolve(rawPath string) (*ct.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return ct.NewPath(absPath, info.IsDir(), info), nil
}

// Exists uses Lstat so a dangling symlink counts as present.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat path: %w", err)
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path *ct.Path) (io.ReadCloser, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path.String())
	}
	return os.Open(path.String())
}

// CreateExclusive opens path with O_EXCL, so it never truncates or follows
// an existing file or symlink.
func (m *OSFilesystemManager) CreateExclusive(path string, perm fs.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
}

func (m *OSFilesystemManager) Mkdir(path string) error {
	return os.Mkdir(path, 0755)
}

// RemoveIfEmpty relies on rmdir refusing non-empty directories.
func (m *OSFilesystemManager) RemoveIfEmpty(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return os.Remove(path)
}

// Compile-time check that OSFilesystemManager implements ct.FilesystemManager interface
var _ ct.FilesystemManager = (*OSFilesystemManager)(nil)
