package ct

import (
	"io"
	"io/fs"
)

// FilesystemManager is the Coordinator's view of the filesystem: existence
// checks before acting, and creation primitives that refuse to replace
// anything already present.
type FilesystemManager interface {
	// Resolve makes rawPath absolute and lstats it. A missing path yields an
	// error wrapping fs.ErrNotExist.
	Resolve(rawPath string) (*Path, error)

	// Exists reports whether anything (file, directory, dangling symlink)
	// is present at path.
	Exists(path string) (bool, error)

	// Open opens a resolved regular file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// CreateExclusive creates a new file at path. It fails with an error
	// wrapping fs.ErrExist if path is already taken.
	CreateExclusive(path string, perm fs.FileMode) (io.WriteCloser, error)

	// Mkdir creates a single directory. It fails with an error wrapping
	// fs.ErrExist if path is already taken.
	Mkdir(path string) error

	// RemoveIfEmpty removes path only if it is an empty directory.
	RemoveIfEmpty(path string) error
}
