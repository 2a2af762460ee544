package ct

import (
	"context"
	"io"
)

// Archiver turns a list of filesystem paths into a compressed archive stream
// and back.
type Archiver interface {
	// Create writes an archive of items to w, preserving their relative
	// structure. It fails on unreadable paths.
	Create(ctx context.Context, w io.Writer, items []string) error

	// Extract materializes the archive read from r under root, which must
	// already exist. Entries never escape root, existing files are never
	// overwritten, and permission bits are restored.
	Extract(ctx context.Context, r io.Reader, root string) error
}
