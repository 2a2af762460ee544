package ct

import "errors"

// Coordinator failures a caller can act on wrap one of these.
// Callers test with errors.Is; the wrapped message carries the detail.
var (
	ErrMissingArgument   = errors.New("missing argument")
	ErrDestinationExists = errors.New("destination exists")
	ErrSourceNotFound    = errors.New("source not found")
	ErrArchiverFailure   = errors.New("archiver failure")
	ErrCipherFailure     = errors.New("cipher failure")
)
