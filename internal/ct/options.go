package ct

import "fmt"

// Compression selects the compression applied to the tar stream.
type Compression int

const (
	CompressionGzip Compression = iota
	CompressionBzip2
	CompressionNone
)

// ParseCompression maps a configuration value to a Compression.
// The empty string selects gzip.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "gzip", "gz":
		return CompressionGzip, nil
	case "bzip2", "bz2":
		return CompressionBzip2, nil
	case "none", "tar":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", s)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionNone:
		return "none"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// Extension returns the archive part of the default file extension.
func (c Compression) Extension() string {
	switch c {
	case CompressionBzip2:
		return ".tar.bz2"
	case CompressionNone:
		return ".tar"
	default:
		return ".tar.gz"
	}
}

// Options is the explicit configuration handed to a Coordinator.
type Options struct {
	// CipherOptions are handed to the CipherFactory when the Coordinator
	// is built, e.g. "armor" or "work-factor=18".
	CipherOptions []string
	Compression   Compression
}
