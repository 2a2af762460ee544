// Package archive implements ct.Archiver with tar streams compressed by
// gzip, bzip2, or nothing.
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"

	"ct-go/internal/ct"
)

// Matcher decides which entries are left out of an archive.
type Matcher interface {
	Match(name string, isDir bool) bool
}

// TarArchiver writes and reads tar archives.
type TarArchiver struct {
	compression ct.Compression
	level       int
	ignore      Matcher
	logger      ct.Logger
}

var _ ct.Archiver = (*TarArchiver)(nil)

// NewTarArchiver creates an archiver that compresses new archives with
// compression at level (0 selects the codec's default). ignore may be nil.
func NewTarArchiver(compression ct.Compression, level int, ignore Matcher, logger ct.Logger) *TarArchiver {
	return &TarArchiver{
		compression: compression,
		level:       level,
		ignore:      ignore,
		logger:      logger,
	}
}

// Create writes a compressed tar of items to w. Directories are walked
// recursively; symlinks are stored as links and never followed.
func (a *TarArchiver) Create(ctx context.Context, w io.Writer, items []string) error {
	cw, err := a.compressor(w)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	for _, item := range items {
		if err := a.addItem(ctx, tw, item); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalizing tar stream: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("finalizing %s stream: %w", a.compression, err)
	}
	return nil
}

func (a *TarArchiver) addItem(ctx context.Context, tw *tar.Writer, item string) error {
	return filepath.WalkDir(item, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entryName(path)
		if name == "" {
			return nil
		}
		if a.ignore != nil && a.ignore.Match(name, d.IsDir()) {
			a.logger.Debug("ignoring entry", "name", name)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		var link string
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			if link, err = os.Readlink(path); err != nil {
				return fmt.Errorf("reading link %s: %w", path, err)
			}
		case d.IsDir(), d.Type().IsRegular():
		default:
			a.logger.Warn("skipping unsupported file type", "path", path, "mode", info.Mode().String())
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("building header for %s: %w", path, err)
		}
		hdr.Name = name
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing header for %s: %w", path, err)
		}

		if !d.Type().IsRegular() {
			return nil
		}
		return copyFileInto(tw, path)
	})
}

func copyFileInto(tw *tar.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}
	return nil
}

// entryName turns a walked path into a tar entry name: slash separated,
// with leading "/" and "../" components stripped. The walk root "." maps to
// "" and is not stored.
func entryName(path string) string {
	name := filepath.ToSlash(filepath.Clean(path))
	for {
		switch {
		case strings.HasPrefix(name, "/"):
			name = name[1:]
		case strings.HasPrefix(name, "../"):
			name = name[3:]
		case name == "." || name == "..":
			return ""
		default:
			return name
		}
	}
}

func (a *TarArchiver) compressor(w io.Writer) (io.WriteCloser, error) {
	switch a.compression {
	case ct.CompressionGzip:
		level := a.level
		if level == 0 {
			level = gzip.DefaultCompression
		}
		gw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("creating gzip writer: %w", err)
		}
		return gw, nil
	case ct.CompressionBzip2:
		level := a.level
		if level == 0 {
			level = bzip2.DefaultCompression
		}
		bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: level})
		if err != nil {
			return nil, fmt.Errorf("creating bzip2 writer: %w", err)
		}
		return bw, nil
	case ct.CompressionNone:
		return nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", a.compression)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
)

// decompressor sniffs the stream's magic bytes, so archives made with any
// supported compression extract regardless of current settings.
func decompressor(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(bzip2Magic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading archive header: %w", err)
	}

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return gr, nil
	case bytes.HasPrefix(magic, bzip2Magic):
		bz, err := bzip2.NewReader(br, nil)
		if err != nil {
			return nil, fmt.Errorf("opening bzip2 stream: %w", err)
		}
		return bz, nil
	default:
		return io.NopCloser(br), nil
	}
}
