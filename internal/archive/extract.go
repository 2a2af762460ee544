package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Extract unpacks the archive read from r into root, which must already
// exist. Every entry is created through an os.Root, so nothing can land
// outside root, and no existing file is overwritten.
func (a *TarArchiver) Extract(ctx context.Context, r io.Reader, root string) error {
	dr, err := decompressor(r)
	if err != nil {
		return err
	}
	defer dr.Close()

	dest, err := os.OpenRoot(root)
	if err != nil {
		return fmt.Errorf("opening destination %s: %w", root, err)
	}
	defer dest.Close()

	// directory modes are applied last so read-only directories can still
	// be filled
	dirModes := map[string]fs.FileMode{}

	tr := tar.NewReader(dr)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		name, ok := localName(hdr.Name)
		if !ok {
			a.logger.Debug("skipping entry for the extraction root", "name", hdr.Name)
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := mkdirAll(dest, name); err != nil {
				return err
			}
			dirModes[name] = hdr.FileInfo().Mode().Perm()
		case tar.TypeReg:
			if err := writeFile(dest, name, hdr.FileInfo().Mode().Perm(), tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := makeParent(dest, name); err != nil {
				return err
			}
			if err := dest.Symlink(hdr.Linkname, name); err != nil {
				return fmt.Errorf("creating link %s: %w", name, err)
			}
		default:
			a.logger.Warn("skipping unsupported entry", "name", hdr.Name, "type", string(hdr.Typeflag))
		}
	}

	for name, mode := range dirModes {
		if err := dest.Chmod(name, mode); err != nil {
			return fmt.Errorf("setting mode on %s: %w", name, err)
		}
	}
	return nil
}

// localName maps a tar entry name to a path relative to the extraction
// root. Leading "/" and "../" components are stripped, as entryName does
// when archiving, so every entry lands below the root. Only names that
// reduce to the root itself are rejected.
func localName(name string) (string, bool) {
	rel := entryName(path.Clean("/" + name)[1:])
	if rel == "" {
		return "", false
	}
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", false
	}
	return local, true
}

func mkdirAll(dest *os.Root, name string) error {
	if err := dest.MkdirAll(name, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", name, err)
	}
	return nil
}

func makeParent(dest *os.Root, name string) error {
	parent := filepath.Dir(name)
	if parent == "." {
		return nil
	}
	return mkdirAll(dest, parent)
}

func writeFile(dest *os.Root, name string, perm fs.FileMode, r io.Reader) error {
	if err := makeParent(dest, name); err != nil {
		return err
	}

	f, err := dest.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	// OpenFile's perm is filtered by the umask
	if err := dest.Chmod(name, perm); err != nil {
		return fmt.Errorf("setting mode on %s: %w", name, err)
	}
	return nil
}
