package testutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
)

// TreeEntry describes one node of a file tree. Content is a file body;
// Link, when set, makes the entry a symlink; Dir marks a directory.
type TreeEntry struct {
	Content string
	Mode    fs.FileMode
	Dir     bool
	Link    string
}

// File is a regular file entry with mode 0644.
func File(content string) TreeEntry {
	return TreeEntry{Content: content, Mode: 0o644}
}

// Dir is a directory entry with mode 0755.
func Dir() TreeEntry {
	return TreeEntry{Dir: true, Mode: 0o755}
}

// Symlink is a symlink entry pointing at target.
func Symlink(target string) TreeEntry {
	return TreeEntry{Link: target}
}

// WriteTree creates entries under root. Keys are slash-separated relative
// paths; parents are created as needed. Modes are applied exactly,
// ignoring the umask.
func WriteTree(t testing.TB, root string, entries map[string]TreeEntry) {
	t.Helper()

	for name, e := range entries {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("creating parent of %s: %v", name, err)
		}

		var err error
		switch {
		case e.Link != "":
			err = os.Symlink(e.Link, p)
		case e.Dir:
			err = os.MkdirAll(p, 0o755)
		default:
			err = os.WriteFile(p, []byte(e.Content), 0o644)
		}
		if err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	// modes after contents so restrictive directories stay writable above
	for name, e := range entries {
		if e.Link != "" || e.Mode == 0 {
			continue
		}
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.Chmod(p, e.Mode); err != nil {
			t.Fatalf("chmod %s: %v", name, err)
		}
	}
}

// SnapshotTree walks root and returns every entry below it keyed by
// slash-separated relative path. Symlinks are recorded, not followed.
func SnapshotTree(t testing.TB, root string) map[string]TreeEntry {
	t.Helper()

	snap := map[string]TreeEntry{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		var e TreeEntry
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			if e.Link, err = os.Readlink(p); err != nil {
				return err
			}
		case d.IsDir():
			e = TreeEntry{Dir: true, Mode: info.Mode().Perm()}
		default:
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			e = TreeEntry{Content: string(data), Mode: info.Mode().Perm()}
		}
		snap[filepath.ToSlash(rel)] = e
		return nil
	})
	if err != nil {
		t.Fatalf("snapshotting %s: %v", root, err)
	}
	return snap
}

// AssertTreeEqual fails the test with a per-entry report when got and want
// differ.
func AssertTreeEqual(t testing.TB, got, want map[string]TreeEntry) {
	t.Helper()
	if reflect.DeepEqual(got, want) {
		return
	}

	names := map[string]bool{}
	for n := range got {
		names[n] = true
	}
	for n := range want {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var b strings.Builder
	for _, n := range sorted {
		g, gok := got[n]
		w, wok := want[n]
		switch {
		case !gok:
			fmt.Fprintf(&b, "\n  missing %s", n)
		case !wok:
			fmt.Fprintf(&b, "\n  unexpected %s", n)
		case g != w:
			fmt.Fprintf(&b, "\n  %s = %+v, want %+v", n, g, w)
		}
	}
	t.Errorf("trees differ:%s", b.String())
}
