package fs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFilesystemManager_Resolve(t *testing.T) {
	m := NewOSFilesystemManager()

	t.Run("regular file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "a.txt")
		if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
			t.Fatal(err)
		}
		p, err := m.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsDir() {
			t.Error("IsDir() = true for a file")
		}
		if p.String() != path {
			t.Errorf("String() = %q, want %q", p.String(), path)
		}
	})

	t.Run("dangling symlink resolves to itself", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		link := filepath.Join(dir, "link")
		if err := os.Symlink(filepath.Join(dir, "nowhere"), link); err != nil {
			t.Fatal(err)
		}
		p, err := m.Resolve(link)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.Info().Mode()&os.ModeSymlink == 0 {
			t.Error("expected symlink mode")
		}
	})

	t.Run("missing path wraps ErrNotExist", func(t *testing.T) {
		t.Parallel()
		_, err := m.Resolve(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Resolve() error = %v, want ErrNotExist", err)
		}
	})
}

func TestOSFilesystemManager_Exists(t *testing.T) {
	t.Parallel()
	m := NewOSFilesystemManager()
	dir := t.TempDir()

	ok, err := m.Exists(dir)
	if err != nil || !ok {
		t.Errorf("Exists(dir) = %v, %v; want true, nil", ok, err)
	}
	ok, err = m.Exists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestOSFilesystemManager_CreateExclusive(t *testing.T) {
	t.Parallel()
	m := NewOSFilesystemManager()
	path := filepath.Join(t.TempDir(), "out.bin")

	w, err := m.CreateExclusive(path, 0600)
	if err != nil {
		t.Fatalf("first CreateExclusive() error = %v", err)
	}
	if _, err := io.WriteString(w, "first"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	if _, err := m.CreateExclusive(path, 0600); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("second CreateExclusive() error = %v, want ErrExist", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "first" {
		t.Errorf("content = %q, existing file was modified", got)
	}
}

func TestOSFilesystemManager_MkdirAndRemoveIfEmpty(t *testing.T) {
	t.Parallel()
	m := NewOSFilesystemManager()
	dir := filepath.Join(t.TempDir(), "out")

	if err := m.Mkdir(dir); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	if err := m.Mkdir(dir); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("second Mkdir() error = %v, want ErrExist", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "keep"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.RemoveIfEmpty(dir); err == nil {
		t.Fatal("RemoveIfEmpty() removed a non-empty directory")
	}

	os.Remove(filepath.Join(dir, "keep"))
	if err := m.RemoveIfEmpty(dir); err != nil {
		t.Fatalf("RemoveIfEmpty() error = %v", err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, fs.ErrNotExist) {
		t.Error("empty directory still present")
	}
}
