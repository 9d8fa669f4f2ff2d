package fsys

import (
	"os"
	"path/filepath"
)

// FS is the filesystem surface consumed by recordstore.
// Implementations always operate on whole files: no partial
// reads or writes, no locking.
type FS interface {
	// Exists returns true if path exists
	Exists(path string) bool
	// MkdirAll creates a directory and all missing parents
	MkdirAll(path string) error
	// ReadFile reads the complete content of a file
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces the complete content of a file
	WriteFile(path string, d []byte) error
}

// OS implements FS on top of the real filesystem.
type OS struct{}

func (OS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (OS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes d to a temp file in the same directory and renames
// it over path. If we crash mid-write the old content survives, so
// readers never see a partially written file.
func (OS) WriteFile(path string, d []byte) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, name+".tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if _, err = tmp.Write(d); err != nil {
		return cleanup(err)
	}
	if err = tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err = os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
