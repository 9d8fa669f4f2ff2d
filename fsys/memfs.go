package fsys

import (
	"io/fs"
	"path/filepath"
	"sync"
)

// Mem is an in-memory FS for tests. Paths are stored as given
// (after Clean) so tests should use consistent separators.
type Mem struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool

	// when set, ReadFile / WriteFile fail with this error,
	// for testing error handling of the callers
	ReadErr  error
	WriteErr error
}

func NewMem() *Mem {
	return &Mem{
		files: map[string][]byte{},
		dirs:  map[string]bool{},
	}
}

func (m *Mem) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if _, ok := m.files[path]; ok {
		return true
	}
	return m.dirs[path]
}

func (m *Mem) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	for {
		m.dirs[path] = true
		parent := filepath.Dir(path)
		if parent == path || parent == "." || parent == string(filepath.Separator) {
			break
		}
		path = parent
	}
	return nil
}

func (m *Mem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	d, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, fs.ErrNotExist
	}
	res := make([]byte, len(d))
	copy(res, d)
	return res, nil
}

func (m *Mem) WriteFile(path string, d []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	path = filepath.Clean(path)
	cp := make([]byte, len(d))
	copy(cp, d)
	m.files[path] = cp
	return nil
}

// FileContent returns the raw stored bytes, for test assertions.
func (m *Mem) FileContent(path string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[filepath.Clean(path)]
}

// Paths returns all stored file paths, for test assertions.
func (m *Mem) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []string
	for p := range m.files {
		res = append(res, p)
	}
	return res
}
