package staging

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"netbackup/internal/nb"
)

// MemoryStagingArea is an in-memory implementation of the StagingArea interface.
// It stores written files in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryStagingArea struct {
	mu    sync.RWMutex
	dirs  map[string]bool
	files map[string][]byte
}

// NewMemoryStagingArea creates a new in-memory staging area.
func NewMemoryStagingArea() *MemoryStagingArea {
	return &MemoryStagingArea{
		dirs:  map[string]bool{".": true},
		files: make(map[string][]byte),
	}
}

// Root returns a placeholder; memory staging has no on-disk location.
func (m *MemoryStagingArea) Root() string {
	return "memory://"
}

// MkdirAll records rel and all its parents as directories.
func (m *MemoryStagingArea) MkdirAll(rel string) error {
	clean, err := cleanRel(rel)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for p := clean; p != "." && p != "/"; p = path.Dir(p) {
		if _, ok := m.files[p]; ok {
			return fmt.Errorf("mkdir %s: not a directory", p)
		}
		m.dirs[p] = true
	}
	return nil
}

// WriteFile stores data at rel. The parent directory must exist.
func (m *MemoryStagingArea) WriteFile(rel string, data []byte) error {
	clean, err := cleanRel(rel)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirs[path.Dir(clean)] {
		return fmt.Errorf("write %s: parent directory does not exist", clean)
	}
	if m.dirs[clean] {
		return fmt.Errorf("write %s: is a directory", clean)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[clean] = buf
	return nil
}

// IsDir reports whether rel has been created as a directory.
func (m *MemoryStagingArea) IsDir(rel string) (bool, error) {
	clean, err := cleanRel(rel)
	if err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[clean], nil
}

// Walk visits every file beneath rel in lexical order.
func (m *MemoryStagingArea) Walk(rel string, fn nb.WalkFunc) error {
	clean, err := cleanRel(rel)
	if err != nil {
		return err
	}

	m.mu.RLock()
	if !m.dirs[clean] {
		m.mu.RUnlock()
		return fmt.Errorf("walk %s: no such directory", clean)
	}
	var names []string
	snapshot := make(map[string][]byte)
	for name, data := range m.files {
		if clean == "." || strings.HasPrefix(name, clean+"/") {
			names = append(names, name)
			snapshot[name] = data
		}
	}
	m.mu.RUnlock()

	sort.Strings(names)
	for _, name := range names {
		data := snapshot[name]
		err := fn(name, func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadFile returns the contents of rel. It exists for tests.
func (m *MemoryStagingArea) ReadFile(rel string) ([]byte, error) {
	clean, err := cleanRel(rel)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[clean]
	if !ok {
		return nil, fmt.Errorf("read %s: no such file", clean)
	}
	return data, nil
}

func cleanRel(rel string) (string, error) {
	clean := path.Clean(rel)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid staging path: %q", rel)
	}
	return clean, nil
}

// Compile-time check that MemoryStagingArea implements nb.StagingArea interface
var _ nb.StagingArea = (*MemoryStagingArea)(nil)
