package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"netbackup/internal/nb"
)

// MemoryVault is an in-memory implementation of the Vault interface.
// It stores all objects in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	container string
	created   bool
	objects   map[string][]byte
	puts      int
	mu        sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault for the given container.
// The container does not exist until EnsureContainer is called.
func NewMemoryVault(container string) *MemoryVault {
	return &MemoryVault{
		container: container,
		objects:   make(map[string][]byte),
	}
}

// EnsureContainer creates the container if it does not exist yet.
func (m *MemoryVault) EnsureContainer(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = true
	return nil
}

// Put stores an object, replacing any existing object with the same key.
func (m *MemoryVault) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.created {
		return fmt.Errorf("container %s does not exist", m.container)
	}
	m.objects[key] = data
	m.puts++
	return nil
}

// Get writes the object stored under key to w.
func (m *MemoryVault) Get(ctx context.Context, key string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return fmt.Errorf("object not found: %s", key)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup(ctx context.Context) error {
	return nil
}

// Keys returns the stored keys in lexical order.
func (m *MemoryVault) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Puts returns how many successful Put calls were made.
func (m *MemoryVault) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// ContainerExists reports whether EnsureContainer has been called.
func (m *MemoryVault) ContainerExists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.created
}

// Compile-time check that MemoryVault implements nb.Vault interface
var _ nb.Vault = (*MemoryVault)(nil)
