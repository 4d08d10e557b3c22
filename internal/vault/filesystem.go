package vault

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"netbackup/internal/nb"
)

// FileSystemVault is a filesystem-based implementation of the Vault interface.
// Objects are stored as files beneath a directory per container:
//
//	<root>/
//	  <container>/
//	    <timestamp>/
//	      <subscription>_network_backup.zip
type FileSystemVault struct {
	root      string
	container string
	dir       string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(root, container string) (*FileSystemVault, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vault root: %w", err)
	}

	return &FileSystemVault{
		root:      root,
		container: container,
		dir:       filepath.Join(root, container),
	}, nil
}

// EnsureContainer creates the container directory if needed.
func (v *FileSystemVault) EnsureContainer(ctx context.Context) error {
	if err := os.MkdirAll(v.dir, 0755); err != nil {
		return fmt.Errorf("failed to create container directory: %w", err)
	}
	return nil
}

// Put stores an object, replacing any existing file with the same key.
func (v *FileSystemVault) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	destPath, err := v.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	return v.writeFile(destPath, r, size)
}

// Get retrieves the object stored under key and writes it to w.
func (v *FileSystemVault) Get(ctx context.Context, key string, w io.Writer) error {
	srcPath, err := v.objectPath(key)
	if err != nil {
		return err
	}

	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object not found: %s", key)
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the vault root is an accessible directory.
// A container that does not exist yet is fine; it is created on upload.
func (v *FileSystemVault) ValidateSetup(ctx context.Context) error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}

	info, err = os.Stat(v.dir)
	if err == nil && !info.IsDir() {
		return fmt.Errorf("container path is not a directory: %s", v.dir)
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("container not accessible: %w", err)
	}
	return nil
}

func (v *FileSystemVault) objectPath(key string) (string, error) {
	clean := path.Clean(key)
	if key == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(v.dir, filepath.FromSlash(clean)), nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemVault implements nb.Vault interface
var _ nb.Vault = (*FileSystemVault)(nil)
