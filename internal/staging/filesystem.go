package staging

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"netbackup/internal/nb"
)

// FileSystemStagingArea keeps backup trees on local disk:
//
//	<staging_dir>/
//	  <timestamp>/
//	    <subscription>/
//	      <resource group>/
//	        network/
//	          <name>_<kind>.json
type FileSystemStagingArea struct {
	root string
}

// NewFileSystemStagingArea creates a staging area rooted at dir, creating it if needed.
func NewFileSystemStagingArea(dir string) (*FileSystemStagingArea, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &FileSystemStagingArea{root: dir}, nil
}

// Root returns the staging directory.
func (s *FileSystemStagingArea) Root() string {
	return s.root
}

// MkdirAll creates rel and any missing parents.
func (s *FileSystemStagingArea) MkdirAll(rel string) error {
	p, err := s.abs(rel)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, 0755)
}

// WriteFile writes data to rel, truncating any existing file.
func (s *FileSystemStagingArea) WriteFile(rel string, data []byte) error {
	p, err := s.abs(rel)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

// IsDir reports whether rel is an existing directory.
func (s *FileSystemStagingArea) IsDir(rel string) (bool, error) {
	p, err := s.abs(rel)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// Walk visits every regular file beneath rel in lexical order.
func (s *FileSystemStagingArea) Walk(rel string, fn nb.WalkFunc) error {
	start, err := s.abs(rel)
	if err != nil {
		return err
	}

	return filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(s.root, p)
		if err != nil {
			return fmt.Errorf("calculating relative path: %w", err)
		}
		return fn(filepath.ToSlash(relPath), func() (io.ReadCloser, error) {
			return os.Open(p)
		})
	})
}

// abs converts a slash-separated relative path into a path under root,
// rejecting anything that would escape it.
func (s *FileSystemStagingArea) abs(rel string) (string, error) {
	clean := path.Clean(rel)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid staging path: %q", rel)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Compile-time check that FileSystemStagingArea implements nb.StagingArea interface
var _ nb.StagingArea = (*FileSystemStagingArea)(nil)
