package nb

import "io"

// StagingArea holds the Backup Directory tree before it is archived.
// All paths are slash-separated and relative to Root.
type StagingArea interface {
	// Root describes where the staging area lives (a directory or "memory").
	Root() string

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(rel string) error

	// WriteFile writes data to rel, replacing any existing file.
	// The parent directory must already exist.
	WriteFile(rel string, data []byte) error

	// IsDir reports whether rel exists and is a directory.
	IsDir(rel string) (bool, error)

	// Walk visits every regular file beneath rel in lexical order.
	Walk(rel string, fn WalkFunc) error
}

// WalkFunc is called by StagingArea.Walk for each file. open returns the
// file content; the caller must close it.
type WalkFunc func(rel string, open func() (io.ReadCloser, error)) error
