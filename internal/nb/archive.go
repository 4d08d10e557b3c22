package nb

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// Archive compresses every *.json file beneath root into an in-memory zip.
// Entry names are relative to the parent of root, so the subscription
// directory is the top-level entry of the archive. The staging area is only
// read; nothing is moved or deleted.
func (s *Service) Archive(root string) ([]byte, error) {
	parent := path.Dir(root)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := 0
	err := s.staging.Walk(root, func(rel string, open func() (io.ReadCloser, error)) error {
		if path.Ext(rel) != ".json" {
			return nil
		}

		name := rel
		if parent != "." {
			name = strings.TrimPrefix(rel, parent+"/")
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("creating archive entry %s: %w", name, err)
		}

		r, err := open()
		if err != nil {
			return fmt.Errorf("opening %s: %w", rel, err)
		}
		defer r.Close()

		if _, err := io.Copy(w, r); err != nil {
			return fmt.Errorf("compressing %s: %w", rel, err)
		}
		entries++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("archiving %s: %w", root, err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	s.metrics.ArchiveCreated(buf.Len())
	s.logger.Info("backup compressed", "root", root, "entries", entries, "size_mb", fmt.Sprintf("%.2f", float64(buf.Len())/(1024*1024)))
	return buf.Bytes(), nil
}
