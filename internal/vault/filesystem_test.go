package vault

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileSystemVault(t *testing.T) {
	t.Run("creates root lazily creates container", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")

		v, err := NewFileSystemVault(root, "backups")
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if _, err := os.Stat(root); err != nil {
			t.Errorf("root directory not created: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "backups")); !os.IsNotExist(err) {
			t.Errorf("container created before EnsureContainer: %v", err)
		}

		if err := v.EnsureContainer(context.Background()); err != nil {
			t.Fatalf("EnsureContainer() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "backups")); err != nil {
			t.Errorf("container directory not created: %v", err)
		}
		// Idempotent
		if err := v.EnsureContainer(context.Background()); err != nil {
			t.Errorf("second EnsureContainer() error = %v", err)
		}
	})
}

func TestFileSystemVault_Put(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		data    string
		size    int64
		wantErr bool
	}{
		{name: "store object", key: "2024-03-15_143022/Prod_network_backup.zip", data: "hello world", size: 11},
		{name: "size mismatch", key: "bad.zip", data: "hello", size: 10, wantErr: true},
		{name: "escaping key", key: "../outside.zip", data: "x", size: 1, wantErr: true},
		{name: "empty key", key: "", data: "x", size: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			v, _ := NewFileSystemVault(root, "backups")
			v.EnsureContainer(context.Background())

			err := v.Put(context.Background(), tt.key, strings.NewReader(tt.data), tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Put() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			got, err := os.ReadFile(filepath.Join(root, "backups", filepath.FromSlash(tt.key)))
			if err != nil {
				t.Fatalf("reading stored object: %v", err)
			}
			if string(got) != tt.data {
				t.Errorf("stored = %q, want %q", got, tt.data)
			}
		})
	}
}

func TestFileSystemVault_OverwriteAndGet(t *testing.T) {
	ctx := context.Background()
	v, _ := NewFileSystemVault(t.TempDir(), "backups")
	v.EnsureContainer(ctx)

	v.Put(ctx, "ts/a.zip", strings.NewReader("one"), 3)
	if err := v.Put(ctx, "ts/a.zip", strings.NewReader("three"), 5); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}

	var buf bytes.Buffer
	if err := v.Get(ctx, "ts/a.zip", &buf); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if buf.String() != "three" {
		t.Errorf("Get() = %q, want %q", buf.String(), "three")
	}

	if err := v.Get(ctx, "ts/missing.zip", &buf); err == nil {
		t.Error("Get() expected error for missing key")
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	t.Run("valid without container", func(t *testing.T) {
		v, _ := NewFileSystemVault(t.TempDir(), "backups")
		if err := v.ValidateSetup(context.Background()); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("root removed", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")
		v, _ := NewFileSystemVault(root, "backups")
		os.RemoveAll(root)
		if err := v.ValidateSetup(context.Background()); err == nil {
			t.Error("ValidateSetup() expected error for missing root")
		}
	})

	t.Run("container is a file", func(t *testing.T) {
		root := t.TempDir()
		v, _ := NewFileSystemVault(root, "backups")
		os.WriteFile(filepath.Join(root, "backups"), []byte("x"), 0644)
		if err := v.ValidateSetup(context.Background()); err == nil {
			t.Error("ValidateSetup() expected error when container is a file")
		}
	})
}
