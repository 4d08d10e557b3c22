package encryption

import (
	"bytes"
	"fmt"
	"io"

	"netbackup/internal/nb"
)

// testMagic is prepended by TestEncryptor so ciphertext differs from the
// archive while staying deterministic and reversible.
var testMagic = []byte("NBENC\x00\x00\x01")

// TestExtension is appended to object keys by TestEncryptor.
const TestExtension = ".enc"

// TestEncryptor is a key-less encryptor for tests and dry runs. It needs no
// key files and any passphrase unlocks it.
type TestEncryptor struct {
	setupCalled bool
}

var _ nb.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	e.setupCalled = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testMagic); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying archive: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (nb.DecryptionContext, error) {
	return testDecryptor{}, nil
}

func (e *TestEncryptor) Extension() string { return TestExtension }

func (e *TestEncryptor) IsConfigured() bool { return true }

// testDecryptor strips the header added by TestEncryptor.
type testDecryptor struct{}

func (testDecryptor) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testMagic) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying archive: %w", err)
	}
	return nil
}
