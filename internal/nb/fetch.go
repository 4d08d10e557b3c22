package nb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Fetch downloads the archive stored under key and writes it to w.
// Keys carrying the encryptor's extension are decrypted with decryptCtx,
// which must then be non-nil; other keys are written as stored.
func (s *Service) Fetch(ctx context.Context, key string, decryptCtx DecryptionContext, w io.Writer) error {
	_, vault, err := s.connector.Connect(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("fetch started", "key", key)

	if s.encryptor == nil || !strings.HasSuffix(key, s.encryptor.Extension()) {
		if err := vault.Get(ctx, key, w); err != nil {
			return fmt.Errorf("retrieving %s: %w", key, err)
		}
		return nil
	}

	if decryptCtx == nil {
		return fmt.Errorf("archive %s is encrypted but no passphrase was provided", key)
	}

	pr, pw := io.Pipe()
	vaultErrCh := make(chan error, 1)
	go func() {
		err := vault.Get(ctx, key, pw)
		pw.CloseWithError(err)
		vaultErrCh <- err
	}()

	decryptErr := decryptCtx.Decrypt(pr, w)
	pr.CloseWithError(decryptErr)
	vaultErr := <-vaultErrCh

	// A failed decrypt closes the pipe, so the vault sees decryptErr too.
	if vaultErr != nil && (decryptErr == nil || !errors.Is(vaultErr, decryptErr)) {
		return fmt.Errorf("retrieving %s: %w", key, vaultErr)
	}
	if decryptErr != nil {
		return fmt.Errorf("decrypting %s: %w", key, decryptErr)
	}
	return nil
}
