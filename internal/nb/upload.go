package nb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Upload stores an archive in the vault under key, creating the container
// first if needed. When an encryptor is configured the archive is encrypted
// and the encryptor's extension is appended to the key. The final key is
// returned.
//
// Without a retry window the first error is returned as is. With one, failed
// attempts are retried with exponential backoff until the window elapses;
// authorization failures are never retried.
func (s *Service) Upload(ctx context.Context, vault Vault, archive []byte, key string) (string, error) {
	payload := archive
	if s.encryptor != nil {
		var enc bytes.Buffer
		if err := s.encryptor.Encrypt(bytes.NewReader(archive), &enc); err != nil {
			return "", fmt.Errorf("encrypting archive: %w", err)
		}
		payload = enc.Bytes()
		key += s.encryptor.Extension()
	}

	put := func() error {
		if err := vault.EnsureContainer(ctx); err != nil {
			return fmt.Errorf("ensuring container: %w", err)
		}
		if err := vault.Put(ctx, key, bytes.NewReader(payload), int64(len(payload))); err != nil {
			return fmt.Errorf("uploading %s: %w", key, err)
		}
		return nil
	}

	var err error
	if s.retryMaxElapsed <= 0 {
		err = put()
	} else {
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = s.retryMaxElapsed
		err = backoff.RetryNotify(func() error {
			if err := put(); err != nil {
				if errors.Is(err, ErrAuthorization) {
					return backoff.Permanent(err)
				}
				return err
			}
			return nil
		}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
			s.logger.Warn("upload failed, retrying", "key", key, "wait", wait, "err", err)
		})
	}
	if err != nil {
		return "", err
	}

	s.logger.Info("uploaded", "key", key, "bytes", len(payload))
	return key, nil
}
