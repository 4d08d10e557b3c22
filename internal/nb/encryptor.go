package nb

import "io"

// Encryptor optionally encrypts archives before they are uploaded.
// Encryption uses the public key only, so scheduled runs never need the
// passphrase. Decryption requires unlocking the private key.
type Encryptor interface {
	// Setup performs one-time key generation. Called by `netbackup keys init`.
	// Generates a key pair, stores the public key in plaintext, and encrypts
	// the private key with the provided passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns a context for decrypting
	// fetched archives.
	Unlock(passphrase string) (DecryptionContext, error)

	// Extension is appended to object keys of encrypted archives.
	Extension() string

	// IsConfigured returns true if the key material exists.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
