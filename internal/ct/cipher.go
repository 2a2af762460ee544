package ct

import "io"

// Cipher is a symmetric, passphrase-keyed stream transform.
type Cipher interface {
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer, passphrase string) error

	// Decrypt reads ciphertext from r and writes plaintext to w.
	// It fails on a wrong passphrase or corrupt or truncated input.
	Decrypt(r io.Reader, w io.Writer, passphrase string) error

	// Extension is appended after the archive extension, e.g. ".age".
	Extension() string
}

// CipherFactory builds a Cipher configured by options, for example
// "armor" or "work-factor=18". Unknown options are an error.
type CipherFactory func(options []string) (Cipher, error)

// PromptProvider supplies passphrases. Implementations may ask a terminal,
// read a pre-configured source, or return fixed values in tests.
type PromptProvider interface {
	// Passphrase returns a passphrase. When confirm is true an interactive
	// implementation asks twice and fails if the answers differ.
	Passphrase(prompt string, confirm bool) (string, error)
}
