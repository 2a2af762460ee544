package encryption

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"ct-go/internal/ct"
)

// testMagic starts every TestCipher output. It is followed by an 8-byte
// passphrase fingerprint.
var testMagic = []byte("CTENC")

// ErrWrongPassphrase is returned by TestCipher when the fingerprint in the
// header does not match the passphrase.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// TestCipher is a deterministic, non-cryptographic cipher for tests. It
// prepends a header carrying a passphrase fingerprint and copies the data
// unchanged, so decrypting with a different passphrase fails the way a
// real cipher would.
type TestCipher struct{}

var _ ct.Cipher = (*TestCipher)(nil)

func NewTestCipher() *TestCipher {
	return &TestCipher{}
}

func (c *TestCipher) Extension() string { return ".enc" }

func testHeader(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return append(append([]byte{}, testMagic...), sum[:8]...)
}

func (c *TestCipher) Encrypt(r io.Reader, w io.Writer, passphrase string) error {
	if _, err := w.Write(testHeader(passphrase)); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (c *TestCipher) Decrypt(r io.Reader, w io.Writer, passphrase string) error {
	want := testHeader(passphrase)
	header := make([]byte, len(want))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.HasPrefix(header, testMagic) {
		return fmt.Errorf("invalid test encryption header")
	}
	if !bytes.Equal(header, want) {
		return ErrWrongPassphrase
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
