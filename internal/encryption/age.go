package encryption

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"

	"ct-go/internal/ct"
)

// AgeCipher implements ct.Cipher with age's scrypt passphrase recipients.
type AgeCipher struct {
	armor         bool
	workFactor    int
	maxWorkFactor int
}

var _ ct.Cipher = (*AgeCipher)(nil)

// NewAgeCipher parses cipher options:
//
//	armor              ASCII-armored output
//	work-factor=N      scrypt log2 work factor used when encrypting
//	max-work-factor=N  highest work factor accepted when decrypting
//
// Zero work factors keep age's defaults.
func NewAgeCipher(options []string) (*AgeCipher, error) {
	c := &AgeCipher{}
	for _, opt := range options {
		key, value, hasValue := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "armor":
			if hasValue {
				return nil, fmt.Errorf("cipher option %q takes no value", key)
			}
			c.armor = true
		case "work-factor":
			n, err := parseWorkFactor(key, value)
			if err != nil {
				return nil, err
			}
			c.workFactor = n
		case "max-work-factor":
			n, err := parseWorkFactor(key, value)
			if err != nil {
				return nil, err
			}
			c.maxWorkFactor = n
		default:
			return nil, fmt.Errorf("unknown cipher option: %q", opt)
		}
	}
	return c, nil
}

func parseWorkFactor(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > 30 {
		return 0, fmt.Errorf("cipher option %s: want an integer between 1 and 30, got %q", key, value)
	}
	return n, nil
}

func (c *AgeCipher) Extension() string { return ".age" }

// Encrypt reads plaintext from r and writes an age file to w.
func (c *AgeCipher) Encrypt(r io.Reader, w io.Writer, passphrase string) error {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if c.workFactor > 0 {
		recipient.SetWorkFactor(c.workFactor)
	}

	out := nopCloser(w)
	if c.armor {
		out = armor.NewWriter(w)
	}

	encWriter, err := age.Encrypt(out, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("finalizing armor: %w", err)
	}
	return nil
}

// Decrypt reads an age file, armored or binary, from r and writes the
// plaintext to w.
func (c *AgeCipher) Decrypt(r io.Reader, w io.Writer, passphrase string) error {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}
	if c.maxWorkFactor > 0 {
		identity.SetMaxWorkFactor(c.maxWorkFactor)
	}

	in, err := dearmor(r)
	if err != nil {
		return err
	}

	decReader, err := age.Decrypt(in, identity)
	if err != nil {
		return fmt.Errorf("creating decrypted reader: %w", err)
	}

	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}

// dearmor unwraps r when it starts with the age armor header.
func dearmor(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(armor.Header))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if bytes.Equal(head, []byte(armor.Header)) {
		return armor.NewReader(br), nil
	}
	return br, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func nopCloser(w io.Writer) io.WriteCloser {
	return nopWriteCloser{w}
}
