package encryption

import (
	"bytes"
	"errors"
	"testing"
)

func TestTestCipher_EncryptDecrypt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "simple text", input: []byte("hello world")},
		{name: "empty", input: []byte{}},
		{name: "binary data", input: []byte{0x00, 0xff, 0x01, 0xfe}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewTestCipher()

			var encrypted bytes.Buffer
			if err := c.Encrypt(bytes.NewReader(tt.input), &encrypted, "pw"); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if bytes.Equal(encrypted.Bytes(), tt.input) {
				t.Error("encrypted output is identical to plaintext")
			}

			var decrypted bytes.Buffer
			if err := c.Decrypt(bytes.NewReader(encrypted.Bytes()), &decrypted, "pw"); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(decrypted.Bytes(), tt.input) {
				t.Errorf("round-trip failed: got %d bytes, want %d bytes", decrypted.Len(), len(tt.input))
			}
		})
	}
}

func TestTestCipher_Deterministic(t *testing.T) {
	t.Parallel()

	c := NewTestCipher()
	var a, b bytes.Buffer
	if err := c.Encrypt(bytes.NewReader([]byte("same")), &a, "pw"); err != nil {
		t.Fatal(err)
	}
	if err := c.Encrypt(bytes.NewReader([]byte("same")), &b, "pw"); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("two encryptions of the same input differ")
	}
}

func TestTestCipher_DecryptErrors(t *testing.T) {
	t.Parallel()

	var encrypted bytes.Buffer
	if err := NewTestCipher().Encrypt(bytes.NewReader([]byte("data")), &encrypted, "right"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		input      []byte
		passphrase string
		wantIs     error
	}{
		{name: "wrong passphrase", input: encrypted.Bytes(), passphrase: "wrong", wantIs: ErrWrongPassphrase},
		{name: "bad header", input: []byte("XXXXXXXXXXXXXXXXXXXX"), passphrase: "right"},
		{name: "too short", input: []byte("CTE"), passphrase: "right"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			err := NewTestCipher().Decrypt(bytes.NewReader(tt.input), &out, tt.passphrase)
			if err == nil {
				t.Fatal("Decrypt() expected error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}
