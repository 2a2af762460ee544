package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"ct-go/internal/ct"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// ErrMismatch is returned when the confirmation differs from the first entry.
var ErrMismatch = errors.New("passphrases do not match")

// Terminal reads passphrases from stdin without echo. Prompts go to out,
// normally stderr, so stdout stays clean.
type Terminal struct {
	out io.Writer
	fd  int
}

var _ ct.PromptProvider = (*Terminal)(nil)

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, fd: int(os.Stdin.Fd())}
}

func (t *Terminal) Passphrase(prompt string, confirm bool) (string, error) {
	if !isTerminal(t.fd) {
		return "", fmt.Errorf("%w: stdin is not a terminal", ErrNoPassphrase)
	}

	first, err := t.read(prompt + ": ")
	if err != nil {
		return "", err
	}
	if !confirm {
		return first, nil
	}

	second, err := t.read("Confirm " + lowerFirst(prompt) + ": ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", ErrMismatch
	}
	return first, nil
}

func (t *Terminal) read(prompt string) (string, error) {
	if _, err := fmt.Fprint(t.out, prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pw), nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
