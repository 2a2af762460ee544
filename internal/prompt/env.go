package prompt

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"ct-go/internal/ct"
)

// Env supplies a passphrase without interaction: the first line of file
// when one is set, otherwise the value of an environment variable. The
// confirm flag is ignored.
type Env struct {
	envVar string
	file   string
}

var _ ct.PromptProvider = (*Env)(nil)

func NewEnv(envVar, file string) *Env {
	return &Env{envVar: envVar, file: file}
}

func (e *Env) Passphrase(string, bool) (string, error) {
	if e.file != "" {
		return readFirstLine(e.file)
	}
	v, ok := os.LookupEnv(e.envVar)
	if !ok {
		return "", fmt.Errorf("%w: %s is not set", ErrNoPassphrase, e.envVar)
	}
	return v, nil
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening passphrase file: %w", err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return "", fmt.Errorf("reading passphrase file: %w", err)
		}
		return "", fmt.Errorf("%w: %s is empty", ErrNoPassphrase, path)
	}
	return strings.TrimRight(s.Text(), "\r"), nil
}
