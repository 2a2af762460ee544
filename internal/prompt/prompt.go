// Package prompt provides ct.PromptProvider implementations.
package prompt

import (
	"errors"
	"os"

	"ct-go/internal/config"
	"ct-go/internal/ct"
)

// DefaultPassphraseEnv is consulted when the configuration names no
// variable.
const DefaultPassphraseEnv = "CT_PASSPHRASE"

// ErrNoPassphrase is returned when a non-interactive source has nothing
// to offer.
var ErrNoPassphrase = errors.New("no passphrase available")

// FromConfig picks a provider: a configured passphrase file, then a set
// passphrase variable, then the terminal.
func FromConfig(cfg config.CipherConfig) ct.PromptProvider {
	envVar := cfg.PassphraseEnv
	if envVar == "" {
		envVar = DefaultPassphraseEnv
	}

	if cfg.PassphraseFile != "" {
		return NewEnv(envVar, cfg.PassphraseFile)
	}
	if _, ok := os.LookupEnv(envVar); ok {
		return NewEnv(envVar, "")
	}
	return NewTerminal(os.Stderr)
}
