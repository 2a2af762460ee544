package app

import (
	"fmt"
	"os"
	"path/filepath"

	"ct-go/internal/config"
)

// Environment variables that override ct's default locations.
const (
	EnvConfigPath     = "CT_CONFIG_PATH"
	EnvHome           = "CT_HOME"
	EnvPassphraseFile = "CT_PASSPHRASE_FILE"
)

// Paths are the locations ct falls back to when the command line does not
// name one.
type Paths struct {
	ConfigFile     string // $CT_CONFIG_PATH, else ~/.config/ct.toml
	BaseDir        string // $CT_HOME, else ~/.local/share/ct
	PassphraseFile string // $CT_PASSPHRASE_FILE, empty when unset
}

// DefaultPaths resolves Paths from the environment, consulting the home
// directory only for what the environment leaves open.
func DefaultPaths() (Paths, error) {
	p := Paths{
		ConfigFile:     os.Getenv(EnvConfigPath),
		BaseDir:        os.Getenv(EnvHome),
		PassphraseFile: os.Getenv(EnvPassphraseFile),
	}
	if p.ConfigFile != "" && p.BaseDir != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	if p.ConfigFile == "" {
		p.ConfigFile = filepath.Join(home, ".config", "ct.toml")
	}
	if p.BaseDir == "" {
		p.BaseDir = filepath.Join(home, ".local", "share", "ct")
	}
	return p, nil
}

// ConfigPath returns override when set, otherwise the default config file.
func (p Paths) ConfigPath(override string) string {
	if override != "" {
		return override
	}
	return p.ConfigFile
}

// LoadConfig reads the config at ConfigPath(override), with defaults rooted
// at BaseDir. A passphrase file named in the environment replaces the one
// in the config file.
func (p Paths) LoadConfig(override string) (*config.Config, error) {
	path := p.ConfigPath(override)
	cfg, err := config.Load(path, p.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if p.PassphraseFile != "" {
		cfg.Cipher.PassphraseFile = p.PassphraseFile
	}
	return cfg, nil
}
