package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for ct.
type Config struct {
	BaseDir string        `toml:"base_dir"`
	LogDir  string        `toml:"log_dir"`
	Archive ArchiveConfig `toml:"archive"`
	Cipher  CipherConfig  `toml:"cipher"`
	Journal JournalConfig `toml:"journal"`
}

// ArchiveConfig controls how new archives are built.
type ArchiveConfig struct {
	Compression string   `toml:"compression"`           // "gzip" (default), "bzip2" or "none"
	Level       int      `toml:"level,omitempty"`       // 0 selects the codec default
	Ignore      []string `toml:"ignore,omitempty"`      // patterns left out of archives
	IgnoreFile  string   `toml:"ignore_file,omitempty"` // extra patterns, one per line
}

// CipherConfig selects the cipher and where non-interactive passphrases
// come from.
type CipherConfig struct {
	Type           string   `toml:"type"`              // "age" (default) or "test"
	Options        []string `toml:"options,omitempty"` // e.g. "armor", "work-factor=18"
	PassphraseFile string   `toml:"passphrase_file,omitempty"`
	PassphraseEnv  string   `toml:"passphrase_env,omitempty"`
}

// JournalConfig represents configuration for the operation journal.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type JournalConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory" or "none"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a new Config with default settings rooted at baseDir.
func NewConfig(baseDir string) *Config {
	cfg := &Config{BaseDir: baseDir}
	cfg.fillDefaults()
	return cfg
}

// fillDefaults sets every empty field that has a default.
func (c *Config) fillDefaults() {
	if c.LogDir == "" && c.BaseDir != "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}
	if c.Archive.Compression == "" {
		c.Archive.Compression = "gzip"
	}
	if c.Cipher.Type == "" {
		c.Cipher.Type = "age"
	}
	if c.Journal.Type == "" {
		c.Journal.Type = "sqlite"
	}
	if c.Journal.Type == "sqlite" && c.Journal.DataDir == "" && c.BaseDir != "" {
		c.Journal.DataDir = filepath.Join(c.BaseDir, "db")
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path and fills in defaults. A missing file is
// not an error: ct works without one, using defaults rooted at baseDir.
func Load(path, baseDir string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewConfig(baseDir), nil
	}
	if err != nil {
		return nil, err
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = baseDir
	}
	cfg.fillDefaults()
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
