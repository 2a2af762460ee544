package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"ct-go/internal/config"
	"ct-go/internal/ct"
)

// journalFile is the SQLite file name inside the journal data directory.
const journalFile = "ct.db"

// ErrInvalidConfig marks journal settings that can never work, as opposed
// to a journal that could not be opened this time.
var ErrInvalidConfig = errors.New("invalid journal config")

// NewJournalFromConfig creates a Journal implementation based on the journal config type.
func NewJournalFromConfig(cfg config.JournalConfig, clock ct.Clock) (ct.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("%w: data_dir required for sqlite journal", ErrInvalidConfig)
		}
		return openSQLite(filepath.Join(cfg.DataDir, journalFile), clock)
	case "memory":
		return openSQLite(":memory:", clock)
	case "none":
		return &ct.NopJournal{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown journal type: %s", ErrInvalidConfig, cfg.Type)
	}
}

// openSQLite keeps a failed open from returning a typed nil Journal.
func openSQLite(path string, clock ct.Clock) (ct.Journal, error) {
	j, err := NewSQLiteJournal(path, clock)
	if err != nil {
		return nil, err
	}
	return j, nil
}
