package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"ct-go/internal/archive"
	"ct-go/internal/config"
	"ct-go/internal/ct"
	"ct-go/internal/database"
	"ct-go/internal/encryption"
	"ct-go/internal/fs"
	"ct-go/internal/prompt"
)

// Options holds per-invocation settings that do not belong in the config
// file. Zero values select the production implementations.
type Options struct {
	Verbose bool
	Prompt  ct.PromptProvider
	Stderr  io.Writer
	Clock   ct.Clock
	IDs     ct.IDGenerator
}

// CTApp is the application layer between the CLI and the Coordinator.
// It constructs all dependencies from config, journals every crypt and
// decrypt, and manages the journal and log lifecycle on Close.
type CTApp struct {
	cfg         *config.Config
	coordinator *ct.Coordinator
	journal     ct.Journal
	journalErr  error // why the configured journal could not be opened
	logger      ct.Logger
	runID       string
	logFile     *os.File
}

// NewCTApp creates a fully wired CTApp from the given config.
// The caller must call Close when done.
func NewCTApp(cfg *config.Config, opts Options) (*CTApp, error) {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = ct.RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = ct.UUIDGenerator{}
	}
	if opts.Prompt == nil {
		opts.Prompt = prompt.FromConfig(cfg.Cipher)
	}

	compression, err := ct.ParseCompression(cfg.Archive.Compression)
	if err != nil {
		return nil, fmt.Errorf("archive config: %w", err)
	}

	patterns := cfg.Archive.Ignore
	if cfg.Archive.IgnoreFile != "" {
		extra, err := fs.ParseIgnoreFile(cfg.Archive.IgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("archive config: %w", err)
		}
		patterns = append(append([]string{}, patterns...), extra...)
	}

	runID := opts.IDs.New()
	logger, logFile, logErr := newLogger(cfg.LogDir, runID, opts.Verbose, opts.Stderr)
	if logErr != nil {
		logger = stderrLogger(runID, opts.Verbose, opts.Stderr)
		logger.Warn("log file unavailable", "error", logErr)
	}
	log := &slogAdapter{l: logger}

	var ignore archive.Matcher
	if m := fs.NewIgnoreMatcher(patterns); m.Len() > 0 {
		ignore = m
	}
	archiver := archive.NewTarArchiver(compression, cfg.Archive.Level, ignore, log)

	coordinator, err := ct.NewCoordinator(
		ct.Options{CipherOptions: cfg.Cipher.Options, Compression: compression},
		archiver,
		encryption.Factory(cfg.Cipher.Type),
		opts.Prompt,
		fs.NewOSFilesystemManager(),
		log,
	)
	if err != nil {
		closeLog(logFile)
		return nil, fmt.Errorf("cipher config: %w", err)
	}

	// The journal is a record of operations, not a precondition for them.
	journal, journalErr := database.NewJournalFromConfig(cfg.Journal, opts.Clock)
	if errors.Is(journalErr, database.ErrInvalidConfig) {
		closeLog(logFile)
		return nil, fmt.Errorf("journal config: %w", journalErr)
	}
	if journalErr != nil {
		log.Warn("journal unavailable, operations will not be recorded", "error", journalErr)
		journal = &ct.NopJournal{}
	}

	return &CTApp{
		cfg:         cfg,
		coordinator: coordinator,
		journal:     journal,
		journalErr:  journalErr,
		logger:      log,
		runID:       runID,
		logFile:     logFile,
	}, nil
}

func closeLog(f *os.File) {
	if f != nil {
		f.Close()
	}
}

// RunID identifies this invocation in the log and the journal.
func (a *CTApp) RunID() string {
	return a.runID
}

// Crypt archives items and encrypts them into target. It returns the path
// of the file written.
func (a *CTApp) Crypt(ctx context.Context, target string, items []string) (string, error) {
	op := newOperation(a.runID, ct.ModeCrypt, target, len(items))
	a.begin(op)

	path, err := a.coordinator.Create(ctx, target, items)
	a.finish(op, path, err)
	return path, err
}

// Decrypt decrypts source and unpacks it into folder, deriving the folder
// name when it is empty. It returns the folder used.
func (a *CTApp) Decrypt(ctx context.Context, source, folder string) (string, error) {
	op := newOperation(a.runID, ct.ModeDecrypt, source, 0)
	a.begin(op)

	dest, err := a.coordinator.Extract(ctx, source, folder)
	a.finish(op, dest, err)
	return dest, err
}

// History returns the most recent operations, newest first.
func (a *CTApp) History(limit int) ([]*ct.Operation, error) {
	if a.journalErr != nil {
		return nil, fmt.Errorf("reading history: journal unavailable: %w", a.journalErr)
	}
	ops, err := a.journal.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return ops, nil
}

// Config returns the configuration the app was built from.
func (a *CTApp) Config() *config.Config {
	return a.cfg
}

// JournalStatus describes where operations are recorded, for display.
func (a *CTApp) JournalStatus() string {
	if a.journalErr != nil {
		return "unavailable: " + a.journalErr.Error()
	}
	d, ok := a.journal.(interface{ Describe() (string, error) })
	if !ok {
		return "disabled"
	}
	desc, err := d.Describe()
	if err != nil {
		return "error: " + err.Error()
	}
	return desc
}

// begin stores op in the journal. A journal that cannot be written never
// blocks the operation itself; the problem is logged instead.
func (a *CTApp) begin(op *ct.Operation) {
	if err := a.journal.StartOperation(op); err != nil {
		a.logger.Warn("journal unavailable", "error", err)
	}
}

func (a *CTApp) finish(op *ct.Operation, destination string, err error) {
	settle(op, destination, err)
	if !op.Persisted() {
		return
	}
	if jerr := a.journal.FinishOperation(op); jerr != nil {
		a.logger.Warn("recording operation result", "id", op.ID, "error", jerr)
	}
}

// Close closes the journal and the log file.
func (a *CTApp) Close() error {
	var firstErr error

	if err := a.journal.Close(); err != nil {
		firstErr = fmt.Errorf("closing journal: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
