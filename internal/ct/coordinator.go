package ct

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// archivePerm is the mode of newly created encrypted archives.
const archivePerm fs.FileMode = 0600

// Coordinator validates crypt and decrypt requests, resolves archive and
// folder names, and drives the archive/cipher pipeline.
type Coordinator struct {
	opts     Options
	archiver Archiver
	cipher   Cipher
	prompt   PromptProvider
	fsmgr    FilesystemManager
	logger   Logger
}

// NewCoordinator creates a Coordinator with the provided dependencies. The
// cipher is built by newCipher from opts.CipherOptions. opts must describe
// the same compression the archiver was built with, since it determines the
// default extension.
func NewCoordinator(opts Options, archiver Archiver, newCipher CipherFactory, prompt PromptProvider, fsmgr FilesystemManager, logger Logger) (*Coordinator, error) {
	cipher, err := newCipher(opts.CipherOptions)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &Coordinator{
		opts:     opts,
		archiver: archiver,
		cipher:   cipher,
		prompt:   prompt,
		fsmgr:    fsmgr,
		logger:   logger,
	}, nil
}

// DefaultExtension is appended to archive names that have none,
// e.g. ".tar.gz.age".
func (c *Coordinator) DefaultExtension() string {
	return c.opts.Compression.Extension() + c.cipher.Extension()
}

// Create archives items and encrypts the stream into target, appending the
// default extension to target if it has none. It returns the path written.
//
// The archive exists only as ciphertext: archiver output flows through the
// cipher straight into the destination file. If the pipeline fails after the
// destination was created, the partial file is left in place.
func (c *Coordinator) Create(ctx context.Context, target string, items []string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("%w: archive file name is required", ErrMissingArgument)
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%w: at least one item to archive is required", ErrMissingArgument)
	}

	archivePath := ResolveArchiveName(target, c.DefaultExtension())

	for _, item := range items {
		if _, err := c.fsmgr.Resolve(item); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrSourceNotFound, item)
			}
			return "", fmt.Errorf("checking item %s: %w", item, err)
		}
	}

	if err := c.checkAbsent(archivePath); err != nil {
		return "", err
	}

	passphrase, err := c.passphrase(fmt.Sprintf("Passphrase for %s", archivePath), true)
	if err != nil {
		return "", err
	}

	out, err := c.fsmgr.CreateExclusive(archivePath, archivePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrDestinationExists, archivePath)
		}
		return "", fmt.Errorf("creating %s: %w", archivePath, err)
	}

	c.logger.Info("creating archive",
		"path", archivePath,
		"items", len(items),
		"compression", c.opts.Compression.String(),
		"cipher_options", c.opts.CipherOptions,
	)

	archiveErr, encryptErr := runPipeline(
		func(w io.Writer) error { return c.archiver.Create(ctx, w, items) },
		func(r io.Reader) error { return c.cipher.Encrypt(r, out, passphrase) },
	)
	closeErr := out.Close()

	switch {
	case isCause(archiveErr):
		c.logger.Error("archiving failed", "path", archivePath, "error", archiveErr)
		return "", fmt.Errorf("%w: %w", ErrArchiverFailure, archiveErr)
	case encryptErr != nil:
		c.logger.Error("encryption failed", "path", archivePath, "error", encryptErr)
		return "", fmt.Errorf("%w: %w", ErrCipherFailure, encryptErr)
	case closeErr != nil:
		return "", fmt.Errorf("%w: writing %s: %w", ErrCipherFailure, archivePath, closeErr)
	}

	c.logger.Info("archive created", "path", archivePath)
	return archivePath, nil
}

// Extract decrypts source and unpacks it into folder. An empty folder is
// derived from the source file name. It returns the folder used.
//
// If extraction fails and the folder is still empty it is removed again;
// anything already extracted stays where it is.
func (c *Coordinator) Extract(ctx context.Context, source, folder string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("%w: archive file name is required", ErrMissingArgument)
	}
	if folder == "" {
		folder = ResolveExtractionFolder(source)
		if folder == "" {
			return "", fmt.Errorf("%w: cannot derive a folder name from %s, pass one explicitly", ErrMissingArgument, source)
		}
	}

	src, err := c.fsmgr.Resolve(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotFound, source)
		}
		return "", fmt.Errorf("checking %s: %w", source, err)
	}
	if src.IsDir() {
		return "", fmt.Errorf("%s is a directory, not an archive", source)
	}

	if err := c.checkAbsent(folder); err != nil {
		return "", err
	}

	passphrase, err := c.passphrase(fmt.Sprintf("Passphrase for %s", source), false)
	if err != nil {
		return "", err
	}

	in, err := c.fsmgr.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", source, err)
	}
	defer in.Close()

	if err := c.fsmgr.Mkdir(folder); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrDestinationExists, folder)
		}
		return "", fmt.Errorf("creating %s: %w", folder, err)
	}

	c.logger.Info("extracting archive", "path", source, "folder", folder)

	decryptErr, extractErr := runPipeline(
		func(w io.Writer) error { return c.cipher.Decrypt(in, w, passphrase) },
		func(r io.Reader) error { return c.archiver.Extract(ctx, r, folder) },
	)

	var failure error
	switch {
	case isCause(decryptErr):
		c.logger.Error("decryption failed", "path", source, "error", decryptErr)
		failure = fmt.Errorf("%w: %w", ErrCipherFailure, decryptErr)
	case extractErr != nil:
		c.logger.Error("extraction failed", "path", source, "error", extractErr)
		failure = fmt.Errorf("%w: %w", ErrArchiverFailure, extractErr)
	}
	if failure != nil {
		if err := c.fsmgr.RemoveIfEmpty(folder); err == nil {
			c.logger.Debug("removed empty destination folder", "folder", folder)
		}
		return "", failure
	}

	c.logger.Info("archive extracted", "path", source, "folder", folder)
	return folder, nil
}

// checkAbsent fails with ErrDestinationExists when path is taken.
// This is only an early check; creation itself is exclusive.
func (c *Coordinator) checkAbsent(path string) error {
	exists, err := c.fsmgr.Exists(path)
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDestinationExists, path)
	}
	return nil
}

func (c *Coordinator) passphrase(prompt string, confirm bool) (string, error) {
	p, err := c.prompt.Passphrase(prompt, confirm)
	if err != nil {
		return "", fmt.Errorf("%w: reading passphrase: %w", ErrCipherFailure, err)
	}
	if p == "" {
		return "", fmt.Errorf("%w: empty passphrase", ErrCipherFailure)
	}
	return p, nil
}
