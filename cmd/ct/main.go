package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ct-go/internal/app"
	"ct-go/internal/config"

	"github.com/spf13/cobra"
)

const programName = "ct"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code. Any
// failure is reported as a single "ct: message" line on stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(normalizeArgs(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return 1
	}
	return 0
}

// normalizeArgs rewrites the flag-style mode selectors (-c, --crypt, -d,
// --decrypt) into their subcommands. Only the first argument after the
// global flags is considered, so file names starting with "-" further on
// are left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out); i++ {
		switch out[i] {
		case "-v", "--verbose":
			continue
		case "--config":
			i++
			continue
		}
		if strings.HasPrefix(out[i], "--config=") {
			continue
		}

		switch out[i] {
		case "-c", "--crypt":
			out[i] = "crypt"
		case "-d", "--decrypt":
			out[i] = "decrypt"
		}
		return out
	}
	return out
}

// paths resolves the default locations and the --config flag value.
func paths(cmd *cobra.Command) (app.Paths, string, error) {
	p, err := app.DefaultPaths()
	if err != nil {
		return app.Paths{}, "", fmt.Errorf("getting defaults: %w", err)
	}
	override, _ := cmd.Flags().GetString("config")
	return p, override, nil
}

// newApp reads the config and creates a CTApp. The caller must defer app.Close().
func newApp(cmd *cobra.Command) (*app.CTApp, error) {
	p, override, err := paths(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := p.LoadConfig(override)
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewCTApp(cfg, app.Options{Verbose: verbose, Stderr: cmd.ErrOrStderr()})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "ct",
	Short: "Encrypted archive tool",
	Long: `ct packs files and folders into a compressed tar archive encrypted
under a passphrase, and unpacks such archives into a new folder.

Existing files and folders are never overwritten.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// crypt command
var cryptCmd = &cobra.Command{
	Use:     "crypt FILE ITEM [ITEM...]",
	Aliases: []string{"c"},
	Short:   "Archive and encrypt items into FILE",
	Long: `Archive and encrypt items into FILE.

If the last path segment of FILE has no ".", the default extension
(for example ".tar.gz.age") is appended.

Every ITEM must exist; a missing one is reported before anything is
written or a passphrase is asked for. FILE must not exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var target string
		var items []string
		if len(args) > 0 {
			target, items = args[0], args[1:]
		}

		path, err := a.Crypt(cmd.Context(), target, items)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

// decrypt command
var decryptCmd = &cobra.Command{
	Use:     "decrypt FILE [FOLDER]",
	Aliases: []string{"d"},
	Short:   "Decrypt FILE and unpack it into FOLDER",
	Long: `Decrypt FILE and unpack it into FOLDER, which must not exist.

Without FOLDER, the last path segment of FILE up to its first "." is used,
so "backup.tar.gz.age" unpacks into "backup".`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var source, folder string
		if len(args) > 0 {
			source = args[0]
		}
		if len(args) > 1 {
			folder = args[1]
		}

		dest, err := a.Decrypt(cmd.Context(), source, folder)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "extracted %s into %s\n", source, dest)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View crypt and decrypt history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(ops) == 0 {
			fmt.Fprintln(out, "No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			dest := op.Target
			if op.Destination != "" {
				dest = op.Destination
			}
			fmt.Fprintf(out, "#%d  %-7s  %s  %-7s  %-8s  %s\n",
				op.ID,
				op.Mode,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				dest,
			)
			if op.Error != "" {
				fmt.Fprintf(out, "      %s\n", op.Error)
			}
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, override, err := paths(cmd)
		if err != nil {
			return err
		}

		path := p.ConfigPath(override)
		cfg := config.NewConfig(p.BaseDir)
		if err := config.Init(path, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", path)
		fmt.Fprintf(out, "Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, override, err := paths(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		cfg := a.Config()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", p.ConfigPath(override))
		fmt.Fprintf(out, "Base Dir:    %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:     %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Compression: %s\n", cfg.Archive.Compression)
		fmt.Fprintf(out, "Ignore:      %v\n", cfg.Archive.Ignore)
		fmt.Fprintf(out, "Cipher:      %s %v\n", cfg.Cipher.Type, cfg.Cipher.Options)
		if cfg.Cipher.PassphraseFile != "" {
			fmt.Fprintf(out, "Passphrase:  %s\n", cfg.Cipher.PassphraseFile)
		}
		fmt.Fprintf(out, "Journal:     %s\n", a.JournalStatus())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $CT_CONFIG_PATH, or ~/.config/ct.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Mirror the log to stderr, including debug records")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(cryptCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of operations to show")
	rootCmd.AddCommand(configCmd)
}
