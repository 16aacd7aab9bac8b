package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chris-regnier/daybook/internal/agenda"
	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/config"
	appLog "github.com/chris-regnier/daybook/internal/log"
	"github.com/chris-regnier/daybook/internal/storage"
	"github.com/chris-regnier/daybook/internal/storage/markdown"
	"github.com/chris-regnier/daybook/internal/storage/sqlite"
	"github.com/chris-regnier/daybook/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgFile        string
	jsonOutput     bool
	storageBackend string
	ownerFlag      string
	appConfig      *config.Config
	store          storage.Storage
	svc            *agenda.Service
)

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "A personal day planner with recurring anniversaries",
	Long: `daybook keeps a day log, a work diary and todos alongside yearly and
monthly recurring anniversaries, and merges them into one overview.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg
		appLog.SetLevel(appLog.ParseLevel(appConfig.Log.Level))

		// Flag overrides
		if storageBackend != "" {
			appConfig.Storage = storageBackend
		}
		if cmd.Flags().Changed("owner") {
			appConfig.Owner = ownerFlag
		}

		store, err = openStore(appConfig)
		if err != nil {
			return err
		}
		svc = agenda.New(store, appConfig.Location())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			// Non-TTY: print this week's overview
			return overviewRun(os.Stdout, "", "")
		}
		return ui.RunTUI(svc, ui.TUIConfig{
			Owner:    appConfig.Owner,
			MaxWidth: appConfig.MaxWidth,
			Theme:    ui.ResolveTheme(appConfig.Theme),
		})
	},
}

// openStore initializes the configured storage backend.
func openStore(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage {
	case "markdown":
		s, err := markdown.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing markdown storage: %w", err)
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing sqlite storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage)
	}
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// ExitCode maps a command error onto the process exit status: 2 for
// storage failures, 1 for anything else.
// parseDateArg parses a YYYY-MM-DD command-line argument, ignoring
// surrounding whitespace.
func parseDateArg(s string) (civil.Date, error) {
	return civil.Parse(strings.TrimSpace(s))
}

func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, storage.ErrStorage):
		return 2
	default:
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "storage backend (markdown|sqlite)")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "owner scope (empty for shared data)")

	// Silence Cobra's built-in error and usage printing so we control stderr output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}
