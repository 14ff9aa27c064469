// Package ui provides the marquee command line interface.
package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/marquee/internal/config"
	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/db"
	"github.com/javiermolinar/marquee/internal/event"
	"github.com/javiermolinar/marquee/internal/listing"
	"github.com/javiermolinar/marquee/internal/logging"
	"github.com/javiermolinar/marquee/internal/notify"
	"github.com/javiermolinar/marquee/internal/tui"
	"github.com/javiermolinar/marquee/internal/tui/commands"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	store     event.Store
	log       *logging.Logger
	config    *config.Config
	root      *cobra.Command
	newClient commands.NewClient
	debug     bool // Enable debug logging
	noColor   bool
}

// NewApp creates a new CLI application. The store is opened on first use.
func NewApp(cfg *config.Config) *App {
	a := &App{config: cfg, newClient: commands.DefaultClient}

	a.root = &cobra.Command{
		Use:   "marquee",
		Short: "A terminal console for the event marketplace",
		Long: `Marquee is a terminal admin console for event listings.

Run it without arguments to browse events in an interactive table with
filters, search, sorting, paging, selection and CSV export. The
subcommands render, export and load events from scripts.`,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			toasts := notify.NewQueue()
			l, err := listing.New(a.store, a.config.Table, a.log, notify.Multi{toasts, notify.NewLog(a.log)})
			if err != nil {
				return err
			}
			return tui.Run(l, a.config, toasts, a.log)
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to "+logging.DebugLogPath+")")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	a.root.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if a.noColor {
			DisableColor()
		}
	}

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.seedCmd())
	a.root.AddCommand(a.askCmd())
	a.root.AddCommand(a.digestCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "marquee %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the store and the log file.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.log != nil {
		errs = append(errs, a.log.Close())
		a.log = nil
	}
	return errors.Join(errs...)
}

// ensureStore sets up logging and opens the configured database.
func (a *App) ensureStore() error {
	if a.log == nil {
		log, err := logging.New(a.config.Log, a.debug)
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}
		a.log = log
	}
	if a.store != nil {
		return nil
	}

	path, err := resolvePath(a.config.Storage.DBPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	store, err := db.New(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.store = store
	a.log.WithField("db_path", path).Debug("store opened")
	return nil
}

// openListing builds and loads the event table for a one-shot command.
// Toasts go to stderr.
func (a *App) openListing(cmd *cobra.Command, tc config.TableConfig) (*listing.Listing, error) {
	if err := a.ensureStore(); err != nil {
		return nil, err
	}
	var notifier datatable.Notifier = notify.Multi{notify.NewConsole(cmd.ErrOrStderr()), notify.NewLog(a.log)}
	l, err := listing.New(a.store, tc, a.log, notifier)
	if err != nil {
		return nil, err
	}
	if err := l.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return l, nil
}
