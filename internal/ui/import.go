package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/marquee/internal/event"
)

func (a *App) importCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <csv_path>",
		Short: "Import events from a CSV file",
		Long: `Import events from a CSV file with a header row.

Recognised columns: ` + strings.Join(event.ImportHeaders, ", ") + `.
Only title and starts_at are required. Artists are separated by
semicolons. Date-times without a zone are read in local time.

The file is validated in full before anything is written.`,
		Example: `  marquee import events.csv
  marquee import --dry-run ~/Downloads/lineup.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}

			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("csv file does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking csv file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("csv path is a directory: %s", sourcePath)
			}

			events, err := readEvents(sourcePath)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%s read from %s, nothing written\n",
					formatStats(pluralEvents(len(events))), sourcePath)
				return nil
			}

			if err := a.ensureStore(); err != nil {
				return err
			}
			if err := importEvents(cmd.Context(), a.store, events); err != nil {
				return err
			}
			a.log.WithField("count", len(events)).WithField("source", sourcePath).Info("events imported")

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s from %s\n", formatStats(pluralEvents(len(events))), sourcePath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without writing")
	return cmd
}

func readEvents(path string) ([]*event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer func() { _ = f.Close() }()

	events, err := event.ReadCSV(f, time.Local)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func importEvents(ctx context.Context, dest event.Store, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := dest.CreateMany(ctx, events); err != nil {
		return fmt.Errorf("importing events: %w", err)
	}
	return nil
}

func pluralEvents(n int) string {
	if n == 1 {
		return "1 event"
	}
	return humanize.Comma(int64(n)) + " events"
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
