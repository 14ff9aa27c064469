package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/marquee/internal/config"
	"github.com/javiermolinar/marquee/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.`,
		Example: `  marquee config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().StringVar(&path, "path", config.DefaultConfigPath(), "Config file to edit")
	return cmd
}

func runConfigInteractive(in io.Reader, out io.Writer, configPath string) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	p := prompter{reader: reader, out: out}
	t := &cfg.Table
	t.Pagination = p.choice("Pagination (local, manual, cursor)", t.Pagination, config.ModeLocal, config.ModeManual, config.ModeCursor)
	t.Sorting = p.choice("Sorting (local, manual)", t.Sorting, config.ModeLocal, config.ModeManual)
	t.Filtering = p.choice("Filtering (local, manual)", t.Filtering, config.ModeLocal, config.ModeManual)
	t.PageSize = p.positive("Page size", t.PageSize)
	t.DefaultSort = p.value("Default sort column (empty for none)", t.DefaultSort)
	t.DownloadFileName = p.value("Export file name", t.DownloadFileName)
	t.ExportDir = p.value("Export directory", t.ExportDir)
	cfg.LLM.Provider = p.value("LLM provider", cfg.LLM.Provider)
	cfg.LLM.Model = p.value("LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = p.value("LLM base URL (Ollama/LM Studio)", cfg.LLM.BaseURL)
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.UI.Theme = p.choice(fmt.Sprintf("UI theme (%s)", strings.Join(theme.Available(), ", ")), cfg.UI.Theme, theme.Available()...)
	cfg.Log.Level = p.value("Log level", cfg.Log.Level)
	cfg.Log.File = p.value("Log file (empty to disable)", cfg.Log.File)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, formatStats("\nConfiguration saved!"))
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	t := cfg.Table
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[table]")
	fmt.Fprintf(out, "  pagination         = %s\n", t.Pagination)
	fmt.Fprintf(out, "  sorting            = %s\n", t.Sorting)
	fmt.Fprintf(out, "  filtering          = %s\n", t.Filtering)
	fmt.Fprintf(out, "  page_size          = %d\n", t.PageSize)
	fmt.Fprintf(out, "  page_sizes         = %v\n", t.PageSizes)
	if t.DefaultSort != "" {
		fmt.Fprintf(out, "  default_sort       = %s\n", t.DefaultSort)
	}
	fmt.Fprintf(out, "  download_file_name = %s\n", t.DownloadFileName)
	fmt.Fprintf(out, "  export_dir         = %s\n", t.ExportDir)
	fmt.Fprintf(out, "  delegate_export    = %t\n", t.DelegateExport)
	fmt.Fprintln(out, "\n[llm]")
	fmt.Fprintf(out, "  provider           = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(out, "  model              = %s\n", cfg.LLM.Model)
	fmt.Fprintf(out, "  base_url           = %s\n", cfg.LLM.BaseURL)
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  db_path            = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme              = %s\n", cfg.UI.Theme)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  level              = %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Fprintf(out, "  file               = %s\n", cfg.Log.File)
	}
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func (p prompter) value(label, current string) string {
	if current == "" {
		fmt.Fprintf(p.out, "  %s: ", label)
	} else {
		fmt.Fprintf(p.out, "  %s [%s]: ", label, current)
	}
	input, _ := p.reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

// choice asks up to three times for one of options, then keeps current.
func (p prompter) choice(label, current string, options ...string) string {
	for range 3 {
		value := strings.ToLower(p.value(label, current))
		for _, o := range options {
			if value == o {
				return value
			}
		}
		fmt.Fprintf(p.out, "  Invalid value %q. Available: %s\n", value, strings.Join(options, ", "))
	}
	return current
}

func (p prompter) positive(label string, current int) int {
	for range 3 {
		raw := p.value(label, strconv.Itoa(current))
		n, err := strconv.Atoi(raw)
		if err == nil && n > 0 {
			return n
		}
		fmt.Fprintf(p.out, "  Invalid number %q\n", raw)
	}
	return current
}
