package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/marquee/internal/llm"
	"github.com/javiermolinar/marquee/internal/tui/commands"
)

func (a *App) askCmd() *cobra.Command {
	var (
		view   viewFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "ask <request...>",
		Short: "Filter events with a natural language request",
		Long: `Ask the configured LLM to turn a request into filters, search and sort,
then print the resulting page.

Flags are applied first, so the request narrows them further.`,
		Example: `  marquee ask "jazz in Berlin next month, cheapest first"
  marquee ask --dry-run sold out shows`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := strings.Join(args, " ")

			tc, err := view.tableConfig(a.config.Table)
			if err != nil {
				return err
			}
			l, err := a.openListing(cmd, tc)
			if err != nil {
				return err
			}
			t := l.Table()
			if err := view.apply(cmd.Context(), t); err != nil {
				return err
			}

			client, err := a.newClient(a.config.LLM)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commands.LLMTimeout)
			defer cancel()

			fmt.Fprintln(cmd.ErrOrStderr(), formatMuted("Thinking..."))
			suggestion, err := llm.NewAssistant(client).Suggest(ctx, llm.SuggestRequest{
				Input:   request,
				Columns: llm.Hints(t.Columns(), commands.ValueKinds),
				Now:     time.Now(),
			})
			if err != nil {
				return err
			}
			a.log.WithField("request", request).WithField("filters", len(suggestion.Filters)).Debug("suggestion received")

			out := cmd.OutOrStdout()
			printSuggestion(out, suggestion)
			if dryRun || suggestion.Empty() {
				return nil
			}
			if err := llm.Apply(ctx, t, suggestion); err != nil {
				return fmt.Errorf("applying suggestion: %w", err)
			}
			fmt.Fprintln(out)
			printFrame(out, t.Frame())
			return nil
		},
	}

	view.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the suggestion without applying it")
	return cmd
}

func (a *App) digestCmd() *cobra.Command {
	var view viewFlags

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Summarise the events on one page",
		Long: `Ask the configured LLM for a short overview of demand, spread and
anything that needs attention across the events on the selected page.`,
		Example: `  marquee digest
  marquee digest -f "status = published" --page-size 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tc, err := view.tableConfig(a.config.Table)
			if err != nil {
				return err
			}
			l, err := a.openListing(cmd, tc)
			if err != nil {
				return err
			}
			t := l.Table()
			if err := view.apply(cmd.Context(), t); err != nil {
				return err
			}

			client, err := a.newClient(a.config.LLM)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commands.LLMTimeout)
			defer cancel()

			fmt.Fprintln(cmd.ErrOrStderr(), formatMuted("Thinking..."))
			text, err := llm.NewAssistant(client).Digest(ctx, t.Rows(), time.Now())
			if err != nil {
				return fmt.Errorf("summarizing events: %w", err)
			}

			printInsightWrapped(cmd.OutOrStdout(), text, min(termWidth(), 100))
			return nil
		},
	}

	view.register(cmd)
	return cmd
}
