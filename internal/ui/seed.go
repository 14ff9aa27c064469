package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/marquee/internal/event"
)

func (a *App) seedCmd() *cobra.Command {
	var (
		count int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo events",
		Example: `  marquee seed
  marquee seed --count 500 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("invalid count %d", count)
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			if err := a.ensureStore(); err != nil {
				return err
			}

			events := event.Demo(count, time.Now(), seed)
			if err := importEvents(cmd.Context(), a.store, events); err != nil {
				return err
			}
			a.log.WithField("count", count).WithField("seed", seed).Info("demo events seeded")

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", formatStats(pluralEvents(len(events))))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 50, "Number of events to create")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (defaults to the current time)")
	return cmd
}
