package cmd

import (
	"fmt"

	"github.com/rohmanhakim/cobweb/internal/report"
	"github.com/rohmanhakim/cobweb/internal/scheduler"
	"github.com/spf13/cobra"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List the internal and external links found on the seed page.",
	Long: `links fetches only the seed page and prints the links the scrape would
follow for the configured --hops, split into same-host and external sets.
No extraction is performed.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		outFormat, err := ResolveFormat()
		if err != nil {
			return err
		}
		seed := cfg.SeedURL()
		recorder, err := newRecorder(cmd.ErrOrStderr(), seed)
		if err != nil {
			return err
		}

		s := scheduler.NewScheduler(&recorder)
		links, err := s.DiscoverLinks(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("discover links on %s: %w", seed.String(), err)
		}

		return emit(cmd.OutOrStdout(), report.FromLinks(seed, links), outFormat, &recorder)
	},
}
