package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ciforge/migrag/internal/scrape"
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch {ci3|ci4|all}",
		Short: "Download the CodeIgniter user guides into data/raw",
		Long: `fetch crawls the official CodeIgniter user guide and saves each page
as a text file under the raw data directory, named so the preparation
step classifies it correctly (ci3_*, ci4_*, upgrade_*).

Pages already on disk are not downloaded again.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"ci3", "ci4", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()

			fetcher := scrape.NewFetcher(scrape.Config{
				OutDir:      cfg.RawDir,
				Parallelism: cfg.Scraper.Parallelism,
				Delay:       time.Duration(cfg.Scraper.DelayMS) * time.Millisecond,
				Timeout:     time.Duration(cfg.Scraper.TimeoutMS) * time.Millisecond,
				MaxDepth:    cfg.Scraper.MaxDepth,
			}, logger)

			var sources []scrape.Source
			switch args[0] {
			case "ci3":
				sources = []scrape.Source{scrape.SourceCI3}
			case "ci4":
				sources = []scrape.Source{scrape.SourceCI4}
			case "all":
				sources = []scrape.Source{scrape.SourceCI3, scrape.SourceCI4}
			default:
				return fmt.Errorf("unknown guide %q (want ci3, ci4 or all)", args[0])
			}

			out := cmd.OutOrStdout()
			for _, src := range sources {
				result, err := fetcher.Fetch(cmd.Context(), src)
				if err != nil {
					return fmt.Errorf("fetching %s guide: %w", src, err)
				}
				fmt.Fprintf(out, "%s: saved %d page(s), skipped %d, failed %d\n",
					src, result.Saved, result.Skipped, result.Failed)
			}
			fmt.Fprintf(out, "Run `migrag prepare` to index the downloaded pages.\n")
			return nil
		},
	}
	return cmd
}
