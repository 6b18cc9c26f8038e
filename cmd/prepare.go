package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ciforge/migrag/internal/pipeline"
)

func newPrepareCmd() *cobra.Command {
	var (
		reset bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Chunk and index the documentation in data/raw",
		Long: `prepare loads every .txt, .md, .rst and .html file under the raw data
directory, splits it into overlapping chunks, embeds the chunks and stores
them in the local vector database. Unchanged files are skipped on
re-runs; use --force to re-embed everything or --reset to start from an
empty index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()

			store, err := openStore(cfg, logger)
			if err != nil {
				return err
			}

			catalog, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer catalog.Close()

			p, err := pipeline.New(pipeline.Config{
				RawDir:       cfg.RawDir,
				ProcessedDir: cfg.ProcessedDir,
				ChunkSize:    cfg.ChunkSize,
				ChunkOverlap: cfg.ChunkOverlap,
				LockDir:      cfg.VectorDBPath,
				Store:        store,
				Catalog:      catalog,
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			start := time.Now()
			summary, err := p.Run(cmd.Context(), pipeline.Options{Reset: reset, Force: force})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d file(s) (%d new chunks), skipped %d unchanged, %d failed in %s.\n",
				summary.Indexed, summary.Chunks, summary.Skipped, summary.Failed,
				time.Since(start).Round(time.Millisecond))
			fmt.Fprintf(out, "Vector store now holds %d chunks at %s.\n",
				summary.TotalInStore, cfg.VectorDBPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "drop the existing index before preparing")
	cmd.Flags().BoolVar(&force, "force", false, "re-embed files even when unchanged")
	return cmd
}
