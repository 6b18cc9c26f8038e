package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ciforge/migrag/internal/knowledge"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Inspect the indexed documentation corpus",
	}
	cmd.AddCommand(newDocsListCmd(), newDocsStatsCmd(), newDocsRemoveCmd())
	return cmd
}

func newDocsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every indexed source file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			catalog, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer catalog.Close()

			records, err := catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing indexed yet. Run `migrag prepare` first.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tTYPE\tCHUNKS\tSIZE\tINDEXED")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
					r.Name, r.DocType, r.ChunkCount, r.SizeBytes,
					r.IndexedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func newDocsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show corpus totals per document type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()

			catalog, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer catalog.Close()

			stats, err := catalog.Stats(cmd.Context())
			if err != nil {
				return err
			}

			store, err := openStore(cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tFILES\tCHUNKS")
			var files, chunks int
			for _, s := range stats {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", s.DocType, s.Files, s.Chunks)
				files += s.Files
				chunks += s.Chunks
			}
			fmt.Fprintf(tw, "total\t%d\t%d\n", files, chunks)
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nVector store: %d chunks at %s\n", store.Count(), cfg.VectorDBPath)
			return nil
		},
	}
}

func newDocsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file>",
		Short: "Remove a source file from the catalog",
		Long: `remove deletes the catalog entry for a file so the next prepare
re-indexes it from scratch. The file's existing chunks are overwritten by
that run because chunk IDs are stable per source file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			catalog, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer catalog.Close()

			if err := catalog.Delete(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, knowledge.ErrSourceNotFound) {
					return fmt.Errorf("%s is not in the catalog", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the catalog.\n", args[0])
			return nil
		},
	}
}
