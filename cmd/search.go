package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ciforge/migrag/internal/knowledge"
)

func newSearchCmd() *cobra.Command {
	var (
		topK    int
		docType string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show the documentation chunks retrieved for a query",
		Long: `search runs the similarity search without calling the language model.
Useful to inspect what context an ask would be grounded on, and it works
without a GROQ_API_KEY.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()

			store, err := openStore(cfg, logger)
			if err != nil {
				return err
			}

			opts := []knowledge.SearchOption{}
			if topK > 0 {
				opts = append(opts, knowledge.WithTopK(topK))
			} else {
				opts = append(opts, knowledge.WithTopK(cfg.TopK))
			}
			if docType != "" {
				opts = append(opts, knowledge.WithDocType(docType))
			}

			query := strings.Join(args, " ")
			results, err := store.Search(cmd.Context(), query, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No matching chunks.")
				return nil
			}

			for i, r := range results {
				fmt.Fprintf(out, "[%d] %s (%s) similarity=%.3f\n", i+1, r.SourceFile, r.DocType, r.Similarity)
				fmt.Fprintln(out, indent(snippet(r.Content, 400), "    "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 0, "number of chunks to retrieve (default from config)")
	cmd.Flags().StringVar(&docType, "doc-type", "", "restrict search to one document type")
	return cmd
}

// snippet truncates s at a rune boundary, appending an ellipsis.
func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
