package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ciforge/migrag/internal/knowledge"
)

func newAskCmd() *cobra.Command {
	var (
		topK    int
		docType string
		plain   bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single migration question",
		Example: `  migrag ask "How do I convert a CI3 model to CI4?"
  migrag ask --doc-type upgrade_guide "What changed in routing?"`,
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

			ragAgent, err := newAgent(cfg, store, logger)
			if err != nil {
				return err
			}

			var opts []knowledge.SearchOption
			if topK > 0 {
				opts = append(opts, knowledge.WithTopK(topK))
			}
			if docType != "" {
				opts = append(opts, knowledge.WithDocType(docType))
			}

			question := strings.Join(args, " ")
			answer, err := ragAgent.Ask(cmd.Context(), question, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderMarkdown(answer.Text, plain))
			printSources(out, answer.Sources)
			return nil
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 0, "number of chunks to retrieve (default from config)")
	cmd.Flags().StringVar(&docType, "doc-type", "", "restrict retrieval to one document type")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the raw answer without terminal styling")
	return cmd
}
