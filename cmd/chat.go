package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ciforge/migrag/internal/agent"
)

func newChatCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive migration Q&A session",
		Long: `chat opens a multi-turn conversation. Each question retrieves fresh
documentation context while earlier turns stay in the model's view, so
follow-up questions work naturally.

Type "exit", "quit" or press Ctrl-D to leave.`,
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

			ragAgent, err := newAgent(cfg, store, logger)
			if err != nil {
				return err
			}

			session := ragAgent.NewChat(cfg.MaxHistoryMessages)
			return runChatLoop(cmd, session, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print raw answers without terminal styling")
	return cmd
}

func runChatLoop(cmd *cobra.Command, session *agent.Chat, plain bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "CodeIgniter migration assistant. Ask away (exit to quit).")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}

		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := session.Send(cmd.Context(), question)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, renderMarkdown(answer.Text, plain))
		printSources(out, answer.Sources)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// printSources lists the files an answer was grounded on.
func printSources(w io.Writer, sources []agent.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for _, s := range sources {
		fmt.Fprintf(w, "  %-40s %-20s %.2f\n", s.File, s.DocType, s.Similarity)
	}
}
