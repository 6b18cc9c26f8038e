package cmd

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const renderWidth = 100

// renderMarkdown converts a Markdown answer to styled terminal output.
// Returns the input unchanged when plain is set or rendering fails, so a
// broken terminal never hides the answer.
func renderMarkdown(text string, plain bool) string {
	if plain {
		return text
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return text
	}

	rendered, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSuffix(rendered, "\n")
}
