package agent

import (
	"fmt"
	"strings"

	"github.com/ciforge/migrag/internal/knowledge"
)

// systemPrompt frames the model as a migration assistant that answers only
// from the retrieved documentation.
const systemPrompt = `You are an expert assistant for migrating PHP applications from CodeIgniter 3 to CodeIgniter 4.

Answer the user's question using ONLY the numbered documentation excerpts provided with it. Rules:
- Cite the excerpts you used, e.g. "Per [2], controllers now extend BaseController."
- When CI3 and CI4 differ, show both the old and the new way, with code where helpful.
- If the excerpts do not contain the answer, say so plainly instead of guessing.
- Keep answers concise and practical; the user is mid-migration.`

// buildUserPrompt assembles the user message: numbered context excerpts
// followed by the question.
func buildUserPrompt(question string, results []knowledge.Result) string {
	var b strings.Builder

	if len(results) == 0 {
		b.WriteString("No documentation excerpts were retrieved for this question.\n\n")
	} else {
		b.WriteString("Documentation excerpts:\n\n")
		for i, r := range results {
			fmt.Fprintf(&b, "[%d] (source: %s, type: %s)\n%s\n\n",
				i+1, r.SourceFile, r.DocType, strings.TrimSpace(r.Content))
		}
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
