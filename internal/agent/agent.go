// Package agent orchestrates retrieval-augmented generation for
// CodeIgniter migration questions.
//
// An Agent retrieves the most relevant documentation chunks for a
// question, assembles them into a grounded prompt, and asks the inference
// model for an answer. Every answer carries the source files it was
// grounded on.
package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ciforge/migrag/internal/groq"
	"github.com/ciforge/migrag/internal/knowledge"
	"github.com/ciforge/migrag/internal/log"
)

// Retriever finds documentation chunks relevant to a query.
// *knowledge.Store satisfies this interface.
type Retriever interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// Completer generates chat completions. *groq.Client satisfies this
// interface.
type Completer interface {
	Complete(ctx context.Context, messages []groq.Message) (*groq.Completion, error)
	Model() string
}

// Source identifies one documentation file an answer was grounded on.
type Source struct {
	File       string  `json:"file"`
	DocType    string  `json:"doc_type"`
	Similarity float32 `json:"similarity"`
}

// Answer is the result of one RAG interaction.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
	Model   string   `json:"model"`
}

// Agent answers migration questions with retrieval-augmented generation.
type Agent struct {
	retriever Retriever
	completer Completer
	topK      int
	logger    log.Logger
}

// New creates an Agent. topK controls how many chunks are retrieved per
// question; zero falls back to 4.
func New(retriever Retriever, completer Completer, topK int, logger log.Logger) *Agent {
	if topK <= 0 {
		topK = 4
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Agent{
		retriever: retriever,
		completer: completer,
		topK:      topK,
		logger:    logger,
	}
}

// Ask answers a single question. opts may narrow retrieval, e.g.
// knowledge.WithDocType(document.DocTypeUpgrade).
func (a *Agent) Ask(ctx context.Context, question string, opts ...knowledge.SearchOption) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	results, err := a.retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	messages := []groq.Message{
		{Role: groq.RoleSystem, Content: systemPrompt},
		{Role: groq.RoleUser, Content: buildUserPrompt(question, results)},
	}

	completion, err := a.completer.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &Answer{
		Text:    completion.Text,
		Sources: collectSources(results),
		Model:   completion.Model,
	}, nil
}

// retrieve runs the similarity search with the agent's top-k applied
// before any caller options.
func (a *Agent) retrieve(ctx context.Context, query string, opts []knowledge.SearchOption) ([]knowledge.Result, error) {
	searchOpts := append([]knowledge.SearchOption{knowledge.WithTopK(a.topK)}, opts...)

	results, err := a.retriever.Search(ctx, query, searchOpts...)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	a.logger.Debug("retrieved context", "question_length", len(query), "chunks", len(results))
	return results, nil
}

// collectSources deduplicates results by source file, keeping the highest
// similarity per file, ordered best first.
func collectSources(results []knowledge.Result) []Source {
	best := make(map[string]Source)
	for _, r := range results {
		if existing, ok := best[r.SourceFile]; !ok || r.Similarity > existing.Similarity {
			best[r.SourceFile] = Source{
				File:       r.SourceFile,
				DocType:    r.DocType,
				Similarity: r.Similarity,
			}
		}
	}

	sources := make([]Source, 0, len(best))
	for _, s := range best {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Similarity != sources[j].Similarity {
			return sources[i].Similarity > sources[j].Similarity
		}
		return sources[i].File < sources[j].File
	})
	return sources
}
