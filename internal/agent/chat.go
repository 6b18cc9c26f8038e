package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ciforge/migrag/internal/groq"
)

// Chat is a multi-turn conversation with the agent. Each turn retrieves
// fresh context for the latest question while keeping a bounded window of
// prior turns so follow-up questions ("and what about views?") resolve
// against the conversation.
//
// Chat is not safe for concurrent use; each session owns one Chat.
type Chat struct {
	agent      *Agent
	history    []groq.Message
	maxHistory int
}

// NewChat starts a conversation. maxHistory bounds the retained turn
// messages (user + assistant entries); zero falls back to 20.
func (a *Agent) NewChat(maxHistory int) *Chat {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Chat{
		agent:      a,
		maxHistory: maxHistory,
	}
}

// Send asks the next question in the conversation.
func (c *Chat) Send(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	results, err := c.agent.retrieve(ctx, question, nil)
	if err != nil {
		return nil, err
	}

	messages := make([]groq.Message, 0, len(c.history)+2)
	messages = append(messages, groq.Message{Role: groq.RoleSystem, Content: systemPrompt})
	messages = append(messages, c.history...)
	messages = append(messages, groq.Message{
		Role:    groq.RoleUser,
		Content: buildUserPrompt(question, results),
	})

	completion, err := c.agent.completer.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	// History keeps the bare question, not the context blocks: excerpts are
	// re-retrieved every turn and would otherwise blow up the token budget.
	c.history = append(c.history,
		groq.Message{Role: groq.RoleUser, Content: question},
		groq.Message{Role: groq.RoleAssistant, Content: completion.Text},
	)
	if len(c.history) > c.maxHistory {
		c.history = c.history[len(c.history)-c.maxHistory:]
	}

	return &Answer{
		Text:    completion.Text,
		Sources: collectSources(results),
		Model:   completion.Model,
	}, nil
}

// HistoryLen reports the number of retained history messages.
func (c *Chat) HistoryLen() int {
	return len(c.history)
}
