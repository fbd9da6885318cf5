// Package orchestrator runs the tool-augmented reasoning loop: it feeds the
// conversation to the reasoning engine, executes requested tools against the
// capability host, and loops until the engine answers in plain text.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yogeswararao/trail-explorer/internal/domain"
)

// DefaultMaxRounds caps reasoning rounds per query.
const DefaultMaxRounds = 10

// DefaultMaxTokens bounds each engine response.
const DefaultMaxTokens = 2000

// Option is a functional option for configuring Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a structured logger. If l is nil it is ignored and the
// default slog logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxRounds sets the round cap. Non-positive values are ignored.
func WithMaxRounds(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxRounds = n
		}
	}
}

// WithMaxTokens sets the per-response token bound. Non-positive values are
// ignored.
func WithMaxTokens(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// Orchestrator drives the multi-round conversation between the reasoning
// engine and the capability host. Tool calls within a round are executed
// sequentially in the order the engine emitted them; this ordering is a
// documented guarantee, not an accident.
type Orchestrator struct {
	provider  domain.ChatProvider
	host      domain.CapabilityHost
	maxRounds int
	maxTokens int
	logger    *slog.Logger // optional; nil uses slog.Default()
}

// New returns an Orchestrator. provider and host must not be nil.
func New(provider domain.ChatProvider, host domain.CapabilityHost, opts ...Option) *Orchestrator {
	if provider == nil {
		panic("orchestrator: provider must not be nil")
	}
	if host == nil {
		panic("orchestrator: host must not be nil")
	}
	o := &Orchestrator{
		provider:  provider,
		host:      host,
		maxRounds: DefaultMaxRounds,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}

// ProcessQuery runs one user query to completion. The system preamble and the
// query are folded into the opening user turn; each engine round either
// requests tools (executed in order, results appended as one tool-result turn
// per request) or terminates with text. The final answer is the terminal
// round's text chunks, preceded by any tool-failure diagnostics collected
// along the way, joined by newlines. A loop that is still requesting tools
// after the round cap fails with RoundLimitExceededError.
func (o *Orchestrator) ProcessQuery(ctx context.Context, preamble, query string, tools []domain.ToolDefinition) (string, error) {
	opening := query
	if preamble != "" {
		opening = preamble + "\n\nUser Query: " + query
	}
	messages := []domain.Message{domain.NewTextMessage(domain.RoleUser, opening)}

	var diagnostics []string
	for round := 1; round <= o.maxRounds; round++ {
		blocks, err := o.provider.Chat(ctx, domain.ChatRequest{
			Messages:  messages,
			Tools:     tools,
			MaxTokens: o.maxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("reasoning round %d: %w", round, err)
		}
		messages = append(messages, domain.NewBlockMessage(domain.RoleAssistant, blocks))

		var texts []string
		var toolUses []domain.ToolUseBlock
		for _, block := range blocks {
			switch b := block.(type) {
			case domain.TextBlock:
				texts = append(texts, b.Text)
			case domain.ToolUseBlock:
				toolUses = append(toolUses, b)
			}
		}

		if len(toolUses) == 0 {
			final := append(diagnostics, texts...)
			return strings.Join(final, "\n"), nil
		}

		for _, tu := range toolUses {
			o.log().Info("calling tool", "tool", tu.Name, "round", round)
			result, err := o.host.CallTool(ctx, tu.Name, tu.Input)
			if err != nil {
				diag := fmt.Sprintf("Error calling tool %s: %v", tu.Name, err)
				o.log().Error("tool call failed", "tool", tu.Name, "error", err)
				diagnostics = append(diagnostics, diag)
				messages = append(messages, domain.NewBlockMessage(domain.RoleToolResult, []domain.ContentBlock{
					domain.ToolResultBlock{ToolUseID: tu.ID, Content: diag, IsError: true},
				}))
				continue
			}
			messages = append(messages, domain.NewBlockMessage(domain.RoleToolResult, []domain.ContentBlock{
				domain.ToolResultBlock{ToolUseID: tu.ID, Content: result},
			}))
		}
	}

	return "", &domain.RoundLimitExceededError{Rounds: o.maxRounds}
}
