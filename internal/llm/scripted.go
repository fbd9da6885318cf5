package llm

import (
	"context"
	"sync"

	"github.com/yogeswararao/trail-explorer/internal/domain"
)

// ScriptedProvider replays a fixed sequence of responses, one per Chat call.
// It backs offline runs and tests where no API key is available. When the
// script runs out it echoes the latest user text so a conversation always
// terminates.
type ScriptedProvider struct {
	mu     sync.Mutex
	script [][]domain.ContentBlock
	next   int
}

// NewScriptedProvider returns a provider that replays the given responses in
// order.
func NewScriptedProvider(script ...[]domain.ContentBlock) *ScriptedProvider {
	return &ScriptedProvider{script: script}
}

// Chat implements domain.ChatProvider.
func (p *ScriptedProvider) Chat(ctx context.Context, req domain.ChatRequest) ([]domain.ContentBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next < len(p.script) {
		blocks := p.script[p.next]
		p.next++
		return blocks, nil
	}
	return []domain.ContentBlock{domain.TextBlock{Text: "Scripted: " + lastUserText(req.Messages)}}, nil
}

// lastUserText returns the text of the most recent user turn.
func lastUserText(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Text()
		}
	}
	return ""
}

var _ domain.ChatProvider = (*ScriptedProvider)(nil)
