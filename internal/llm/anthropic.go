// Package llm holds the reasoning-engine providers and their factory.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yogeswararao/trail-explorer/internal/domain"
)

const anthropicAPIBase = "https://api.anthropic.com/v1/messages"

// defaultMaxTokens bounds responses when the request carries no limit.
const defaultMaxTokens = 1024

// AnthropicProvider calls the Anthropic Messages API with tool support.
type AnthropicProvider struct {
	apiKey      string
	model       string
	client      *http.Client
	version     string
	baseURL     string
	marshalFunc func(v interface{}) ([]byte, error) // for testing
}

// NewAnthropicProvider returns an Anthropic-backed ChatProvider.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey:      apiKey,
		model:       model,
		client:      &http.Client{},
		version:     "2023-06-01",
		baseURL:     anthropicAPIBase,
		marshalFunc: json.Marshal,
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

// anthropicContentBlock is the union of the block shapes the Messages API
// sends and receives. Only the fields for each block's type are populated.
type anthropicContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

// Chat implements domain.ChatProvider. The conversation is mapped onto the
// Messages API wire roles: tool-result turns travel as "user" messages
// holding tool_result blocks.
func (p *AnthropicProvider) Chat(ctx context.Context, req domain.ChatRequest) ([]domain.ContentBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body := anthropicRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  make([]anthropicMessage, 0, len(req.Messages)),
	}
	for _, tool := range req.Tools {
		body.Tools = append(body.Tools, anthropicTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
	}
	for _, msg := range req.Messages {
		body.Messages = append(body.Messages, encodeMessage(msg))
	}

	raw, err := p.marshalFunc(body)
	if err != nil {
		return nil, fmt.Errorf("anthropic marshal: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", p.version)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic api: %s", resp.Status)
	}

	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("anthropic decode: %w", err)
	}
	return decodeBlocks(out.Content)
}

// encodeMessage maps a conversation turn onto the wire shape.
func encodeMessage(msg domain.Message) anthropicMessage {
	role := "user"
	if msg.Role == domain.RoleAssistant {
		role = "assistant"
	}

	out := anthropicMessage{Role: role, Content: make([]anthropicContentBlock, 0, len(msg.Blocks))}
	for _, block := range msg.Blocks {
		switch b := block.(type) {
		case domain.TextBlock:
			out.Content = append(out.Content, anthropicContentBlock{Type: "text", Text: b.Text})
		case domain.ToolUseBlock:
			out.Content = append(out.Content, anthropicContentBlock{
				Type:  "tool_use",
				ID:    b.ID,
				Name:  b.Name,
				Input: b.Input,
			})
		case domain.ToolResultBlock:
			out.Content = append(out.Content, anthropicContentBlock{
				Type:      "tool_result",
				ToolUseID: b.ToolUseID,
				Content:   b.Content,
				IsError:   b.IsError,
			})
		}
	}
	return out
}

// decodeBlocks maps response blocks back into domain content blocks,
// preserving order. Unknown block types are an error so protocol drift
// surfaces loudly.
func decodeBlocks(blocks []anthropicContentBlock) ([]domain.ContentBlock, error) {
	out := make([]domain.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case "text":
			out = append(out, domain.TextBlock{Text: b.Text})
		case "tool_use":
			out = append(out, domain.ToolUseBlock{ID: b.ID, Name: b.Name, Input: b.Input})
		default:
			return nil, fmt.Errorf("anthropic: unsupported content block type %q", b.Type)
		}
	}
	return out, nil
}

var _ domain.ChatProvider = (*AnthropicProvider)(nil)
