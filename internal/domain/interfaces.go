package domain

import (
	"context"
	"encoding/json"
)

// ChatRequest is one reasoning-engine round: the full conversation so far
// plus the tool subset of the capability manifest.
type ChatRequest struct {
	System    string
	Messages  []Message
	Tools     []ToolDefinition
	MaxTokens int
}

// ChatProvider is the model-agnostic reasoning-engine boundary. Given
// conversation state and a tool manifest it returns an ordered mixed
// sequence of text and tool-use blocks.
type ChatProvider interface {
	Chat(ctx context.Context, req ChatRequest) ([]ContentBlock, error)
}

// CapabilityHost is the tool-hosting collaborator: a named set of tools,
// readable resources, and parameterized prompt templates. The wire transport
// behind it is an implementation detail; the in-process host serves the
// trail capabilities directly.
type CapabilityHost interface {
	ListTools(ctx context.Context) ([]ToolDefinition, error)
	ListResources(ctx context.Context) ([]ResourceDefinition, error)
	ListPrompts(ctx context.Context) ([]PromptDefinition, error)

	// CallTool executes a named tool. Unknown names fail with
	// ToolNotFoundError; an empty result is folded into a sentinel success
	// string, never an error.
	CallTool(ctx context.Context, name string, args json.RawMessage) (string, error)

	// ReadResource reads a resource by URI (e.g. "trails://types").
	ReadResource(ctx context.Context, uri string) (string, error)

	// GetPrompt renders a prompt template with the given arguments.
	GetPrompt(ctx context.Context, name string, args map[string]string) (string, error)
}

// SecretGetter resolves a named secret (e.g. "anthropic_api_key").
type SecretGetter func(name string) (string, error)
