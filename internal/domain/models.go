package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Core Configuration
// =============================================================================

type Config struct {
	Overpass     OverpassConfig     `json:"overpass"`
	LLM          LLMConfig          `json:"llm"`
	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Infra        InfraConfig        `json:"infra"`
	Retry        RetryConfig        `json:"retry"`
}

// OverpassConfig controls the geodata backend boundary. ClientTimeoutSec must
// be strictly greater than QueryTimeoutSec so a server-side timeout surfaces
// as a backend error, not a client disconnect.
type OverpassConfig struct {
	URL              string `json:"url"`
	QueryTimeoutSec  int    `json:"queryTimeoutSec"`    // server-side [timeout:N] in the query header
	ClientTimeoutSec int    `json:"clientTimeoutSec"`   // HTTP client timeout
	MaxTrailsDisplay int    `json:"maxTrailsDisplay"`   // cap on detail lines in summaries
	CacheURL         string `json:"cacheUrl,omitempty"` // "file:..." or "libsql://..."; empty disables caching
	CacheTTLMinutes  int    `json:"cacheTtlMinutes"`
}

type LLMConfig struct {
	Provider  string `json:"provider"` // "anthropic" | "scripted"
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
}

type OrchestratorConfig struct {
	MaxRounds int `json:"maxRounds"` // upper bound on reasoning rounds per query (0 = default)
}

type InfraConfig struct {
	LogFormat string `json:"logFormat"` // "json" | "text"
	LogLevel  string `json:"logLevel"`
}

// RetryConfig controls retry behaviour for external API calls (LLM, Overpass).
type RetryConfig struct {
	MaxRetries     int `json:"maxRetries"`     // Maximum retry attempts (0 = no retries)
	InitialBackoff int `json:"initialBackoff"` // Initial backoff in milliseconds
	MaxBackoff     int `json:"maxBackoff"`     // Maximum backoff in milliseconds
	Multiplier     int `json:"multiplier"`     // Backoff multiplier (e.g. 2 for exponential doubling)
}

// =============================================================================
// Conversation Protocol
// =============================================================================

type MessageRole string

const (
	RoleUser       MessageRole = "user"
	RoleAssistant  MessageRole = "assistant"
	RoleToolResult MessageRole = "tool-result"
)

// Message is one turn of a conversation. Content is polymorphic: plain text,
// tool-use requests emitted by the reasoning engine, or tool results.
type Message struct {
	ID        string         `json:"id"`
	Role      MessageRole    `json:"role"`
	Timestamp time.Time      `json:"timestamp"`
	Blocks    []ContentBlock `json:"content"`
}

// NewTextMessage returns a Message holding a single text block.
func NewTextMessage(role MessageRole, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Timestamp: time.Now().UTC(),
		Blocks:    []ContentBlock{TextBlock{Text: text}},
	}
}

// NewBlockMessage returns a Message holding the given content blocks.
func NewBlockMessage(role MessageRole, blocks []ContentBlock) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Timestamp: time.Now().UTC(),
		Blocks:    blocks,
	}
}

// Text concatenates all text blocks of the message.
func (m Message) Text() string {
	var out string
	for _, b := range m.Blocks {
		if tb, ok := b.(TextBlock); ok {
			out += tb.Text
		}
	}
	return out
}

type BlockType string

const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

type ContentBlock interface {
	Type() BlockType
}

type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) Type() BlockType { return BlockText }

// ToolUseBlock is a tool-invocation request emitted by the reasoning engine.
// ID correlates the eventual tool-result turn back to this request.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

func (ToolUseBlock) Type() BlockType { return BlockToolUse }

type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

func (ToolResultBlock) Type() BlockType { return BlockToolResult }

// =============================================================================
// Capability Manifest
// =============================================================================

// ToolDefinition describes one invocable tool. InputSchema is opaque
// structured data passed through verbatim to the reasoning engine.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// ResourceDefinition describes one readable data endpoint addressed by URI.
type ResourceDefinition struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MIMEType    string `json:"mime_type"`
}

// PromptDefinition describes one parameterized prompt template.
type PromptDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
}

type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}
