package tooling

import (
	"context"
	"encoding/json"
)

// SchemaTool is a tool whose input is described by a JSON Schema generated
// from a Go struct via invopop/jsonschema. The orchestrator passes
// Definition() to the LLM (function-calling API) and implementations validate
// returned arguments before executing.
type SchemaTool interface {
	// Name returns the unique tool name used in function-calling
	// (e.g. "search_trails_by_area_name").
	Name() string
	// Description returns a human-readable description for the LLM.
	Description() string
	// Definition returns the JSON Schema string for the tool's input struct.
	Definition() string
	// Call executes the tool with the given JSON arguments.
	// Implementations must validate args against the schema before execution.
	Call(ctx context.Context, args json.RawMessage) (string, error)
}
