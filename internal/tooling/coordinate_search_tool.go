package tooling

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yogeswararao/trail-explorer/internal/trails"
)

// CoordinateSearchInput represents the input structure for bounding-box
// trail searches.
type CoordinateSearchInput struct {
	South      float64  `json:"south" jsonschema:"description=Southern boundary latitude"`
	West       float64  `json:"west" jsonschema:"description=Western boundary longitude"`
	North      float64  `json:"north" jsonschema:"description=Northern boundary latitude"`
	East       float64  `json:"east" jsonschema:"description=Eastern boundary longitude"`
	TrailTypes []string `json:"trail_types,omitempty" jsonschema:"description=Trail types to search for (hiking, biking, walking)"`
}

// CoordinateSearchTool implements SchemaTool for trail searches within a
// bounding box. Domain and backend failures are reported as tool output
// rather than errors so they reach the model as readable text.
type CoordinateSearchTool struct {
	deps TrailDeps
}

// NewCoordinateSearchTool creates a CoordinateSearchTool with the given
// collaborators.
func NewCoordinateSearchTool(deps TrailDeps) *CoordinateSearchTool {
	return &CoordinateSearchTool{deps: deps}
}

// Name returns the tool name used in function-calling.
func (t *CoordinateSearchTool) Name() string { return "search_trails_by_coordinates" }

// Description returns a human-readable description for the LLM.
func (t *CoordinateSearchTool) Description() string {
	return "Search for hiking, biking, and walking trails within specific bounding-box coordinates"
}

// Definition returns the JSON Schema for coordinate search input.
func (t *CoordinateSearchTool) Definition() string {
	return GenerateSchema(CoordinateSearchInput{})
}

// Call validates the JSON arguments against the schema and executes the
// search: validate categories, build the query, query the backend, format.
func (t *CoordinateSearchTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	if err := ValidateAgainstSchema(args, t.Definition()); err != nil {
		return "", fmt.Errorf("input validation failed: %w", err)
	}

	var input CoordinateSearchInput
	if err := unmarshalFunc(args, &input); err != nil {
		return "", fmt.Errorf("failed to parse input: %w", err)
	}

	categories, err := trails.ValidateCategories(input.TrailTypes)
	if err != nil {
		return searchErrorText(err), nil
	}

	query, err := t.deps.Builder.BBoxQuery(input.South, input.West, input.North, input.East, categories)
	if err != nil {
		return searchErrorText(err), nil
	}

	rs, err := t.deps.Executor.Execute(ctx, query)
	if err != nil {
		t.deps.log().Error("coordinate search failed", "error", err)
		return searchErrorText(err), nil
	}

	return trails.FormatSummary(rs, t.deps.DisplayCap), nil
}

// searchErrorText renders a search failure as tool output.
func searchErrorText(err error) string {
	return fmt.Sprintf("Error searching trails: %v", err)
}
