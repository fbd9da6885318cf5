package tooling

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yogeswararao/trail-explorer/internal/trails"
)

// statisticsUsage is returned when the caller supplies neither an area name
// nor a complete bounding box.
const statisticsUsage = "Please provide either an area name or all four coordinates (south, west, north, east)"

// StatisticsInput represents the input structure for trail statistics.
// Either area_name or all four coordinates must be provided.
type StatisticsInput struct {
	AreaName string   `json:"area_name,omitempty" jsonschema:"description=Name of the area (alternative to coordinates)"`
	South    *float64 `json:"south,omitempty" jsonschema:"description=Southern boundary latitude (if using coordinates)"`
	West     *float64 `json:"west,omitempty" jsonschema:"description=Western boundary longitude (if using coordinates)"`
	North    *float64 `json:"north,omitempty" jsonschema:"description=Northern boundary latitude (if using coordinates)"`
	East     *float64 `json:"east,omitempty" jsonschema:"description=Eastern boundary longitude (if using coordinates)"`
}

// StatisticsTool implements SchemaTool for aggregate trail statistics over a
// named area or a bounding box. Statistics always cover every category.
type StatisticsTool struct {
	deps TrailDeps
}

// NewStatisticsTool creates a StatisticsTool with the given collaborators.
func NewStatisticsTool(deps TrailDeps) *StatisticsTool {
	return &StatisticsTool{deps: deps}
}

// Name returns the tool name used in function-calling.
func (t *StatisticsTool) Name() string { return "get_trail_statistics" }

// Description returns a human-readable description for the LLM.
func (t *StatisticsTool) Description() string {
	return "Get aggregate statistics about trails in a named area or bounding box: counts by type, surface, and difficulty"
}

// Definition returns the JSON Schema for statistics input.
func (t *StatisticsTool) Definition() string {
	return GenerateSchema(StatisticsInput{})
}

// Call validates the JSON arguments against the schema and computes the
// statistics.
func (t *StatisticsTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	if err := ValidateAgainstSchema(args, t.Definition()); err != nil {
		return "", fmt.Errorf("input validation failed: %w", err)
	}

	var input StatisticsInput
	if err := unmarshalFunc(args, &input); err != nil {
		return "", fmt.Errorf("failed to parse input: %w", err)
	}

	query, ok, err := t.buildQuery(input)
	if err != nil {
		return statisticsErrorText(err), nil
	}
	if !ok {
		return statisticsUsage, nil
	}

	rs, err := t.deps.Executor.Execute(ctx, query)
	if err != nil {
		t.deps.log().Error("trail statistics query failed", "error", err)
		return statisticsErrorText(err), nil
	}

	return trails.FormatStatistics(rs), nil
}

// buildQuery selects the area or bbox form. ok=false means neither input
// shape was supplied.
func (t *StatisticsTool) buildQuery(input StatisticsInput) (trails.QueryDocument, bool, error) {
	if input.AreaName != "" {
		q, err := t.deps.Builder.AreaQuery(input.AreaName, trails.Categories(), trails.StrategyPark)
		return q, true, err
	}
	if input.South != nil && input.West != nil && input.North != nil && input.East != nil {
		q, err := t.deps.Builder.BBoxQuery(*input.South, *input.West, *input.North, *input.East, trails.Categories())
		return q, true, err
	}
	return "", false, nil
}

// statisticsErrorText renders a statistics failure as tool output.
func statisticsErrorText(err error) string {
	return fmt.Sprintf("Error getting trail statistics: %v", err)
}
