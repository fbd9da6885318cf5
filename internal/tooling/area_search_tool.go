package tooling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yogeswararao/trail-explorer/internal/domain"
	"github.com/yogeswararao/trail-explorer/internal/trails"
)

// AreaFallbackSentinel is returned when every area-resolution strategy comes
// back empty.
const AreaFallbackSentinel = "No trails found in the specified area after trying multiple search strategies."

// AreaSearchInput represents the input structure for named-area trail
// searches.
type AreaSearchInput struct {
	AreaName   string   `json:"area_name" jsonschema:"minLength=1,description=Name of the area to search in (city, park, region)"`
	TrailTypes []string `json:"trail_types,omitempty" jsonschema:"description=Trail types to search for (hiking, biking, walking)"`
}

// AreaSearchTool implements SchemaTool for trail searches in a named area.
// The area is resolved by trying each strategy in order (park, then
// administrative boundary, then any named area); the first strategy that
// yields elements wins. A strategy whose query fails is logged and skipped,
// not fatal.
type AreaSearchTool struct {
	deps TrailDeps
}

// NewAreaSearchTool creates an AreaSearchTool with the given collaborators.
func NewAreaSearchTool(deps TrailDeps) *AreaSearchTool {
	return &AreaSearchTool{deps: deps}
}

// Name returns the tool name used in function-calling.
func (t *AreaSearchTool) Name() string { return "search_trails_by_area_name" }

// Description returns a human-readable description for the LLM.
func (t *AreaSearchTool) Description() string {
	return "Search for hiking, biking, and walking trails in a named area such as a city, park, or region"
}

// Definition returns the JSON Schema for area search input.
func (t *AreaSearchTool) Definition() string {
	return GenerateSchema(AreaSearchInput{})
}

// Call validates the JSON arguments against the schema and runs the
// multi-strategy search.
func (t *AreaSearchTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	if err := ValidateAgainstSchema(args, t.Definition()); err != nil {
		return "", fmt.Errorf("input validation failed: %w", err)
	}

	var input AreaSearchInput
	if err := unmarshalFunc(args, &input); err != nil {
		return "", fmt.Errorf("failed to parse input: %w", err)
	}

	categories, err := trails.ValidateCategories(input.TrailTypes)
	if err != nil {
		return searchErrorText(err), nil
	}

	for _, strategy := range trails.AreaStrategies() {
		t.deps.log().Info("trying area search strategy",
			"strategy", string(strategy),
			"area", input.AreaName,
		)

		query, err := t.deps.Builder.AreaQuery(input.AreaName, categories, strategy)
		if err != nil {
			// A bad area name fails every strategy identically.
			var ife *domain.InvalidFilterError
			if errors.As(err, &ife) {
				return searchErrorText(err), nil
			}
			t.deps.log().Warn("area search strategy failed",
				"strategy", string(strategy),
				"area", input.AreaName,
				"error", err,
			)
			continue
		}

		rs, err := t.deps.Executor.Execute(ctx, query)
		if err != nil {
			t.deps.log().Warn("area search strategy failed",
				"strategy", string(strategy),
				"area", input.AreaName,
				"error", err,
			)
			continue
		}

		if len(rs.Elements) > 0 {
			t.deps.log().Info("area search strategy succeeded",
				"strategy", string(strategy),
				"area", input.AreaName,
			)
			return trails.FormatSummary(rs, t.deps.DisplayCap), nil
		}
	}

	return AreaFallbackSentinel, nil
}
