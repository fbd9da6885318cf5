package tooling

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/yogeswararao/trail-explorer/internal/trails"
)

// fakeExecutor returns canned results per call, in order. A nil entry in
// errs means success for that call.
type fakeExecutor struct {
	results []trails.ResultSet
	errs    []error
	queries []trails.QueryDocument
}

func (f *fakeExecutor) Execute(_ context.Context, q trails.QueryDocument) (trails.ResultSet, error) {
	call := len(f.queries)
	f.queries = append(f.queries, q)
	var rs trails.ResultSet
	if call < len(f.results) {
		rs = f.results[call]
	}
	if call < len(f.errs) && f.errs[call] != nil {
		return trails.ResultSet{}, f.errs[call]
	}
	return rs, nil
}

func oneHikingTrail(name string) trails.ResultSet {
	return trails.ResultSet{Elements: []trails.Element{
		{Type: "way", ID: 1, Tags: map[string]string{"route": "hiking", "name": name}},
	}}
}

func testDeps(exec *fakeExecutor) TrailDeps {
	return TrailDeps{
		Builder:    trails.NewBuilder(30),
		Executor:   exec,
		DisplayCap: 50,
	}
}

// =============================================================================
// CoordinateSearchTool
// =============================================================================

func TestCoordinateSearchTool_Call_ShouldReturnFormattedSummary(t *testing.T) {
	exec := &fakeExecutor{results: []trails.ResultSet{oneHikingTrail("Ridge Loop")}}
	tool := NewCoordinateSearchTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"south":40.7,"west":-74.0,"north":40.8,"east":-73.9,"trail_types":["hiking"]}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(out, "Found 1 trail elements:") {
		t.Errorf("expected summary output, got %q", out)
	}
	if !strings.Contains(out, "Ridge Loop (Hiking)") {
		t.Errorf("expected trail detail line, got %q", out)
	}
	if len(exec.queries) != 1 {
		t.Fatalf("want 1 backend query, got %d", len(exec.queries))
	}
	if !strings.Contains(exec.queries[0].String(), `relation["route"="hiking"]`) {
		t.Errorf("unexpected query:\n%s", exec.queries[0])
	}
}

func TestCoordinateSearchTool_Call_WhenBoundsInvalid_ShouldReportAsOutput(t *testing.T) {
	exec := &fakeExecutor{}
	tool := NewCoordinateSearchTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"south":95,"west":-74.0,"north":40.8,"east":-73.9}`))
	if err != nil {
		t.Fatalf("domain failures must be tool output, got error %v", err)
	}
	if !strings.HasPrefix(out, "Error searching trails:") {
		t.Errorf("expected error text output, got %q", out)
	}
	if !strings.Contains(out, "latitude must be between -90 and 90") {
		t.Errorf("expected validation message, got %q", out)
	}
	if len(exec.queries) != 0 {
		t.Error("backend must not be queried for invalid bounds")
	}
}

func TestCoordinateSearchTool_Call_WhenNoValidTrailTypes_ShouldReportAsOutput(t *testing.T) {
	tool := NewCoordinateSearchTool(testDeps(&fakeExecutor{}))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"south":1,"west":1,"north":2,"east":2,"trail_types":["skiing"]}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "no valid trail types specified") {
		t.Errorf("expected category validation message, got %q", out)
	}
}

func TestCoordinateSearchTool_Call_WhenBackendFails_ShouldReportAsOutput(t *testing.T) {
	exec := &fakeExecutor{errs: []error{errors.New("overpass query: HTTP 504")}}
	tool := NewCoordinateSearchTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"south":1,"west":1,"north":2,"east":2}`))
	if err != nil {
		t.Fatalf("backend failures must be tool output, got error %v", err)
	}
	if !strings.Contains(out, "Error searching trails:") || !strings.Contains(out, "504") {
		t.Errorf("expected backend diagnostic, got %q", out)
	}
}

func TestCoordinateSearchTool_Call_WhenArgsMissingRequired_ShouldReturnError(t *testing.T) {
	tool := NewCoordinateSearchTool(testDeps(&fakeExecutor{}))
	_, err := tool.Call(context.Background(), json.RawMessage(`{"south":1}`))
	if err == nil {
		t.Error("expected schema validation error for missing coordinates")
	}
}

// =============================================================================
// AreaSearchTool
// =============================================================================

func TestAreaSearchTool_Call_ShouldStopAtFirstStrategyWithResults(t *testing.T) {
	exec := &fakeExecutor{
		results: []trails.ResultSet{
			{}, // park strategy: empty
			oneHikingTrail("Boulder Creek Path"), // administrative strategy
		},
	}
	tool := NewAreaSearchTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(`{"area_name":"Boulder"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "Boulder Creek Path (Hiking)") {
		t.Errorf("expected summary from second strategy, got %q", out)
	}
	if len(exec.queries) != 2 {
		t.Fatalf("want 2 backend queries, got %d", len(exec.queries))
	}
	if !strings.Contains(exec.queries[0].String(), `["leisure"="park"]`) {
		t.Error("first query must use the park strategy")
	}
	if !strings.Contains(exec.queries[1].String(), `["boundary"="administrative"]`) {
		t.Error("second query must use the administrative strategy")
	}
}

func TestAreaSearchTool_Call_WhenAllStrategiesEmpty_ShouldReturnFallbackSentinel(t *testing.T) {
	exec := &fakeExecutor{}
	tool := NewAreaSearchTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(`{"area_name":"Nowhere"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != AreaFallbackSentinel {
		t.Errorf("expected fallback sentinel, got %q", out)
	}
	if len(exec.queries) != 3 {
		t.Errorf("want all 3 strategies tried, got %d", len(exec.queries))
	}
}

func TestAreaSearchTool_Call_WhenOneStrategyFails_ShouldContinueWithNext(t *testing.T) {
	exec := &fakeExecutor{
		errs:    []error{errors.New("overpass query: HTTP 503"), nil},
		results: []trails.ResultSet{{}, oneHikingTrail("Rim Trail")},
	}
	tool := NewAreaSearchTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(`{"area_name":"Zion"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "Rim Trail (Hiking)") {
		t.Errorf("expected results from the surviving strategy, got %q", out)
	}
}

func TestAreaSearchTool_Call_WhenAreaNameBlank_ShouldReportAsOutput(t *testing.T) {
	exec := &fakeExecutor{}
	tool := NewAreaSearchTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(`{"area_name":"   "}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "area name cannot be empty") {
		t.Errorf("expected empty-name message, got %q", out)
	}
	if len(exec.queries) != 0 {
		t.Error("backend must not be queried for a blank area name")
	}
}

// =============================================================================
// StatisticsTool
// =============================================================================

func TestStatisticsTool_Call_WithAreaName_ShouldUseParkStrategy(t *testing.T) {
	exec := &fakeExecutor{results: []trails.ResultSet{oneHikingTrail("Ridge")}}
	tool := NewStatisticsTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(`{"area_name":"Central Park"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(out, "Trail Statistics:") {
		t.Errorf("expected statistics output, got %q", out)
	}
	if len(exec.queries) != 1 || !strings.Contains(exec.queries[0].String(), `["leisure"="park"]`) {
		t.Errorf("expected one park-strategy query, got %v", exec.queries)
	}
}

func TestStatisticsTool_Call_WithBoundingBox_ShouldQueryAllCategories(t *testing.T) {
	exec := &fakeExecutor{results: []trails.ResultSet{oneHikingTrail("Ridge")}}
	tool := NewStatisticsTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"south":40.7,"west":-74.0,"north":40.8,"east":-73.9}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(out, "Trail Statistics:") {
		t.Errorf("expected statistics output, got %q", out)
	}
	q := exec.queries[0].String()
	for _, route := range []string{"hiking", "bicycle", "walking"} {
		if !strings.Contains(q, `relation["route"="`+route+`"]`) {
			t.Errorf("expected %s route clause in statistics query", route)
		}
	}
}

func TestStatisticsTool_Call_WhenNeitherInputShape_ShouldReturnUsage(t *testing.T) {
	exec := &fakeExecutor{}
	tool := NewStatisticsTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(`{"south":40.7,"west":-74.0}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != statisticsUsage {
		t.Errorf("expected usage message, got %q", out)
	}
	if len(exec.queries) != 0 {
		t.Error("backend must not be queried without a complete input shape")
	}
}

func TestStatisticsTool_Call_WhenBackendFails_ShouldReportAsOutput(t *testing.T) {
	exec := &fakeExecutor{errs: []error{errors.New("overpass query: HTTP 500")}}
	tool := NewStatisticsTool(testDeps(exec))

	out, err := tool.Call(context.Background(), json.RawMessage(`{"area_name":"Central Park"}`))
	if err != nil {
		t.Fatalf("backend failures must be tool output, got error %v", err)
	}
	if !strings.Contains(out, "Error getting trail statistics:") {
		t.Errorf("expected statistics error text, got %q", out)
	}
}
