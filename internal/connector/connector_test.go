package connector

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/yogeswararao/trail-explorer/internal/domain"
	"github.com/yogeswararao/trail-explorer/internal/llm"
	"github.com/yogeswararao/trail-explorer/internal/orchestrator"
)

type fakeHost struct {
	tools     []domain.ToolDefinition
	resources []domain.ResourceDefinition
	prompts   []domain.PromptDefinition

	listToolsErr     error
	listResourcesErr error
	listPromptsErr   error

	listToolsCalls int

	resourceOut string
	resourceErr error
	promptOut   string
	promptErr   error
}

func (f *fakeHost) ListTools(ctx context.Context) ([]domain.ToolDefinition, error) {
	f.listToolsCalls++
	return f.tools, f.listToolsErr
}

func (f *fakeHost) ListResources(ctx context.Context) ([]domain.ResourceDefinition, error) {
	return f.resources, f.listResourcesErr
}

func (f *fakeHost) ListPrompts(ctx context.Context) ([]domain.PromptDefinition, error) {
	return f.prompts, f.listPromptsErr
}

func (f *fakeHost) CallTool(ctx context.Context, name string, args json.RawMessage) (string, error) {
	return "", &domain.ToolNotFoundError{Name: name}
}

func (f *fakeHost) ReadResource(ctx context.Context, uri string) (string, error) {
	return f.resourceOut, f.resourceErr
}

func (f *fakeHost) GetPrompt(ctx context.Context, name string, args map[string]string) (string, error) {
	return f.promptOut, f.promptErr
}

func populatedHost() *fakeHost {
	return &fakeHost{
		tools: []domain.ToolDefinition{
			{Name: "search_trails_by_coordinates", Description: "Search trails within a bounding box", InputSchema: json.RawMessage(`{"type":"object"}`)},
			{Name: "get_trail_statistics", Description: "Summarize trail data for an area"},
		},
		resources: []domain.ResourceDefinition{
			{URI: "trails://types", Description: "Supported trail types"},
		},
		prompts: []domain.PromptDefinition{
			{Name: "compare_trail_areas", Description: "Compare trails across two areas", Arguments: []domain.PromptArgument{
				{Name: "area1", Description: "First area", Required: true},
				{Name: "area2", Description: "Second area", Required: true},
			}},
		},
	}
}

func textScript(lines ...string) *llm.ScriptedProvider {
	script := make([][]domain.ContentBlock, 0, len(lines))
	for _, line := range lines {
		script = append(script, []domain.ContentBlock{domain.TextBlock{Text: line}})
	}
	return llm.NewScriptedProvider(script...)
}

func TestConnect_ShouldLoadManifestOnce(t *testing.T) {
	host := populatedHost()
	c := New(textScript("ok"), host, nil)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !c.Connected() {
		t.Fatal("expected session to be connected")
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	if host.listToolsCalls != 1 {
		t.Fatalf("expected one manifest fetch, got %d", host.listToolsCalls)
	}
}

func TestConnect_WhenListingFails_ShouldLeaveNoPartialManifest(t *testing.T) {
	cases := []struct {
		name  string
		wire  func(*fakeHost)
		stage string
	}{
		{"tools", func(h *fakeHost) { h.listToolsErr = errors.New("boom") }, "tools"},
		{"resources", func(h *fakeHost) { h.listResourcesErr = errors.New("boom") }, "resources"},
		{"prompts", func(h *fakeHost) { h.listPromptsErr = errors.New("boom") }, "prompts"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			host := populatedHost()
			tc.wire(host)
			c := New(textScript("ok"), host, nil)

			err := c.Connect(context.Background())
			if err == nil {
				t.Fatal("expected Connect to fail")
			}
			var connErr *domain.ConnectionError
			if !errors.As(err, &connErr) {
				t.Fatalf("expected ConnectionError, got %T", err)
			}
			var listErr *domain.ListingError
			if !errors.As(err, &listErr) || listErr.Stage != tc.stage {
				t.Fatalf("expected ListingError for stage %q, got %v", tc.stage, err)
			}
			if c.Connected() {
				t.Fatal("session must stay disconnected after a listing failure")
			}
			if _, opErr := c.ToolDescriptions(); !errors.Is(opErr, domain.ErrNotConnected) {
				t.Fatalf("expected ErrNotConnected after failed Connect, got %v", opErr)
			}
		})
	}
}

func TestOperations_WhenNotConnected_ShouldFailClosed(t *testing.T) {
	c := New(textScript("ok"), populatedHost(), nil)
	ctx := context.Background()

	ops := map[string]func() error{
		"ProcessQuery":         func() error { _, err := c.ProcessQuery(ctx, "hi"); return err },
		"GetResourceData":      func() error { _, err := c.GetResourceData(ctx, "trails://types"); return err },
		"GetPromptData":        func() error { _, err := c.GetPromptData(ctx, "compare_trail_areas", nil); return err },
		"ToolDescriptions":     func() error { _, err := c.ToolDescriptions(); return err },
		"ResourceDescriptions": func() error { _, err := c.ResourceDescriptions(); return err },
		"PromptDescriptions":   func() error { _, err := c.PromptDescriptions(); return err },
		"ServerInfo":           func() error { _, err := c.ServerInfo(); return err },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, domain.ErrNotConnected) {
			t.Errorf("%s: expected ErrNotConnected, got %v", name, err)
		}
	}
}

func TestDisconnect_ShouldBeIdempotentAndCloseSession(t *testing.T) {
	c := New(textScript("ok"), populatedHost(), nil)
	c.Disconnect()
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	c.Disconnect()
	c.Disconnect()
	if c.Connected() {
		t.Fatal("expected session to be closed")
	}
	if _, err := c.ProcessQuery(context.Background(), "hi"); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after Disconnect, got %v", err)
	}
}

type captureProvider struct {
	req domain.ChatRequest
}

func (p *captureProvider) Chat(ctx context.Context, req domain.ChatRequest) ([]domain.ContentBlock, error) {
	p.req = req
	return []domain.ContentBlock{domain.TextBlock{Text: "done"}}, nil
}

func TestProcessQuery_ShouldSeedPreambleAndManifestTools(t *testing.T) {
	provider := &captureProvider{}
	c := New(provider, populatedHost(), nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	out, err := c.ProcessQuery(context.Background(), "find trails near Boulder")
	if err != nil {
		t.Fatalf("ProcessQuery failed: %v", err)
	}
	if out != "done" {
		t.Fatalf("unexpected answer %q", out)
	}
	if len(provider.req.Tools) != 2 || provider.req.Tools[0].Name != "search_trails_by_coordinates" {
		t.Fatalf("expected manifest tools on the request, got %+v", provider.req.Tools)
	}
	if len(provider.req.Messages) != 1 {
		t.Fatalf("expected a single opening message, got %d", len(provider.req.Messages))
	}
	opening := provider.req.Messages[0].Blocks[0].(domain.TextBlock).Text
	if !strings.HasPrefix(opening, "You are a helpful assistant") {
		t.Fatalf("opening turn missing preamble: %q", opening[:60])
	}
	if !strings.HasSuffix(opening, "User Query: find trails near Boulder") {
		t.Fatalf("opening turn missing query suffix: %q", opening)
	}
}

func TestProcessQuery_ShouldHonorOrchestratorOptions(t *testing.T) {
	looping := llm.NewScriptedProvider()
	c := New(looping, populatedHost(), []orchestrator.Option{orchestrator.WithMaxRounds(2)})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, err := c.ProcessQuery(context.Background(), "hello"); err != nil {
		t.Fatalf("ProcessQuery failed: %v", err)
	}
}

func TestGetResourceData_WhenReadFails_ShouldRecoverIntoText(t *testing.T) {
	host := populatedHost()
	host.resourceErr = errors.New("no such resource")
	c := New(textScript("ok"), host, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	out, err := c.GetResourceData(context.Background(), "trails://nope")
	if err != nil {
		t.Fatalf("expected recovered output, got error %v", err)
	}
	if out != "Error reading resource: no such resource" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestGetPromptData_WhenRenderFails_ShouldRecoverIntoText(t *testing.T) {
	host := populatedHost()
	host.promptErr = errors.New("missing required argument")
	c := New(textScript("ok"), host, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	out, err := c.GetPromptData(context.Background(), "compare_trail_areas", nil)
	if err != nil {
		t.Fatalf("expected recovered output, got error %v", err)
	}
	if out != "Error getting prompt: missing required argument" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestGetPromptData_ShouldReturnRenderedPrompt(t *testing.T) {
	host := populatedHost()
	host.promptOut = "Compare Boulder and Moab."
	c := New(textScript("ok"), host, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	out, err := c.GetPromptData(context.Background(), "compare_trail_areas", map[string]string{"area1": "Boulder", "area2": "Moab"})
	if err != nil {
		t.Fatalf("GetPromptData failed: %v", err)
	}
	if out != "Compare Boulder and Moab." {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestToolDescriptions_ShouldRenderOneBlockPerTool(t *testing.T) {
	c := New(textScript("ok"), populatedHost(), nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	out, err := c.ToolDescriptions()
	if err != nil {
		t.Fatalf("ToolDescriptions failed: %v", err)
	}
	blocks := strings.Split(out, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %q", len(blocks), out)
	}
	want := "Tool: search_trails_by_coordinates\nDescription: Search trails within a bounding box"
	if blocks[0] != want {
		t.Fatalf("unexpected first block %q", blocks[0])
	}
}

func TestPromptDescriptions_ShouldListArgumentNames(t *testing.T) {
	c := New(textScript("ok"), populatedHost(), nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	out, err := c.PromptDescriptions()
	if err != nil {
		t.Fatalf("PromptDescriptions failed: %v", err)
	}
	if !strings.Contains(out, "Arguments: area1, area2") {
		t.Fatalf("expected argument names in %q", out)
	}
}

func TestServerInfo_ShouldSummarizeManifest(t *testing.T) {
	c := New(textScript("ok"), populatedHost(), nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	out, err := c.ServerInfo()
	if err != nil {
		t.Fatalf("ServerInfo failed: %v", err)
	}
	for _, want := range []string{
		"Server Information:",
		"Tools: 2",
		"Resources: 1",
		"Prompts: 1",
		"  - search_trails_by_coordinates: Search trails within a bounding box",
		"  - trails://types: Supported trail types",
		"  - compare_trail_areas: Compare trails across two areas",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ServerInfo missing %q in:\n%s", want, out)
		}
	}
}

func TestBuildPreamble_ShouldRenderCapabilitySections(t *testing.T) {
	host := populatedHost()
	m := &Manifest{Tools: host.tools, Resources: host.resources, Prompts: host.prompts}
	preamble := buildPreamble(m)

	for _, want := range []string{
		"1. TOOLS (for executing actions):",
		"• search_trails_by_coordinates: Search trails within a bounding box",
		"  Input: {",
		"2. RESOURCES (for reading data):",
		"• trails://types: Supported trail types",
		"3. PROMPTS (for predefined workflows):",
		"• compare_trail_areas: Compare trails across two areas",
		"  Arguments: [",
		"Response format: Plain text only.",
	} {
		if !strings.Contains(preamble, want) {
			t.Errorf("preamble missing %q", want)
		}
	}
	if strings.Contains(preamble, "No tools available") {
		t.Error("populated manifest must not render the empty-section text")
	}
}

func TestBuildPreamble_WhenManifestEmpty_ShouldRenderPlaceholders(t *testing.T) {
	preamble := buildPreamble(&Manifest{})
	for _, want := range []string{"No tools available", "No resources available", "No prompts available"} {
		if !strings.Contains(preamble, want) {
			t.Errorf("preamble missing %q", want)
		}
	}
}

func TestNew_WhenHostNil_ShouldPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil host")
		}
	}()
	_ = New(textScript("ok"), nil, nil)
}
