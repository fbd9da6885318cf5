// Package capability is the in-process capability host: the trail tools, the
// trails:// resources, and the prompt template library behind one surface the
// connector can list and invoke.
package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/yogeswararao/trail-explorer/internal/domain"
	"github.com/yogeswararao/trail-explorer/internal/tooling"
	"github.com/yogeswararao/trail-explorer/internal/trails"
)

// ServerName identifies the host in connection summaries.
const ServerName = "trail-explorer"

// emptyToolResult is relayed when a tool produces no output.
const emptyToolResult = "No content returned from tool"

// emptyResourceResult is relayed when a resource produces no output.
const emptyResourceResult = "No content returned from resource"

// Option is a functional option for configuring LocalHost.
type Option func(*LocalHost)

// WithLogger sets a structured logger for the host. If l is nil it is
// ignored and the default slog logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(h *LocalHost) {
		if l != nil {
			h.logger = l
		}
	}
}

// LocalHost implements domain.CapabilityHost with in-process tools,
// resources, and prompts.
type LocalHost struct {
	tools   *tooling.ToolRegistry
	prompts *PromptLibrary
	deps    tooling.TrailDeps
	logger  *slog.Logger // optional; nil uses slog.Default()
}

// NewLocalHost builds the host: registers the three trail tools and loads the
// embedded prompt library. deps.Builder and deps.Executor must not be nil.
func NewLocalHost(deps tooling.TrailDeps, opts ...Option) (*LocalHost, error) {
	if deps.Builder == nil {
		return nil, fmt.Errorf("capability: builder must not be nil")
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("capability: executor must not be nil")
	}

	registry := tooling.NewToolRegistry()
	for _, tool := range []tooling.SchemaTool{
		tooling.NewCoordinateSearchTool(deps),
		tooling.NewAreaSearchTool(deps),
		tooling.NewStatisticsTool(deps),
	} {
		if err := registry.Register(tool); err != nil {
			return nil, fmt.Errorf("capability: %w", err)
		}
	}

	prompts, err := LoadPrompts()
	if err != nil {
		return nil, fmt.Errorf("capability: %w", err)
	}

	h := &LocalHost{tools: registry, prompts: prompts, deps: deps}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *LocalHost) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// ListTools returns the tool catalog in registration order.
func (h *LocalHost) ListTools(ctx context.Context) ([]domain.ToolDefinition, error) {
	return h.tools.Definitions(), nil
}

// ListResources returns the resource catalog.
func (h *LocalHost) ListResources(ctx context.Context) ([]domain.ResourceDefinition, error) {
	return []domain.ResourceDefinition{
		{
			URI:         "trails://bbox/{south}/{west}/{north}/{east}",
			Name:        "Trails by bounding box",
			Description: "Get trails within a bounding box (south, west, north, east coordinates)",
			MIMEType:    "text/plain",
		},
		{
			URI:         "trails://area/{area_name}",
			Name:        "Trails by area name",
			Description: "Get trails within a named area (city, park, region)",
			MIMEType:    "text/plain",
		},
		{
			URI:         "trails://types",
			Name:        "Supported trail types",
			Description: "Get information about supported trail types and their OSM mappings",
			MIMEType:    "text/plain",
		},
	}, nil
}

// ListPrompts returns the prompt catalog in name order.
func (h *LocalHost) ListPrompts(ctx context.Context) ([]domain.PromptDefinition, error) {
	return h.prompts.Definitions(), nil
}

// CallTool dispatches to a registered tool. An unknown name fails with
// ToolNotFoundError; a tool that produces no output yields a fixed notice.
func (h *LocalHost) CallTool(ctx context.Context, name string, args json.RawMessage) (string, error) {
	tool, err := h.tools.Get(name)
	if err != nil {
		return "", err
	}

	h.log().Debug("calling tool", "tool", name)
	result, err := tool.Call(ctx, args)
	if err != nil {
		return "", err
	}
	if result == "" {
		return emptyToolResult, nil
	}
	return result, nil
}

// ReadResource resolves a trails:// URI and renders its content. Backend
// failures are reported inside the content, matching tool behaviour.
func (h *LocalHost) ReadResource(ctx context.Context, uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "trails://")
	if !ok {
		return "", fmt.Errorf("unknown resource: %q", uri)
	}

	var content string
	switch {
	case rest == "types":
		content = trails.TypesInfo()
	case strings.HasPrefix(rest, "bbox/"):
		content = h.readBBox(ctx, strings.TrimPrefix(rest, "bbox/"))
	case strings.HasPrefix(rest, "area/"):
		content = h.readArea(ctx, strings.TrimPrefix(rest, "area/"))
	default:
		return "", fmt.Errorf("unknown resource: %q", uri)
	}

	if content == "" {
		return emptyResourceResult, nil
	}
	return content, nil
}

// GetPrompt renders a prompt template with the given arguments.
func (h *LocalHost) GetPrompt(ctx context.Context, name string, args map[string]string) (string, error) {
	return h.prompts.Render(name, args)
}

// readBBox handles trails://bbox/{south}/{west}/{north}/{east}.
func (h *LocalHost) readBBox(ctx context.Context, path string) string {
	parts := strings.Split(path, "/")
	if len(parts) != 4 {
		return resourceErrorText(fmt.Errorf("expected four coordinates, got %d", len(parts)))
	}
	coords := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return resourceErrorText(fmt.Errorf("invalid coordinate %q", p))
		}
		coords[i] = v
	}

	query, err := h.deps.Builder.BBoxQuery(coords[0], coords[1], coords[2], coords[3], trails.Categories())
	if err != nil {
		return resourceErrorText(err)
	}
	rs, err := h.deps.Executor.Execute(ctx, query)
	if err != nil {
		h.log().Error("bbox resource query failed", "error", err)
		return resourceErrorText(err)
	}
	return trails.FormatSummary(rs, h.deps.DisplayCap)
}

// readArea handles trails://area/{area_name}.
func (h *LocalHost) readArea(ctx context.Context, name string) string {
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	query, err := h.deps.Builder.AreaQuery(name, trails.Categories(), trails.StrategyPark)
	if err != nil {
		return resourceErrorText(err)
	}
	rs, err := h.deps.Executor.Execute(ctx, query)
	if err != nil {
		h.log().Error("area resource query failed", "error", err)
		return resourceErrorText(err)
	}
	return trails.FormatSummary(rs, h.deps.DisplayCap)
}

// resourceErrorText renders a resource failure as content.
func resourceErrorText(err error) string {
	return fmt.Sprintf("Error retrieving trail data: %v", err)
}

// Compile-time check that LocalHost implements CapabilityHost.
var _ domain.CapabilityHost = (*LocalHost)(nil)
