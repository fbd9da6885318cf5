// Package connector is the session facade over the capability host and the
// reasoning orchestrator. A Connector holds the capability manifest fetched
// at Connect time and serializes query processing so that concurrent callers
// never interleave reasoning loops.
package connector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/yogeswararao/trail-explorer/internal/domain"
	"github.com/yogeswararao/trail-explorer/internal/orchestrator"
)

// Manifest is the capability catalog fetched from the host at Connect time.
// It is loaded atomically: either all three listings succeed or none of
// them is kept.
type Manifest struct {
	Tools     []domain.ToolDefinition
	Resources []domain.ResourceDefinition
	Prompts   []domain.PromptDefinition
}

// Connector binds a chat provider and a capability host into an explicit
// session. Every operation other than Connect and Disconnect fails with
// domain.ErrNotConnected until Connect has succeeded.
type Connector struct {
	host   domain.CapabilityHost
	orch   *orchestrator.Orchestrator
	logger *slog.Logger

	mu        sync.Mutex
	connected bool
	manifest  *Manifest
	preamble  string
}

// Option customizes a Connector.
type Option func(*Connector)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Connector) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Connector around the given provider and host. Panics if
// either is nil. Orchestrator options (round cap, token budget) are passed
// through unchanged.
func New(provider domain.ChatProvider, host domain.CapabilityHost, orchOpts []orchestrator.Option, opts ...Option) *Connector {
	if host == nil {
		panic("connector: nil capability host")
	}
	c := &Connector{
		host: host,
		orch: orchestrator.New(provider, host, orchOpts...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connector) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Connect fetches the capability manifest and opens the session. Calling
// Connect on an already-connected session is a no-op; the manifest is not
// refetched. Any listing failure leaves the session disconnected with no
// partial manifest.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}

	m, err := c.fetchManifest(ctx)
	if err != nil {
		return &domain.ConnectionError{Err: err}
	}

	c.manifest = m
	c.preamble = buildPreamble(m)
	c.connected = true
	c.log().Info("connected to capability host",
		"tools", len(m.Tools),
		"resources", len(m.Resources),
		"prompts", len(m.Prompts))
	return nil
}

func (c *Connector) fetchManifest(ctx context.Context) (*Manifest, error) {
	tools, err := c.host.ListTools(ctx)
	if err != nil {
		return nil, &domain.ListingError{Stage: "tools", Err: err}
	}
	resources, err := c.host.ListResources(ctx)
	if err != nil {
		return nil, &domain.ListingError{Stage: "resources", Err: err}
	}
	prompts, err := c.host.ListPrompts(ctx)
	if err != nil {
		return nil, &domain.ListingError{Stage: "prompts", Err: err}
	}
	return &Manifest{Tools: tools, Resources: resources, Prompts: prompts}, nil
}

// Disconnect closes the session and drops the manifest. Disconnecting a
// session that is not connected is a no-op.
func (c *Connector) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	c.connected = false
	c.manifest = nil
	c.preamble = ""
	c.log().Info("disconnected from capability host")
}

// Connected reports whether the session is open.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// ProcessQuery runs one user query through the reasoning loop. Queries are
// serialized; a second caller blocks until the first loop finishes.
func (c *Connector) ProcessQuery(ctx context.Context, query string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return "", domain.ErrNotConnected
	}
	return c.orch.ProcessQuery(ctx, c.preamble, query, c.manifest.Tools)
}

// GetResourceData reads a resource by URI. Read failures are recovered into
// a user-facing string rather than an error; only a closed session errors.
func (c *Connector) GetResourceData(ctx context.Context, uri string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return "", domain.ErrNotConnected
	}
	out, err := c.host.ReadResource(ctx, uri)
	if err != nil {
		return fmt.Sprintf("Error reading resource: %v", err), nil
	}
	return out, nil
}

// GetPromptData renders a prompt template with the given arguments. Render
// failures are recovered into a user-facing string rather than an error;
// only a closed session errors.
func (c *Connector) GetPromptData(ctx context.Context, name string, args map[string]string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return "", domain.ErrNotConnected
	}
	out, err := c.host.GetPrompt(ctx, name, args)
	if err != nil {
		return fmt.Sprintf("Error getting prompt: %v", err), nil
	}
	return out, nil
}

// ToolDescriptions renders the tool catalog for display, one block per tool
// separated by blank lines.
func (c *Connector) ToolDescriptions() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return "", domain.ErrNotConnected
	}
	if len(c.manifest.Tools) == 0 {
		return "No tools available", nil
	}
	blocks := make([]string, 0, len(c.manifest.Tools))
	for _, t := range c.manifest.Tools {
		blocks = append(blocks, fmt.Sprintf("Tool: %s\nDescription: %s", t.Name, t.Description))
	}
	return strings.Join(blocks, "\n\n"), nil
}

// ResourceDescriptions renders the resource catalog for display.
func (c *Connector) ResourceDescriptions() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return "", domain.ErrNotConnected
	}
	if len(c.manifest.Resources) == 0 {
		return "No resources available", nil
	}
	blocks := make([]string, 0, len(c.manifest.Resources))
	for _, r := range c.manifest.Resources {
		blocks = append(blocks, fmt.Sprintf("Resource: %s\nDescription: %s", r.URI, r.Description))
	}
	return strings.Join(blocks, "\n\n"), nil
}

// PromptDescriptions renders the prompt catalog for display, including each
// prompt's argument names.
func (c *Connector) PromptDescriptions() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return "", domain.ErrNotConnected
	}
	if len(c.manifest.Prompts) == 0 {
		return "No prompts available", nil
	}
	blocks := make([]string, 0, len(c.manifest.Prompts))
	for _, p := range c.manifest.Prompts {
		block := fmt.Sprintf("Prompt: %s\nDescription: %s", p.Name, p.Description)
		if len(p.Arguments) > 0 {
			names := make([]string, 0, len(p.Arguments))
			for _, a := range p.Arguments {
				names = append(names, a.Name)
			}
			block += "\nArguments: " + strings.Join(names, ", ")
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// ServerInfo renders a one-screen summary of the connected host.
func (c *Connector) ServerInfo() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return "", domain.ErrNotConnected
	}
	var sb strings.Builder
	sb.WriteString("Server Information:\n")
	fmt.Fprintf(&sb, "Tools: %d\n", len(c.manifest.Tools))
	fmt.Fprintf(&sb, "Resources: %d\n", len(c.manifest.Resources))
	fmt.Fprintf(&sb, "Prompts: %d\n", len(c.manifest.Prompts))

	sb.WriteString("\nTools:\n")
	for _, t := range c.manifest.Tools {
		fmt.Fprintf(&sb, "  - %s: %s\n", t.Name, t.Description)
	}
	sb.WriteString("\nResources:\n")
	for _, r := range c.manifest.Resources {
		fmt.Fprintf(&sb, "  - %s: %s\n", r.URI, r.Description)
	}
	sb.WriteString("\nPrompts:\n")
	for _, p := range c.manifest.Prompts {
		fmt.Fprintf(&sb, "  - %s: %s\n", p.Name, p.Description)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
