// Package cli implements the interactive trail chat session and the check
// subcommand. The chat loop reads one line at a time, handles a small set of
// reserved words locally, and hands everything else to the connector's
// reasoning loop.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Session is the connector surface the chat loop needs. Satisfied by
// *connector.Connector.
type Session interface {
	ProcessQuery(ctx context.Context, query string) (string, error)
	ToolDescriptions() (string, error)
	ResourceDescriptions() (string, error)
	PromptDescriptions() (string, error)
	ServerInfo() (string, error)
}

const helpText = `Available Commands:
  help           Show this help message
  tools          Show available tools and their descriptions
  resources      Show available resources and their descriptions
  prompts        Show available prompts and their descriptions
  info           Show server information
  clear          Clear the screen
  quit/exit/q    Exit the application

Example Queries:
  "Find hiking trails in Central Park"
  "What biking trails are available in San Francisco?"
  "Show me walking trails near coordinates 40.7, -74.0, 40.8, -73.9"
  "Get trail statistics for Golden Gate Park"
  "What types of trails are supported?"
  "Compare trails between Central Park and Prospect Park"
  "Plan a hiking adventure in Yosemite"
  "Analyze trail surfaces in Boulder"

I'll automatically use the appropriate tools, resources, and prompts to search for trails and provide comprehensive responses.`

// Chat is the interactive loop over a connected session.
type Chat struct {
	session Session
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
}

// Option customizes a Chat.
type Option func(*Chat)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *Chat) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewChat builds the chat loop. Panics if session, in, or out is nil.
func NewChat(session Session, in io.Reader, out io.Writer, opts ...Option) *Chat {
	if session == nil {
		panic("cli: nil session")
	}
	if in == nil || out == nil {
		panic("cli: nil input or output stream")
	}
	c := &Chat{session: session, in: in, out: out}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chat) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Run drives the session until quit, EOF, or context cancellation.
func (c *Chat) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Trail Explorer Chat App")
	fmt.Fprintln(c.out, strings.Repeat("=", 50))
	fmt.Fprintln(c.out, "Welcome! I can help you find hiking, biking, and walking trails.")
	fmt.Fprintln(c.out, "I'll automatically search for trails based on your queries.")
	fmt.Fprintln(c.out, "Type 'help' for available commands, 'quit' to exit.")
	fmt.Fprintln(c.out)

	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "You: ")
		if !scanner.Scan() {
			c.goodbye()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			c.goodbye()
			return nil
		case "help":
			fmt.Fprintln(c.out, helpText)
			fmt.Fprintln(c.out)
		case "tools":
			c.showCatalog("Available Tools:", c.session.ToolDescriptions)
		case "resources":
			c.showCatalog("Available Resources:", c.session.ResourceDescriptions)
		case "prompts":
			c.showCatalog("Available Prompts:", c.session.PromptDescriptions)
		case "info":
			c.showCatalog("Server Information:", c.session.ServerInfo)
		case "clear":
			fmt.Fprint(c.out, "\033[2J\033[H")
		default:
			c.answer(ctx, line)
		}
	}
}

func (c *Chat) answer(ctx context.Context, query string) {
	fmt.Fprintln(c.out, "Assistant: Thinking...")
	response, err := c.session.ProcessQuery(ctx, query)
	if err != nil {
		c.log().Error("query failed", "error", err)
		fmt.Fprintf(c.out, "Error: %v\n", err)
		fmt.Fprintln(c.out, "Please try again or type 'quit' to exit.")
		return
	}
	fmt.Fprintf(c.out, "Assistant: %s\n\n", response)
}

func (c *Chat) showCatalog(header string, fetch func() (string, error)) {
	fmt.Fprintln(c.out, header)
	fmt.Fprintln(c.out, strings.Repeat("-", 30))
	info, err := fetch()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n\n", err)
		return
	}
	fmt.Fprintln(c.out, info)
	fmt.Fprintln(c.out)
}

func (c *Chat) goodbye() {
	fmt.Fprintln(c.out, "Goodbye! Thanks for using Trail Explorer Chat.")
}
