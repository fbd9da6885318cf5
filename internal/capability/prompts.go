package capability

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yogeswararao/trail-explorer/internal/domain"
)

//go:embed prompts/*.md
var promptFS embed.FS

// =============================================================================
// Frontmatter Types
// =============================================================================

// PromptArg describes a single argument of a Markdown-defined prompt template.
type PromptArg struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// PromptFrontmatter holds the YAML frontmatter parsed from a prompt .md file.
type PromptFrontmatter struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Args        []PromptArg `yaml:"args"`
}

// PromptTemplate is one parsed prompt: its metadata and its Markdown body
// with {placeholder} slots.
type PromptTemplate struct {
	Frontmatter PromptFrontmatter
	Body        string
}

// =============================================================================
// ParseFrontmatter
// =============================================================================

// ParseFrontmatter splits a Markdown string into its YAML frontmatter and
// body. Frontmatter must be delimited by "---" on lines by themselves.
// Returns the parsed frontmatter, the trimmed body, and any error.
func ParseFrontmatter(content string) (*PromptFrontmatter, string, error) {
	const delimiter = "---"

	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, delimiter) {
		return nil, "", fmt.Errorf("no frontmatter found: content must start with ---")
	}

	rest := trimmed[len(delimiter):]
	closingIdx := strings.Index(rest, "\n"+delimiter)
	if closingIdx == -1 {
		return nil, "", fmt.Errorf("no closing --- delimiter found")
	}

	yamlContent := rest[:closingIdx]
	body := strings.TrimSpace(rest[closingIdx+len("\n"+delimiter):])

	var fm PromptFrontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return nil, "", fmt.Errorf("invalid YAML frontmatter: %w", err)
	}

	if fm.Name == "" {
		return nil, "", fmt.Errorf("frontmatter missing required field: name")
	}
	if fm.Description == "" {
		return nil, "", fmt.Errorf("frontmatter missing required field: description")
	}

	return &fm, body, nil
}

// =============================================================================
// PromptLibrary
// =============================================================================

// PromptLibrary holds the parsed prompt templates keyed by name.
type PromptLibrary struct {
	templates map[string]PromptTemplate
	order     []string
}

// LoadPrompts parses every embedded prompt template. A single malformed
// template fails the whole load.
func LoadPrompts() (*PromptLibrary, error) {
	return loadPromptsFrom(promptFS)
}

func loadPromptsFrom(fsys fs.FS) (*PromptLibrary, error) {
	entries, err := fs.ReadDir(fsys, "prompts")
	if err != nil {
		return nil, fmt.Errorf("read prompt directory: %w", err)
	}

	lib := &PromptLibrary{templates: make(map[string]PromptTemplate)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		raw, err := fs.ReadFile(fsys, "prompts/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", entry.Name(), err)
		}
		fm, body, err := ParseFrontmatter(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse prompt %s: %w", entry.Name(), err)
		}
		if _, exists := lib.templates[fm.Name]; exists {
			return nil, fmt.Errorf("duplicate prompt name %q", fm.Name)
		}
		lib.templates[fm.Name] = PromptTemplate{Frontmatter: *fm, Body: body}
		lib.order = append(lib.order, fm.Name)
	}
	sort.Strings(lib.order)
	return lib, nil
}

// Definitions returns the prompt catalog in name order.
func (l *PromptLibrary) Definitions() []domain.PromptDefinition {
	out := make([]domain.PromptDefinition, 0, len(l.order))
	for _, name := range l.order {
		t := l.templates[name]
		def := domain.PromptDefinition{
			Name:        t.Frontmatter.Name,
			Description: t.Frontmatter.Description,
		}
		for _, arg := range t.Frontmatter.Args {
			def.Arguments = append(def.Arguments, domain.PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Required,
			})
		}
		out = append(out, def)
	}
	return out
}

// Render fills a template's {placeholder} slots with the given arguments.
// Missing required arguments fail; unknown arguments are ignored.
func (l *PromptLibrary) Render(name string, args map[string]string) (string, error) {
	t, ok := l.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt: %q", name)
	}

	for _, arg := range t.Frontmatter.Args {
		if arg.Required {
			if v, present := args[arg.Name]; !present || v == "" {
				return "", fmt.Errorf("prompt %q missing required argument %q", name, arg.Name)
			}
		}
	}

	rendered := t.Body
	for _, arg := range t.Frontmatter.Args {
		rendered = strings.ReplaceAll(rendered, "{"+arg.Name+"}", args[arg.Name])
	}
	return rendered, nil
}
