package connector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yogeswararao/trail-explorer/internal/domain"
)

// buildPreamble renders the system preamble sent at the start of every
// query: the assistant's role, the capability catalog, and the usage and
// formatting rules.
func buildPreamble(m *Manifest) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant that can search for hiking, biking, and walking trails using the Trail Explorer system.\n\n")
	sb.WriteString("You have access to three types of capabilities:\n\n")

	sb.WriteString("1. TOOLS (for executing actions):\n")
	sb.WriteString(formatToolsSection(m.Tools))
	sb.WriteString("\n\n2. RESOURCES (for reading data):\n")
	sb.WriteString(formatResourcesSection(m.Resources))
	sb.WriteString("\n\n3. PROMPTS (for predefined workflows):\n")
	sb.WriteString(formatPromptsSection(m.Prompts))

	sb.WriteString("\n\nWhen a user asks about trails, you should:\n")
	sb.WriteString("  1. Use the appropriate tools to search for trails based on their query\n")
	sb.WriteString("  2. If they mention a location, use search_trails_by_area_name\n")
	sb.WriteString("  3. If they mention coordinates or want to search a specific area, use search_trails_by_coordinates\n")
	sb.WriteString("  4. If they want statistics, use get_trail_statistics\n")
	sb.WriteString("  5. If they want information about trail types, use the trails://types resource\n")
	sb.WriteString("  6. If they want to compare areas, use the compare_trail_areas prompt\n")
	sb.WriteString("  7. If they want to plan an adventure, use the plan_trail_adventure prompt\n")
	sb.WriteString("  8. If they want surface analysis, use the trail_surface_analysis prompt\n\n")

	sb.WriteString("Always provide comprehensive, well-formatted responses that include:\n")
	sb.WriteString("  - Summary of what you found\n")
	sb.WriteString("  - Number of trails found\n")
	sb.WriteString("  - Types of trails available\n")
	sb.WriteString("  - Key details about the trails\n")
	sb.WriteString("  - Any relevant statistics\n\n")

	sb.WriteString("Response format: Plain text only. No asterisks, backticks, hashes, or other markdown syntax. No bold, italic, or code formatting. Terminal-friendly output only.")
	return sb.String()
}

func formatToolsSection(tools []domain.ToolDefinition) string {
	if len(tools) == 0 {
		return "No tools available"
	}
	descriptions := make([]string, 0, len(tools))
	for _, tool := range tools {
		desc := fmt.Sprintf("• %s: %s", tool.Name, tool.Description)
		if len(tool.InputSchema) > 0 {
			desc += "\n  Input: " + indentJSON(tool.InputSchema)
		}
		descriptions = append(descriptions, desc)
	}
	return strings.Join(descriptions, "\n")
}

func formatResourcesSection(resources []domain.ResourceDefinition) string {
	if len(resources) == 0 {
		return "No resources available"
	}
	descriptions := make([]string, 0, len(resources))
	for _, r := range resources {
		descriptions = append(descriptions, fmt.Sprintf("• %s: %s", r.URI, r.Description))
	}
	return strings.Join(descriptions, "\n")
}

func formatPromptsSection(prompts []domain.PromptDefinition) string {
	if len(prompts) == 0 {
		return "No prompts available"
	}
	descriptions := make([]string, 0, len(prompts))
	for _, p := range prompts {
		desc := fmt.Sprintf("• %s: %s", p.Name, p.Description)
		if len(p.Arguments) > 0 {
			if raw, err := json.MarshalIndent(p.Arguments, "  ", "  "); err == nil {
				desc += "\n  Arguments: " + string(raw)
			}
		}
		descriptions = append(descriptions, desc)
	}
	return strings.Join(descriptions, "\n")
}

// indentJSON re-indents a raw JSON value for embedding in the preamble.
// Malformed input is passed through unchanged.
func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "  ", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
