package capability

import (
	"strings"
	"testing"
)

func TestParseFrontmatter_ShouldSplitMetadataAndBody(t *testing.T) {
	content := `---
name: sample_prompt
description: A sample prompt
args:
  - name: place
    description: Where to look
    required: true
---
Find trails in {place}.`

	fm, body, err := ParseFrontmatter(content)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if fm.Name != "sample_prompt" {
		t.Errorf("want name sample_prompt, got %q", fm.Name)
	}
	if len(fm.Args) != 1 || fm.Args[0].Name != "place" || !fm.Args[0].Required {
		t.Errorf("unexpected args: %+v", fm.Args)
	}
	if body != "Find trails in {place}." {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestParseFrontmatter_WhenNoOpeningDelimiter_ShouldReturnError(t *testing.T) {
	if _, _, err := ParseFrontmatter("just a body"); err == nil {
		t.Error("expected error without frontmatter")
	}
}

func TestParseFrontmatter_WhenNoClosingDelimiter_ShouldReturnError(t *testing.T) {
	if _, _, err := ParseFrontmatter("---\nname: x\ndescription: y"); err == nil {
		t.Error("expected error without closing delimiter")
	}
}

func TestParseFrontmatter_WhenNameMissing_ShouldReturnError(t *testing.T) {
	if _, _, err := ParseFrontmatter("---\ndescription: y\n---\nbody"); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestLoadPrompts_ShouldLoadEveryEmbeddedTemplate(t *testing.T) {
	lib, err := LoadPrompts()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	defs := lib.Definitions()
	if len(defs) != 10 {
		t.Fatalf("want 10 prompt templates, got %d", len(defs))
	}

	names := make(map[string]bool, len(defs))
	for i, def := range defs {
		names[def.Name] = true
		if def.Description == "" {
			t.Errorf("prompt %q has no description", def.Name)
		}
		if i > 0 && defs[i-1].Name > def.Name {
			t.Error("expected definitions sorted by name")
		}
	}
	for _, want := range []string{
		"find_trails_near_city",
		"compare_trail_areas",
		"plan_trail_adventure",
		"trail_surface_analysis",
		"beginner_trail_recommendations",
		"advanced_trail_challenge",
		"family_trail_outing",
		"seasonal_trail_planning",
		"trail_accessibility_analysis",
		"multi_activity_trail_planning",
	} {
		if !names[want] {
			t.Errorf("missing prompt %q", want)
		}
	}
}

func TestPromptLibrary_Render_ShouldFillEveryPlaceholder(t *testing.T) {
	lib, err := LoadPrompts()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out, err := lib.Render("compare_trail_areas", map[string]string{
		"area1": "Boulder",
		"area2": "Moab",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "between Boulder and Moab") {
		t.Errorf("expected both areas substituted, got %q", out)
	}
	if strings.Contains(out, "{area1}") || strings.Contains(out, "{area2}") {
		t.Errorf("expected no leftover placeholders, got %q", out)
	}
}

func TestPromptLibrary_Render_WhenRequiredArgMissing_ShouldReturnError(t *testing.T) {
	lib, err := LoadPrompts()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := lib.Render("find_trails_near_city", nil); err == nil {
		t.Error("expected error for missing required argument")
	}
	if _, err := lib.Render("find_trails_near_city", map[string]string{"city": ""}); err == nil {
		t.Error("expected error for empty required argument")
	}
}

func TestPromptLibrary_Render_WhenUnknownPrompt_ShouldReturnError(t *testing.T) {
	lib, err := LoadPrompts()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := lib.Render("nonexistent", nil); err == nil {
		t.Error("expected error for unknown prompt")
	}
}
