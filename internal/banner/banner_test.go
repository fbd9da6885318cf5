package banner

import (
	"strings"
	"testing"
)

func TestStartup_ShouldPrintArtAndVersion(t *testing.T) {
	var out strings.Builder
	Startup("1.2.3", &StartupOpts{Writer: &out, NoDelay: true})

	got := out.String()
	if !strings.Contains(got, `|_   _|`) {
		t.Error("missing banner art")
	}
	if !strings.Contains(got, "trail explorer") {
		t.Error("missing tagline")
	}
	if !strings.Contains(got, "v1.2.3") {
		t.Error("missing version line")
	}
}

func TestSplitLines_ShouldDropTrailingNewlineOnly(t *testing.T) {
	lines := splitLines("a\nb\n")
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Fatalf("unexpected lines %v", lines)
	}
	if got := splitLines("no newline"); len(got) != 1 || got[0] != "no newline" {
		t.Fatalf("unexpected lines %v", got)
	}
}
