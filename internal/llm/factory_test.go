package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/yogeswararao/trail-explorer/internal/domain"
	"github.com/yogeswararao/trail-explorer/internal/retry"
)

func TestScriptedProvider_Chat_ShouldReplayScriptInOrder(t *testing.T) {
	p := NewScriptedProvider(
		[]domain.ContentBlock{domain.ToolUseBlock{ID: "t1", Name: "search_trails_by_area_name"}},
		[]domain.ContentBlock{domain.TextBlock{Text: "All done."}},
	)

	first, err := p.Chat(context.Background(), domain.ChatRequest{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := first[0].(domain.ToolUseBlock); !ok {
		t.Errorf("want scripted tool use first, got %T", first[0])
	}

	second, _ := p.Chat(context.Background(), domain.ChatRequest{})
	if tb, ok := second[0].(domain.TextBlock); !ok || tb.Text != "All done." {
		t.Errorf("want scripted text second, got %+v", second[0])
	}
}

func TestScriptedProvider_Chat_WhenScriptExhausted_ShouldEchoLastUserText(t *testing.T) {
	p := NewScriptedProvider()
	blocks, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.Message{domain.NewTextMessage(domain.RoleUser, "trails near Moab")},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tb, ok := blocks[0].(domain.TextBlock); !ok || tb.Text != "Scripted: trails near Moab" {
		t.Errorf("unexpected fallback block: %+v", blocks[0])
	}
}

func noSecrets(name string) (string, error) {
	return "", errors.New("no secrets configured")
}

func TestNewProvider_WhenEmptyProvider_ShouldDefaultToScripted(t *testing.T) {
	p, err := NewProvider(domain.LLMConfig{}, noSecrets)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := p.(*ScriptedProvider); !ok {
		t.Errorf("want ScriptedProvider, got %T", p)
	}
}

func TestNewProvider_WhenAnthropic_ShouldResolveAPIKey(t *testing.T) {
	getSecret := func(name string) (string, error) {
		if name != "anthropic_api_key" {
			t.Errorf("unexpected secret name %q", name)
		}
		return "sk-test", nil
	}
	p, err := NewProvider(domain.LLMConfig{Provider: "anthropic", Model: "claude-sonnet-4-20250514"}, getSecret)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := p.(*AnthropicProvider); !ok {
		t.Errorf("want AnthropicProvider, got %T", p)
	}
}

func TestNewProvider_WhenAnthropicKeyMissing_ShouldReturnError(t *testing.T) {
	if _, err := NewProvider(domain.LLMConfig{Provider: "anthropic"}, noSecrets); err == nil {
		t.Error("expected error when API key cannot be resolved")
	}
}

func TestNewProvider_WhenAnthropicKeyBlank_ShouldReturnError(t *testing.T) {
	getSecret := func(string) (string, error) { return "   ", nil }
	if _, err := NewProvider(domain.LLMConfig{Provider: "anthropic"}, getSecret); err == nil {
		t.Error("expected error for blank API key")
	}
}

func TestNewProvider_WhenUnknownProvider_ShouldReturnError(t *testing.T) {
	if _, err := NewProvider(domain.LLMConfig{Provider: "parrot"}, noSecrets); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewProvider_WithRetryConfig_ShouldWrapProvider(t *testing.T) {
	rc := &domain.RetryConfig{MaxRetries: 2, InitialBackoff: 100, MaxBackoff: 1000, Multiplier: 2}
	p, err := NewProvider(domain.LLMConfig{}, noSecrets, rc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := p.(*retry.RetryableProvider); !ok {
		t.Errorf("want RetryableProvider wrapper, got %T", p)
	}
}

func TestNewProvider_WithNilRetryConfig_ShouldNotWrap(t *testing.T) {
	p, err := NewProvider(domain.LLMConfig{}, noSecrets, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := p.(*ScriptedProvider); !ok {
		t.Errorf("want unwrapped ScriptedProvider, got %T", p)
	}
}

func TestEnvSecrets_ShouldPreferPrefixedVariable(t *testing.T) {
	t.Setenv("TRAILEXPLORER_ANTHROPIC_API_KEY", "prefixed")
	t.Setenv("ANTHROPIC_API_KEY", "bare")

	got, err := EnvSecrets("anthropic_api_key")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "prefixed" {
		t.Errorf("want prefixed value, got %q", got)
	}
}

func TestEnvSecrets_ShouldFallBackToBareVariable(t *testing.T) {
	t.Setenv("TRAILEXPLORER_ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "bare")

	got, err := EnvSecrets("anthropic_api_key")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "bare" {
		t.Errorf("want bare value, got %q", got)
	}
}

func TestEnvSecrets_WhenUnset_ShouldReturnError(t *testing.T) {
	t.Setenv("TRAILEXPLORER_ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := EnvSecrets("anthropic_api_key"); err == nil {
		t.Error("expected error for unset secret")
	}
}
