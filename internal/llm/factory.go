package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/yogeswararao/trail-explorer/internal/domain"
	"github.com/yogeswararao/trail-explorer/internal/retry"
)

// NewProvider returns a ChatProvider for the given config, optionally wrapped
// with retry logic. Provider may be "anthropic" or "scripted"; empty defaults
// to "scripted". getSecret resolves API keys for anthropic. retryCfg, if
// non-nil, wraps the provider with exponential-backoff retry on transient
// errors.
func NewProvider(cfg domain.LLMConfig, getSecret domain.SecretGetter, retryCfg ...*domain.RetryConfig) (domain.ChatProvider, error) {
	base, err := newBaseProvider(cfg, getSecret)
	if err != nil {
		return nil, err
	}
	return wrapWithRetry(base, retryCfg...), nil
}

// newBaseProvider creates the raw provider without retry wrapping.
func newBaseProvider(cfg domain.LLMConfig, getSecret domain.SecretGetter) (domain.ChatProvider, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "scripted"
	}
	switch provider {
	case "scripted":
		return NewScriptedProvider(), nil
	case "anthropic":
		key, err := getSecret("anthropic_api_key")
		if err != nil {
			return nil, err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("anthropic provider: API key not set (export ANTHROPIC_API_KEY)")
		}
		return NewAnthropicProvider(key, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (use: anthropic, scripted)", provider)
	}
}

// wrapWithRetry wraps the provider with a retry decorator when a config is
// supplied, falling back to default retry settings on an invalid one.
func wrapWithRetry(provider domain.ChatProvider, retryCfg ...*domain.RetryConfig) domain.ChatProvider {
	if len(retryCfg) == 0 || retryCfg[0] == nil {
		return provider
	}
	cfg := retry.FromDomain(retryCfg[0])
	if cfg.Validate() != nil {
		cfg = retry.DefaultConfig()
	}
	return retry.NewRetryableProvider(provider, cfg)
}

// EnvSecrets resolves secrets from the environment. The name
// "anthropic_api_key" maps to TRAILEXPLORER_ANTHROPIC_API_KEY with
// ANTHROPIC_API_KEY as fallback.
func EnvSecrets(name string) (string, error) {
	upper := strings.ToUpper(name)
	if v := os.Getenv("TRAILEXPLORER_" + upper); v != "" {
		return v, nil
	}
	if v := os.Getenv(upper); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret %q not set in environment", name)
}
