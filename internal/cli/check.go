package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/yogeswararao/trail-explorer/internal/config"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Fix bool // if true, write default config when missing
}

// RunCheck verifies the configuration and reports backend settings;
// optionally repairs a missing config file. Returns exit code.
func RunCheck(args []string, stdout, stderr io.Writer) int {
	opts := parseCheckOptions(args)
	cfgPath := config.ResolvePath()

	note := func(section, message string) {
		fmt.Fprintf(stdout, "  [%s] %s\n", section, message)
	}

	cfg, err := configLoad(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			note("Config", fmt.Sprintf("No config at %s.", cfgPath))
			if opts.Fix {
				if writeErr := configWriteDefault(cfgPath); writeErr != nil {
					fmt.Fprintf(stderr, "  failed to write default config: %v\n", writeErr)
					return 1
				}
				note("Config", fmt.Sprintf("Wrote default config to %s.", cfgPath))
			} else {
				note("Config", "Run with --fix to create a default trailexplorer.json.")
			}
		} else {
			note("Config", err.Error())
			return 1
		}
	} else {
		note("Config", fmt.Sprintf("Loaded %s.", cfgPath))
		note("Overpass", fmt.Sprintf("url=%s query=%ds client=%ds", cfg.Overpass.URL, cfg.Overpass.QueryTimeoutSec, cfg.Overpass.ClientTimeoutSec))
		if cfg.Overpass.CacheURL == "" {
			note("Overpass", "Response caching is disabled. Set overpass.cacheUrl to enable it.")
		} else {
			note("Overpass", fmt.Sprintf("cache=%s ttl=%dm", cfg.Overpass.CacheURL, cfg.Overpass.CacheTTLMinutes))
		}
		note("LLM", fmt.Sprintf("provider=%s model=%s", cfg.LLM.Provider, cfg.LLM.Model))
		if cfg.LLM.Provider == "anthropic" && os.Getenv("ANTHROPIC_API_KEY") == "" && os.Getenv("TRAILEXPLORER_ANTHROPIC_API_KEY") == "" {
			note("LLM", "ANTHROPIC_API_KEY is not set. Queries will fail until it is exported.")
		}
	}

	fmt.Fprintln(stdout, "  Check complete.")
	return 0
}

func parseCheckOptions(args []string) CheckOptions {
	var opts CheckOptions
	for _, a := range args {
		if a == "--fix" || a == "-fix" {
			opts.Fix = true
			break
		}
	}
	return opts
}
