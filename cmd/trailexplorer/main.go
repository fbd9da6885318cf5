package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yogeswararao/trail-explorer/internal/banner"
	"github.com/yogeswararao/trail-explorer/internal/cache"
	"github.com/yogeswararao/trail-explorer/internal/capability"
	"github.com/yogeswararao/trail-explorer/internal/cli"
	"github.com/yogeswararao/trail-explorer/internal/config"
	"github.com/yogeswararao/trail-explorer/internal/connector"
	"github.com/yogeswararao/trail-explorer/internal/domain"
	"github.com/yogeswararao/trail-explorer/internal/llm"
	"github.com/yogeswararao/trail-explorer/internal/orchestrator"
	"github.com/yogeswararao/trail-explorer/internal/overpass"
	"github.com/yogeswararao/trail-explorer/internal/retry"
	"github.com/yogeswararao/trail-explorer/internal/signals"
	"github.com/yogeswararao/trail-explorer/internal/tooling"
	"github.com/yogeswararao/trail-explorer/internal/trails"
)

// buildMeta holds version and build metadata (injectable via ldflags).
type buildMeta struct {
	Version string
	GoOS    string
	GoArch  string
}

func newBuildMeta(version, goos, goarch string) buildMeta {
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	return buildMeta{Version: version, GoOS: goos, GoArch: goarch}
}

func (m buildMeta) String() string {
	return fmt.Sprintf("trailexplorer %s %s/%s", m.Version, m.GoOS, m.GoArch)
}

func newRootCommand(bm buildMeta) *cobra.Command {
	root := &cobra.Command{
		Use:   "trailexplorer",
		Short: "Conversational trail search",
		Long:  "Trail Explorer is a conversational search client for hiking, biking, and walking trails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), bm.String())
				return nil
			}
			return runChat(cmd, chatShutdownCtx)
		},
	}
	root.Flags().BoolP("version", "V", false, "print version and build metadata")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check config and backend settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			fix, _ := cmd.Flags().GetBool("fix")
			checkArgs := []string{"trailexplorer", "check"}
			if fix {
				checkArgs = append(checkArgs, "--fix")
			}
			code := cli.RunCheck(checkArgs, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if code != 0 {
				return exitCodeErr(code)
			}
			return nil
		},
	}
	checkCmd.Flags().Bool("fix", false, "write default config if missing")
	root.AddCommand(checkCmd)

	return root
}

// runChat wires the full session: config, backend client, capability host,
// chat provider, connector, and the interactive loop. If shutdownCtx is
// non-nil it is used instead of the signal-bound context (for tests).
func runChat(cmd *cobra.Command, shutdownCtx context.Context) error {
	version := getVersion()
	banner.Startup(version, bannerOpts)

	cfgPath := config.ResolvePath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "  (no config file, using defaults)")
		cfg = config.Default()
	}
	logger := setupLogger(cfg.Infra, cmd.ErrOrStderr())

	ctx := shutdownCtx
	if ctx == nil {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(context.Background(), signals.ShutdownSignals()...)
		defer stop()
	}

	conn, err := buildConnector(cfg, logger)
	if err != nil {
		return err
	}
	if err := conn.Connect(ctx); err != nil {
		return err
	}
	defer conn.Disconnect()

	chat := cli.NewChat(conn, cmd.InOrStdin(), cmd.OutOrStdout(), cli.WithLogger(logger))
	if err := chat.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildConnector assembles the query pipeline from config.
func buildConnector(cfg *domain.Config, logger *slog.Logger) (*connector.Connector, error) {
	retryCfg := retry.FromDomain(&cfg.Retry)

	clientOpts := []overpass.Option{
		overpass.WithLogger(logger),
		overpass.WithRetry(retryCfg),
	}
	if cfg.Overpass.CacheURL != "" {
		db, err := cache.Connect(cfg.Overpass.CacheURL)
		if err != nil {
			return nil, fmt.Errorf("open response cache: %w", err)
		}
		store, err := cache.NewResponseStore(db, time.Duration(cfg.Overpass.CacheTTLMinutes)*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init response cache: %w", err)
		}
		clientOpts = append(clientOpts, overpass.WithCache(store))
	}
	client := overpass.NewClient(cfg.Overpass.URL, cfg.Overpass.ClientTimeoutSec, clientOpts...)

	host, err := capability.NewLocalHost(tooling.TrailDeps{
		Builder:    trails.NewBuilder(cfg.Overpass.QueryTimeoutSec),
		Executor:   client,
		DisplayCap: cfg.Overpass.MaxTrailsDisplay,
		Logger:     logger,
	}, capability.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(cfg.LLM, llm.EnvSecrets, &cfg.Retry)
	if err != nil {
		return nil, err
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithMaxRounds(cfg.Orchestrator.MaxRounds),
		orchestrator.WithMaxTokens(cfg.LLM.MaxTokens),
	}
	return connector.New(provider, host, orchOpts, connector.WithLogger(logger)), nil
}

// setupLogger builds the slog logger per infra config.
func setupLogger(infra domain.InfraConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(infra.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if infra.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func getVersion() string {
	if version != "" {
		return version
	}
	b, err := os.ReadFile("VERSION")
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(string(b))
}

// version is set at build time via ldflags for build metadata, e.g.:
//
//	go build -ldflags "-X main.version=1.0.0" -o trailexplorer ./cmd/trailexplorer
var version string

// chatShutdownCtx is set by tests to drive runChat without OS signals. Production leaves it nil.
var chatShutdownCtx context.Context

// bannerOpts is overridden by tests to silence the startup animation. Production leaves it nil.
var bannerOpts *banner.StartupOpts

// exitCodeErr carries an exit code for the process. When returned from a command, runApp exits with that code.
type exitCodeErr int

func (e exitCodeErr) Error() string { return fmt.Sprintf("exit %d", int(e)) }
func (e exitCodeErr) ExitCode() int { return int(e) }

// runApp runs the root command with the given args and returns the exit code.
func runApp(args []string) int {
	bm := newBuildMeta(version, "", "")
	if bm.Version == "" {
		bm.Version = getVersion()
	}
	root := newRootCommand(bm)
	root.SetArgs(args[1:])
	if err := root.Execute(); err != nil {
		if ec, ok := err.(interface{ ExitCode() int }); ok {
			return ec.ExitCode()
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
