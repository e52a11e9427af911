package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/docindex/internal/builder"
	_ "git.home.luguber.info/inful/docindex/internal/builder/html"
	_ "git.home.luguber.info/inful/docindex/internal/builder/singlehtml"
	"git.home.luguber.info/inful/docindex/internal/config"
	"git.home.luguber.info/inful/docindex/internal/intersphinx"
	"git.home.luguber.info/inful/docindex/internal/invbuilder"
	"git.home.luguber.info/inful/docindex/internal/metrics"
	"git.home.luguber.info/inful/docindex/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docindex.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Builder       string `short:"b" help:"Builder to use (html, singlehtml, inventory-html, inventory-singlehtml)"`
		Output        string `short:"o" help:"Output directory, overrides configuration"`
		Watch         bool   `short:"w" help:"Rebuild when source documents change"`
		MetricsListen string `help:"Serve Prometheus metrics on this address while watching (e.g. :9180)"`
	} `cmd:"" help:"Build documentation output from the configured source tree"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "build":
		if err := runBuildCommand(); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("docindex %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

func runBuildCommand() error {
	recorder := setupMetrics()

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func(ctx context.Context) error {
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			return err
		}
		if CLI.Build.Builder != "" {
			cfg.Builder = CLI.Build.Builder
		}
		if CLI.Build.Output != "" {
			cfg.Output.Directory = CLI.Build.Output
		}

		app := builder.New(cfg,
			builder.WithArgv(os.Args),
			builder.WithRecorder(recorder),
		)
		intersphinx.Setup(app)
		invbuilder.Setup(app)
		return app.Run(ctx)
	}

	if err := runOnce(runCtx); err != nil {
		return err
	}
	if !CLI.Build.Watch {
		return nil
	}
	return watchAndRebuild(runCtx, runOnce)
}

// setupMetrics wires a Prometheus recorder when scraping is requested.
func setupMetrics() metrics.Recorder {
	if CLI.Build.MetricsListen == "" {
		return metrics.NoopRecorder{}
	}
	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(CLI.Build.MetricsListen, mux); err != nil {
			slog.Error("Metrics listener failed", "error", err)
		}
	}()
	return recorder
}
