// Command vidscribe turns video URLs into transcript files.
//
// One-shot mode transcribes a single URL; "vidscribe mcp" serves the same
// pipeline as MCP tools on stdio. Configuration precedence is flags over
// environment over config file over built-in defaults.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vidscribe/vidscribe/internal/app"
	"github.com/vidscribe/vidscribe/internal/capability"
	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/health"
	"github.com/vidscribe/vidscribe/internal/mcpserve"
	"github.com/vidscribe/vidscribe/internal/observe"
)

// version is stamped at build time via -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	os.Exit(run())
}

type cliFlags struct {
	configPath    string
	outputDir     string
	backend       string
	model         string
	language      string
	apiKey        string
	summarize     bool
	summaryModel  string
	vocab         string
	keepAudio     bool
	metricsListen string
	logLevel      string
	version       bool
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	fl := &cliFlags{}
	fs := flag.NewFlagSet("vidscribe", flag.ContinueOnError)
	fs.StringVar(&fl.configPath, "config", "", "YAML config path (default $VIDSCRIBE_CONFIG)")
	fs.StringVar(&fl.outputDir, "output-dir", "./outputs", "output directory root")
	fs.StringVar(&fl.backend, "backend", "local", "transcription backend: api, local, or auto")
	fs.StringVar(&fl.model, "model", "base", "whisper model size: tiny, base, small, medium, or large")
	fs.StringVar(&fl.language, "language", "en", "recognition language code")
	fs.StringVar(&fl.apiKey, "api-key", "", "transcription API key (default $OPENAI_API_KEY)")
	fs.BoolVar(&fl.summarize, "summarize", false, "also write summary.txt")
	fs.StringVar(&fl.summaryModel, "summary-model", "gpt-3.5-turbo", "summarization model")
	fs.StringVar(&fl.vocab, "vocab", "", "comma-separated glossary terms for correction")
	fs.BoolVar(&fl.keepAudio, "keep-audio", false, "copy the downloaded audio into the output dir")
	fs.StringVar(&fl.metricsListen, "metrics-listen", "", "address for /metrics and health endpoints")
	fs.StringVar(&fl.logLevel, "log-level", "info", "log level: debug, info, warn, or error")
	fs.BoolVar(&fl.version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), `vidscribe turns a video URL into transcript files.

Usage:
  vidscribe [flags] <url>
  vidscribe mcp [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	args := os.Args[1:]
	serveMCP := len(args) > 0 && args[0] == "mcp"
	if serveMCP {
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fl.version {
		fmt.Println("vidscribe " + version)
		return 0
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, code := loadConfig(fs, fl)
	if cfg == nil {
		return code
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	slog.SetDefault(newLogger(cfg.LogLevel))

	slog.Info("vidscribe starting",
		"version", version,
		"backend", cfg.Backend,
		"model", cfg.Local.ModelSize,
		"output_dir", cfg.OutputDir,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownOtel, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if serveMCP {
		return runMCP(ctx, cfg)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	return runURL(ctx, cfg, fs.Arg(0))
}

// runURL executes one transcription pass, with the metrics listener running
// alongside when configured.
func runURL(ctx context.Context, cfg *config.Config, url string) int {
	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}
	defer shutdownApp(application)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	g, gctx := errgroup.WithContext(runCtx)
	if srv := application.Observability(version); srv != nil {
		g.Go(func() error { return srv.Run(gctx) })
	}

	var res *app.Result
	g.Go(func() error {
		defer cancelRun() // pipeline finished, stop the listener
		r, err := application.Run(gctx, url)
		res = r
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("interrupted")
		} else {
			slog.Error("run failed", "err", err)
		}
		return 1
	}

	printResult(res)
	return 0
}

// runMCP serves the pipeline as MCP tools on stdio until the client
// disconnects or a signal arrives.
func runMCP(ctx context.Context, cfg *config.Config) int {
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	g, gctx := errgroup.WithContext(runCtx)
	if cfg.MetricsListen != "" {
		h := health.New(version, capability.Checkers(cfg)...)
		obs := observe.NewServer(cfg.MetricsListen, observe.DefaultMetrics(), h.Register)
		g.Go(func() error { return obs.Run(gctx) })
	}

	srv := mcpserve.New(cfg, version)
	g.Go(func() error {
		defer cancelRun() // client gone, stop the listener
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("mcp server failed", "err", err)
		return 1
	}
	return 0
}

// ── Configuration ─────────────────────────────────────────────────────────────

// loadConfig assembles the effective config: defaults, then the YAML file,
// then environment, then explicitly set flags. Returns nil plus the exit
// code on failure.
func loadConfig(fs *flag.FlagSet, fl *cliFlags) (*config.Config, int) {
	path := fl.configPath
	if path == "" {
		path = os.Getenv("VIDSCRIBE_CONFIG")
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "vidscribe: config file %q not found\n", path)
			} else {
				fmt.Fprintf(os.Stderr, "vidscribe: %v\n", err)
			}
			return nil, 1
		}
		cfg = loaded
	}

	config.ApplyEnv(cfg)
	applyFlags(cfg, fs, fl)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "vidscribe: %v\n", err)
		return nil, 2
	}
	return cfg, 0
}

// applyFlags overlays flags the user actually set; untouched flags never
// stomp file or environment values.
func applyFlags(cfg *config.Config, fs *flag.FlagSet, fl *cliFlags) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["output-dir"] {
		cfg.OutputDir = fl.outputDir
	}
	if set["backend"] {
		cfg.Backend = config.Backend(fl.backend)
	}
	if set["model"] {
		cfg.Local.ModelSize = config.ModelSize(fl.model)
	}
	if set["language"] {
		cfg.Local.Language = fl.language
	}
	if set["api-key"] {
		cfg.API.Key = fl.apiKey
	}
	if set["summarize"] {
		cfg.Summary.Enabled = fl.summarize
	}
	if set["summary-model"] {
		cfg.Summary.Model = fl.summaryModel
	}
	if set["vocab"] {
		cfg.Vocab = splitVocab(fl.vocab)
	}
	if set["keep-audio"] {
		cfg.KeepAudio = fl.keepAudio
	}
	if set["metrics-listen"] {
		cfg.MetricsListen = fl.metricsListen
	}
	if set["log-level"] {
		cfg.LogLevel = config.LogLevel(fl.logLevel)
	}
}

// splitVocab turns a comma-separated flag value into glossary terms.
func splitVocab(s string) []string {
	var terms []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// ── Output ────────────────────────────────────────────────────────────────────

func printResult(res *app.Result) {
	fmt.Printf("Transcripts written to %s\n", res.OutputDir)
	for _, p := range []string{res.Files.TXT, res.Files.SRT, res.Files.VTT} {
		fmt.Println("  " + p)
	}
	if res.SummaryPath != "" {
		fmt.Println("  " + res.SummaryPath)
	}
	if res.AudioPath != "" {
		fmt.Println("  " + res.AudioPath)
	}
}

func shutdownApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
