// ABOUTME: Terminal chat client for the jplx13 agent webhook.
// ABOUTME: Wires config, conversation store, and request pipeline behind a readline shell.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/jplx13/jplx-chat/internal/agent"
	"github.com/jplx13/jplx-chat/internal/config"
	"github.com/jplx13/jplx-chat/internal/pipeline"
	"github.com/jplx13/jplx-chat/internal/store"
	"github.com/jplx13/jplx-chat/internal/upload"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	snapshot, err := store.OpenBoltSnapshot(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer snapshot.Close()

	conversations := store.New(snapshot, logger)
	uploads := upload.NewController()
	agents := agent.NewController(cfg.Agent.Default)

	pipe := pipeline.New(cfg.Webhook.URL, conversations, logger,
		pipeline.WithTimeout(cfg.Webhook.Timeout),
		pipeline.WithRetry(cfg.Webhook.Attempts, cfg.Webhook.Backoff),
		pipeline.WithStatusSink(&statusSink{uploads: uploads, agents: agents}),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sh := &shell{
		conversations: conversations,
		uploads:       uploads,
		agents:        agents,
		pipe:          pipe,
	}

	color.New(color.FgCyan, color.Bold).Println("jplx-chat")
	fmt.Printf("Webhook: %s\n", cfg.Webhook.URL)
	fmt.Println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Println()

	if err := sh.run(ctx); err != nil {
		return err
	}

	fmt.Println("\nGoodbye!")
	return nil
}

// statusSink fans pipeline status updates out to the two controllers.
type statusSink struct {
	uploads *upload.Controller
	agents  *agent.Controller
}

func (s *statusSink) SetProgress(p int)   { s.uploads.SetProgress(p) }
func (s *statusSink) SetLoading(l bool)   { s.agents.SetLoading(l) }
func (s *statusSink) SetError(msg string) { s.uploads.SetError(msg) }

func setupLogger(cfg config.Logging) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu    sync.Mutex
	level slog.Level
	attrs []slog.Attr
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	fmt.Fprintln(os.Stderr, buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorHandler{
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *colorHandler) WithGroup(_ string) slog.Handler {
	return h
}
