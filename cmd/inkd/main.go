// inkd is the animation service: HTTP API plus an optional MCP stdio surface
// over the same pipeline.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/rliebert/renaissance-ink/animate"
	"github.com/rliebert/renaissance-ink/dbopen"
	"github.com/rliebert/renaissance-ink/llm"
	"github.com/rliebert/renaissance-ink/observability"
	"github.com/rliebert/renaissance-ink/record"
)

func main() {
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")

	// Logging. In MCP stdio mode stdout carries the protocol, so logs go to
	// stderr.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logOut := os.Stdout
	if mcpTransport == "stdio" {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(os.Getenv("INK_CONFIG"))
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	port := env("PORT", cfg.Port)
	recordsPath := env("RECORDS_DB", cfg.RecordsDB)
	model := env("INK_MODEL", cfg.Model)

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		slog.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Records DB.
	db, err := dbopen.Open(recordsPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("records db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	records := record.NewStore(db)
	if err := records.Init(ctx); err != nil {
		slog.Error("records init", "error", err)
		os.Exit(1)
	}

	events := observability.NewEventLogger(db, observability.WithLogger(logger))
	if err := events.Init(ctx); err != nil {
		slog.Error("events init", "error", err)
		os.Exit(1)
	}
	go cleanupLoop(ctx, events, cfg.EventRetentionDays)

	// Generation model, constructed once and injected.
	gen, err := llm.NewGemini(ctx, apiKey, model, logger)
	if err != nil {
		slog.Error("gemini client", "error", err)
		os.Exit(1)
	}

	svc := animate.New(gen, records, events, animate.Config{
		MaxSVGBytes: cfg.MaxSVGBytes,
		Padding:     cfg.Padding,
		Logger:      logger,
	})

	// MCP stdio mode: serve tools on stdin/stdout and exit on disconnect.
	if mcpTransport == "stdio" {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "renaissance-ink",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(srv)

		slog.Info("MCP stdio serving", "model", model)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	// HTTP surface.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	svc.RegisterHTTP(r)

	httpSrv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		slog.Info("HTTP listening", "port", port, "model", model)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

// cleanupLoop prunes old generation events once a day.
func cleanupLoop(ctx context.Context, events *observability.EventLogger, retentionDays int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := events.Cleanup(ctx, retentionDays)
			if err != nil {
				slog.Warn("event cleanup", "error", err)
				continue
			}
			if deleted > 0 {
				slog.Info("event cleanup", "deleted", deleted)
			}
		}
	}
}
