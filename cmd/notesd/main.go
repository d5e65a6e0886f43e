package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"notesd/internal/config"
	"notesd/internal/store"
	"notesd/internal/web"
)

func main() {
	setupLogging()

	cfg := config.Load()
	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		slog.Error("create data dir", "path", cfg.DataPath, "err", err)
		os.Exit(1)
	}

	st, err := store.OpenWithOptions(filepath.Join(cfg.DataPath, "notes.sqlite"), store.OpenOptions{
		BusyTimeout: cfg.DBBusyTimeout,
		LockTimeout: cfg.DBLockTimeout,
	})
	if err != nil {
		slog.Error("open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.Init(initCtx); err != nil {
		slog.Error("init store", "err", err)
		os.Exit(1)
	}

	hub := web.NewHub()
	go hub.Run()

	srv, err := web.NewServer(cfg, st, hub)
	if err != nil {
		slog.Error("new server", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("serve", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown", "err", err)
	}
}

func setupLogging() {
	level := parseLogLevel(os.Getenv("NOTES_DEBUG_LEVEL"))
	pretty := strings.EqualFold(os.Getenv("NOTES_LOG_PRETTY"), "1") || strings.EqualFold(os.Getenv("NOTES_LOG_PRETTY"), "true")
	var handler slog.Handler
	if pretty {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
