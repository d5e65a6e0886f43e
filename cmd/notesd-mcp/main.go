package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"notesd/internal/config"
	"notesd/internal/mcptool"
	"notesd/internal/store"
)

func main() {
	// Stdout carries the MCP protocol; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.Init(ctx); err != nil {
		slog.Error("init store", "err", err)
		os.Exit(1)
	}

	if err := server.ServeStdio(mcptool.New(st, nil)); err != nil {
		slog.Error("serve mcp", "err", err)
		os.Exit(1)
	}
}
