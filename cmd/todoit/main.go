package main

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/carlodandan/todoit/internal/notify"
	"github.com/carlodandan/todoit/internal/push"
	"github.com/carlodandan/todoit/internal/scheduler"
	"github.com/carlodandan/todoit/internal/storage"
	"github.com/carlodandan/todoit/internal/store"
	"github.com/carlodandan/todoit/internal/update"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "todoit"})
	cfg := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())

	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("create data directory", "err", err)
		}
	}
	kv, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal("open storage", "err", err)
	}
	defer kv.Close()

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	if cfg.RemindersEnabled {
		engine.Start()
		defer engine.Stop()
	}

	ctx := context.Background()
	var notifier push.Notifier = push.Disabled{}
	if cfg.DesktopNotifications {
		desktop := push.NewDesktopNotifier(ctx, kv, logger)
		if desktop.IsSupported() {
			if err := desktop.Subscribe(ctx); err != nil {
				logger.Warn("desktop notifications unavailable", "err", err)
			}
			notifier = desktop
		}
	}

	model := update.NewModel(update.Services{
		Store:    store.New(kv, logger),
		Deriver:  notify.New(kv, logger),
		Engine:   engine,
		Notifier: notifier,
		KV:       kv,
	}, cfg)

	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		logger.Fatal("todoit failed", "err", err)
	}
}
