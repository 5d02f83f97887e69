package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/moldworks/moldtrack/internal/app"
	"github.com/moldworks/moldtrack/internal/model"
	"github.com/moldworks/moldtrack/internal/reminder"
	"github.com/moldworks/moldtrack/internal/state"
	"github.com/moldworks/moldtrack/internal/store"
	appsync "github.com/moldworks/moldtrack/internal/sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := model.DefaultConfigPath()
	if env := os.Getenv("MOLDTRACK_CONFIG"); env != "" {
		cfgPath = env
	}

	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	s, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	syn := appsync.New(s)
	restored := syn.Restore(context.Background())

	st := state.New(restored.Tasks, restored.Members, restored.SenderEmail, restored.Session)
	syn.Attach(st)

	composer := reminder.NewComposer(cfg.Mail.OutboxDir)

	p := tea.NewProgram(app.New(st, syn, cfg, composer), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	return nil
}
