// Command mailfront is a terminal client for the mail API: campaigns,
// templates, composing, the inbox and account settings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailfront/internal/app"
	"github.com/nhle/mailfront/internal/backend"
	"github.com/nhle/mailfront/internal/compose"
	"github.com/nhle/mailfront/internal/credential"
	"github.com/nhle/mailfront/internal/model"
	"github.com/nhle/mailfront/internal/settings"
	"github.com/nhle/mailfront/internal/store"
	"github.com/nhle/mailfront/internal/theme"
)

func main() {
	var configPath string
	var writeConfig bool

	flag.StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the YAML config file")
	flag.BoolVar(&writeConfig, "write-config", false, "write the effective configuration to -config and exit")
	flag.Parse()

	if err := run(configPath, writeConfig); err != nil {
		fmt.Fprintln(os.Stderr, "mailfront:", err)
		os.Exit(1)
	}
}

func run(configPath string, writeConfig bool) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if writeConfig {
		return model.SaveConfig(configPath, cfg)
	}

	logFile, err := openLog(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	theme.Init(cfg.Display.Theme)

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	db, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ring, err := credential.Open()
	if err != nil {
		return err
	}

	svc := settings.NewService(db, ring)
	if _, err := svc.Load(context.Background()); err != nil {
		return err
	}

	validator, err := compose.NewValidator()
	if err != nil {
		return err
	}

	client := backend.NewClientFromConfig(cfg.Backend)
	slog.Info("starting", "backend", cfg.Backend.BaseURL, "db", cfg.Storage.DBPath)

	p := tea.NewProgram(app.New(client, db, svc, validator, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// openLog sends log output to a file, since the terminal belongs to the UI.
func openLog(cfg model.LogConfig) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(cfg.File, "mailfront")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})))
	return f, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
