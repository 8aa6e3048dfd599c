package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/example/todo-app/client"
	"github.com/example/todo-app/config"
	"github.com/example/todo-app/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/todo-tui/config.toml)")
	apiURL := flag.String("api", "", "Todo API base URL (overrides config)")
	flag.Parse()

	if err := run(*configPath, *apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, apiURL string) error {
	var (
		cfg *config.Client
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadClientFrom(configPath)
	} else {
		cfg, err = config.LoadClient()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting todo-tui", "api", cfg.API.BaseURL)

	model := tui.New(ctx, client.New(cfg.API.BaseURL), logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("program exited", "err", err)
		return fmt.Errorf("running program: %w", err)
	}

	logger.Info("todo-tui stopped")
	return nil
}

// newLogger writes to the configured log file so the alternate screen stays
// clean. An empty file path discards log output.
func newLogger(cfg config.LogConfig) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "todo-tui",
	})
	return logger, closeFn, nil
}
