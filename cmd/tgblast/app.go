package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"tgblast/internal/broadcast"
	"tgblast/internal/config"
	"tgblast/internal/history"
	"tgblast/internal/roster"
	"tgblast/internal/transport/telegram"
	"tgblast/pkg/logx"
)

// loadConfig reads the config file, falling back to built-in defaults when
// the file does not exist (flags can still supply everything a command
// needs).
func loadConfig() (*config.Config, error) {
	m := config.NewManager(configPath, logx.Nop())
	cfg, err := m.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) (logx.Logger, func() error, error) {
	return logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
}

// resolveToken prefers the --token flag over config.
func resolveToken(cfg *config.Config) string {
	if strings.TrimSpace(tokenFlag) != "" {
		return strings.TrimSpace(tokenFlag)
	}
	return strings.TrimSpace(cfg.Telegram.Token)
}

// buildSender constructs the Telegram sender. Failure here is fatal for the
// whole run: it aborts before any recipient is attempted.
func buildSender(cfg *config.Config, log logx.Logger) (*telegram.Sender, error) {
	timeout, err := config.ParseDurationField("telegram.send_timeout", cfg.Telegram.SendTimeout)
	if err != nil {
		return nil, err
	}
	return telegram.New(telegram.Config{
		Token:       resolveToken(cfg),
		SendTimeout: timeout,
		RatePerSec:  cfg.Telegram.RatePerSec,
	}, log)
}

func openStore(cfg *config.Config, log logx.Logger) (history.Store, error) {
	if cfg.Storage == nil {
		return nil, nil
	}
	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}
	return history.Open(history.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, log)
}

// defaultOptions maps config broadcast defaults to dispatcher options.
func defaultOptions(cfg *config.Config) (broadcast.Options, error) {
	delay, err := config.ParseDurationField("broadcast.delay", cfg.Broadcast.Delay)
	if err != nil {
		return broadcast.Options{}, err
	}
	latency, err := config.ParseDurationField("broadcast.dry_run_latency", cfg.Broadcast.DryRunLatency)
	if err != nil {
		return broadcast.Options{}, err
	}
	opts := broadcast.Options{
		Concurrency:   cfg.Broadcast.Concurrency,
		Delay:         delay,
		DryRunLatency: latency,
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = 10
	}
	return opts, nil
}

// loadRecipients resolves the roster from exactly one of the send flags.
func loadRecipients(ctx context.Context, store history.Store, file, url string, historyID int64) ([]string, error) {
	set := 0
	if file != "" {
		set++
	}
	if url != "" {
		set++
	}
	if historyID > 0 {
		set++
	}
	if set != 1 {
		return nil, errors.New("exactly one of --roster, --roster-url and --roster-history is required")
	}
	switch {
	case file != "":
		return roster.FromFile(file)
	case url != "":
		return roster.FromURL(ctx, url)
	default:
		if store == nil {
			return nil, errors.New("--roster-history needs a configured storage backend")
		}
		loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return store.Roster(loadCtx, historyID)
	}
}
