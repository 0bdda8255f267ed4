package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"tgblast/internal/broadcast"
	"tgblast/internal/config"
	"tgblast/internal/schedule"
	"tgblast/pkg/logx"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled broadcasts from config",
		Long:  "Runs the cron schedules declared in config until interrupted. Schedules reload when the config file changes.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	m := config.NewManager(configPath, logx.NewConsole("info"))
	cfg, err := m.Load()
	if err != nil {
		return err
	}
	if len(cfg.Schedules) == 0 {
		return errors.New("no schedules configured")
	}

	log, closeLog, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sender, err := buildSender(cfg, log)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	svc := schedule.New(broadcast.NewDispatcher(sender, log), store, log)
	entries, err := entriesFromConfig(cfg)
	if err != nil {
		return err
	}
	if err := svc.Apply(entries); err != nil {
		return err
	}
	svc.Start(ctx)

	// Hot reload: re-apply schedules on config change. Telegram/logging
	// changes need a restart; schedules don't.
	sub := m.Subscribe(1)
	defer m.Unsubscribe(sub)
	go func() {
		if err := m.Watch(ctx); err != nil {
			log.Warn("config watch stopped", logx.Err(err))
		}
	}()
	go func() {
		for next := range sub {
			entries, err := entriesFromConfig(next)
			if err != nil {
				log.Warn("reloaded config rejected", logx.Err(err))
				continue
			}
			if err := svc.Apply(entries); err != nil {
				log.Warn("reloaded schedules rejected", logx.Err(err))
				continue
			}
			log.Info("schedules reloaded", logx.Int("entries", len(entries)))
		}
	}()

	// systemd integration is best-effort; outside systemd these are no-ops.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	if interval, err := daemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		go func() {
			t := time.NewTicker(interval / 2)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
				}
			}
		}()
	}

	log.Info("serving schedules",
		logx.Int("entries", len(entries)),
		logx.String("bot", sender.Me()),
		logx.String("config", configPath),
	)
	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	svc.Stop(stopCtx)
	return nil
}

// entriesFromConfig maps schedule config onto runnable entries, filling in
// broadcast defaults for unset per-entry options.
func entriesFromConfig(cfg *config.Config) ([]schedule.Entry, error) {
	defaults, err := defaultOptions(cfg)
	if err != nil {
		return nil, err
	}
	entries := make([]schedule.Entry, 0, len(cfg.Schedules))
	for _, s := range cfg.Schedules {
		opts := defaults
		if s.Concurrency != 0 {
			opts.Concurrency = s.Concurrency
		}
		if s.Delay != "" {
			d, err := config.ParseDurationField("schedules.delay", s.Delay)
			if err != nil {
				return nil, err
			}
			opts.Delay = d
		}
		opts.DryRun = s.DryRun

		entries = append(entries, schedule.Entry{
			Name:        s.Name,
			Spec:        s.Spec,
			Message:     s.Message,
			MessageFile: s.MessageFile,
			Image:       s.Image,
			Roster:      s.Roster,
			RosterURL:   s.RosterURL,
			Options:     opts,
		})
	}
	return entries, nil
}
