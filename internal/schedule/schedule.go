// Package schedule runs recurring broadcasts declared in config on cron
// triggers.
package schedule

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tgblast/internal/broadcast"
	"tgblast/internal/compose"
	"tgblast/internal/history"
	"tgblast/internal/roster"
	"tgblast/pkg/logx"
)

// Entry is one recurring broadcast. Exactly one of Message/MessageFile and
// one of Roster/RosterURL is set; config validation guarantees this.
type Entry struct {
	Name string
	Spec string

	Message     string
	MessageFile string
	Image       string

	Roster    string
	RosterURL string

	Options broadcast.Options
}

// Service owns the cron runner. Apply replaces the whole schedule set, so a
// config reload is a stop-rebuild-start of the cron instance only; in-flight
// broadcasts finish on their own goroutines.
type Service struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries []Entry

	dispatcher *broadcast.Dispatcher
	store      history.Store
	log        logx.Logger

	runCtx    context.Context
	runCancel context.CancelFunc
	running   sync.WaitGroup
}

func New(dispatcher *broadcast.Dispatcher, store history.Store, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{dispatcher: dispatcher, store: store, log: log}
}

// Apply validates every cron spec and installs the new entry set. With the
// service started, the new set takes effect immediately.
func (s *Service) Apply(entries []Entry) error {
	for _, e := range entries {
		if _, err := cron.ParseStandard(e.Spec); err != nil {
			return fmt.Errorf("schedule %q: invalid spec %q: %w", e.Name, e.Spec, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	if s.runCtx != nil {
		s.rebuildLocked()
	}
	return nil
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCtx != nil {
		return
	}
	s.runCtx, s.runCancel = context.WithCancel(ctx)
	s.rebuildLocked()
	s.log.Info("scheduler started", logx.Int("entries", len(s.entries)))
}

// Stop halts the cron runner and waits for in-flight broadcasts, bounded by
// ctx.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.runCtx == nil {
		s.mu.Unlock()
		return
	}
	cancel := s.runCancel
	c := s.cron
	s.cron = nil
	s.runCtx = nil
	s.runCancel = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	cancel()

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out; broadcasts abandoned")
	}
}

// rebuildLocked swaps the cron instance for the current entry set.
// Caller holds s.mu and s.runCtx is non-nil.
func (s *Service) rebuildLocked() {
	if s.cron != nil {
		s.cron.Stop()
	}
	c := cron.New()
	runCtx := s.runCtx
	for _, e := range s.entries {
		entry := e
		_, err := c.AddFunc(entry.Spec, func() {
			s.running.Add(1)
			defer s.running.Done()
			s.runEntry(runCtx, entry)
		})
		if err != nil {
			// Apply() validated every spec already.
			s.log.Error("schedule registration failed", logx.String("name", entry.Name), logx.Err(err))
		}
	}
	c.Start()
	s.cron = c
}

func (s *Service) runEntry(ctx context.Context, e Entry) {
	log := s.log.With(logx.String("schedule", e.Name))
	start := time.Now()

	ids, err := s.loadRoster(ctx, e)
	if err != nil {
		log.Error("roster load failed", logx.Err(err))
		return
	}
	valid, invalid := roster.Partition(ids)
	if len(invalid) > 0 {
		log.Warn("invalid chat ids skipped", logx.Int("count", len(invalid)))
	}
	if len(valid) == 0 {
		log.Warn("roster is empty; nothing to send")
		return
	}

	payload, err := s.loadPayload(e)
	if err != nil {
		log.Error("payload build failed", logx.Err(err))
		return
	}

	results, err := s.dispatcher.Run(ctx, valid, payload, e.Options, nil)
	if err != nil {
		log.Warn("broadcast interrupted", logx.Err(err), logx.Int("completed", len(results)))
	}

	sent, failed, dry := broadcast.Totals(results)
	log.Info("scheduled broadcast finished",
		logx.Int("total", len(valid)),
		logx.Int("sent", sent),
		logx.Int("failed", failed),
		logx.Int("dry_run", dry),
		logx.Duration("took", time.Since(start)),
	)

	if s.store != nil {
		_, serr := s.store.SaveRun(ctx, history.RunRecord{
			StartedAt:  start,
			FinishedAt: time.Now(),
			Total:      len(valid),
			Sent:       sent,
			Failed:     failed,
			DryCount:   dry,
			DryRun:     e.Options.DryRun,
			HasImage:   len(payload.Image) > 0,
			TextLen:    len(payload.Text),
		}, results)
		if serr != nil {
			log.Warn("run not persisted", logx.Err(serr))
		}
	}
}

func (s *Service) loadRoster(ctx context.Context, e Entry) ([]string, error) {
	if e.Roster != "" {
		return roster.FromFile(e.Roster)
	}
	return roster.FromURL(ctx, e.RosterURL)
}

func (s *Service) loadPayload(e Entry) (broadcast.Payload, error) {
	text := e.Message
	if e.MessageFile != "" {
		b, err := os.ReadFile(e.MessageFile)
		if err != nil {
			return broadcast.Payload{}, err
		}
		text = string(b)
	}
	var image []byte
	if e.Image != "" {
		b, err := os.ReadFile(e.Image)
		if err != nil {
			return broadcast.Payload{}, err
		}
		image = b
	}
	return compose.New(text, image)
}
