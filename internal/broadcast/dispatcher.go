package broadcast

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"tgblast/internal/transport"
	"tgblast/pkg/logx"
)

const (
	MinConcurrency = 1
	MaxConcurrency = 50
	MaxDelay       = 10 * time.Second

	// DefaultDryRunLatency makes dry runs take an observable amount of time
	// per send so pacing behaves like a real broadcast.
	DefaultDryRunLatency = 100 * time.Millisecond
)

// Options controls one run of the dispatcher.
type Options struct {
	// Concurrency bounds in-flight sends, clamped to [1, 50].
	Concurrency int
	// Delay shapes throughput: after each completed send the worker sleeps
	// Delay/Concurrency before releasing its slot, clamped to [0, 10s].
	Delay time.Duration
	// DryRun simulates every send without any network call.
	DryRun bool
	// DryRunLatency overrides the simulated per-send latency (default 100ms).
	DryRunLatency time.Duration
}

func (o Options) normalized() Options {
	if o.Concurrency < MinConcurrency {
		o.Concurrency = MinConcurrency
	}
	if o.Concurrency > MaxConcurrency {
		o.Concurrency = MaxConcurrency
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.Delay > MaxDelay {
		o.Delay = MaxDelay
	}
	if o.DryRunLatency <= 0 {
		o.DryRunLatency = DefaultDryRunLatency
	}
	return o
}

// Dispatcher drives concurrent delivery of one payload to many recipients.
type Dispatcher struct {
	sender transport.Sender
	log    logx.Logger
}

func NewDispatcher(sender transport.Sender, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{sender: sender, log: log}
}

// Run delivers payload to every recipient, invoking onProgress (which must
// be cheap; it runs on worker goroutines) after each completion, and returns
// the full result set in completion order once every recipient has exactly
// one outcome.
//
// Duplicates in recipients produce duplicate independent attempts. On
// cancellation no new sends are admitted; Run returns the partial result
// set together with the context error.
func (d *Dispatcher) Run(ctx context.Context, recipients []string, payload Payload, opts Options, onProgress func(Snapshot)) ([]Result, error) {
	opts = opts.normalized()
	run := newTally(len(recipients))

	if len(recipients) == 0 {
		if onProgress != nil {
			onProgress(run.snapshot())
		}
		return nil, nil
	}

	d.log.Info("broadcast started",
		logx.Int("total", len(recipients)),
		logx.Int("concurrency", opts.Concurrency),
		logx.Duration("delay", opts.Delay),
		logx.Bool("dry_run", opts.DryRun),
	)

	budget := NewConcurrencyBudget(opts.Concurrency)

	// Inherited pacing: the per-completion sleep shrinks as concurrency
	// grows, so the aggregate rate approximates concurrency/delay sends/s
	// rather than each slot waiting the full delay.
	var pace time.Duration
	if opts.Delay > 0 {
		pace = opts.Delay / time.Duration(opts.Concurrency)
	}

	var wg sync.WaitGroup
	for _, id := range recipients {
		wg.Add(1)
		go func(chatID string) {
			defer wg.Done()

			if err := budget.Acquire(ctx); err != nil {
				// Run was cancelled before this recipient was admitted.
				return
			}
			out := d.attempt(ctx, chatID, payload, opts)
			if pace > 0 {
				sleepCtx(ctx, pace)
			}
			budget.Release()

			run.record(Result{ChatID: chatID, Outcome: out}, onProgress)
		}(id)
	}
	wg.Wait()

	results := run.final()
	sent, failed, dry := Totals(results)
	d.log.Info("broadcast finished",
		logx.Int("total", len(recipients)),
		logx.Int("sent", sent),
		logx.Int("failed", failed),
		logx.Int("dry_run", dry),
	)

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// attempt is the sender adapter: exactly one delivery attempt, outcome
// classified, never an error. Panics from the sender become an Unknown
// failure so the slot accounting above stays deterministic.
func (d *Dispatcher) attempt(ctx context.Context, chatID string, payload Payload, opts Options) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic in send",
				logx.String("chat_id", chatID),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())),
			)
			out = Outcome{Kind: KindUnknown, Detail: fmt.Sprintf("error: panic: %v", r)}
		}
	}()

	if opts.DryRun {
		sleepCtx(ctx, opts.DryRunLatency)
		d.log.Debug("dry run: would send", logx.String("chat_id", chatID))
		return dryRun()
	}

	opt := &transport.SendOptions{ParseMode: "HTML"}
	var err error
	if len(payload.Image) > 0 {
		err = d.sender.SendPhoto(ctx, chatID, payload.Image, payload.Text, opt)
	} else {
		// Link previews stay enabled for plain text broadcasts.
		err = d.sender.SendText(ctx, chatID, payload.Text, opt)
	}
	if err != nil {
		d.log.Warn("send failed", logx.String("chat_id", chatID), logx.Err(err))
		return failure(err)
	}
	d.log.Debug("sent", logx.String("chat_id", chatID))
	return success()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
