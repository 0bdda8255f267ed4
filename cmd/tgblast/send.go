package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tgblast/internal/broadcast"
	"tgblast/internal/compose"
	"tgblast/internal/history"
	"tgblast/internal/roster"
	"tgblast/pkg/logx"
)

func sendCmd() *cobra.Command {
	var (
		text          string
		textFile      string
		imagePath     string
		rosterFile    string
		rosterURL     string
		rosterHistory int64
		concurrency   int
		delay         time.Duration
		dryRun        bool
		dedupe        bool
		outPath       string
		yes           bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Broadcast a message to a recipient list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, closeLog, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			// Payload.
			if (text == "") == (textFile == "") {
				return errors.New("exactly one of --text and --text-file is required")
			}
			if textFile != "" {
				b, err := os.ReadFile(textFile)
				if err != nil {
					return err
				}
				text = string(b)
			}
			var image []byte
			if imagePath != "" {
				image, err = os.ReadFile(imagePath)
				if err != nil {
					return err
				}
			}
			payload, err := compose.New(text, image)
			if err != nil {
				return fmt.Errorf("invalid message: %w", err)
			}

			store, err := openStore(cfg, log)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			// Recipients.
			ids, err := loadRecipients(ctx, store, rosterFile, rosterURL, rosterHistory)
			if err != nil {
				return err
			}
			valid, invalid := roster.Partition(ids)
			if len(invalid) > 0 {
				log.Warn("invalid chat ids skipped", logx.Int("count", len(invalid)))
				for _, id := range invalid {
					fmt.Fprintf(os.Stderr, "skipping invalid chat id: %q\n", id)
				}
			}
			if dedupe {
				before := len(valid)
				valid = roster.Dedupe(valid)
				if dropped := before - len(valid); dropped > 0 {
					log.Info("duplicates removed", logx.Int("count", dropped))
				}
			}
			if len(valid) == 0 {
				return errors.New("no valid recipients")
			}

			if !dryRun && !yes {
				return errors.New("refusing to send: pass --yes to confirm all recipients opted in")
			}

			// Options: config defaults, flag overrides.
			opts, err := defaultOptions(cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("concurrency") {
				opts.Concurrency = concurrency
			}
			if cmd.Flags().Changed("delay") {
				opts.Delay = delay
			}
			opts.DryRun = dryRun

			// Sender construction is the single fatal failure path: a bad
			// token aborts here, before any recipient is attempted.
			sender, err := buildSender(cfg, log)
			if err != nil {
				return err
			}

			dispatcher := broadcast.NewDispatcher(sender, log)
			start := time.Now()
			results, runErr := dispatcher.Run(ctx, valid, payload, opts, progressPrinter())
			fmt.Fprintln(os.Stderr)

			sent, failed, dry := broadcast.Totals(results)
			switch {
			case dryRun:
				fmt.Printf("Dry run complete: %d messages tested (%.1fs)\n", dry, time.Since(start).Seconds())
			case failed == 0 && runErr == nil:
				fmt.Printf("Broadcast complete: sent to all %d recipients (%.1fs)\n", sent, time.Since(start).Seconds())
			default:
				fmt.Printf("Broadcast finished: sent=%d failed=%d (%.1fs)\n", sent, failed, time.Since(start).Seconds())
			}

			if store != nil {
				saveCtx, cancelSave := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancelSave()
				if _, err := store.SaveRoster(saveCtx, valid); err != nil {
					log.Warn("roster not saved", logx.Err(err))
				}
				runID, err := store.SaveRun(saveCtx, history.RunRecord{
					StartedAt:  start,
					FinishedAt: time.Now(),
					Total:      len(valid),
					Sent:       sent,
					Failed:     failed,
					DryCount:   dry,
					DryRun:     dryRun,
					HasImage:   len(payload.Image) > 0,
					TextLen:    len(payload.Text),
				}, results)
				if err != nil {
					log.Warn("run not persisted", logx.Err(err))
				} else {
					fmt.Printf("Saved as run %d\n", runID)
				}
			}

			if outPath != "" {
				if err := writeResultsCSV(outPath, results); err != nil {
					return err
				}
				fmt.Printf("Results written to %s\n", outPath)
			}

			return runErr
		},
	}

	cmd.Flags().StringVarP(&text, "text", "m", "", "message text (HTML subset supported)")
	cmd.Flags().StringVar(&textFile, "text-file", "", "read message text from file")
	cmd.Flags().StringVar(&imagePath, "image", "", "attach an image; the text becomes its caption")
	cmd.Flags().StringVarP(&rosterFile, "roster", "r", "", "recipient list file (one chat id per line, # comments)")
	cmd.Flags().StringVar(&rosterURL, "roster-url", "", "recipient list raw URL")
	cmd.Flags().Int64Var(&rosterHistory, "roster-history", 0, "saved roster id (see 'tgblast history rosters')")
	cmd.Flags().IntVar(&concurrency, "concurrency", 10, "concurrent sends (1-50)")
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "inter-batch delay (0-10s)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate without sending")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "remove duplicate chat ids before sending")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write per-recipient results CSV to this path ('-' for stdout)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm that all recipients opted in")

	return cmd
}

// progressPrinter renders a single live status line on stderr. It must stay
// cheap: it runs on dispatcher worker goroutines.
func progressPrinter() func(broadcast.Snapshot) {
	return func(s broadcast.Snapshot) {
		fmt.Fprintf(os.Stderr, "\rProcessing %d/%d  sent=%d failed=%d dry=%d pending=%d  %.1f/s",
			s.Completed, s.Total, s.Sent, s.Failed, s.DryRun, s.Pending, s.Rate)
	}
}

func writeResultsCSV(path string, results []broadcast.Result) error {
	if path == "-" {
		return history.WriteCSV(os.Stdout, results)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := history.WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
