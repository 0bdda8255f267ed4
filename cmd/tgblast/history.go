package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tgblast/internal/history"
	"tgblast/pkg/logx"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect stored broadcast runs",
	}
	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyTotalsCmd())
	cmd.AddCommand(historyExportCmd())
	cmd.AddCommand(historyRostersCmd())
	return cmd
}

// withStore opens the configured store and runs fn with a bounded context.
func withStore(parent context.Context, fn func(ctx context.Context, store history.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg, logx.Nop())
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("no storage configured; set storage.driver in config")
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()
	return fn(ctx, store)
}

func historyListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store history.Store) error {
				runs, err := store.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Println("No runs stored yet.")
					return nil
				}
				fmt.Printf("%-6s %-20s %-7s %-6s %-6s %-6s %s\n", "RUN", "STARTED", "TOTAL", "SENT", "FAILED", "DRY", "MODE")
				for _, r := range runs {
					mode := "live"
					if r.DryRun {
						mode = "dry-run"
					}
					fmt.Printf("%-6d %-20s %-7d %-6d %-6d %-6d %s\n",
						r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Total, r.Sent, r.Failed, r.DryCount, mode)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	return cmd
}

func historyTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Aggregate sent/failed totals across all stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store history.Store) error {
				t, err := store.SessionTotals(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Broadcasts: %d\n", t.Runs)
				fmt.Printf("Total sent: %d\n", t.Sent)
				fmt.Printf("Total failed: %d\n", t.Failed)
				if t.Sent+t.Failed > 0 {
					fmt.Printf("Success rate: %.1f%%\n", t.SuccessRate())
				}
				return nil
			})
		},
	}
}

func historyExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a run's per-recipient results as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID int64
			if _, err := fmt.Sscanf(args[0], "%d", &runID); err != nil || runID <= 0 {
				return fmt.Errorf("invalid run id %q", args[0])
			}
			return withStore(cmd.Context(), func(ctx context.Context, store history.Store) error {
				results, err := store.RunResults(ctx, runID)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					return fmt.Errorf("run %d has no results", runID)
				}
				if err := writeResultsCSV(outPath, results); err != nil {
					return err
				}
				if outPath != "-" {
					fmt.Printf("Wrote %d results to %s\n", len(results), outPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output path ('-' for stdout)")
	return cmd
}

func historyRostersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rosters",
		Short: "List saved recipient lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store history.Store) error {
				rosters, err := store.ListRosters(ctx, 0)
				if err != nil {
					return err
				}
				if len(rosters) == 0 {
					fmt.Println("No saved rosters yet.")
					return nil
				}
				fmt.Printf("%-6s %-20s %s\n", "ID", "SAVED", "RECIPIENTS")
				for _, r := range rosters {
					fmt.Printf("%-6d %-20s %d\n", r.ID, r.SavedAt.Format("2006-01-02 15:04:05"), r.Count)
				}
				return nil
			})
		},
	}
}
