package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tgblast/internal/compose"
	"tgblast/internal/roster"
)

func rosterCmd() *cobra.Command {
	var (
		save    bool
		dedupe  bool
		preview int
	)

	cmd := &cobra.Command{
		Use:   "roster <file>",
		Short: "Parse and validate a recipient list file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := roster.FromFile(args[0])
			if err != nil {
				return err
			}
			valid, invalid := roster.Partition(ids)
			if dedupe {
				valid = roster.Dedupe(valid)
			}

			fmt.Printf("Recipients: %d valid, %d invalid\n", len(valid), len(invalid))
			for _, id := range invalid {
				fmt.Printf("  invalid: %q\n", id)
			}
			for i, id := range valid {
				if i >= preview {
					fmt.Printf("  ... %d more\n", len(valid)-preview)
					break
				}
				fmt.Printf("  %s\n", id)
			}

			if save {
				if len(valid) == 0 {
					return errors.New("nothing to save")
				}
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				log, closeLog, err := buildLogger(cfg)
				if err != nil {
					return err
				}
				defer closeLog()
				store, err := openStore(cfg, log)
				if err != nil {
					return err
				}
				if store == nil {
					return errors.New("--save needs a configured storage backend")
				}
				defer store.Close()

				ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
				defer cancel()
				id, err := store.SaveRoster(ctx, valid)
				if err != nil {
					return err
				}
				fmt.Printf("Saved as roster %d\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "save the valid ids to roster history")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "remove duplicate chat ids")
	cmd.Flags().IntVar(&preview, "preview", 20, "how many ids to print")

	return cmd
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates [name]",
		Short: "Show built-in message templates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				tpl, ok := compose.Templates[args[0]]
				if !ok {
					return fmt.Errorf("unknown template %q", args[0])
				}
				fmt.Println(tpl)
				return nil
			}
			for _, name := range compose.TemplateNames() {
				fmt.Println(name)
			}
			return nil
		},
	}
}
