package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tgblast/internal/compose"
	"tgblast/internal/roster"
	"tgblast/internal/transport/telegram"
)

func validateCmd() *cobra.Command {
	var (
		text       string
		textFile   string
		imagePath  string
		rosterFile string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Pre-flight checks without sending anything",
		Long:  "Checks token format, message length and roster validity. Makes no network calls.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			failed := false
			check := func(name string, err error) {
				if err != nil {
					failed = true
					fmt.Printf("✗ %s: %v\n", name, err)
					return
				}
				fmt.Printf("✓ %s\n", name)
			}

			token := resolveToken(cfg)
			switch {
			case token == "":
				check("token", errors.New("not configured"))
			case !telegram.ValidTokenFormat(token):
				check("token", errors.New("invalid format"))
			default:
				check("token", nil)
			}

			if textFile != "" {
				b, err := os.ReadFile(textFile)
				if err != nil {
					return err
				}
				text = string(b)
			}
			if text != "" || imagePath != "" {
				var image []byte
				if imagePath != "" {
					image, err = os.ReadFile(imagePath)
					if err != nil {
						return err
					}
				}
				_, err := compose.New(text, image)
				check("message", err)
			}

			if rosterFile != "" {
				ids, err := roster.FromFile(rosterFile)
				if err != nil {
					return err
				}
				valid, invalid := roster.Partition(ids)
				if len(invalid) > 0 {
					check("roster", fmt.Errorf("%d invalid of %d ids", len(invalid), len(ids)))
					for _, id := range invalid {
						fmt.Printf("  invalid: %q\n", id)
					}
				} else {
					check(fmt.Sprintf("roster (%d recipients)", len(valid)), nil)
				}
			}

			if failed {
				return errors.New("validation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "m", "", "message text to validate")
	cmd.Flags().StringVar(&textFile, "text-file", "", "read message text from file")
	cmd.Flags().StringVar(&imagePath, "image", "", "image to validate against caption limits")
	cmd.Flags().StringVarP(&rosterFile, "roster", "r", "", "recipient list file to validate")

	return cmd
}
