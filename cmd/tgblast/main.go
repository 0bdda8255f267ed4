// Command tgblast broadcasts a message to many Telegram chats with bounded
// concurrency and rate limiting.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Overridable via persistent flags.
	configPath string
	tokenFlag  string
)

func main() {
	root := &cobra.Command{
		Use:           "tgblast",
		Short:         "tgblast: Telegram broadcast tool",
		Long:          "tgblast fans one message out to a list of Telegram chats with bounded concurrency, pacing and per-recipient result tracking.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "./tgblast.yaml", "path to config file (yaml or json)")
	root.PersistentFlags().StringVar(&tokenFlag, "token", "", "bot token (overrides config)")

	root.AddCommand(sendCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(rosterCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(templatesCmd())
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
