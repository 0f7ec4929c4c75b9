package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"folio/internal/logger"
)

var noColor bool

func main() {
	// A missing .env is fine; env vars win over file values either way.
	_ = godotenv.Load()
	logger.Init()

	rootCmd := &cobra.Command{
		Use:           "folio",
		Short:         "Folio answers questions about a portfolio, grounded in its data file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
