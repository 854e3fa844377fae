// Command casalgastos runs the family expense dashboard, the spreadsheet
// mirror worker and their maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"casalgastos/internal/cli"
	applog "casalgastos/internal/log"
)

var (
	envFile  string
	logLevel string
	logger   *applog.Logger

	rootCmd = &cobra.Command{
		Use:           "casalgastos",
		Short:         "Family expense dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if envFile != "" {
				cli.LoadEnvFile(envFile)
			} else {
				cli.LoadEnvFile()
			}
			level := logLevel
			if !cmd.Flags().Changed("log-level") {
				if v := os.Getenv("LOG_LEVEL"); v != "" {
					level = v
				}
			}
			logger = cli.SetupLogger(level)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default: .env if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
