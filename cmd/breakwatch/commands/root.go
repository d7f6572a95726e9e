package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	profilePath string
	logLevel    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "breakwatch",
	Short: "NSE movers and breakout scanner",
	Long: `breakwatch

Fetches daily bars for an instrument group, ranks gainers and losers,
detects breakouts and builds risk-reward trade plans. Optionally sends
each breakout to Telegram once.

Usage:
  go run ./cmd/breakwatch [command]

Examples:
  go run ./cmd/breakwatch scan --group NIFTY50
  go run ./cmd/breakwatch watch --interval 5m --alerts
  go run ./cmd/breakwatch serve --port 8089
  go run ./cmd/breakwatch groups --resolve BANKNIFTY
  go run ./cmd/breakwatch alert-test`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupt and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "scan profile YAML (default SCAN_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug|info|warn|error)")
}
