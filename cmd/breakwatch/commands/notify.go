package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/breakwatch/internal/notifier"
	"github.com/wonny/breakwatch/pkg/logger"
)

// alertTestCmd sends one message to verify the Telegram setup
var alertTestCmd = &cobra.Command{
	Use:   "alert-test",
	Short: "Send a test message to the configured Telegram chat",
	Long: `Sends a single message through the Bot API and prints the outcome.
The alert ledger is not consulted.

Example:
  TELEGRAM_BOT_TOKEN=... TELEGRAM_CHAT_ID=... go run ./cmd/breakwatch alert-test`,
	RunE: runAlertTest,
}

var alertTestText string

func init() {
	rootCmd.AddCommand(alertTestCmd)
	alertTestCmd.Flags().StringVar(&alertTestText, "text", "", "message text (default: a timestamped test line)")
}

func runAlertTest(cmd *cobra.Command, args []string) error {
	cfg, groups, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	log := logger.NewWithWriter(cfg, os.Stderr)
	out := cmd.OutOrStdout()

	a, err := buildApp(cmd.Context(), cfg, groups, nil, log)
	if err != nil {
		return err
	}
	defer a.Close()

	text := alertTestText
	if text == "" {
		text = fmt.Sprintf("✅ breakwatch test message (%s)", time.Now().Format(time.RFC3339))
	}

	target := notifier.Target{ChatID: cfg.Telegram.ChatID, Token: cfg.Telegram.BotToken}
	ok, reason := a.dispatcher.Send(cmd.Context(), target, text)
	if !ok {
		printError(out, "not delivered: "+reason)
		return fmt.Errorf("alert not delivered: %s", reason)
	}

	printSuccess(out, "delivered")
	return nil
}
