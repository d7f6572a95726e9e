package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/breakwatch/internal/pipeline"
	"github.com/wonny/breakwatch/pkg/logger"
)

// scanCmd runs a single refresh and prints it
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and print movers, breakouts and plans",
	Long: `Runs one refresh for a group and prints the result.

Steps:
  1. Resolve the group's symbols
  2. Fetch daily bars concurrently
  3. Rank gainers/losers and apply the filters
  4. Detect breakouts and build trade plans
  5. Send alerts once per symbol (only with --alerts)

Example:
  go run ./cmd/breakwatch scan --group BANKNIFTY --top 5
  go run ./cmd/breakwatch scan --json > snapshot.json`,
	RunE: runScan,
}

var (
	scanOpts scanFlags
	scanTop  int
	scanJSON bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanOpts.bind(scanCmd)
	scanCmd.Flags().IntVar(&scanTop, "top", 10, "rows per gainers/losers table")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the snapshot as JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, groups, err := loadConfig(cmd, &scanOpts)
	if err != nil {
		return err
	}

	log := logger.NewWithWriter(cfg, os.Stderr)
	ctx := cmd.Context()

	a, err := buildApp(ctx, cfg, groups, newMetrics(cfg), log)
	if err != nil {
		return err
	}
	defer a.Close()

	snapshot, err := a.pipeline.Run(ctx, pipeline.Request{Group: cfg.Scan.Group})
	if err != nil {
		return fmt.Errorf("scan %s: %w", cfg.Scan.Group, err)
	}

	out := cmd.OutOrStdout()
	if scanJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}

	printSnapshot(out, snapshot, scanTop)
	return nil
}
