package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/breakwatch/pkg/logger"
)

// groupsCmd lists groups and optionally resolves their constituents
var groupsCmd = &cobra.Command{
	Use:   "groups [--resolve GROUP]",
	Short: "List instrument groups",
	Long: `Lists the configured instrument groups.

With --resolve the group's constituents are fetched (or read from the
Redis cache) and printed as quote-source symbols.

Example:
  go run ./cmd/breakwatch groups
  go run ./cmd/breakwatch groups --resolve FINNIFTY`,
	RunE: runGroups,
}

var groupsResolve string

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.Flags().StringVar(&groupsResolve, "resolve", "", "group whose symbols to print")
}

func runGroups(cmd *cobra.Command, args []string) error {
	cfg, groups, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	log := logger.NewWithWriter(cfg, os.Stderr)
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := buildApp(ctx, cfg, groups, nil, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if groupsResolve == "" {
		rows := make([][]string, 0, len(groups))
		for _, name := range a.symbols.Groups() {
			g, _ := a.symbols.Group(name)
			source := g.Index
			if len(g.Symbols) > 0 {
				source = fmt.Sprintf("static (%d symbols)", len(g.Symbols))
			}
			rows = append(rows, []string{name, source})
		}
		printTable(out, []string{"GROUP", "SOURCE"}, []int{12, 32}, rows)
		return nil
	}

	session := a.symbols.NewSession(a.symbolHTTP.Session())
	symbols, err := a.symbols.Symbols(ctx, session, groupsResolve)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		printWarning(out, "no symbols resolved; the exchange may be unavailable")
		return nil
	}

	fmt.Fprintf(out, "%s (%d)\n", strings.ToUpper(groupsResolve), len(symbols))
	for _, s := range symbols {
		fmt.Fprintf(out, "   • %s\n", s)
	}
	return nil
}
