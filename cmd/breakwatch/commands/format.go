package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/internal/selection"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints through these so output stays uniform
// ═══════════════════════════════════════════════════════════

const (
	separator       = "───────────────────────────────────────────────────────────"
	doubleSeparator = "═══════════════════════════════════════════════════════════"
)

// printHeader prints a titled block
func printHeader(w io.Writer, title string, kv [][2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleSeparator)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, separator)
	for _, pair := range kv {
		fmt.Fprintf(w, "  %-10s: %s\n", pair[0], pair[1])
	}
	fmt.Fprintln(w, separator)
}

func printSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

func printWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

func printError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

// printTable prints a header row, a rule and the rows, each column padded to width
func printTable(w io.Writer, columns []string, widths []int, rows [][]string) {
	printRow(w, columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))

	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func printRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

func printMovers(w io.Writer, title string, rows []contracts.MoverRow, top int) {
	fmt.Fprintf(w, "\n%s\n", title)
	rows = selection.Top(rows, top)
	if len(rows) == 0 {
		fmt.Fprintln(w, "   (none)")
		return
	}

	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{
			r.Symbol,
			fmt.Sprintf("%.2f", r.LastClose),
			fmt.Sprintf("%+.2f%%", r.PctChange),
			fmt.Sprintf("%.0f", r.LastVolume),
		}
	}
	printTable(w, []string{"SYMBOL", "CLOSE", "CHANGE", "VOLUME"}, []int{16, 10, 9, 12}, table)
}

func printBreakouts(w io.Writer, breakouts []contracts.BreakoutResult) {
	fmt.Fprintln(w, "\nBreakouts")
	if len(breakouts) == 0 {
		fmt.Fprintln(w, "   (none)")
		return
	}

	table := make([][]string, len(breakouts))
	for i, b := range breakouts {
		table[i] = []string{
			b.Symbol,
			fmt.Sprintf("%.2f", b.EntryPrice),
			fmt.Sprintf("%.2f", b.RecentHigh),
			fmt.Sprintf("%.1fx", b.VolumeRatio()),
		}
	}
	printTable(w, []string{"SYMBOL", "CLOSE", "HIGH", "VOL/AVG"}, []int{16, 10, 10, 8}, table)
}

func printPlans(w io.Writer, plans []contracts.TradePlan) {
	fmt.Fprintln(w, "\nTrade plans")
	if len(plans) == 0 {
		fmt.Fprintln(w, "   (none)")
		return
	}

	table := make([][]string, len(plans))
	for i, p := range plans {
		r := p.Rounded()
		table[i] = []string{
			r.Symbol,
			string(r.Side),
			fmt.Sprintf("%.2f", r.Entry),
			fmt.Sprintf("%.2f", r.Stop),
			fmt.Sprintf("%.2f", r.Target),
			fmt.Sprintf("%.2f", r.RiskReward),
		}
	}
	printTable(w, []string{"SYMBOL", "SIDE", "ENTRY", "STOP", "TARGET", "RR"}, []int{16, 5, 10, 10, 10, 5}, table)
}

func printAlerts(w io.Writer, alerts []contracts.AlertRecord) {
	if len(alerts) == 0 {
		return
	}
	fmt.Fprintln(w, "\nAlerts")
	for _, a := range alerts {
		status := "failed"
		switch {
		case a.Sent:
			status = "sent"
		case a.Skipped:
			status = "skipped"
		}
		fmt.Fprintf(w, "   • %-16s %-8s %s\n", a.Symbol, status, a.Reason)
	}
}

// printSnapshot renders a full refresh result
func printSnapshot(w io.Writer, s *contracts.Snapshot, top int) {
	printHeader(w, "Breakout scan", [][2]string{
		{"Group", s.Group},
		{"Started", s.StartedAt.Format("2006-01-02 15:04:05")},
		{"Fetched", fmt.Sprintf("%d/%d", s.Fetched, s.Requested)},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
	})

	if s.IsEmpty() {
		printWarning(w, "no data fetched; upstream may be unavailable")
		return
	}

	printMovers(w, fmt.Sprintf("Top %d gainers", top), s.Gainers, top)
	printMovers(w, fmt.Sprintf("Top %d losers", top), s.Losers, top)
	fmt.Fprintf(w, "\n%d rows passed the filters\n", len(s.Filtered))
	printBreakouts(w, s.Breakouts)
	printPlans(w, s.Plans)
	printAlerts(w, s.Alerts)
	fmt.Fprintln(w)
}

// printSummary is the one-line form used by watch
func printSummary(w io.Writer, s *contracts.Snapshot) {
	fmt.Fprintf(w, "[%s] %s fetched %d/%d, filtered %d, breakouts %d, plans %d, alerts %d (%s)\n",
		s.StartedAt.Format("15:04:05"), s.Group, s.Fetched, s.Requested,
		len(s.Filtered), len(s.Breakouts), len(s.Plans), len(s.Alerts), s.Duration.Round(time.Millisecond))
	for _, p := range s.Plans {
		r := p.Rounded()
		fmt.Fprintf(w, "   🚀 %-16s entry %.2f  stop %.2f  target %.2f\n", r.Symbol, r.Entry, r.Stop, r.Target)
	}
}
