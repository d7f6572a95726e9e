package selection

import (
	"math"
	"sort"

	"github.com/wonny/breakwatch/internal/contracts"
)

// Compute derives one MoverRow per series from its last two bars.
// Series with fewer than 2 bars are excluded. Rows come back ordered by symbol.
// ⭐ SSOT: percent change is computed here only
func Compute(series map[string]contracts.InstrumentSeries) []contracts.MoverRow {
	rows := make([]contracts.MoverRow, 0, len(series))

	for symbol, s := range series {
		last, ok := s.Latest()
		if !ok {
			continue
		}
		prev, ok := s.Previous()
		if !ok {
			continue
		}

		rows = append(rows, contracts.MoverRow{
			Symbol:     symbol,
			LastClose:  last.Close,
			LastVolume: last.Volume,
			PctChange:  PctChange(prev.Close, last.Close),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Symbol < rows[j].Symbol
	})
	return rows
}

// PctChange returns (last-prev)/prev*100, or 0 when prev is 0
func PctChange(prev, last float64) float64 {
	if prev == 0 {
		return 0
	}
	pct := (last - prev) / prev * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	return pct
}

// Gainers returns a copy sorted by PctChange descending, symbol ascending on ties
func Gainers(rows []contracts.MoverRow) []contracts.MoverRow {
	out := append([]contracts.MoverRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PctChange != out[j].PctChange {
			return out[i].PctChange > out[j].PctChange
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Losers returns a copy sorted by PctChange ascending, symbol ascending on ties
func Losers(rows []contracts.MoverRow) []contracts.MoverRow {
	out := append([]contracts.MoverRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PctChange != out[j].PctChange {
			return out[i].PctChange < out[j].PctChange
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Filter keeps rows with |PctChange| >= minPctChange AND LastVolume >= minVolume
func Filter(rows []contracts.MoverRow, minPctChange, minVolume float64) []contracts.MoverRow {
	out := make([]contracts.MoverRow, 0, len(rows))
	for _, r := range rows {
		if r.AbsPctChange() >= minPctChange && r.LastVolume >= minVolume {
			out = append(out, r)
		}
	}
	return out
}

// Top returns at most n leading rows
func Top(rows []contracts.MoverRow, n int) []contracts.MoverRow {
	if n < 0 {
		n = 0
	}
	if n > len(rows) {
		n = len(rows)
	}
	return rows[:n]
}
