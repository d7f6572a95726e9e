package signals

import (
	"github.com/wonny/breakwatch/internal/contracts"
)

// Params are the caller-supplied breakout tunables
type Params struct {
	LookbackDays     int     // bars before the latest one forming the window
	BreakoutPct      float64 // required % above the window high
	VolumeMultiplier float64 // required multiple of the window average volume
}

// DefaultParams mirror the dashboard defaults
func DefaultParams() Params {
	return Params{
		LookbackDays:     20,
		BreakoutPct:      0.5,
		VolumeMultiplier: 1.5,
	}
}

// Detect evaluates one instrument.
// The window is the LookbackDays bars immediately before the latest bar; the latest bar is excluded.
// Both comparisons are strict. Too little history yields an unevaluated, non-breakout result.
// ⭐ SSOT: breakout rule lives here only
func Detect(row contracts.MoverRow, series contracts.InstrumentSeries, p Params) contracts.BreakoutResult {
	result := contracts.BreakoutResult{Symbol: row.Symbol}

	n := series.Len()
	if p.LookbackDays < 1 || n-1 < p.LookbackDays {
		return result
	}

	latest := series.Bars[n-1]
	window := series.Bars[n-1-p.LookbackDays : n-1]

	high := window[0].Close
	var volSum float64
	for _, b := range window {
		if b.Close > high {
			high = b.Close
		}
		volSum += b.Volume
	}
	avgVolume := volSum / float64(len(window))

	result.Evaluated = true
	result.RecentHigh = high
	result.AvgVolume = avgVolume
	result.EntryPrice = latest.Close
	result.EntryVolume = latest.Volume
	result.IsBreakout = latest.Close > high*(1+p.BreakoutPct/100) &&
		latest.Volume > avgVolume*p.VolumeMultiplier

	return result
}

// DetectAll runs Detect for each row whose series is present, keeping row order.
// Only breakouts are returned.
func DetectAll(rows []contracts.MoverRow, series map[string]contracts.InstrumentSeries, p Params) []contracts.BreakoutResult {
	out := make([]contracts.BreakoutResult, 0)
	for _, row := range rows {
		s, ok := series[row.Symbol]
		if !ok {
			continue
		}
		if r := Detect(row, s, p); r.IsBreakout {
			out = append(out, r)
		}
	}
	return out
}
