package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/breakwatch/internal/contracts"
)

func series(symbol string, closes []float64, volumes []float64) contracts.InstrumentSeries {
	bars := make([]contracts.Bar, len(closes))
	for i := range closes {
		bars[i] = contracts.Bar{
			Time:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Close:  closes[i],
			Volume: volumes[i],
		}
	}
	return contracts.NewInstrumentSeries(symbol, bars)
}

func TestCompute(t *testing.T) {
	input := map[string]contracts.InstrumentSeries{
		"UP.NS":     series("UP.NS", []float64{90, 100, 110}, []float64{1, 2, 300}),
		"DOWN.NS":   series("DOWN.NS", []float64{200, 150}, []float64{5, 500}),
		"SINGLE.NS": series("SINGLE.NS", []float64{100}, []float64{10}),
		"EMPTY.NS":  {Symbol: "EMPTY.NS"},
	}

	rows := Compute(input)

	require.Len(t, rows, 2, "series with fewer than 2 bars are excluded")
	assert.Equal(t, "DOWN.NS", rows[0].Symbol)
	assert.InDelta(t, -25.0, rows[0].PctChange, 1e-9)
	assert.Equal(t, 150.0, rows[0].LastClose)
	assert.Equal(t, 500.0, rows[0].LastVolume)

	assert.Equal(t, "UP.NS", rows[1].Symbol)
	assert.InDelta(t, 10.0, rows[1].PctChange, 1e-9)
}

func TestPctChange_ZeroPrevious(t *testing.T) {
	for _, last := range []float64{0, 1, 123.45, -5} {
		assert.Equal(t, 0.0, PctChange(0, last))
	}

	rows := Compute(map[string]contracts.InstrumentSeries{
		"Z.NS": series("Z.NS", []float64{0, 42}, []float64{1, 1}),
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].PctChange)
}

func TestGainersLosers(t *testing.T) {
	rows := []contracts.MoverRow{
		{Symbol: "B", PctChange: 1},
		{Symbol: "A", PctChange: 1},
		{Symbol: "C", PctChange: -3},
		{Symbol: "D", PctChange: 5},
	}

	gainers := Gainers(rows)
	assert.Equal(t, []string{"D", "A", "B", "C"}, symbolsOf(gainers))

	losers := Losers(rows)
	assert.Equal(t, []string{"C", "A", "B", "D"}, symbolsOf(losers))

	// input untouched
	assert.Equal(t, []string{"B", "A", "C", "D"}, symbolsOf(rows))
}

func TestFilter_IsAnd(t *testing.T) {
	rows := []contracts.MoverRow{
		{Symbol: "BOTH", PctChange: -0.5, LastVolume: 200000},
		{Symbol: "PCT_ONLY", PctChange: 3, LastVolume: 10},
		{Symbol: "VOL_ONLY", PctChange: 0.1, LastVolume: 900000},
		{Symbol: "EDGE", PctChange: 0.2, LastVolume: 100000},
	}

	got := Filter(rows, 0.2, 100000)
	assert.Equal(t, []string{"BOTH", "EDGE"}, symbolsOf(got))
}

func TestTop(t *testing.T) {
	rows := []contracts.MoverRow{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}}

	assert.Len(t, Top(rows, 2), 2)
	assert.Len(t, Top(rows, 10), 3)
	assert.Empty(t, Top(rows, -1))
}

func symbolsOf(rows []contracts.MoverRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Symbol
	}
	return out
}
