package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewInstrumentSeries_SortsAndDedupes(t *testing.T) {
	series := NewInstrumentSeries("TCS.NS", []Bar{
		{Time: day(2), Close: 30, Volume: 300},
		{Time: day(0), Close: 10, Volume: 100},
		{Time: day(1), Close: 20, Volume: 200},
		{Time: day(1), Close: 21, Volume: 210},
	})

	require.Equal(t, 3, series.Len())
	assert.Equal(t, day(0), series.Bars[0].Time)
	assert.Equal(t, day(1), series.Bars[1].Time)
	assert.Equal(t, 21.0, series.Bars[1].Close, "last duplicate wins")
	assert.Equal(t, day(2), series.Bars[2].Time)
}

func TestInstrumentSeries_LatestPrevious(t *testing.T) {
	empty := NewInstrumentSeries("X", nil)
	assert.True(t, empty.IsEmpty())
	_, ok := empty.Latest()
	assert.False(t, ok)

	one := NewInstrumentSeries("X", []Bar{{Time: day(0), Close: 5}})
	latest, ok := one.Latest()
	require.True(t, ok)
	assert.Equal(t, 5.0, latest.Close)
	_, ok = one.Previous()
	assert.False(t, ok)

	two := NewInstrumentSeries("X", []Bar{{Time: day(0), Close: 5}, {Time: day(1), Close: 6}})
	prev, ok := two.Previous()
	require.True(t, ok)
	assert.Equal(t, 5.0, prev.Close)
}

func TestTradePlan_Rounded(t *testing.T) {
	plan := TradePlan{
		Symbol:     "INFY.NS",
		Side:       SideLong,
		Entry:      1523.456,
		Stop:       1492.98688,
		Target:     1584.39424,
		Risk:       30.46912,
		RiskReward: 2,
	}

	rounded := plan.Rounded()
	assert.Equal(t, 1523.46, rounded.Entry)
	assert.Equal(t, 1492.99, rounded.Stop)
	assert.Equal(t, 1584.39, rounded.Target)
	assert.Equal(t, 30.47, rounded.Risk)

	// original untouched
	assert.Equal(t, 1523.456, plan.Entry)
}

func TestBreakoutResult_VolumeRatio(t *testing.T) {
	assert.Equal(t, 0.0, BreakoutResult{Symbol: "A"}.VolumeRatio())
	assert.Equal(t, 2.0, BreakoutResult{Evaluated: true, AvgVolume: 100, EntryVolume: 200}.VolumeRatio())
}

func TestMoverRow_AbsPctChange(t *testing.T) {
	assert.Equal(t, 1.5, MoverRow{PctChange: -1.5}.AbsPctChange())
	assert.Equal(t, 0.3, MoverRow{PctChange: 0.3}.AbsPctChange())
}
