package contracts

import (
	"sort"
	"time"
)

// Bar is one daily observation
type Bar struct {
	Time   time.Time `json:"time"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// InstrumentSeries is the fetched history of one symbol
// ⭐ SSOT: Fetcher → Coordinator → Ranker/Detector
// Bars are ascending by time with no duplicate timestamps.
type InstrumentSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// NewInstrumentSeries sorts bars ascending and drops duplicate timestamps.
// On duplicates the bar seen last in the input wins.
func NewInstrumentSeries(symbol string, bars []Bar) InstrumentSeries {
	if len(bars) == 0 {
		return InstrumentSeries{Symbol: symbol}
	}

	byTime := make(map[int64]Bar, len(bars))
	for _, b := range bars {
		byTime[b.Time.UnixNano()] = b
	}

	out := make([]Bar, 0, len(byTime))
	for _, b := range byTime {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	return InstrumentSeries{Symbol: symbol, Bars: out}
}

// IsEmpty reports whether the series carries no data
func (s InstrumentSeries) IsEmpty() bool {
	return len(s.Bars) == 0
}

// Len returns the number of bars
func (s InstrumentSeries) Len() int {
	return len(s.Bars)
}

// Latest returns the most recent bar
func (s InstrumentSeries) Latest() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Previous returns the bar before the latest
func (s InstrumentSeries) Previous() (Bar, bool) {
	if len(s.Bars) < 2 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-2], true
}
