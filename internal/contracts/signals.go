package contracts

// BreakoutResult is the detector's verdict for one instrument
// ⭐ SSOT: Detector → Plan Builder / Dispatcher
//
// Evaluated is false when there was not enough history; the derived fields are then zero.
type BreakoutResult struct {
	Symbol      string  `json:"symbol"`
	IsBreakout  bool    `json:"is_breakout"`
	Evaluated   bool    `json:"evaluated"`
	RecentHigh  float64 `json:"recent_high,omitempty"`
	AvgVolume   float64 `json:"avg_volume,omitempty"`
	EntryPrice  float64 `json:"entry_price,omitempty"`
	EntryVolume float64 `json:"entry_volume,omitempty"`
}

// VolumeRatio returns entry volume over the window average, 0 when not evaluated
func (r BreakoutResult) VolumeRatio() float64 {
	if !r.Evaluated || r.AvgVolume == 0 {
		return 0
	}
	return r.EntryVolume / r.AvgVolume
}
