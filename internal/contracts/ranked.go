package contracts

// MoverRow is one instrument's last-period change
// ⭐ SSOT: Ranker → Detector
type MoverRow struct {
	Symbol     string  `json:"symbol"`
	LastClose  float64 `json:"last_close"`
	LastVolume float64 `json:"last_volume"`
	PctChange  float64 `json:"pct_change"` // 0 when the previous close is 0
}

// AbsPctChange returns |PctChange|
func (r MoverRow) AbsPctChange() float64 {
	if r.PctChange < 0 {
		return -r.PctChange
	}
	return r.PctChange
}
