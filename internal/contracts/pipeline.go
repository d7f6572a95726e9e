package contracts

import "time"

// AlertRecord is the outcome of one notify-once attempt
type AlertRecord struct {
	Symbol  string `json:"symbol"`
	Sent    bool   `json:"sent"`
	Skipped bool   `json:"skipped"` // already in the ledger
	Reason  string `json:"reason,omitempty"`
}

// Snapshot is everything one refresh produced
// ⭐ SSOT: Pipeline → API / CLI / stream
type Snapshot struct {
	Group     string        `json:"group"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	Requested int `json:"requested"`
	Fetched   int `json:"fetched"`

	Gainers   []MoverRow       `json:"gainers"`
	Losers    []MoverRow       `json:"losers"`
	Filtered  []MoverRow       `json:"filtered"`
	Breakouts []BreakoutResult `json:"breakouts"`
	Plans     []TradePlan      `json:"plans"`
	Alerts    []AlertRecord    `json:"alerts"`
}

// FailedCount is the number of requested symbols with no data
func (s *Snapshot) FailedCount() int {
	return s.Requested - s.Fetched
}

// IsEmpty reports whether nothing was fetched
func (s *Snapshot) IsEmpty() bool {
	return s.Fetched == 0
}
