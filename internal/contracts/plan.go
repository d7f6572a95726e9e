package contracts

import "github.com/shopspring/decimal"

// Side is the direction of a trade plan
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Valid reports whether s is a known side
func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// TradePlan is an entry/stop/target triple.
// Values are unrounded; use Rounded for display.
// ⭐ SSOT: built once by execution, never mutated downstream
type TradePlan struct {
	Symbol     string  `json:"symbol"`
	Side       Side    `json:"side"`
	Entry      float64 `json:"entry"`
	Stop       float64 `json:"stop"`
	Target     float64 `json:"target"`
	Risk       float64 `json:"risk"`
	RiskReward float64 `json:"risk_reward"`
}

// Rounded returns a copy with monetary fields rounded to 2 decimal places
func (p TradePlan) Rounded() TradePlan {
	p.Entry = round2(p.Entry)
	p.Stop = round2(p.Stop)
	p.Target = round2(p.Target)
	p.Risk = round2(p.Risk)
	p.RiskReward = round2(p.RiskReward)
	return p
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
