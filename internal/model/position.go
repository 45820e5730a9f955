package model

import "time"

// PositionStatus is the lifecycle state of an opened position.
type PositionStatus string

const (
	StatusHolding     PositionStatus = "Holding"
	StatusTargetHit   PositionStatus = "TargetHit"
	StatusStopLossHit PositionStatus = "StopLossHit"
)

// Terminal reports whether the status can no longer change while the position is open.
func (s PositionStatus) Terminal() bool {
	return s == StatusTargetHit || s == StatusStopLossHit
}

// Suggestion is the action shown next to a position.
type Suggestion string

const (
	SuggestHold Suggestion = "Hold"
	SuggestSell Suggestion = "Sell"
)

// Position is a user-tracked commitment to an instrument.
type Position struct {
	Symbol        string         `json:"symbol"`
	EntryTime     time.Time      `json:"entry_time"`
	ExitTime      *time.Time     `json:"exit_time,omitempty"`
	EntryPrice    float64        `json:"entry_price"`
	TargetPrice   float64        `json:"target_price"`
	StopLossPrice float64        `json:"stop_loss_price"`
	LastPrice     float64        `json:"last_price"`
	Status        PositionStatus `json:"status"`
}

// Open reports whether the position has not been exited.
func (p Position) Open() bool { return p.ExitTime == nil }

// Suggestion derives the display action from the status.
func (p Position) Suggestion() Suggestion {
	if p.Status.Terminal() {
		return SuggestSell
	}
	return SuggestHold
}

// PnLPct is the percentage move from entry to the last evaluated price.
func (p Position) PnLPct() float64 {
	if p.EntryPrice == 0 || p.LastPrice == 0 {
		return 0
	}
	return (p.LastPrice - p.EntryPrice) / p.EntryPrice * 100
}
