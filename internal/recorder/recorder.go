package recorder

import "time"

// CycleRecord summarises one refresh cycle.
type CycleRecord struct {
	StartedAt  time.Time
	Duration   time.Duration
	Candidates []CandidateRecord
	OK         int
	Empty      int
	Excluded   int
	Malformed  int
	Failed     int
}

// CandidateRecord is one classified instrument of a cycle.
type CandidateRecord struct {
	Symbol          string
	Decision        string
	Path            string
	Price           float64
	TargetPrice     float64
	StopLossPrice   float64
	VolatilityScore float64
}

// PositionEvent records an open, close or status transition.
type PositionEvent struct {
	At     time.Time `json:"at"`
	Symbol string    `json:"symbol"`
	Event  string    `json:"event"` // "OPEN", "CLOSE" or "TRANSITION"
	Status string    `json:"status"`
	Price  float64   `json:"price"`
}

// Recorder keeps a journal of the session for display and inspection.
type Recorder interface {
	RecordCycle(rec *CycleRecord) error
	RecordPositionEvent(evt *PositionEvent) error
	RecentPositionEvents(limit int) ([]PositionEvent, error)
	Close() error
}
