package model

// InstrumentKind selects which input an instrument is scanned from.
type InstrumentKind string

const (
	// KindSeries instruments have a full bar history (equities).
	KindSeries InstrumentKind = "series"
	// KindQuote instruments only have a live quote (crypto pairs).
	KindQuote InstrumentKind = "quote"
)

// Instrument is one entry of the scan universe.
type Instrument struct {
	Symbol string         `yaml:"symbol" json:"symbol" validate:"required"`
	Kind   InstrumentKind `yaml:"kind" json:"kind" default:"series" validate:"oneof=series quote"`
}
