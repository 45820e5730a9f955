package recorder

// NoopRecorder is a no-op implementation used when the journal is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *CycleRecord) error                    { return nil }
func (n *NoopRecorder) RecordPositionEvent(_ *PositionEvent) error          { return nil }
func (n *NoopRecorder) RecentPositionEvents(_ int) ([]PositionEvent, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                        { return nil }
