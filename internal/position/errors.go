package position

import "fmt"

// AlreadyOpenError is returned when opening a symbol that already has an open position.
type AlreadyOpenError struct {
	Symbol string
}

func (e *AlreadyOpenError) Error() string {
	return fmt.Sprintf("position for %s is already open", e.Symbol)
}

// NoOpenPositionError is returned when closing or evaluating a symbol with no open position.
type NoOpenPositionError struct {
	Symbol string
}

func (e *NoOpenPositionError) Error() string {
	return fmt.Sprintf("no open position for %s", e.Symbol)
}
