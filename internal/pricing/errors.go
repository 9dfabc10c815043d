// Package pricing turns a meter's readings into costs and ranks price plans.
//
// Everything here is pure: inputs are treated as read-only snapshots, nothing
// is logged and no I/O is performed. Store access happens in the caller.
package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrNoReadings is reported when a meter has no readings to compare plans with.
	ErrNoReadings           = fmt.Errorf("%w: meter has no readings", ErrNotFound)
	ErrInsufficientData     = errors.New("insufficient data")
	ErrDegenerateTimeWindow = errors.New("degenerate time window")
	ErrInvalidArgument      = errors.New("invalid argument")
)
