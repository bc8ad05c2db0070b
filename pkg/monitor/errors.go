package monitor

import "errors"

var (
	// ErrNoReport indicates nothing has been received from the device yet.
	ErrNoReport = errors.New("no report yet")
)
