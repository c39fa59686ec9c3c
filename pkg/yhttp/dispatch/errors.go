package dispatch

import "errors"

var (
	// ErrInvalidPort is returned by New when port < 1024.
	ErrInvalidPort = errors.New("dispatch: port must be >= 1024")

	// ErrBusy is returned by Dispatch when a dispatch call is already
	// in progress on this instance.
	ErrBusy = errors.New("dispatch: already dispatching")

	// ErrNotFound is returned by Stop when called while not dispatched,
	// or on any call after the first successful Stop.
	ErrNotFound = errors.New("dispatch: not dispatched")

	// ErrOverflow is returned when growing the slot vector would
	// overflow platform-representable lengths.
	ErrOverflow = errors.New("dispatch: slot vector size overflow")
)
