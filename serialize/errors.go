package serialize

import "errors"

// Sentinel errors for the failure classes this package can return.
var (
	// ErrInvalidDocument is returned when a file being re-parsed does not
	// match the wire shape it was written in.
	ErrInvalidDocument = errors.New("serialize: invalid document")
	// ErrRoundTrip is returned when re-parsing a just-written artifact
	// and serializing it again does not reproduce the original.
	ErrRoundTrip = errors.New("serialize: round-trip check failed")
	// ErrTripEventCountMismatch is returned when a trip's event count
	// doesn't match its route's stop count while writing stoptimes.txt.
	ErrTripEventCountMismatch = errors.New("serialize: trip event count does not match route stop count")
)
