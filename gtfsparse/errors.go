package gtfsparse

import "errors"

// Sentinel errors for the failure classes this package can return,
// wrapped into the contextual fmt.Errorf message at the point of
// failure so callers can still errors.Is() on the class.
var (
	ErrTripTooShort               = errors.New("gtfsparse: trip has fewer than 2 stop-times")
	ErrStopTimesUnordered         = errors.New("gtfsparse: trip stop-times are not strictly increasing in departure time")
	ErrStopIDDelimiterConflict    = errors.New("gtfsparse: stop id contains '+', which RouteLabel uses as a delimiter")
	ErrRoutePartitionInconsistent = errors.New("gtfsparse: route partition lost or duplicated a trip")
	ErrUnknownStop                = errors.New("gtfsparse: stop referenced by a route but not found in stops.txt")
	ErrMissingField               = errors.New("gtfsparse: row missing required field")
	ErrInvalidField               = errors.New("gtfsparse: field has an invalid value")
)
