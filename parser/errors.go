package parser

import "errors"

// ErrOSMRead is returned when the OSM extract at a given path cannot be
// opened or scanned to completion.
var ErrOSMRead = errors.New("parser: failed reading OSM extract")
