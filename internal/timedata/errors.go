package timedata

import "errors"

// ErrInvalidResolution indicates an unparseable or non-positive resolution.
var ErrInvalidResolution = errors.New("timedata: invalid resolution")
