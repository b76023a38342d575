package channel

import "errors"

// Sentinel errors for channel handling.
var (
	// ErrInvalidAddress indicates a channel name is not "component/channel".
	ErrInvalidAddress = errors.New("channel: invalid address")

	// ErrOverlappingAllowlists indicates a name was listed as both AVG and MAX.
	ErrOverlappingAllowlists = errors.New("channel: avg and max allowlists overlap")
)
