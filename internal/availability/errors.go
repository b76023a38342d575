package availability

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
)

// ErrChannelUnavailable indicates a query referenced a channel or time range
// that is not guaranteed to be recorded. Narrow the request to recover.
var ErrChannelUnavailable = errors.New("availability: channel unavailable")

// Reason describes why a channel is unavailable.
type Reason string

// Unavailability reasons.
const (
	ReasonNeverSeen Reason = "never seen"
	ReasonTooEarly  Reason = "too early"
)

// UnavailableError describes the first channel that failed the gate.
type UnavailableError struct {
	EdgeID  int
	Channel channel.Address
	Reason  Reason

	// AvailableSince is the earliest valid epoch second (zero for ReasonNeverSeen).
	AvailableSince int64

	// QueryStart is the requested start in epoch seconds.
	QueryStart int64
}

func (e *UnavailableError) Error() string {
	if e.Reason == ReasonNeverSeen {
		return fmt.Sprintf("availability: channel %s of edge %d was never recorded", e.Channel, e.EdgeID)
	}
	return fmt.Sprintf("availability: channel %s of edge %d is available since %d, requested from %d",
		e.Channel, e.EdgeID, e.AvailableSince, e.QueryStart)
}

// Unwrap allows errors.Is(err, ErrChannelUnavailable).
func (e *UnavailableError) Unwrap() error {
	return ErrChannelUnavailable
}
