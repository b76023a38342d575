package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
)

var (
	// ErrMissingLiveCollaborator is returned when a query needs live
	// values but no live source was configured.
	ErrMissingLiveCollaborator = errors.New("history: live value source not configured")

	// ErrNoLiveData indicates that none of the requested channels has a
	// current value. Returned wrapped in *NoLiveDataError.
	ErrNoLiveData = errors.New("history: no live data")

	// ErrTimezoneNotConfigured is returned for query timezones without a
	// MAX measurement.
	ErrTimezoneNotConfigured = errors.New("history: timezone not configured")
)

// NoLiveDataError lists the channels that had no live value.
type NoLiveDataError struct {
	Channels []channel.Address
}

func (e *NoLiveDataError) Error() string {
	names := make([]string, len(e.Channels))
	for i, a := range e.Channels {
		names[i] = a.String()
	}
	return fmt.Sprintf("%s for %s", ErrNoLiveData, strings.Join(names, ", "))
}

func (e *NoLiveDataError) Unwrap() error {
	return ErrNoLiveData
}
