package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-timedata/internal/availability"
	"github.com/nerrad567/gray-logic-timedata/internal/edge"
	"github.com/nerrad567/gray-logic-timedata/internal/history"
	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/influxdb"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`

	// Details is set for channel availability failures.
	Details *UnavailableDetails `json:"details,omitempty"`
}

// UnavailableDetails describes the channel that failed the availability gate.
type UnavailableDetails struct {
	Channel        string `json:"channel"`
	Reason         string `json:"reason"`
	AvailableSince int64  `json:"available_since,omitempty"`
	QueryStart     int64  `json:"query_start"`
}

// Error codes.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeInternal           = "internal_error"
	ErrCodeChannelUnavailable = "channel_unavailable"
	ErrCodeNoLiveData         = "no_live_data"
	ErrCodeServiceUnavailable = "service_unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeQueryError maps a history query error to a response.
//
//	channel unavailable   -> 409 with details
//	malformed edge id     -> 404
//	timezone not set up   -> 400
//	no live data          -> 503
//	backend unavailable   -> 503
//	anything else         -> 500
func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	var unavailable *availability.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusConflict, Error{
			Status:  http.StatusConflict,
			Code:    ErrCodeChannelUnavailable,
			Message: err.Error(),
			Details: &UnavailableDetails{
				Channel:        unavailable.Channel.String(),
				Reason:         string(unavailable.Reason),
				AvailableSince: unavailable.AvailableSince,
				QueryStart:     unavailable.QueryStart,
			},
		})
	case errors.Is(err, edge.ErrMalformedEdgeID):
		writeNotFound(w, "unknown edge")
	case errors.Is(err, history.ErrTimezoneNotConfigured):
		writeBadRequest(w, err.Error())
	case errors.Is(err, history.ErrNoLiveData):
		writeError(w, http.StatusServiceUnavailable, ErrCodeNoLiveData, err.Error())
	case errors.Is(err, influxdb.ErrNotConnected), errors.Is(err, influxdb.ErrQueryFailed):
		s.logger.Warn("history backend unavailable", "error", err, "request_id", requestID(r))
		writeError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "time-series backend unavailable")
	default:
		s.logger.Error("history query failed", "error", err, "path", r.URL.Path, "request_id", requestID(r))
		writeInternalError(w, "query failed")
	}
}
