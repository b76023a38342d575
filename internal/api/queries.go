package api

import (
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

// rangeResponse wraps the result of a from/to query.
type rangeResponse struct {
	Edge       string `json:"edge"`
	Timezone   string `json:"timezone"`
	From       string `json:"from"`
	To         string `json:"to"`
	Resolution string `json:"resolution,omitempty"`
	Data       any    `json:"data"`
}

// instantResponse wraps the result of a single instant query.
type instantResponse struct {
	Edge     string          `json:"edge"`
	Timezone string          `json:"timezone"`
	At       string          `json:"at"`
	Data     timedata.Values `json:"data"`
}

func newRangeResponse(p queryParams, withRes bool, data any) rangeResponse {
	out := rangeResponse{
		Edge:     p.edge.Name,
		Timezone: p.loc.String(),
		From:     p.from.Format(time.RFC3339),
		To:       p.to.Format(time.RFC3339),
		Data:     data,
	}
	if withRes {
		out.Resolution = p.res.String()
	}
	return out
}

// handleHistory returns averaged channel values per bucket.
//
// Query parameters:
//   - from, to: range (required)
//   - channels: comma separated "component/channel" (required)
//   - resolution: bucket width, default 5m
//   - tz: IANA timezone, default the edge's
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseQuery(w, r, true, &defaultHistoryResolution)
	if !ok {
		return
	}

	table, err := s.history.QueryRange(r.Context(), p.edge.Name, p.from, p.to, p.channels, p.res)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRangeResponse(p, true, table))
}

// handleEnergyTotal returns the energy consumed per channel in [from, to).
func (s *Server) handleEnergyTotal(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseQuery(w, r, true, nil)
	if !ok {
		return
	}

	values, err := s.history.QueryEnergyTotal(r.Context(), p.edge.Name, p.from, p.to, p.channels)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRangeResponse(p, false, values))
}

// handleEnergyPerPeriod returns the energy consumed per bucket, default 1d.
func (s *Server) handleEnergyPerPeriod(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseQuery(w, r, true, &defaultPeriodResolution)
	if !ok {
		return
	}

	table, err := s.history.QueryEnergyPerPeriod(r.Context(), p.edge.Name, p.from, p.to, p.channels, p.res)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRangeResponse(p, true, table))
}

// handleBaseline returns the last counter snapshot before at.
func (s *Server) handleBaseline(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseQuery(w, r, false, nil)
	if !ok {
		return
	}
	at, err := requiredTime(r.URL.Query().Get("at"), "at", p.loc)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	values, err := s.history.QueryFirstValueBefore(r.Context(), p.edge.Name, at, p.channels)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instantResponse{
		Edge:     p.edge.Name,
		Timezone: p.loc.String(),
		At:       at.Format(time.RFC3339),
		Data:     values,
	})
}
