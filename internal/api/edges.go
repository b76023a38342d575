package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/edge"
)

// edgeView is the JSON form of an edge.
type edgeView struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	CreatedAt string `json:"created_at"`
}

func newEdgeView(e edge.Edge) edgeView {
	return edgeView{
		ID:        e.ID,
		Name:      e.Name,
		Timezone:  e.TimezoneName(),
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := s.edges.List(r.Context())
	if err != nil {
		s.logger.Error("listing edges", "error", err, "request_id", requestID(r))
		writeInternalError(w, "failed to list edges")
		return
	}

	views := make([]edgeView, len(edges))
	for i, e := range edges {
		views[i] = newEdgeView(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"edges": views,
		"count": len(views),
	})
}

func (s *Server) handleGetEdge(w http.ResponseWriter, r *http.Request) {
	e, ok := s.resolveEdge(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newEdgeView(e))
}

// setTimezoneRequest is the PUT /edges/{edge}/timezone body.
type setTimezoneRequest struct {
	Timezone string `json:"timezone"`
}

func (s *Server) handleSetTimezone(w http.ResponseWriter, r *http.Request) {
	e, ok := s.resolveEdge(w, r)
	if !ok {
		return
	}

	var req setTimezoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Timezone == "" || len(req.Timezone) > maxQueryParamLen {
		writeBadRequest(w, "timezone is required")
		return
	}

	err := s.edges.SetTimezone(r.Context(), e.Name, req.Timezone)
	switch {
	case err == nil:
	case errors.Is(err, edge.ErrInvalidTimezone):
		writeBadRequest(w, err.Error())
		return
	default:
		s.logger.Error("setting edge timezone", "edge", e.Name, "error", err, "request_id", requestID(r))
		writeInternalError(w, "failed to set timezone")
		return
	}

	s.logger.Info("edge timezone changed", "edge", e.Name, "from", e.TimezoneName(), "to", req.Timezone)
	updated, ok := s.resolveEdge(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newEdgeView(updated))
}

// availabilityEntry reports since when a channel is recorded.
type availabilityEntry struct {
	Channel        string `json:"channel"`
	AvailableSince int64  `json:"available_since"`
	Since          string `json:"since"`
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	e, ok := s.resolveEdge(w, r)
	if !ok {
		return
	}

	entries := []availabilityEntry{}
	if s.availability != nil {
		for ch, since := range s.availability.Snapshot(e.ID) {
			entries = append(entries, availabilityEntry{
				Channel:        ch,
				AvailableSince: since,
				Since:          time.Unix(since, 0).UTC().Format(time.RFC3339),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Channel < entries[j].Channel })

	writeJSON(w, http.StatusOK, map[string]any{
		"edge":     e.Name,
		"channels": entries,
	})
}
