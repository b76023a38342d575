package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/edge"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

const (
	// maxQueryParamLen bounds scalar query parameters.
	maxQueryParamLen = 100

	// maxChannelsParamLen bounds the comma separated channel list.
	maxChannelsParamLen = 8192

	// maxChannels is the most channels one query may name.
	maxChannels = 256
)

// Default resolutions when the request names none.
var (
	defaultHistoryResolution = timedata.FiveMinutes
	defaultPeriodResolution  = timedata.Daily
)

// localLayouts are tried after RFC 3339 and read in the query timezone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime reads an instant. Zone-less forms are interpreted in loc and
// the result is always expressed in loc.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// parseChannels reads a comma separated list of "component/channel".
func parseChannels(s string) ([]channel.Address, error) {
	if s == "" {
		return nil, errors.New("channels is required")
	}
	if len(s) > maxChannelsParamLen {
		return nil, errors.New("channels parameter too long")
	}

	var names []string
	seen := make(map[string]bool)
	for _, n := range strings.Split(s, ",") {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, errors.New("channels is required")
	}
	if len(names) > maxChannels {
		return nil, fmt.Errorf("at most %d channels per query", maxChannels)
	}
	return channel.ParseAddresses(names)
}

// queryParams are the parsed common parameters of a history query.
type queryParams struct {
	edge     edge.Edge
	loc      *time.Location
	from     time.Time
	to       time.Time
	channels []channel.Address
	res      timedata.Resolution
}

// resolveEdge looks up the {edge} path parameter and writes the error
// response when it cannot be resolved.
func (s *Server) resolveEdge(w http.ResponseWriter, r *http.Request) (edge.Edge, bool) {
	name := chi.URLParam(r, "edge")
	if len(name) > maxQueryParamLen {
		writeBadRequest(w, "edge id too long")
		return edge.Edge{}, false
	}

	e, err := s.edges.Lookup(r.Context(), name)
	switch {
	case err == nil:
		return e, true
	case errors.Is(err, edge.ErrMalformedEdgeID):
		writeNotFound(w, fmt.Sprintf("unknown edge %q", name))
	default:
		s.logger.Error("resolving edge", "edge", name, "error", err, "request_id", requestID(r))
		writeInternalError(w, "failed to resolve edge")
	}
	return edge.Edge{}, false
}

// parseQuery reads edge, tz, channels and either from/to (withRange) or
// nothing else. res is read when defaultRes is non-nil.
func (s *Server) parseQuery(w http.ResponseWriter, r *http.Request, withRange bool, defaultRes *timedata.Resolution) (queryParams, bool) {
	var p queryParams

	e, ok := s.resolveEdge(w, r)
	if !ok {
		return p, false
	}
	p.edge = e

	q := r.URL.Query()
	p.loc = e.Timezone
	if p.loc == nil {
		p.loc = time.UTC
	}
	if tz := q.Get("tz"); tz != "" {
		if len(tz) > maxQueryParamLen {
			writeBadRequest(w, "tz parameter too long")
			return p, false
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			writeBadRequest(w, fmt.Sprintf("unknown timezone %q", tz))
			return p, false
		}
		p.loc = loc
	}

	channels, err := parseChannels(q.Get("channels"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return p, false
	}
	p.channels = channels

	if withRange {
		if p.from, err = requiredTime(q.Get("from"), "from", p.loc); err != nil {
			writeBadRequest(w, err.Error())
			return p, false
		}
		if p.to, err = requiredTime(q.Get("to"), "to", p.loc); err != nil {
			writeBadRequest(w, err.Error())
			return p, false
		}
		if !p.from.Before(p.to) {
			writeBadRequest(w, "from must be before to")
			return p, false
		}
	}

	if defaultRes != nil {
		p.res = *defaultRes
		if raw := q.Get("resolution"); raw != "" {
			if len(raw) > maxQueryParamLen {
				writeBadRequest(w, "resolution parameter too long")
				return p, false
			}
			if p.res, err = timedata.ParseResolution(raw); err != nil {
				writeBadRequest(w, err.Error())
				return p, false
			}
		}
	}
	return p, true
}

func requiredTime(raw, name string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	if len(raw) > maxQueryParamLen {
		return time.Time{}, fmt.Errorf("%s parameter too long", name)
	}
	t, err := parseTime(raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}
