package api

import (
	"context"
	"net/http"
	"testing"
)

func TestListEdges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"edge2", "edge1"} {
		if _, err := env.edges.Resolve(ctx, name); err != nil {
			t.Fatalf("Resolve(%s): %v", name, err)
		}
	}

	rec := env.do(t, http.MethodGet, "/api/v1/edges", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[struct {
		Edges []edgeView `json:"edges"`
		Count int        `json:"count"`
	}](t, rec)
	if body.Count != 2 || len(body.Edges) != 2 {
		t.Fatalf("edges = %+v", body)
	}
	if body.Edges[0].Name != "edge1" || body.Edges[0].ID != 1 || body.Edges[0].Timezone != "Europe/Berlin" {
		t.Errorf("first edge = %+v", body.Edges[0])
	}
}

func TestGetEdge(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"well-formed edge", "/api/v1/edges/edge7", http.StatusOK},
		{"malformed edge", "/api/v1/edges/site-7", http.StatusNotFound},
		{"leading zero", "/api/v1/edges/edge07", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestReadEndpoints_DoNotRegisterEdges(t *testing.T) {
	env := newTestEnv(t)

	paths := []string{
		"/api/v1/edges/edge7",
		"/api/v1/edges/edge7/availability",
		"/api/v1/edges/edge7/history?from=2026-10-01&to=2026-10-02&channels=_sum/EssSoc",
		"/api/v1/edges/edge7/energy?from=2026-10-01&to=2026-10-02&channels=_sum/EssSoc",
		"/api/v1/edges/edge7/baseline?at=2026-10-01&channels=_sum/EssSoc",
	}
	for _, path := range paths {
		if rec := env.do(t, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d (%s)", path, rec.Code, rec.Body.String())
		}
	}

	edges, err := env.edges.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("read endpoints registered edges: %+v", edges)
	}
}

func TestSetTimezone(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/edges/edge3/timezone", `{"timezone":"America/New_York"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if got := decode[edgeView](t, rec); got.Timezone != "America/New_York" {
		t.Errorf("timezone = %q, want America/New_York", got.Timezone)
	}

	e, err := env.edges.Resolve(context.Background(), "edge3")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if e.TimezoneName() != "America/New_York" {
		t.Errorf("directory timezone = %q", e.TimezoneName())
	}
}

func TestSetTimezone_Invalid(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown zone", "/api/v1/edges/edge3/timezone", `{"timezone":"Mars/Olympus"}`, http.StatusBadRequest},
		{"empty zone", "/api/v1/edges/edge3/timezone", `{"timezone":""}`, http.StatusBadRequest},
		{"bad json", "/api/v1/edges/edge3/timezone", `{`, http.StatusBadRequest},
		{"malformed edge", "/api/v1/edges/x/timezone", `{"timezone":"UTC"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := env.do(t, http.MethodPut, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAvailability(t *testing.T) {
	env := newTestEnv(t)
	env.registry.Load(map[int]map[string]int64{
		4: {"meter0/ActivePower": 1700000600, "_sum/EssSoc": 1700000000},
	})

	rec := env.do(t, http.MethodGet, "/api/v1/edges/edge4/availability", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[struct {
		Edge     string              `json:"edge"`
		Channels []availabilityEntry `json:"channels"`
	}](t, rec)
	if body.Edge != "edge4" || len(body.Channels) != 2 {
		t.Fatalf("body = %+v", body)
	}
	first := body.Channels[0]
	if first.Channel != "_sum/EssSoc" || first.AvailableSince != 1700000000 || first.Since != "2023-11-14T22:13:20Z" {
		t.Errorf("first = %+v", first)
	}
}

func TestAvailability_UnknownEdgeIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/edges/edge9/availability", "")
	body := decode[struct {
		Channels []availabilityEntry `json:"channels"`
	}](t, rec)
	if rec.Code != http.StatusOK || body.Channels == nil || len(body.Channels) != 0 {
		t.Errorf("status = %d, channels = %v", rec.Code, body.Channels)
	}
}
