package influxdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-timedata/internal/infrastructure/config"
)

// fakeServer mimics the InfluxDB v2 HTTP API: /ping, /api/v2/write and
// /api/v2/query. Query responses are served from csv in request order.
type fakeServer struct {
	*httptest.Server

	mu      sync.Mutex
	queries []string
	writes  map[string][]string // bucket -> line protocol lines
	csv     []string
	status  int // write status, 204 when zero
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{writes: make(map[string][]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/v2/write", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body) //nolint:errcheck // Test server
		f.mu.Lock()
		bucket := r.URL.Query().Get("bucket")
		f.writes[bucket] = append(f.writes[bucket], strings.Split(strings.TrimSpace(string(body)), "\n")...)
		status := f.status
		f.mu.Unlock()
		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
	})
	mux.HandleFunc("/api/v2/query", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.queries = append(f.queries, body.Query)
		var resp string
		if len(f.csv) > 0 {
			resp, f.csv = f.csv[0], f.csv[1:]
		}
		f.mu.Unlock()
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = io.WriteString(w, resp) //nolint:errcheck // Test server
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) respond(csv ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.csv = append(f.csv, csv...)
}

func (f *fakeServer) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

func (f *fakeServer) lines(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes[bucket]...)
}

func (f *fakeServer) config() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		URL:                f.URL,
		Token:              "test-token",
		Org:                "fenecon",
		Database:           "timedata",
		AvgRetentionPolicy: "avg",
		MaxRetentionPolicy: "max",
		Timeout:            5,
	}
}

func connectFake(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	client, err := Connect(context.Background(), f.config())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // Test cleanup
	return client
}

// annotatedCSV builds a Flux annotated CSV response with the columns
// _time, _value, _field, edge. valueType is "double", "long" or "string".
func annotatedCSV(valueType string, rows ...[4]string) string {
	var b strings.Builder
	b.WriteString("#datatype,string,long,dateTime:RFC3339," + valueType + ",string,string\n")
	b.WriteString("#group,false,false,false,false,true,true\n")
	b.WriteString("#default,_result,,,,,\n")
	b.WriteString(",result,table,_time,_value,_field,edge\n")
	for _, r := range rows {
		b.WriteString(",,0," + strings.Join(r[:], ",") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}
