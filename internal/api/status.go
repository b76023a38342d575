package api

import (
	"database/sql"
	"net/http"
	"runtime"
	"time"
)

const bytesPerMB = 1024 * 1024

// Connectivity reports whether a remote dependency is reachable.
type Connectivity interface {
	IsConnected() bool
}

// WriteQueue reports the state of the point writer.
type WriteQueue interface {
	QueueLen() int
	ReadOnly() bool
}

// DBStatter exposes connection pool statistics.
type DBStatter interface {
	Stats() sql.DBStats
}

// StatusSource collects the components shown by /api/v1/status. Nil
// fields are left out of the response.
type StatusSource struct {
	MQTT     Connectivity
	InfluxDB Connectivity
	Writer   WriteQueue
	Database DBStatter
}

// SystemStatus is the /api/v1/status response.
type SystemStatus struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeStatus    `json:"runtime"`
	MQTT          *ConnStatus      `json:"mqtt,omitempty"`
	InfluxDB      *ConnStatus      `json:"influxdb,omitempty"`
	Writer        *WriterStatus    `json:"writer,omitempty"`
	Database      *DatabaseStatus  `json:"database,omitempty"`
	Edges         *EdgeCountStatus `json:"edges,omitempty"`
}

// RuntimeStatus contains Go runtime statistics.
type RuntimeStatus struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// ConnStatus reports one connection.
type ConnStatus struct {
	Connected bool `json:"connected"`
}

// WriterStatus reports the asynchronous point writer.
type WriterStatus struct {
	QueueLength int  `json:"queue_length"`
	ReadOnly    bool `json:"read_only"`
}

// DatabaseStatus contains database connection pool statistics.
type DatabaseStatus struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// EdgeCountStatus counts the registered edges.
type EdgeCountStatus struct {
	Registered int `json:"registered"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := SystemStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Runtime: RuntimeStatus{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(mem.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(mem.TotalAlloc) / bytesPerMB,
			NumGC:         mem.NumGC,
		},
	}

	if s.status.MQTT != nil {
		status.MQTT = &ConnStatus{Connected: s.status.MQTT.IsConnected()}
	}
	if s.status.InfluxDB != nil {
		status.InfluxDB = &ConnStatus{Connected: s.status.InfluxDB.IsConnected()}
	}
	if s.status.Writer != nil {
		status.Writer = &WriterStatus{
			QueueLength: s.status.Writer.QueueLen(),
			ReadOnly:    s.status.Writer.ReadOnly(),
		}
	}
	if s.status.Database != nil {
		st := s.status.Database.Stats()
		status.Database = &DatabaseStatus{
			OpenConnections: st.OpenConnections,
			InUse:           st.InUse,
			Idle:            st.Idle,
			WaitCount:       st.WaitCount,
		}
	}
	if edges, err := s.edges.List(r.Context()); err == nil {
		status.Edges = &EdgeCountStatus{Registered: len(edges)}
	} else {
		s.logger.Warn("listing edges for status", "error", err)
	}

	writeJSON(w, http.StatusOK, status)
}
