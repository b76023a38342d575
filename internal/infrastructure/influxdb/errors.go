package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
//
// Query errors are returned to callers unchanged apart from wrapping, so
// the HTTP layer can map them to 503 with errors.Is:
//
//	if errors.Is(err, influxdb.ErrQueryFailed) {
//	    // backend unavailable
//	}
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a worker could not write a point.
	// It is only ever delivered on AsyncWriter.Errors.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrQueueFull indicates the write queue is saturated and the point
	// was dropped.
	ErrQueueFull = errors.New("influxdb: write queue full")

	// ErrWriterClosed indicates a write after Close.
	ErrWriterClosed = errors.New("influxdb: writer closed")

	// ErrQueryFailed indicates a Flux query failed or its result could not
	// be read.
	ErrQueryFailed = errors.New("influxdb: query failed")
)
