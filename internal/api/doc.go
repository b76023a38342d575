// Package api implements the HTTP admin and query surface of the timedata
// service.
//
// This package provides:
//   - Health and status endpoints for orchestration and operators
//   - Prometheus scraping at /metrics
//   - The edge directory (list, inspect, change timezone)
//   - Read-only history queries: averaged ranges, energy totals, energy
//     per period, baselines and channel availability
//   - Middleware stack (request ID, logging, recovery)
//
// # Time Parameters
//
// from, to and at accept RFC 3339 instants, local date-times
// ("2026-10-01T06:00:00") or dates ("2026-10-01"). They are interpreted
// in the tz parameter, defaulting to the edge's timezone, because the
// query timezone decides the calendar buckets and which MAX measurement
// is read.
//
// # Errors
//
// Every error response uses the same JSON envelope (see Error). Gate
// failures carry the offending channel and its availability.
package api
