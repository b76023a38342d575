// Package edge manages the edges (remote sites) that report telemetry.
//
// It provides:
//   - Directory: translation of external string ids ("edge42") to the
//     internal integer ids used as storage tags, plus each edge's
//     timezone, persisted in SQLite and cached in memory.
//   - LiveCache: the most recent "current values" snapshot per edge, used
//     to answer queries that span "now".
//   - Subscriber: the MQTT bridge that feeds batches to the ingestion
//     router and snapshots to the LiveCache.
//
// # Topic Scheme
//
//	timedata/edge/{edgeId}/aggregated   periodic aggregated batch
//	timedata/edge/{edgeId}/resend       backlog catch-up batch
//	timedata/edge/{edgeId}/raw          raw samples (ignored)
//	timedata/edge/{edgeId}/current      live channel values
//
// # Thread Safety
//
// All types are safe for concurrent use from multiple goroutines.
package edge
