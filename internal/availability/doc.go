// Package availability tracks, per edge and channel, the earliest timestamp
// from which recorded data is guaranteed to exist, and gates historical
// queries against it.
//
// The registry is bulk-loaded from the time-series backend at startup and
// extended whenever a channel delivers its first value. Markers are
// first-write-wins: once set for an (edge, channel) pair, the value never
// changes for the lifetime of the process.
//
// An edge with no registry entry at all is unrestricted, so brand new
// edges are never blocked by missing history. An edge that has entries but
// not for the queried channel is restricted: the channel has never been
// seen.
//
// # Thread Safety
//
// Edges are stored in a sync.Map and every edge carries its own lock, so
// concurrent ingestion and queries for different edges never contend.
package availability
