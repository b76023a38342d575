// Package ingest routes edge telemetry batches into the two storage tiers.
//
// Each row of a batch is classified against the channel allowlist. AVG
// channels become one point per row in the average measurement. MAX
// channels are only stored close to local midnight: for every configured
// timezone whose clock reads within the last minutes of the day, one point
// per row is written into that timezone's measurement, stamped at the
// start of the local day. Both paths record the channel's first-seen
// timestamp in the availability registry.
//
// Ingestion never fails towards the caller. Problems are logged and
// counted, and the offending batch or row is dropped.
package ingest
