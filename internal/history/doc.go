// Package history answers historical queries over the two storage tiers.
//
// Service gates every query against the availability registry, then
// reads the average tier for range queries or the per-timezone MAX tier
// for energy queries. When a query range reaches into the current local
// day, LiveMerger stitches the edge's live values onto the persisted
// snapshots so "today so far" is included. NormalizeTable shapes energy
// results onto a complete bucket grid.
package history
