// Package channel classifies telemetry channels for the timedata store.
//
// Every channel an edge reports is addressed as "{component}/{channel}",
// for example "meter0/ActivePower" or the system-wide "_sum/EssSoc".
// Only channels on the static allowlist are ever persisted or returned:
//
//   - AVG channels are written on every aggregated sample into the
//     average tier (power, state of charge, states).
//   - MAX channels are cumulative counters (energies) written once per
//     day per timezone into the max tier and differenced at query time.
//   - Everything else is UNDEFINED and silently dropped.
//
// # Usage
//
//	allow := channel.DefaultAllowlist()
//	switch allow.Classify(channel.MustParseAddress("_sum/EssSoc")) {
//	case channel.TypeAvg:
//	    // ...
//	}
//
// # Thread Safety
//
// An Allowlist is built once at startup and never mutated afterwards, so it
// can be shared by reference between the ingestion router and the query
// services without locking.
package channel
