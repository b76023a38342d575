// Package metrics exposes the timedata service's Prometheus collectors.
//
// Metrics implements the observer interfaces of the ingest router, the
// history service, the InfluxDB writer and the MQTT client, so those
// packages stay free of Prometheus imports. Handler serves the registry
// in the text exposition format.
package metrics
