package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes of the timedata MQTT hierarchy.
//
// Edge topics use the scheme: timedata/edge/{edgeId}/{kind}
const (
	// TopicPrefixEdge is the base for all edge telemetry topics.
	TopicPrefixEdge = "timedata/edge"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "timedata/system"
)

// Edge topic kinds.
const (
	KindAggregated = "aggregated"
	KindResend     = "resend"
	KindRaw        = "raw"
	KindCurrent    = "current"
)

// Topics provides builders for timedata MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.EdgeData("edge42", mqtt.KindAggregated)
//	// Returns: "timedata/edge/edge42/aggregated"
type Topics struct{}

// EdgeData returns the topic an edge publishes one kind of data on.
//
// Example: timedata/edge/edge42/aggregated
func (Topics) EdgeData(edgeID, kind string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixEdge, edgeID, kind)
}

// SystemStatus returns the service status topic (online/offline, LWT).
//
// Example: timedata/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllEdgeData returns a pattern matching every edge data topic.
//
// Pattern: timedata/edge/+/+
func (Topics) AllEdgeData() string {
	return fmt.Sprintf("%s/+/+", TopicPrefixEdge)
}

// ParseEdgeData splits an edge data topic into edge id and kind.
//
// Returns ok=false for topics outside the edge hierarchy.
func (Topics) ParseEdgeData(topic string) (edgeID, kind string, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicPrefixEdge+"/")
	if !found {
		return "", "", false
	}
	edgeID, kind, found = strings.Cut(rest, "/")
	if !found || edgeID == "" || kind == "" || strings.Contains(kind, "/") {
		return "", "", false
	}
	return edgeID, kind, true
}
