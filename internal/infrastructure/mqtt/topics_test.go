package mqtt

import "testing"

func TestTopics_EdgeData(t *testing.T) {
	topics := Topics{}

	if got := topics.EdgeData("edge42", KindAggregated); got != "timedata/edge/edge42/aggregated" {
		t.Errorf("EdgeData() = %q", got)
	}
	if got := topics.AllEdgeData(); got != "timedata/edge/+/+" {
		t.Errorf("AllEdgeData() = %q", got)
	}
	if got := topics.SystemStatus(); got != "timedata/system/status" {
		t.Errorf("SystemStatus() = %q", got)
	}
}

func TestTopics_ParseEdgeData(t *testing.T) {
	tests := []struct {
		topic    string
		wantEdge string
		wantKind string
		wantOK   bool
	}{
		{"timedata/edge/edge0/aggregated", "edge0", "aggregated", true},
		{"timedata/edge/edge7/current", "edge7", "current", true},
		{"timedata/edge/edge7", "", "", false},
		{"timedata/edge//current", "", "", false},
		{"timedata/edge/edge7/current/extra", "", "", false},
		{"timedata/system/status", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			edgeID, kind, ok := Topics{}.ParseEdgeData(tt.topic)
			if ok != tt.wantOK || edgeID != tt.wantEdge || kind != tt.wantKind {
				t.Errorf("ParseEdgeData(%q) = %q, %q, %v; want %q, %q, %v",
					tt.topic, edgeID, kind, ok, tt.wantEdge, tt.wantKind, tt.wantOK)
			}
		})
	}
}
