package timedata

import (
	"strconv"
	"time"
)

// EdgeTag is the tag key carrying the numeric edge id on every point.
const EdgeTag = "edge"

// Point is a single storage point: one measurement row with typed fields.
type Point struct {
	Measurement string
	Tags        map[string]string
	Time        time.Time
	Fields      map[string]any
}

// NewPoint creates an empty point for an edge, truncated to the second.
func NewPoint(measurement string, edgeID int, ts time.Time) *Point {
	return &Point{
		Measurement: measurement,
		Tags:        map[string]string{EdgeTag: strconv.Itoa(edgeID)},
		Time:        ts.Truncate(time.Second),
		Fields:      make(map[string]any),
	}
}

// AddField sets a field value.
func (p *Point) AddField(name string, value any) {
	p.Fields[name] = value
}

// HasFields reports whether any field was written.
func (p *Point) HasFields() bool {
	return len(p.Fields) > 0
}
