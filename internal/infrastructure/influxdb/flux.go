package influxdb

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

// epoch is the range start of "everything before" queries.
const epoch = "1970-01-01T00:00:00Z"

// fluxString returns s as a quoted Flux string literal.
func fluxString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "${", `\${`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

// fluxTime returns t as a Flux time literal.
func fluxTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// fieldFilter matches any of the channel fields.
func fieldFilter(channels []channel.Address) string {
	parts := make([]string, len(channels))
	for i, addr := range channels {
		parts[i] = "r._field == " + fluxString(addr.String())
	}
	return "filter(fn: (r) => " + strings.Join(parts, " or ") + ")"
}

// fluxQuery assembles a pipeline. Each stage after the first is piped.
type fluxQuery struct {
	preamble []string
	stages   []string
}

func newQuery(bucket string, start, stop string) *fluxQuery {
	q := &fluxQuery{}
	q.pipe(fmt.Sprintf("from(bucket: %s)", fluxString(bucket)))
	q.pipe(fmt.Sprintf("range(start: %s, stop: %s)", start, stop))
	return q
}

func (q *fluxQuery) pipe(stage string) *fluxQuery {
	q.stages = append(q.stages, stage)
	return q
}

func (q *fluxQuery) measurement(name string) *fluxQuery {
	return q.pipe("filter(fn: (r) => r._measurement == " + fluxString(name) + ")")
}

func (q *fluxQuery) edge(edgeID int) *fluxQuery {
	return q.pipe(fmt.Sprintf("filter(fn: (r) => r.%s == %s)", timedata.EdgeTag, fluxString(fmt.Sprint(edgeID))))
}

// window groups into buckets of res labelled with the bucket start.
// Calendar buckets follow loc; fixed buckets are epoch-aligned.
func (q *fluxQuery) window(res timedata.Resolution, fn string, loc *time.Location) *fluxQuery {
	if name := fluxLocation(loc); res.IsCalendar() && name != "" {
		q.preamble = append(q.preamble,
			`import "timezone"`,
			"option location = timezone.location(name: "+fluxString(name)+")",
		)
	}
	return q.pipe(fmt.Sprintf(`aggregateWindow(every: %s, fn: %s, createEmpty: false, timeSrc: "_start")`,
		res.FluxDuration(), fn))
}

// fluxLocation returns the IANA name Flux should window in, or "" for
// UTC. time.Local is resolved through $TZ and counts as UTC when that
// does not name a zone.
func fluxLocation(loc *time.Location) string {
	if loc == nil {
		return ""
	}
	name := loc.String()
	if name == "Local" {
		name = strings.TrimPrefix(os.Getenv("TZ"), ":")
		if _, err := time.LoadLocation(name); err != nil || name == "Local" {
			return ""
		}
	}
	if name == "UTC" {
		return ""
	}
	return name
}

func (q *fluxQuery) String() string {
	var b strings.Builder
	for _, line := range q.preamble {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for i, stage := range q.stages {
		if i > 0 {
			b.WriteString("\n  |> ")
		}
		b.WriteString(stage)
	}
	return b.String()
}
