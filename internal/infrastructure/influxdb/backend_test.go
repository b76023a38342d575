package influxdb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-timedata/internal/channel"
	"github.com/nerrad567/gray-logic-timedata/internal/timedata"
)

var (
	essSoc     = channel.MustParseAddress("_sum/EssSoc")
	production = channel.MustParseAddress("_sum/ProductionActiveEnergy")
)

func newTestBackend(t *testing.T) (*Backend, *fakeServer) {
	t.Helper()
	f := newFakeServer(t)
	b := NewBackend(connectFake(t, f), BackendConfig{
		AvgMeasurement:            "data",
		AvailableSinceMeasurement: "availableSince",
	})
	return b, f
}

func TestBackend_QueryAverage(t *testing.T) {
	b, f := newTestBackend(t)
	f.respond(annotatedCSV("double",
		[4]string{"2026-10-17T10:00:00Z", "50.5", "_sum/EssSoc", "3"},
		[4]string{"2026-10-17T10:05:00Z", "52", "_sum/EssSoc", "3"},
		[4]string{"2026-10-17T10:05:00Z", "1", "not-a-channel", "3"},
	))

	plus2 := time.FixedZone("UTC+2", 7200)
	from := time.Date(2026, 10, 17, 12, 0, 0, 0, plus2)
	to := from.Add(10 * time.Minute)

	table, err := b.QueryAverage(context.Background(), 3, from, to, []channel.Address{essSoc}, timedata.FiveMinutes)
	if err != nil {
		t.Fatalf("QueryAverage() error = %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	v, ok := table.Get(from, essSoc)
	if !ok || v != 50.5 {
		t.Errorf("first bucket = %v (%v), want 50.5", v, ok)
	}
	if loc := table.Times()[0].Location(); loc != plus2 {
		t.Errorf("row location = %v, want from's location", loc)
	}

	q := f.lastQuery()
	for _, part := range []string{
		`from(bucket: "timedata/avg")`,
		`r._measurement == "data"`,
		`r._field == "_sum/EssSoc"`,
		"fn: mean",
	} {
		if !strings.Contains(q, part) {
			t.Errorf("query missing %q:\n%s", part, q)
		}
	}
}

func TestBackend_QueryAverageFinestIsRaw(t *testing.T) {
	b, f := newTestBackend(t)
	f.respond(annotatedCSV("long"))

	from := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	if _, err := b.QueryAverage(context.Background(), 3, from, from.Add(time.Minute), []channel.Address{essSoc}, timedata.Finest); err != nil {
		t.Fatalf("QueryAverage() error = %v", err)
	}
	if q := f.lastQuery(); strings.Contains(q, "aggregateWindow") {
		t.Errorf("finest resolution must not aggregate:\n%s", q)
	}
}

func TestBackend_NoChannelsSkipsQuery(t *testing.T) {
	b, f := newTestBackend(t)
	from := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	table, err := b.QueryMaxSnapshots(context.Background(), "data_max_utc", 3, from, from.AddDate(0, 0, 1), nil, timedata.Daily)
	if err != nil || table.Len() != 0 {
		t.Fatalf("QueryMaxSnapshots(no channels) = %v, %v", table, err)
	}
	values, err := b.QueryLastBefore(context.Background(), "data_max_utc", 3, from, nil)
	if err != nil || len(values) != 0 {
		t.Fatalf("QueryLastBefore(no channels) = %v, %v", values, err)
	}
	if q := f.lastQuery(); q != "" {
		t.Errorf("unexpected query:\n%s", q)
	}
}

func TestBackend_QueryMaxSnapshots(t *testing.T) {
	b, f := newTestBackend(t)
	f.respond(annotatedCSV("long",
		[4]string{"2026-10-15T00:00:00Z", "1000", "_sum/ProductionActiveEnergy", "3"},
		[4]string{"2026-10-16T00:00:00Z", "1300", "_sum/ProductionActiveEnergy", "3"},
	))

	from := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	table, err := b.QueryMaxSnapshots(context.Background(), "data_max_utc", 3, from, from.AddDate(0, 0, 2), []channel.Address{production}, timedata.Daily)
	if err != nil {
		t.Fatalf("QueryMaxSnapshots() error = %v", err)
	}
	if v, _ := table.Get(from.AddDate(0, 0, 1), production); v != int64(1300) {
		t.Errorf("second day = %v, want 1300", v)
	}

	q := f.lastQuery()
	for _, part := range []string{`from(bucket: "timedata/max")`, `r._measurement == "data_max_utc"`, "fn: last", "every: 1d"} {
		if !strings.Contains(q, part) {
			t.Errorf("query missing %q:\n%s", part, q)
		}
	}
	if strings.Contains(q, "timezone") {
		t.Errorf("UTC query must not set a location:\n%s", q)
	}
}

func TestBackend_QueryLastBefore(t *testing.T) {
	b, f := newTestBackend(t)
	f.respond(annotatedCSV("long",
		[4]string{"2026-10-14T00:00:00Z", "900", "_sum/ProductionActiveEnergy", "3"},
	))

	instant := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	values, err := b.QueryLastBefore(context.Background(), "data_max_utc", 3, instant,
		[]channel.Address{production, essSoc})
	if err != nil {
		t.Fatalf("QueryLastBefore() error = %v", err)
	}
	if len(values) != 1 || values[production] != int64(900) {
		t.Errorf("values = %v, want only production=900", values)
	}

	q := f.lastQuery()
	if !strings.Contains(q, "range(start: 1970-01-01T00:00:00Z, stop: 2026-10-15T00:00:00Z)") {
		t.Errorf("range must stop at the instant:\n%s", q)
	}
	if !strings.HasSuffix(q, "|> last()") {
		t.Errorf("query must end with last():\n%s", q)
	}
}

func TestBackend_LoadAvailableSince(t *testing.T) {
	b, f := newTestBackend(t)
	f.respond(annotatedCSV("long",
		[4]string{"2026-10-01T00:00:00Z", "1790812800", "_sum/EssSoc", "3"},
		[4]string{"2026-09-30T00:00:00Z", "1790726400", "_sum/ProductionActiveEnergy", "3"},
		[4]string{"2026-10-02T00:00:00Z", "1790899200", "_sum/EssSoc", "7"},
		[4]string{"2026-10-02T00:00:00Z", "1790899200", "_sum/EssSoc", "bogus"},
	))

	got, err := b.LoadAvailableSince(context.Background())
	if err != nil {
		t.Fatalf("LoadAvailableSince() error = %v", err)
	}
	want := map[int]map[string]int64{
		3: {"_sum/EssSoc": 1790812800, "_sum/ProductionActiveEnergy": 1790726400},
		7: {"_sum/EssSoc": 1790899200},
	}
	if len(got) != len(want) {
		t.Fatalf("edges = %v, want %v", got, want)
	}
	for edgeID, channels := range want {
		for ch, since := range channels {
			if got[edgeID][ch] != since {
				t.Errorf("edge %d %s = %d, want %d", edgeID, ch, got[edgeID][ch], since)
			}
		}
	}

	q := f.lastQuery()
	for _, part := range []string{`r._measurement == "availableSince"`, `group(columns: ["edge", "_field"])`, "min()"} {
		if !strings.Contains(q, part) {
			t.Errorf("query missing %q:\n%s", part, q)
		}
	}
}

func TestBackend_NotConnected(t *testing.T) {
	b, _ := newTestBackend(t)
	b.client.Close() //nolint:errcheck // Test setup

	_, err := b.QueryAverage(context.Background(), 3, time.Now(), time.Now(), []channel.Address{essSoc}, timedata.Daily)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("QueryAverage() error = %v, want ErrNotConnected", err)
	}
}
