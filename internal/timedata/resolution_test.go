package timedata

import (
	"errors"
	"testing"
	"time"
)

func TestParseResolution(t *testing.T) {
	tests := []struct {
		input string
		want  Resolution
	}{
		{"1s", Finest},
		{"300s", Resolution{Value: 300, Unit: Seconds}},
		{"5m", FiveMinutes},
		{"1h", Resolution{Value: 1, Unit: Hours}},
		{"1d", Daily},
		{"1mo", Monthly},
		{"1y", Yearly},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseResolution(tt.input)
			if err != nil {
				t.Fatalf("ParseResolution(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseResolution(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}

	for _, bad := range []string{"", "0s", "-1d", "1w", "mo"} {
		if _, err := ParseResolution(bad); !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("ParseResolution(%q) error = %v, want ErrInvalidResolution", bad, err)
		}
	}
}

func TestResolution_Truncate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	ts := time.Date(2026, 3, 17, 14, 37, 12, 0, berlin)

	tests := []struct {
		name string
		res  Resolution
		want time.Time
	}{
		{"daily", Daily, time.Date(2026, 3, 17, 0, 0, 0, 0, berlin)},
		{"monthly", Monthly, time.Date(2026, 3, 1, 0, 0, 0, 0, berlin)},
		{"yearly", Yearly, time.Date(2026, 1, 1, 0, 0, 0, 0, berlin)},
		{"five minutes", FiveMinutes, time.Date(2026, 3, 17, 14, 35, 0, 0, berlin)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.Truncate(ts); !got.Equal(tt.want) {
				t.Errorf("Truncate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolution_Buckets(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	got := Monthly.Buckets(from, to)
	if len(got) != 3 {
		t.Fatalf("Buckets() len = %d, want 3: %v", len(got), got)
	}
	if !got[2].Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last bucket = %v", got[2])
	}

	if got := Finest.Buckets(time.Unix(1000, 0), time.Unix(1001, 0)); len(got) != 1 || got[0].Unix() != 1000 {
		t.Errorf("Finest.Buckets() = %v, want [1000]", got)
	}
}

func TestIsTodayOrLater(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	if IsTodayOrLater(time.Date(2026, 10, 16, 23, 59, 59, 0, time.UTC), now, time.UTC) {
		t.Error("yesterday should not be today or later")
	}
	if !IsTodayOrLater(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), now, time.UTC) {
		t.Error("start of today should be today or later")
	}
	if !IsTodayOrLater(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), now, time.UTC) {
		t.Error("tomorrow should be today or later")
	}
}
