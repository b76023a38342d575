package timedata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit is the calendar unit of a Resolution.
type Unit int

// Resolution units, finest first.
const (
	Seconds Unit = iota
	Minutes
	Hours
	Days
	Months
	Years
)

// Resolution is the bucket width used to group a time range.
type Resolution struct {
	Value int
	Unit  Unit
}

// Finest is the one-second resolution of the average tier.
var Finest = Resolution{Value: 1, Unit: Seconds}

// Common resolutions.
var (
	FiveMinutes = Resolution{Value: 5, Unit: Minutes}
	Daily       = Resolution{Value: 1, Unit: Days}
	Monthly     = Resolution{Value: 1, Unit: Months}
	Yearly      = Resolution{Value: 1, Unit: Years}
)

var unitSuffix = map[Unit]string{
	Seconds: "s",
	Minutes: "m",
	Hours:   "h",
	Days:    "d",
	Months:  "mo",
	Years:   "y",
}

// ParseResolution parses "300s", "5m", "1h", "1d", "1mo" or "1y".
func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimSpace(s)
	// "mo" must be tried before "m".
	for _, u := range []Unit{Months, Seconds, Minutes, Hours, Days, Years} {
		suffix := unitSuffix[u]
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(s, suffix))
		if err != nil || n <= 0 {
			return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
		}
		return Resolution{Value: n, Unit: u}, nil
	}
	return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
}

// String returns the canonical form accepted by ParseResolution.
func (r Resolution) String() string {
	return strconv.Itoa(r.Value) + unitSuffix[r.Unit]
}

// FluxDuration returns the Flux duration literal, e.g. "5m" or "1mo".
// The suffixes of ParseResolution are Flux units, so it equals String.
func (r Resolution) FluxDuration() string {
	return r.String()
}

// IsCalendar reports whether buckets follow calendar days, months or years
// and therefore depend on the timezone.
func (r Resolution) IsCalendar() bool {
	return r.Unit >= Days
}

// Truncate returns the start of the bucket containing t in t's location.
//
// Fixed-width resolutions are aligned to the Unix epoch. Calendar
// resolutions are aligned to local midnight, the first of the month and
// the first of January respectively; multi-unit calendar widths are not
// further aligned.
func (r Resolution) Truncate(t time.Time) time.Time {
	switch r.Unit {
	case Days:
		return StartOfDay(t)
	case Months:
		y, m, _ := t.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case Years:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return t.Truncate(r.fixed())
	}
}

// Add advances t by n buckets.
func (r Resolution) Add(t time.Time, n int) time.Time {
	switch r.Unit {
	case Days:
		return t.AddDate(0, 0, n*r.Value)
	case Months:
		return t.AddDate(0, n*r.Value, 0)
	case Years:
		return t.AddDate(n*r.Value, 0, 0)
	default:
		return t.Add(time.Duration(n) * r.fixed())
	}
}

// Buckets returns the start of every bucket overlapping [from, to).
// The first bucket starts at Truncate(from).
func (r Resolution) Buckets(from, to time.Time) []time.Time {
	var out []time.Time
	for t := r.Truncate(from); t.Before(to); t = r.Add(t, 1) {
		out = append(out, t)
	}
	return out
}

func (r Resolution) fixed() time.Duration {
	n := time.Duration(max(r.Value, 1))
	switch r.Unit {
	case Minutes:
		return n * time.Minute
	case Hours:
		return n * time.Hour
	default:
		return n * time.Second
	}
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsTodayOrLater reports whether to falls on or after the start of the
// current day in loc.
func IsTodayOrLater(to, now time.Time, loc *time.Location) bool {
	return !to.Before(StartOfDay(now.In(loc)))
}
