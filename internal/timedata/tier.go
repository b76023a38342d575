package timedata

// Tier selects the retention tier a point is written to.
type Tier int

const (
	// TierAverage holds averaged (AVG) channels and availability markers.
	TierAverage Tier = iota
	// TierMax holds the daily cumulative (MAX) snapshots per timezone.
	TierMax
)

// String returns the tier name used in logs and metrics labels.
func (t Tier) String() string {
	if t == TierMax {
		return "max"
	}
	return "avg"
}
