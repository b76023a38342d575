package edge

import (
	"regexp"
	"strconv"
	"time"
)

// namePattern matches well-formed external edge ids. Leading zeros are
// rejected so that every id has exactly one name.
var namePattern = regexp.MustCompile(`^edge(0|[1-9][0-9]{0,8})$`)

// Edge is a remote site producing telemetry.
type Edge struct {
	// ID is the internal integer id used as the storage tag.
	ID int `json:"id"`

	// Name is the external string id, e.g. "edge42".
	Name string `json:"name"`

	// Timezone decides where the edge's "today" starts.
	Timezone *time.Location `json:"-"`

	// CreatedAt is when the edge was first seen (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// TimezoneName returns the IANA name of the edge's timezone.
func (e Edge) TimezoneName() string {
	if e.Timezone == nil {
		return "UTC"
	}
	return e.Timezone.String()
}

// ParseName extracts the internal id from a well-formed external id.
func ParseName(name string) (int, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}
