package channel

import (
	"fmt"
	"slices"
)

// entry is the classification of one allowlisted channel name.
type entry struct {
	typ   Type
	value ValueType
}

// FieldSetter receives typed field values. timedata.Point implements it.
type FieldSetter interface {
	AddField(name string, value any)
}

// Allowlist is the immutable classification of channel names into
// AVG, MAX or UNDEFINED plus their stored value type.
//
// Thread Safety: read-only after construction; safe for concurrent use.
type Allowlist struct {
	entries map[string]entry
	avg     []string
	max     []string
}

// NewAllowlist expands the AVG and MAX templates into a static lookup.
//
// Returns ErrOverlappingAllowlists if any expanded name appears in both sets.
func NewAllowlist(avg, maxTemplates []Template) (*Allowlist, error) {
	a := &Allowlist{entries: make(map[string]entry)}

	for _, t := range avg {
		for _, name := range t.Expand() {
			a.entries[name] = entry{typ: TypeAvg, value: t.Value}
			a.avg = append(a.avg, name)
		}
	}
	for _, t := range maxTemplates {
		for _, name := range t.Expand() {
			if e, ok := a.entries[name]; ok && e.typ == TypeAvg {
				return nil, fmt.Errorf("%w: %s", ErrOverlappingAllowlists, name)
			}
			a.entries[name] = entry{typ: TypeMax, value: t.Value}
			a.max = append(a.max, name)
		}
	}

	slices.Sort(a.avg)
	a.avg = slices.Compact(a.avg)
	slices.Sort(a.max)
	a.max = slices.Compact(a.max)
	return a, nil
}

// Classify returns the tier the channel is routed to.
func (a *Allowlist) Classify(addr Address) Type {
	return a.ClassifyName(addr.String())
}

// ClassifyName is Classify for a raw "component/channel" string.
func (a *Allowlist) ClassifyName(name string) Type {
	return a.entries[name].typ
}

// ValueType returns the stored value type of an allowlisted channel.
func (a *Allowlist) ValueType(addr Address) (ValueType, bool) {
	e, ok := a.entries[addr.String()]
	if !ok {
		return 0, false
	}
	return e.value, true
}

// AddValueToPoint writes value into p under name if, and only if, the name
// is allowlisted and the value is a numeric primitive. The value is
// converted to the channel's value type: LONG truncates, DOUBLE widens.
//
// Returns whether the field was written. A skipped value is not an error.
func (a *Allowlist) AddValueToPoint(p FieldSetter, name string, value any) bool {
	e, ok := a.entries[name]
	if !ok || e.typ == TypeUndefined {
		return false
	}
	converted, ok := Convert(value, e.value)
	if !ok {
		return false
	}
	p.AddField(name, converted)
	return true
}

// Avg returns the sorted expanded AVG channel names.
func (a *Allowlist) Avg() []string {
	return slices.Clone(a.avg)
}

// Max returns the sorted expanded MAX channel names.
func (a *Allowlist) Max() []string {
	return slices.Clone(a.max)
}
