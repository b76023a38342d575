package channel

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SumComponent is the component id of system-wide channels.
const SumComponent = "_sum"

// Address identifies one channel of one component.
//
// Addresses are comparable and totally ordered (component first, then
// channel), so they are used directly as map keys and sort keys.
type Address struct {
	Component string
	Channel   string
}

// NewAddress creates an Address from its parts.
func NewAddress(component, ch string) Address {
	return Address{Component: component, Channel: ch}
}

// ParseAddress parses a "component/channel" string.
//
// Returns ErrInvalidAddress if either part is empty or the separator is missing.
func ParseAddress(s string) (Address, error) {
	component, ch, ok := strings.Cut(s, "/")
	if !ok || component == "" || ch == "" || strings.Contains(ch, "/") {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return Address{Component: component, Channel: ch}, nil
}

// MustParseAddress is like ParseAddress but panics on error.
// Intended for package-level tables and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAddresses parses a list of "component/channel" strings.
func ParseAddresses(names []string) ([]Address, error) {
	out := make([]Address, 0, len(names))
	for _, n := range names {
		a, err := ParseAddress(n)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// String returns the "component/channel" form.
func (a Address) String() string {
	return a.Component + "/" + a.Channel
}

// Compare orders addresses by component, then channel.
func (a Address) Compare(b Address) int {
	if c := cmp.Compare(a.Component, b.Component); c != 0 {
		return c
	}
	return cmp.Compare(a.Channel, b.Channel)
}

// Sorted returns a sorted, de-duplicated copy of addrs.
func Sorted(addrs []Address) []Address {
	out := slices.Clone(addrs)
	slices.SortFunc(out, Address.Compare)
	return slices.Compact(out)
}
