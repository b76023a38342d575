package channel

import "strconv"

// Range is a half-open integer range [From, To).
type Range struct {
	From int
	To   int
}

// Template describes a family of allowlisted channel names.
//
// A template without an index count names exactly one component
// (used for "_sum"). With Components > 0 the component id is expanded to
// Component+i for i in [0, Components). When Sub is set, the channel name
// is additionally expanded with a numeric suffix for every value in Sub,
// producing the cartesian product of components and suffixes.
type Template struct {
	Component  string
	Components int
	Channel    string
	Sub        *Range
	Value      ValueType
}

// Sum returns a template for a single system-wide "_sum" channel.
func Sum(ch string, vt ValueType) Template {
	return Template{Component: SumComponent, Channel: ch, Value: vt}
}

// Namespace returns a template for a channel present on count indexed
// components, e.g. Namespace("meter", 3, "ActivePower", ValueLong)
// expands to meter0/ActivePower .. meter2/ActivePower.
func Namespace(prefix string, count int, ch string, vt ValueType) Template {
	return Template{Component: prefix, Components: count, Channel: ch, Value: vt}
}

// WithSub returns a copy of t whose channel name is suffixed with every
// integer in [from, to).
func (t Template) WithSub(from, to int) Template {
	t.Sub = &Range{From: from, To: to}
	return t
}

// Expand returns every "component/channel" name the template describes.
func (t Template) Expand() []string {
	components := []string{t.Component}
	if t.Components > 0 {
		components = make([]string, 0, t.Components)
		for i := range t.Components {
			components = append(components, t.Component+strconv.Itoa(i))
		}
	}

	channels := []string{t.Channel}
	if t.Sub != nil {
		channels = make([]string, 0, max(t.Sub.To-t.Sub.From, 0))
		for i := t.Sub.From; i < t.Sub.To; i++ {
			channels = append(channels, t.Channel+strconv.Itoa(i))
		}
	}

	names := make([]string, 0, len(components)*len(channels))
	for _, c := range components {
		for _, ch := range channels {
			names = append(names, c+"/"+ch)
		}
	}
	return names
}
