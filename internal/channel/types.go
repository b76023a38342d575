package channel

// Type is the storage tier a channel is routed to.
type Type int

// Channel types.
const (
	// TypeUndefined channels are neither written nor returned.
	TypeUndefined Type = iota

	// TypeAvg channels are averaged into the fine-grained tier.
	TypeAvg

	// TypeMax channels are cumulative counters snapshotted once per day.
	TypeMax
)

// String returns the upper-case tier name.
func (t Type) String() string {
	switch t {
	case TypeAvg:
		return "AVG"
	case TypeMax:
		return "MAX"
	default:
		return "UNDEFINED"
	}
}

// ValueType is the numeric representation a channel is stored with.
type ValueType int

// Value types.
const (
	ValueLong ValueType = iota + 1
	ValueDouble
)

// String returns the upper-case value type name.
func (v ValueType) String() string {
	switch v {
	case ValueLong:
		return "LONG"
	case ValueDouble:
		return "DOUBLE"
	default:
		return "UNKNOWN"
	}
}
