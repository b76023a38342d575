package edge

import "errors"

// Domain-specific errors for edge handling.
var (
	// ErrMalformedEdgeID indicates an external edge id that cannot be
	// translated to an internal id. Batches for such edges are dropped;
	// queries fail.
	ErrMalformedEdgeID = errors.New("edge: malformed edge id")

	// ErrEdgeNotFound is returned by the repository for unknown edges.
	ErrEdgeNotFound = errors.New("edge: not found")

	// ErrEdgeIDTaken is returned by the repository when the internal id
	// already belongs to an edge with a different name.
	ErrEdgeIDTaken = errors.New("edge: internal id already taken")

	// ErrInvalidTimezone indicates a timezone name that cannot be loaded.
	ErrInvalidTimezone = errors.New("edge: invalid timezone")
)

// ErrUnexpectedTopic is returned by the subscriber for messages outside
// the edge topic scheme.
var ErrUnexpectedTopic = errors.New("edge: unexpected topic")
