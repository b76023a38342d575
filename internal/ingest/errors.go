package ingest

import "errors"

var (
	// ErrInvalidPayload is returned by DecodeBatch for documents that are
	// not a timestamp-keyed object of channel maps.
	ErrInvalidPayload = errors.New("ingest: invalid payload")

	// ErrUnknownKind is logged when a batch carries an unsupported kind.
	ErrUnknownKind = errors.New("ingest: unknown batch kind")
)
