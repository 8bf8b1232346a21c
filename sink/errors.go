package sink

import "errors"

var (
	// ErrEmptyKey indicates an empty output key was provided.
	ErrEmptyKey = errors.New("output key must not be empty")
	// ErrInvalidKey indicates the output key contains a path traversal segment.
	ErrInvalidKey = errors.New("output key contains invalid path segment")
	// ErrExists indicates the destination object already exists and was left untouched.
	ErrExists = errors.New("output object already exists")
	// ErrUnknownSink indicates an unsupported sink kind.
	ErrUnknownSink = errors.New("unknown sink")
)
