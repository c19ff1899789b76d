package dimension

import "errors"

var (
	// ErrCycle is returned when a reparent would make a tag its own ancestor.
	ErrCycle = errors.New("reparent would create a cycle")

	// ErrArchivedTag is returned when assigning an archived tag to a line.
	ErrArchivedTag = errors.New("tag is archived")

	// ErrUnknownTag is returned when a tag ID is not in the index.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrLowConfidence is returned when an external categorization suggestion
	// falls below the configured acceptance threshold.
	ErrLowConfidence = errors.New("suggestion confidence below threshold")
)
