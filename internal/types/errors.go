package types

import "errors"

var (
	// ErrUnknownSection is returned when a section name is not part of the graph.
	ErrUnknownSection = errors.New("unknown section")

	// ErrMalformedOutput marks engine output that is not usable JSON for the
	// requested schema. It is distinct from timeouts and provider failures.
	ErrMalformedOutput = errors.New("malformed engine output")

	// ErrSectionMissing is returned when a regenerator needs a section that
	// the report does not hold yet.
	ErrSectionMissing = errors.New("section not present in report")
)
