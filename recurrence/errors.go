package recurrence

import "errors"

// Sentinel errors for the recurrence package.
var (
	// ErrUnknownPattern is returned when a pattern element is not recognized.
	ErrUnknownPattern = errors.New("recurrence: unknown pattern")

	// ErrUnknownRange is returned when a range element is not recognized.
	ErrUnknownRange = errors.New("recurrence: unknown range")

	// ErrIncomplete is returned by Validate when the pattern or range is missing.
	ErrIncomplete = errors.New("recurrence: pattern and range are both required")

	// ErrInvalid is returned for out-of-range field values.
	ErrInvalid = errors.New("recurrence: invalid value")
)
