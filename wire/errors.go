package wire

import (
	"errors"
	"fmt"
)

// Sentinel errors for the wire package.
var (
	// ErrDeserialization is returned when a document element cannot be parsed.
	ErrDeserialization = errors.New("wire: deserialization failed")

	// ErrUnexpectedNode is returned when the reader is not positioned where
	// the caller expects it to be.
	ErrUnexpectedNode = errors.New("wire: unexpected node")

	// ErrInvalidValue is returned when a primitive value cannot be formatted
	// or parsed.
	ErrInvalidValue = errors.New("wire: invalid value")

	// ErrUnbalancedWrite is returned when elements are closed out of order.
	ErrUnbalancedWrite = errors.New("wire: unbalanced element write")
)

// DeserializationError identifies the element whose content could not be
// parsed. errors.Is matches both ErrDeserialization and the underlying cause.
type DeserializationError struct {
	Element string // local name of the offending element or JSON key
	Value   string // raw value when available
	Err     error  // underlying cause
}

func (e *DeserializationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("wire: cannot deserialize %s (value %q): %v", e.Element, e.Value, e.Err)
	}
	return fmt.Sprintf("wire: cannot deserialize %s: %v", e.Element, e.Err)
}

func (e *DeserializationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDeserialization}
	}
	return []error{ErrDeserialization, e.Err}
}

// Deserialize wraps err as a DeserializationError for element.
// A nil err returns nil.
func Deserialize(element, value string, err error) error {
	if err == nil {
		return nil
	}
	var de *DeserializationError
	if errors.As(err, &de) && de.Element == element {
		return err
	}
	return &DeserializationError{Element: element, Value: value, Err: err}
}
