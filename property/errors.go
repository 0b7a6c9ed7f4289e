package property

import (
	"errors"
	"fmt"

	"github.com/rbaliyan/ews/wire"
)

// Sentinel errors for the property package.
var (
	// ErrNotFound is returned when no definition matches a name, element or URI.
	ErrNotFound = errors.New("property: definition not found")

	// ErrDuplicate is returned when a schema registers two definitions under
	// one name, element or URI.
	ErrDuplicate = errors.New("property: duplicate definition")

	// ErrIncompatible is returned when a schema overrides an inherited slot
	// with a definition of a different type.
	ErrIncompatible = errors.New("property: incompatible redefinition")

	// ErrReadOnly is returned when setting a property that cannot be set on
	// a new object.
	ErrReadOnly = errors.New("property: property is read-only")

	// ErrCannotUpdate is returned when changing a property that cannot be
	// updated on an existing object.
	ErrCannotUpdate = errors.New("property: property cannot be updated")

	// ErrCannotDelete is returned when removing a property that cannot be
	// deleted.
	ErrCannotDelete = errors.New("property: property cannot be deleted")

	// ErrNotLoaded is returned when reading a property of a bound object
	// that was neither loaded nor requested.
	ErrNotLoaded = errors.New("property: property must be loaded or assigned before access")

	// ErrNotSet is returned when reading a value that was never assigned.
	ErrNotSet = errors.New("property: value not assigned")

	// ErrVersion is returned when a property is used with a protocol version
	// older than the one that introduced it.
	ErrVersion = errors.New("property: not supported by requested version")

	// ErrTypeMismatch is returned when a stored value has an unexpected type.
	ErrTypeMismatch = errors.New("property: value type mismatch")

	// ErrInvalid is returned when a value fails validation.
	ErrInvalid = errors.New("property: invalid value")
)

// Error attaches a property name to one of the sentinel errors.
type Error struct {
	Property string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v (%s)", e.Err, e.Property)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(d interface{ Name() string }, err error) error {
	return &Error{Property: d.Name(), Err: err}
}

// VersionError reports a property used below its minimum version.
type VersionError struct {
	Property  string
	Required  wire.Version
	Requested wire.Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("property: %s requires %s or later, requested %s", e.Property, e.Required, e.Requested)
}

func (e *VersionError) Unwrap() error {
	return ErrVersion
}

// CheckVersion returns a VersionError when d is newer than v.
func CheckVersion(d Definition, v wire.Version) error {
	if d.Version() > v {
		return &VersionError{Property: d.Name(), Required: d.Version(), Requested: v}
	}
	return nil
}
