package ews

import (
	"errors"
	"fmt"
	"time"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/store"
	"github.com/rbaliyan/ews/wire"
)

// Sentinel errors for the ews package.
// Use errors.Is() to check for these errors.
//
// Where a store-level error has the same meaning, the ews error wraps it,
// so errors.Is(err, ews.ErrNotFound) also matches store.ErrNotFound.
var (
	// ErrNotFound is returned when an item, folder or snapshot does not exist.
	ErrNotFound = fmt.Errorf("ews: %w", store.ErrNotFound)

	// ErrNotConnected is returned when operations are attempted before Connect().
	ErrNotConnected = fmt.Errorf("ews: %w", store.ErrNotConnected)

	// ErrAlreadyConnected is returned when Connect() is called twice.
	ErrAlreadyConnected = fmt.Errorf("ews: %w", store.ErrAlreadyConnected)

	// ErrInvalidID is returned for an empty or malformed id.
	ErrInvalidID = fmt.Errorf("ews: %w", store.ErrInvalidID)

	// ErrTransportRequired is returned when no transport is configured.
	ErrTransportRequired = errors.New("ews: transport is required")

	// ErrConflict is returned when an update loses a change key check.
	ErrConflict = errors.New("ews: irresolvable conflict")

	// ErrServerBusy is returned when the server throttles a request.
	ErrServerBusy = errors.New("ews: server busy")

	// ErrSubscriptionNotFound is returned for an unknown or expired subscription.
	ErrSubscriptionNotFound = errors.New("ews: subscription not found")

	// ErrUnexpectedResponse is returned when a response does not have the
	// shape the operation expects.
	ErrUnexpectedResponse = errors.New("ews: unexpected response")

	// ErrInvalidObject is returned for object validation failures.
	ErrInvalidObject = errors.New("ews: invalid object")

	// ErrNewObject is returned when an operation needs a saved object.
	ErrNewObject = errors.New("ews: object has not been saved")

	// ErrNotNew is returned when Save is called on an object that already exists.
	ErrNotNew = errors.New("ews: object already exists")

	// ErrKindMismatch is returned when a bound object is not of the requested kind.
	ErrKindMismatch = errors.New("ews: object kind mismatch")

	// ErrSubjectTooLong is returned when the subject exceeds the limit.
	ErrSubjectTooLong = errors.New("ews: subject too long")

	// ErrBodyTooLarge is returned when the body exceeds the limit.
	ErrBodyTooLarge = errors.New("ews: body too large")

	// ErrTooManyRecipients is returned when the recipient count exceeds the limit.
	ErrTooManyRecipients = errors.New("ews: too many recipients")

	// ErrTooManyAttachments is returned when the attachment count exceeds the limit.
	ErrTooManyAttachments = errors.New("ews: too many attachments")

	// ErrAttachmentTooLarge is returned when an attachment exceeds the size limit.
	ErrAttachmentTooLarge = errors.New("ews: attachment too large")

	// ErrInvalidContent is returned for text with invalid UTF-8 or control
	// characters.
	ErrInvalidContent = errors.New("ews: invalid content")

	// ErrInvalidAttachment is returned for an attachment without a name.
	ErrInvalidAttachment = errors.New("ews: invalid attachment")

	// ErrInvalidMIMEType is returned for a blocked or disallowed content type.
	ErrInvalidMIMEType = errors.New("ews: invalid MIME type")

	// ErrStartTimeZoneRequired is returned when an Exchange2007SP1 appointment
	// update changes its timing without a start time zone.
	ErrStartTimeZoneRequired = errors.New("ews: start time zone required")

	// ErrSnapshotStoreNotConfigured is returned by snapshot operations
	// when no snapshot store is configured.
	ErrSnapshotStoreNotConfigured = errors.New("ews: snapshot store not configured")

	// ErrAttachmentStoreNotConfigured is returned by archive operations
	// when no attachment store is configured.
	ErrAttachmentStoreNotConfigured = errors.New("ews: attachment store not configured")
)

// Response codes mapped to sentinel errors.
var responseCodeErrors = map[string]error{
	"ErrorItemNotFound":                 ErrNotFound,
	"ErrorFolderNotFound":               ErrNotFound,
	"ErrorAttachmentNotFound":           ErrNotFound,
	"ErrorInvalidIdMalformed":           ErrInvalidID,
	"ErrorInvalidIdEmpty":               ErrInvalidID,
	"ErrorIrresolvableConflict":         ErrConflict,
	"ErrorServerBusy":                   ErrServerBusy,
	"ErrorInvalidSubscription":          ErrSubscriptionNotFound,
	"ErrorSubscriptionNotFound":         ErrSubscriptionNotFound,
	"ErrorExpiredSubscription":          ErrSubscriptionNotFound,
	"ErrorInvalidPropertySet":           ErrInvalidObject,
	"ErrorInvalidPropertyRequest":       ErrInvalidObject,
	"ErrorIncorrectSchemaVersion":       property.ErrVersion,
	"ErrorInvalidServerVersion":         property.ErrVersion,
	"ErrorSchemaValidation":             ErrInvalidObject,
	"ErrorInvalidRequest":               ErrInvalidObject,
	"ErrorObjectTypeChanged":            ErrKindMismatch,
	"ErrorCannotDeleteObject":           ErrInvalidObject,
	"ErrorInvalidOperation":             ErrInvalidObject,
	"ErrorTimeoutExpired":               ErrServerBusy,
	"ErrorInternalServerTransientError": ErrServerBusy,
}

// ServiceError is a failed response message. Code is the server response
// code, e.g. "ErrorItemNotFound".
type ServiceError struct {
	Operation string
	Code      string
	Message   string
	// BackOff is the delay a throttled response asked for, if any.
	BackOff time.Duration
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ews: %s failed: %s", e.Operation, e.Code)
	}
	return fmt.Sprintf("ews: %s failed: %s: %s", e.Operation, e.Code, e.Message)
}

// Unwrap returns the sentinel error for the response code, if any.
func (e *ServiceError) Unwrap() error {
	return responseCodeErrors[e.Code]
}

// RetryAfter returns the delay the server asked for before the next attempt.
func (e *ServiceError) RetryAfter() time.Duration { return e.BackOff }

// IsServiceError checks if the error is a service error and returns details.
func IsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsRetryableError determines if an error is retryable.
// Returns true for temporary/transient errors, false for permanent errors.
// Handles ews, property, wire and store errors.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	permanentErrors := []error{
		ErrNotFound,
		ErrInvalidID,
		ErrConflict,
		ErrSubscriptionNotFound,
		ErrUnexpectedResponse,
		ErrInvalidObject,
		ErrNewObject,
		ErrNotNew,
		ErrKindMismatch,
		ErrSubjectTooLong,
		ErrBodyTooLarge,
		ErrTooManyRecipients,
		ErrTooManyAttachments,
		ErrAttachmentTooLarge,
		ErrInvalidContent,
		ErrInvalidAttachment,
		ErrInvalidMIMEType,
		ErrStartTimeZoneRequired,
		ErrTransportRequired,
		ErrSnapshotStoreNotConfigured,
		ErrAttachmentStoreNotConfigured,
	}
	for _, permErr := range permanentErrors {
		if errors.Is(err, permErr) {
			return false
		}
	}

	// Schema, definition and decoding errors are deterministic.
	definitionErrors := []error{
		property.ErrNotFound,
		property.ErrDuplicate,
		property.ErrIncompatible,
		property.ErrReadOnly,
		property.ErrCannotUpdate,
		property.ErrCannotDelete,
		property.ErrNotLoaded,
		property.ErrNotSet,
		property.ErrVersion,
		property.ErrTypeMismatch,
		property.ErrInvalid,
		wire.ErrDeserialization,
		wire.ErrUnbalancedWrite,
		store.ErrInvalidURI,
		store.ErrChecksumMismatch,
	}
	for _, permErr := range definitionErrors {
		if errors.Is(err, permErr) {
			return false
		}
	}

	retryableErrors := []error{
		ErrServerBusy,
		ErrNotConnected,
		store.ErrNotConnected,
	}
	for _, retryErr := range retryableErrors {
		if errors.Is(err, retryErr) {
			return true
		}
	}

	// A failed response message with an unmapped code is a server verdict,
	// not a transport failure.
	if _, ok := IsServiceError(err); ok {
		return false
	}

	// For unknown errors, default to retryable (conservative approach)
	// as they might be transient network/timeout issues
	return true
}

// ValidationError provides details about a validation failure.
type ValidationError struct {
	Field   string // The property that failed validation
	Message string // Human-readable error message
	Err     error  // Optional specific sentinel, e.g. ErrSubjectTooLong
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ews: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap returns ErrInvalidObject and the specific cause, when set.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidObject, e.Err}
	}
	return []error{ErrInvalidObject}
}

// EventPublishError is returned when event publishing fails but the operation succeeded.
// Check the ID field to identify which object or subscription this applies to.
type EventPublishError struct {
	Event string // The event name
	ID    string // The object id or subscription id the event was for
	Err   error  // The underlying publish error
}

func (e *EventPublishError) Error() string {
	return fmt.Sprintf("ews: event %s publish failed for %s: %v", e.Event, e.ID, e.Err)
}

func (e *EventPublishError) Unwrap() error {
	return e.Err
}

// IsEventPublishError checks if the error is an event publish error and returns details.
func IsEventPublishError(err error) (*EventPublishError, bool) {
	var epe *EventPublishError
	if errors.As(err, &epe) {
		return epe, true
	}
	return nil, false
}
