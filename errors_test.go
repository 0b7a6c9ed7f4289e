package ews

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/store"
)

func TestServiceErrorUnwrap(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"ErrorItemNotFound", ErrNotFound},
		{"ErrorFolderNotFound", ErrNotFound},
		{"ErrorInvalidIdEmpty", ErrInvalidID},
		{"ErrorIrresolvableConflict", ErrConflict},
		{"ErrorServerBusy", ErrServerBusy},
		{"ErrorExpiredSubscription", ErrSubscriptionNotFound},
		{"ErrorInvalidPropertyRequest", ErrInvalidObject},
		{"ErrorObjectTypeChanged", ErrKindMismatch},
		{"ErrorInvalidServerVersion", property.ErrVersion},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("bind: %w", &ServiceError{Operation: OpGetItem, Code: tt.code, Message: "failed"})
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%s, %v) = false", tt.code, tt.want)
			}
			se, ok := IsServiceError(err)
			if !ok || se.Code != tt.code {
				t.Errorf("IsServiceError() = %v, %v", se, ok)
			}
		})
	}

	t.Run("unmapped code", func(t *testing.T) {
		err := &ServiceError{Operation: OpGetItem, Code: "ErrorMailboxMoveInProgress"}
		if errors.Unwrap(err) != nil {
			t.Errorf("Unwrap() = %v, want nil", errors.Unwrap(err))
		}
		if err.Error() == "" {
			t.Error("expected non-empty error message")
		}
	})
}

func TestNotFoundMatchesStore(t *testing.T) {
	if !errors.Is(ErrNotFound, store.ErrNotFound) {
		t.Error("ErrNotFound should match store.ErrNotFound")
	}
	if !errors.Is(ErrNotConnected, store.ErrNotConnected) {
		t.Error("ErrNotConnected should match store.ErrNotConnected")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server busy", ErrServerBusy, true},
		{"wrapped server busy", fmt.Errorf("get: %w", ErrServerBusy), true},
		{"throttled response", &ServiceError{Code: "ErrorServerBusy"}, true},
		{"not found", ErrNotFound, false},
		{"conflict response", &ServiceError{Code: "ErrorIrresolvableConflict"}, false},
		{"unmapped response", &ServiceError{Code: "ErrorAccessDenied"}, false},
		{"validation", &ValidationError{Field: "Subject", Err: ErrSubjectTooLong}, false},
		{"version", property.ErrVersion, false},
		{"unknown", errors.New("connection reset by peer"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "Subject", Message: "invalid subject", Err: ErrSubjectTooLong}
	if !errors.Is(err, ErrInvalidObject) {
		t.Error("ValidationError should match ErrInvalidObject")
	}
	if !errors.Is(err, ErrSubjectTooLong) {
		t.Error("ValidationError should match its cause")
	}

	bare := &ValidationError{Field: "Body", Message: "invalid body"}
	if !errors.Is(bare, ErrInvalidObject) {
		t.Error("ValidationError without cause should match ErrInvalidObject")
	}
}

func TestEventPublishError(t *testing.T) {
	cause := errors.New("transport closed")
	err := fmt.Errorf("save: %w", &EventPublishError{Event: EventNameObjectChanged, ID: "AAMk", Err: cause})
	if !errors.Is(err, cause) {
		t.Error("EventPublishError should unwrap to its cause")
	}
	pe, ok := IsEventPublishError(err)
	if !ok || pe.ID != "AAMk" {
		t.Errorf("IsEventPublishError() = %v, %v", pe, ok)
	}
}
