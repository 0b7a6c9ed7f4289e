package ews

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// ItemLimits holds the client-side item limits checked before a save.
type ItemLimits struct {
	MaxSubjectLength   int
	MaxBodySize        int
	MaxAttachmentSize  int64
	MaxAttachmentCount int
	MaxRecipientCount  int
}

// DefaultLimits returns the default item limits.
func DefaultLimits() ItemLimits {
	return ItemLimits{
		MaxSubjectLength:   DefaultMaxSubjectLength,
		MaxBodySize:        DefaultMaxBodySize,
		MaxAttachmentSize:  DefaultMaxAttachmentSize,
		MaxAttachmentCount: DefaultMaxAttachmentCount,
		MaxRecipientCount:  DefaultMaxRecipientCount,
	}
}

// ValidateSubject checks the length and characters of a subject. The
// length is counted in characters.
func ValidateSubject(subject string, limits ItemLimits) error {
	if !utf8.ValidString(subject) {
		return fmt.Errorf("%w: subject contains invalid UTF-8", ErrInvalidContent)
	}
	if n := utf8.RuneCountInString(subject); n > limits.MaxSubjectLength {
		return fmt.Errorf("%w: subject length %d exceeds max %d", ErrSubjectTooLong, n, limits.MaxSubjectLength)
	}
	for _, r := range subject {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return fmt.Errorf("%w: subject contains control character U+%04X", ErrInvalidContent, r)
		}
	}
	return nil
}

// ValidateBody checks the size and encoding of body text.
func ValidateBody(body string, limits ItemLimits) error {
	if len(body) > limits.MaxBodySize {
		return fmt.Errorf("%w: body size %d exceeds max %d bytes", ErrBodyTooLarge, len(body), limits.MaxBodySize)
	}
	if !utf8.ValidString(body) {
		return fmt.Errorf("%w: body contains invalid UTF-8", ErrInvalidContent)
	}
	// Null bytes could indicate injection attempts
	if strings.ContainsRune(body, '\x00') {
		return fmt.Errorf("%w: body contains null bytes", ErrInvalidContent)
	}
	return nil
}

// ValidateRecipientCount checks the total number of recipients or
// attendees of an item.
func ValidateRecipientCount(n int, limits ItemLimits) error {
	if n > limits.MaxRecipientCount {
		return fmt.Errorf("%w: recipient count %d exceeds max %d", ErrTooManyRecipients, n, limits.MaxRecipientCount)
	}
	return nil
}

// ValidateAttachments checks attachment count, sizes and names.
func ValidateAttachments(attachments []*FileAttachment, limits ItemLimits) error {
	return ValidateAttachmentsWithMIME(attachments, limits, nil, nil)
}

// ValidateAttachmentsWithMIME validates attachments with MIME type restrictions.
// allowedTypes: if non-empty, only these MIME types are allowed.
// blockedTypes: these MIME types are always blocked, even if in allowedTypes.
func ValidateAttachmentsWithMIME(attachments []*FileAttachment, limits ItemLimits, allowedTypes, blockedTypes []string) error {
	if len(attachments) > limits.MaxAttachmentCount {
		return fmt.Errorf("%w: attachment count %d exceeds max %d", ErrTooManyAttachments, len(attachments), limits.MaxAttachmentCount)
	}

	for _, a := range attachments {
		size := int64(len(a.Content()))
		if size == 0 {
			size = a.Size()
		}
		if size > limits.MaxAttachmentSize {
			return fmt.Errorf("%w: attachment %q size %d exceeds max %d bytes",
				ErrAttachmentTooLarge, a.Name(), size, limits.MaxAttachmentSize)
		}
		if a.Name() == "" {
			return fmt.Errorf("%w: attachment name is required", ErrInvalidAttachment)
		}
		if len(allowedTypes) == 0 && len(blockedTypes) == 0 {
			continue
		}
		if err := ValidateMIMEType(a.ContentType(), allowedTypes, blockedTypes); err != nil {
			return fmt.Errorf("%w: attachment %q: %v", ErrInvalidMIMEType, a.Name(), err)
		}
	}
	return nil
}

// ValidateMIMEType validates a MIME type against allowed and blocked lists.
// Returns nil if the MIME type is valid.
func ValidateMIMEType(contentType string, allowedTypes, blockedTypes []string) error {
	normalized := normalizeMIMEType(contentType)
	if normalized == "" {
		return errors.New("empty content type")
	}

	for _, blocked := range blockedTypes {
		if matchMIMEType(normalized, blocked) {
			return fmt.Errorf("content type %q is blocked", contentType)
		}
	}

	if len(allowedTypes) > 0 {
		for _, a := range allowedTypes {
			if matchMIMEType(normalized, a) {
				return nil
			}
		}
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// normalizeMIMEType extracts the base MIME type without parameters.
// e.g., "text/plain; charset=utf-8" -> "text/plain"
func normalizeMIMEType(contentType string) string {
	ct := strings.TrimSpace(contentType)
	if ct == "" {
		return ""
	}
	base, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// matchMIMEType checks if contentType matches the pattern.
// Supports wildcards: "image/*" matches "image/png", "image/jpeg", etc.
func matchMIMEType(contentType, pattern string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	if pattern == contentType {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(contentType, prefix+"/")
	}
	return false
}

// DefaultBlockedMIMETypes returns MIME types that are commonly blocked for security.
func DefaultBlockedMIMETypes() []string {
	return []string{
		"application/x-msdownload",                      // Windows executable
		"application/x-executable",                      // Generic executable
		"application/x-msdos-program",                   // DOS executable
		"application/x-sh",                              // Shell script
		"application/x-shellscript",                     // Shell script
		"application/x-bat",                             // Batch file
		"application/x-msi",                             // Windows installer
		"application/vnd.microsoft.portable-executable", // PE executable
		"application/x-dosexec",                         // DOS executable
	}
}

// validate runs the checks that precede a create or update: the bag's own
// validation, the item limits and the appointment time zone rule.
func (s *service) validate(o *object) error {
	if err := o.bag.Validate(); err != nil {
		return &ValidationError{Field: o.kind.Name(), Message: "invalid property values", Err: err}
	}
	if o.kind.IsFolder() {
		return nil
	}
	if err := s.validateLimits(o); err != nil {
		return err
	}
	if o.kind == KindCalendarItem {
		return s.validateAppointment(o)
	}
	return nil
}

// validateLimits checks the values present in the bag. Values that were
// not loaded are not checked.
func (s *service) validateLimits(o *object) error {
	limits := s.opts.getLimits()
	b := o.bag

	if subject, ok := ItemSubject.TryGet(b); ok {
		if err := ValidateSubject(subject, limits); err != nil {
			return &ValidationError{Field: "Subject", Message: "invalid subject", Err: err}
		}
	}
	if body, ok := ItemBody.TryGet(b); ok && body != nil {
		if err := ValidateBody(body.Text(), limits); err != nil {
			return &ValidationError{Field: "Body", Message: "invalid body", Err: err}
		}
	}

	recipients := 0
	for _, d := range []*property.ComplexDefinition[*EmailAddressList]{
		MessageToRecipients, MessageCcRecipients, MessageBccRecipients,
	} {
		if l, ok := d.TryGet(b); ok && l != nil {
			recipients += l.Len()
		}
	}
	if o.kind == KindCalendarItem {
		for _, d := range []*property.ComplexDefinition[*AttendeeList]{
			AppointmentRequiredAttendees, AppointmentOptionalAttendees, AppointmentResources,
		} {
			if l, ok := d.TryGet(b); ok && l != nil {
				recipients += l.Len()
			}
		}
	}
	if err := ValidateRecipientCount(recipients, limits); err != nil {
		return &ValidationError{Field: "Recipients", Message: "too many recipients", Err: err}
	}

	if atts, ok := ItemAttachments.TryGet(b); ok && atts != nil {
		if err := ValidateAttachments(atts.Items(), limits); err != nil {
			return &ValidationError{Field: "Attachments", Message: "invalid attachments", Err: err}
		}
	}
	return nil
}

// validateAppointment enforces the Exchange2007SP1 rule: a change to the
// timing of an appointment must carry the start time zone, which is set
// again so it is sent with the change.
func (s *service) validateAppointment(o *object) error {
	if s.settings.Version != wire.Exchange2007SP1 || s.settings.Exchange2007Compatibility {
		return nil
	}
	b := o.bag
	if !b.IsPropertyUpdated(AppointmentStart) &&
		!b.IsPropertyUpdated(AppointmentEnd) &&
		!b.IsPropertyUpdated(AppointmentIsAllDayEvent) &&
		!b.IsPropertyUpdated(AppointmentRecurrence) {
		return nil
	}
	loc, ok := AppointmentStartTimeZone.TryGet(b)
	if !ok || loc == nil {
		return &ValidationError{Field: "StartTimeZone", Message: "required when timing changes", Err: ErrStartTimeZoneRequired}
	}
	return AppointmentStartTimeZone.Set(b, loc)
}
