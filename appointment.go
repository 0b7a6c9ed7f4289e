package ews

import (
	"time"

	"github.com/rbaliyan/ews/recurrence"
)

// Appointment is a calendar item. Floating start and end times are
// interpreted in the appointment's own time zones once those are set.
type Appointment struct {
	Item
}

func (a *Appointment) Start() (time.Time, error) { return AppointmentStart.Get(a.bag) }

// SetStart sets the start time. A time in time.UTC or a named location is
// sent as UTC; a floating time is sent in the start time zone.
func (a *Appointment) SetStart(t time.Time) error { return AppointmentStart.Set(a.bag, t) }

func (a *Appointment) End() (time.Time, error)  { return AppointmentEnd.Get(a.bag) }
func (a *Appointment) SetEnd(t time.Time) error { return AppointmentEnd.Set(a.bag, t) }

func (a *Appointment) IsAllDayEvent() (bool, error)  { return AppointmentIsAllDayEvent.Get(a.bag) }
func (a *Appointment) SetIsAllDayEvent(v bool) error { return AppointmentIsAllDayEvent.Set(a.bag, v) }

func (a *Appointment) Location() (string, error)  { return AppointmentLocation.Get(a.bag) }
func (a *Appointment) SetLocation(s string) error { return AppointmentLocation.Set(a.bag, s) }

// StartTimeZone returns the zone of the start time. On Exchange2007SP1 a
// bound appointment reports the zone of its meeting time zone.
func (a *Appointment) StartTimeZone() (*time.Location, error) {
	return AppointmentStartTimeZone.Get(a.bag)
}

// SetStartTimeZone sets the zone of the start time. On Exchange2007SP1 it
// is sent as the legacy meeting time zone.
func (a *Appointment) SetStartTimeZone(loc *time.Location) error {
	return AppointmentStartTimeZone.Set(a.bag, loc)
}

func (a *Appointment) EndTimeZone() (*time.Location, error) {
	return AppointmentEndTimeZone.Get(a.bag)
}

func (a *Appointment) SetEndTimeZone(loc *time.Location) error {
	return AppointmentEndTimeZone.Set(a.bag, loc)
}

func (a *Appointment) Recurrence() (*recurrence.Recurrence, error) {
	return AppointmentRecurrence.Get(a.bag)
}

// SetRecurrence sets the pattern. A nil recurrence removes it.
func (a *Appointment) SetRecurrence(r *recurrence.Recurrence) error {
	return AppointmentRecurrence.Set(a.bag, r)
}

func (a *Appointment) Organizer() (*EmailAddress, error) { return AppointmentOrganizer.Get(a.bag) }

func (a *Appointment) RequiredAttendees() (*AttendeeList, error) {
	return AppointmentRequiredAttendees.Get(a.bag)
}

func (a *Appointment) OptionalAttendees() (*AttendeeList, error) {
	return AppointmentOptionalAttendees.Get(a.bag)
}

func (a *Appointment) Resources() (*AttendeeList, error) { return AppointmentResources.Get(a.bag) }

func (a *Appointment) IsMeeting() (bool, error)   { return AppointmentIsMeeting.Get(a.bag) }
func (a *Appointment) IsCancelled() (bool, error) { return AppointmentIsCancelled.Get(a.bag) }
func (a *Appointment) IsRecurring() (bool, error) { return AppointmentIsRecurring.Get(a.bag) }

func (a *Appointment) CalendarItemType() (CalendarItemType, error) {
	return AppointmentCalendarItemType.Get(a.bag)
}

func (a *Appointment) MyResponseType() (ResponseType, error) {
	return AppointmentMyResponseType.Get(a.bag)
}

func (a *Appointment) LegacyFreeBusyStatus() (FreeBusyStatus, error) {
	return AppointmentLegacyFreeBusyStatus.Get(a.bag)
}

func (a *Appointment) SetLegacyFreeBusyStatus(s FreeBusyStatus) error {
	return AppointmentLegacyFreeBusyStatus.Set(a.bag, s)
}

func (a *Appointment) Duration() (time.Duration, error) { return AppointmentDuration.Get(a.bag) }
func (a *Appointment) UID() (string, error)             { return AppointmentUID.Get(a.bag) }
