package ews

import (
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/recurrence"
	"github.com/rbaliyan/ews/wire"
)

func startTimeZone(wire.Version) *property.TimeZone { return AppointmentStartTimeZone }

// End is scoped by the start zone on Exchange2007SP1, which has no end zone.
func endTimeZone(v wire.Version) *property.TimeZone {
	if v == wire.Exchange2007SP1 {
		return AppointmentStartTimeZone
	}
	return AppointmentEndTimeZone
}

// Appointment properties.
var (
	AppointmentUID                     = property.NewString("ICalUid", "UID", "calendar:UID", settable, wire.Exchange2007SP1)
	AppointmentDateTimeStamp           = property.NewDateTime("ICalDateTimeStamp", "DateTimeStamp", "calendar:DateTimeStamp", readOnly, wire.Exchange2010)
	AppointmentStart                   = property.NewScopedDateTime("Start", "Start", "calendar:Start", settable, wire.Exchange2007SP1, startTimeZone)
	AppointmentEnd                     = property.NewScopedDateTime("End", "End", "calendar:End", settable, wire.Exchange2007SP1, endTimeZone)
	AppointmentOriginalStart           = property.NewDateTime("OriginalStart", "OriginalStart", "calendar:OriginalStart", readOnly, wire.Exchange2007SP1)
	AppointmentIsAllDayEvent           = property.NewBool("IsAllDayEvent", "IsAllDayEvent", "calendar:IsAllDayEvent", settable, wire.Exchange2007SP1)
	AppointmentLegacyFreeBusyStatus    = property.NewEnum("LegacyFreeBusyStatus", "LegacyFreeBusyStatus", "calendar:LegacyFreeBusyStatus", settable, wire.Exchange2007SP1, []FreeBusyStatus{FreeBusyFree, FreeBusyTentative, FreeBusyBusy, FreeBusyOOF, FreeBusyWorkingElse, FreeBusyNoData})
	AppointmentLocation                = property.NewString("Location", "Location", "calendar:Location", deletable, wire.Exchange2007SP1)
	AppointmentWhen                    = property.NewString("When", "When", "calendar:When", settable, wire.Exchange2007SP1)
	AppointmentIsMeeting               = property.NewBool("IsMeeting", "IsMeeting", "calendar:IsMeeting", readOnly, wire.Exchange2007SP1)
	AppointmentIsCancelled             = property.NewBool("IsCancelled", "IsCancelled", "calendar:IsCancelled", readOnly, wire.Exchange2007SP1)
	AppointmentIsRecurring             = property.NewBool("IsRecurring", "IsRecurring", "calendar:IsRecurring", readOnly, wire.Exchange2007SP1)
	AppointmentMeetingRequestWasSent   = property.NewBool("MeetingRequestWasSent", "MeetingRequestWasSent", "calendar:MeetingRequestWasSent", readOnly, wire.Exchange2007SP1)
	AppointmentIsResponseRequested     = property.NewBool("IsResponseRequested", "IsResponseRequested", "calendar:IsResponseRequested", settable, wire.Exchange2007SP1)
	AppointmentCalendarItemType        = property.NewEnum[CalendarItemType]("AppointmentType", "CalendarItemType", "calendar:CalendarItemType", readOnly, wire.Exchange2007SP1, nil)
	AppointmentMyResponseType          = property.NewEnum[ResponseType]("MyResponseType", "MyResponseType", "calendar:MyResponseType", readOnly, wire.Exchange2007SP1, nil)
	AppointmentOrganizer               = property.NewContained("Organizer", "Organizer", wire.ElemMailbox, "calendar:Organizer", readOnly, wire.Exchange2007SP1, newEmailAddress)
	AppointmentRequiredAttendees       = property.NewComplex("RequiredAttendees", "RequiredAttendees", "calendar:RequiredAttendees", collection, wire.Exchange2007SP1, newAttendeeList)
	AppointmentOptionalAttendees       = property.NewComplex("OptionalAttendees", "OptionalAttendees", "calendar:OptionalAttendees", collection, wire.Exchange2007SP1, newAttendeeList)
	AppointmentResources               = property.NewComplex("Resources", "Resources", "calendar:Resources", collection, wire.Exchange2007SP1, newAttendeeList)
	AppointmentConflictingMeetingCount = property.NewInt("ConflictingMeetingCount", "ConflictingMeetingCount", "calendar:ConflictingMeetingCount", property.None, wire.Exchange2007SP1)
	AppointmentAdjacentMeetingCount    = property.NewInt("AdjacentMeetingCount", "AdjacentMeetingCount", "calendar:AdjacentMeetingCount", property.None, wire.Exchange2007SP1)
	AppointmentDuration                = property.NewDuration("Duration", "Duration", "calendar:Duration", readOnly, wire.Exchange2007SP1)
	AppointmentTimeZone                = property.NewString("TimeZone", "TimeZone", "calendar:TimeZone", readOnly, wire.Exchange2007SP1)
	AppointmentReplyTime               = property.NewDateTime("AppointmentReplyTime", "AppointmentReplyTime", "calendar:AppointmentReplyTime", readOnly, wire.Exchange2007SP1)
	AppointmentSequenceNumber          = property.NewInt("AppointmentSequenceNumber", "AppointmentSequenceNumber", "calendar:AppointmentSequenceNumber", readOnly, wire.Exchange2007SP1)
	AppointmentState                   = property.NewInt("AppointmentState", "AppointmentState", "calendar:AppointmentState", readOnly, wire.Exchange2007SP1)
	AppointmentRecurrence              = recurrence.NewDefinition("Recurrence", "Recurrence", "calendar:Recurrence", deletable, wire.Exchange2007SP1)
	AppointmentMeetingTimeZone         = property.NewMeetingTimeZone("MeetingTimeZone", "MeetingTimeZone", "calendar:MeetingTimeZone", property.Associated|property.CanSet|property.CanUpdate, wire.Exchange2007SP1)
	AppointmentStartTimeZone           = property.NewStartTimeZone("StartTimeZone", "StartTimeZone", "calendar:StartTimeZone", settable, wire.Exchange2007SP1, AppointmentMeetingTimeZone)
	AppointmentEndTimeZone             = property.NewTimeZone("EndTimeZone", "EndTimeZone", "calendar:EndTimeZone", settable, wire.Exchange2010)
	AppointmentConferenceType          = property.NewInt("ConferenceType", "ConferenceType", "calendar:ConferenceType", settable, wire.Exchange2007SP1)
	AppointmentAllowNewTimeProposal    = property.NewBool("AllowNewTimeProposal", "AllowNewTimeProposal", "calendar:AllowNewTimeProposal", settable, wire.Exchange2007SP1)
	AppointmentIsOnlineMeeting         = property.NewBool("IsOnlineMeeting", "IsOnlineMeeting", "calendar:IsOnlineMeeting", settable, wire.Exchange2007SP1)
	AppointmentMeetingWorkspaceURL     = property.NewString("MeetingWorkspaceUrl", "MeetingWorkspaceUrl", "calendar:MeetingWorkspaceUrl", settable, wire.Exchange2007SP1)
	AppointmentNetShowURL              = property.NewString("NetShowUrl", "NetShowUrl", "calendar:NetShowUrl", settable, wire.Exchange2007SP1)
)

// AppointmentSchema is the schema of calendar items. Its floating
// date-times are scoped by the item's own time zones.
var AppointmentSchema = property.Lazy("Appointment", ItemSchema, func(r *property.Registrar) {
	r.Add(AppointmentUID)
	r.Add(AppointmentDateTimeStamp)
	r.Add(AppointmentStart)
	r.Add(AppointmentEnd)
	r.Add(AppointmentOriginalStart)
	r.Add(AppointmentIsAllDayEvent)
	r.Add(AppointmentLegacyFreeBusyStatus)
	r.Add(AppointmentLocation)
	r.Add(AppointmentWhen)
	r.Add(AppointmentIsMeeting)
	r.Add(AppointmentIsCancelled)
	r.Add(AppointmentIsRecurring)
	r.Add(AppointmentMeetingRequestWasSent)
	r.Add(AppointmentIsResponseRequested)
	r.Add(AppointmentCalendarItemType)
	r.Add(AppointmentMyResponseType)
	r.Add(AppointmentOrganizer)
	r.Add(AppointmentRequiredAttendees, property.NotInSummary())
	r.Add(AppointmentOptionalAttendees, property.NotInSummary())
	r.Add(AppointmentResources, property.NotInSummary())
	r.Add(AppointmentConflictingMeetingCount)
	r.Add(AppointmentAdjacentMeetingCount)
	r.Add(AppointmentDuration)
	r.Add(AppointmentTimeZone)
	r.Add(AppointmentReplyTime)
	r.Add(AppointmentSequenceNumber)
	r.Add(AppointmentState)
	r.Add(AppointmentRecurrence, property.NotInSummary())
	r.Add(AppointmentMeetingTimeZone)
	r.Add(AppointmentStartTimeZone)
	r.Add(AppointmentEndTimeZone)
	r.Add(AppointmentConferenceType)
	r.Add(AppointmentAllowNewTimeProposal)
	r.Add(AppointmentIsOnlineMeeting)
	r.Add(AppointmentMeetingWorkspaceURL)
	r.Add(AppointmentNetShowURL)
})
