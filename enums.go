package ews

// Sensitivity is the privacy level of an item.
type Sensitivity string

const (
	SensitivityNormal       Sensitivity = "Normal"
	SensitivityPersonal     Sensitivity = "Personal"
	SensitivityPrivate      Sensitivity = "Private"
	SensitivityConfidential Sensitivity = "Confidential"
)

// Importance is the priority of an item.
type Importance string

const (
	ImportanceLow    Importance = "Low"
	ImportanceNormal Importance = "Normal"
	ImportanceHigh   Importance = "High"
)

// MailboxType classifies the mailbox behind an address.
type MailboxType string

const (
	MailboxTypeMailbox      MailboxType = "Mailbox"
	MailboxTypePublicDL     MailboxType = "PublicDL"
	MailboxTypePrivateDL    MailboxType = "PrivateDL"
	MailboxTypeContact      MailboxType = "Contact"
	MailboxTypePublicFolder MailboxType = "PublicFolder"
)

// ResponseType is an attendee's answer to a meeting.
type ResponseType string

const (
	ResponseUnknown    ResponseType = "Unknown"
	ResponseOrganizer  ResponseType = "Organizer"
	ResponseTentative  ResponseType = "Tentative"
	ResponseAccept     ResponseType = "Accept"
	ResponseDecline    ResponseType = "Decline"
	ResponseNoResponse ResponseType = "NoResponseReceived"
)

// FreeBusyStatus is how an appointment shows in free/busy data.
type FreeBusyStatus string

const (
	FreeBusyFree        FreeBusyStatus = "Free"
	FreeBusyTentative   FreeBusyStatus = "Tentative"
	FreeBusyBusy        FreeBusyStatus = "Busy"
	FreeBusyOOF         FreeBusyStatus = "OOF"
	FreeBusyWorkingElse FreeBusyStatus = "WorkingElsewhere"
	FreeBusyNoData      FreeBusyStatus = "NoData"
)

// CalendarItemType distinguishes single, recurring and exception items.
type CalendarItemType string

const (
	CalendarSingle          CalendarItemType = "Single"
	CalendarOccurrence      CalendarItemType = "Occurrence"
	CalendarException       CalendarItemType = "Exception"
	CalendarRecurringMaster CalendarItemType = "RecurringMaster"
)

// MeetingRequestType classifies a meeting request.
type MeetingRequestType string

const (
	MeetingRequestNone          MeetingRequestType = "None"
	MeetingRequestFullUpdate    MeetingRequestType = "FullUpdate"
	MeetingRequestInformational MeetingRequestType = "InformationalUpdate"
	MeetingRequestNewMeeting    MeetingRequestType = "NewMeetingRequest"
	MeetingRequestOutdated      MeetingRequestType = "Outdated"
)

// TaskState is the progress of a task.
type TaskState string

const (
	TaskNotStarted TaskState = "NotStarted"
	TaskInProgress TaskState = "InProgress"
	TaskCompleted  TaskState = "Completed"
	TaskWaiting    TaskState = "WaitingOnOthers"
	TaskDeferred   TaskState = "Deferred"
)

// EmailAddressKey indexes a contact's e-mail addresses.
type EmailAddressKey string

const (
	EmailAddress1 EmailAddressKey = "EmailAddress1"
	EmailAddress2 EmailAddressKey = "EmailAddress2"
	EmailAddress3 EmailAddressKey = "EmailAddress3"
)

// PhoneNumberKey indexes a contact's phone numbers.
type PhoneNumberKey string

const (
	PhoneBusiness PhoneNumberKey = "BusinessPhone"
	PhoneHome     PhoneNumberKey = "HomePhone"
	PhoneMobile   PhoneNumberKey = "MobilePhone"
	PhoneFax      PhoneNumberKey = "BusinessFax"
)

// ImAddressKey indexes a contact's instant messaging addresses.
type ImAddressKey string

const (
	ImAddress1 ImAddressKey = "ImAddress1"
	ImAddress2 ImAddressKey = "ImAddress2"
	ImAddress3 ImAddressKey = "ImAddress3"
)

// ConflictResolution selects how an update treats a stale change key.
type ConflictResolution string

const (
	NeverOverwrite  ConflictResolution = "NeverOverwrite"
	AutoResolve     ConflictResolution = "AutoResolve"
	AlwaysOverwrite ConflictResolution = "AlwaysOverwrite"
)

// DeleteMode selects what a delete does with the object.
type DeleteMode string

const (
	HardDelete         DeleteMode = "HardDelete"
	SoftDelete         DeleteMode = "SoftDelete"
	MoveToDeletedItems DeleteMode = "MoveToDeletedItems"
)

// MessageDisposition selects whether a created message is saved or sent.
type MessageDisposition string

const (
	SaveOnly        MessageDisposition = "SaveOnly"
	SendOnly        MessageDisposition = "SendOnly"
	SendAndSaveCopy MessageDisposition = "SendAndSaveCopy"
)

// SendInvitationsMode selects whether meeting changes notify attendees.
type SendInvitationsMode string

const (
	SendToNone           SendInvitationsMode = "SendToNone"
	SendOnlyToAll        SendInvitationsMode = "SendOnlyToAll"
	SendToAllAndSaveCopy SendInvitationsMode = "SendToAllAndSaveCopy"
)
