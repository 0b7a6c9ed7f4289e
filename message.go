package ews

import "time"

// EmailMessage is an e-mail message.
type EmailMessage struct {
	Item
}

func (m *EmailMessage) From() (*EmailAddress, error)   { return MessageFrom.Get(m.bag) }
func (m *EmailMessage) SetFrom(a *EmailAddress) error  { return MessageFrom.Set(m.bag, a) }
func (m *EmailMessage) Sender() (*EmailAddress, error) { return MessageSender.Get(m.bag) }

// ToRecipients returns the To list. It is created on first use, so
// recipients can be added to a new message directly.
func (m *EmailMessage) ToRecipients() (*EmailAddressList, error) {
	return MessageToRecipients.Get(m.bag)
}

func (m *EmailMessage) CcRecipients() (*EmailAddressList, error) {
	return MessageCcRecipients.Get(m.bag)
}

func (m *EmailMessage) BccRecipients() (*EmailAddressList, error) {
	return MessageBccRecipients.Get(m.bag)
}

func (m *EmailMessage) ReplyTo() (*EmailAddressList, error) { return MessageReplyTo.Get(m.bag) }

func (m *EmailMessage) IsRead() (bool, error)  { return MessageIsRead.Get(m.bag) }
func (m *EmailMessage) SetIsRead(v bool) error { return MessageIsRead.Set(m.bag, v) }
func (m *EmailMessage) InternetMessageID() (string, error) {
	return MessageInternetMessageID.Get(m.bag)
}

func (m *EmailMessage) ConversationTopic() (string, error) {
	return MessageConversationTopic.Get(m.bag)
}

func (m *EmailMessage) IsReadReceiptRequested() (bool, error) {
	return MessageIsReadReceiptRequested.Get(m.bag)
}

func (m *EmailMessage) SetIsReadReceiptRequested(v bool) error {
	return MessageIsReadReceiptRequested.Set(m.bag, v)
}

// MeetingMessage is the part shared by meeting requests, responses and
// cancellations.
type MeetingMessage struct {
	EmailMessage
}

// AssociatedAppointmentID returns the id of the calendar item the message
// belongs to.
func (m *MeetingMessage) AssociatedAppointmentID() (*ID, error) {
	return MeetingMessageAssociatedCalendarItemID.Get(m.bag)
}

func (m *MeetingMessage) ResponseType() (ResponseType, error) {
	return MeetingMessageResponseType.Get(m.bag)
}

func (m *MeetingMessage) IsOutOfDate() (bool, error) { return MeetingMessageIsOutOfDate.Get(m.bag) }
func (m *MeetingMessage) UID() (string, error)       { return AppointmentUID.Get(m.bag) }

// MeetingRequest invites the recipient to a meeting.
type MeetingRequest struct {
	MeetingMessage
}

func (m *MeetingRequest) Start() (time.Time, error) { return AppointmentStart.Get(m.bag) }
func (m *MeetingRequest) End() (time.Time, error)   { return AppointmentEnd.Get(m.bag) }
func (m *MeetingRequest) Location() (string, error) { return AppointmentLocation.Get(m.bag) }

func (m *MeetingRequest) MeetingRequestType() (MeetingRequestType, error) {
	return MeetingRequestMeetingRequestType.Get(m.bag)
}

func (m *MeetingRequest) Organizer() (*EmailAddress, error) { return AppointmentOrganizer.Get(m.bag) }

// MeetingResponse is an attendee's answer to a meeting request.
type MeetingResponse struct {
	MeetingMessage
}

// ProposedStart returns the new start time an attendee proposed.
func (m *MeetingResponse) ProposedStart() (time.Time, error) {
	return MeetingResponseProposedStart.Get(m.bag)
}

func (m *MeetingResponse) ProposedEnd() (time.Time, error) {
	return MeetingResponseProposedEnd.Get(m.bag)
}

// MeetingCancellation tells attendees a meeting was cancelled.
type MeetingCancellation struct {
	MeetingMessage
}

func (m *MeetingCancellation) Start() (time.Time, error) { return AppointmentStart.Get(m.bag) }
func (m *MeetingCancellation) End() (time.Time, error)   { return AppointmentEnd.Get(m.bag) }

// PostItem is a post in a public folder.
type PostItem struct {
	Item
}

func (p *PostItem) From() (*EmailAddress, error)   { return MessageFrom.Get(p.bag) }
func (p *PostItem) SetFrom(a *EmailAddress) error  { return MessageFrom.Set(p.bag, a) }
func (p *PostItem) PostedTime() (time.Time, error) { return PostItemPostedTime.Get(p.bag) }
func (p *PostItem) IsRead() (bool, error)          { return MessageIsRead.Get(p.bag) }
