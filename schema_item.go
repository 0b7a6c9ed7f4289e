package ews

import (
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// Common flag combinations.
const (
	readOnly   = property.CanFind
	settable   = property.CanSet | property.CanUpdate | property.CanFind
	deletable  = settable | property.CanDelete
	collection = property.AutoInstantiateOnRead | property.CanSet | property.CanUpdate | property.CanDelete
)

// Item properties, in the order the protocol requires on create.
var (
	ItemMimeContent                  = property.NewBytes("MimeContent", "MimeContent", "item:MimeContent", property.CanSet|property.CanUpdate|property.MustBeExplicitlyLoaded, wire.Exchange2007SP1)
	ItemID                           = property.NewComplex("Id", wire.ElemItemID, "item:ItemId", readOnly, wire.Exchange2007SP1, newItemID)
	ItemParentFolderID               = property.NewComplex("ParentFolderId", wire.ElemParentFolderID, "item:ParentFolderId", readOnly, wire.Exchange2007SP1, newFolderID)
	ItemClass                        = property.NewString("ItemClass", "ItemClass", "item:ItemClass", settable, wire.Exchange2007SP1)
	ItemSubject                      = property.NewString("Subject", "Subject", "item:Subject", deletable, wire.Exchange2007SP1)
	ItemSensitivity                  = property.NewEnum("Sensitivity", "Sensitivity", "item:Sensitivity", settable, wire.Exchange2007SP1, []Sensitivity{SensitivityNormal, SensitivityPersonal, SensitivityPrivate, SensitivityConfidential})
	ItemBody                         = property.NewComplex("Body", "Body", "item:Body", property.CanSet|property.CanUpdate|property.CanDelete, wire.Exchange2007SP1, newBody)
	ItemAttachments                  = property.NewComplex("Attachments", "Attachments", "item:Attachments", property.AutoInstantiateOnRead|property.CanSet, wire.Exchange2007SP1, newAttachmentList, property.FlagsSince(wire.Exchange2010SP2, property.ReuseInstance|property.UpdateCollectionItems))
	ItemDateTimeReceived             = property.NewDateTime("DateTimeReceived", "DateTimeReceived", "item:DateTimeReceived", readOnly, wire.Exchange2007SP1)
	ItemSize                         = property.NewInt("Size", "Size", "item:Size", readOnly, wire.Exchange2007SP1)
	ItemCategories                   = property.NewComplex("Categories", "Categories", "item:Categories", collection|property.CanFind, wire.Exchange2007SP1, newStringList)
	ItemImportance                   = property.NewEnum("Importance", "Importance", "item:Importance", settable, wire.Exchange2007SP1, []Importance{ImportanceLow, ImportanceNormal, ImportanceHigh})
	ItemInReplyTo                    = property.NewString("InReplyTo", "InReplyTo", "item:InReplyTo", deletable, wire.Exchange2007SP1)
	ItemIsSubmitted                  = property.NewBool("IsSubmitted", "IsSubmitted", "item:IsSubmitted", readOnly, wire.Exchange2007SP1)
	ItemIsDraft                      = property.NewBool("IsDraft", "IsDraft", "item:IsDraft", readOnly, wire.Exchange2007SP1)
	ItemIsFromMe                     = property.NewBool("IsFromMe", "IsFromMe", "item:IsFromMe", readOnly, wire.Exchange2007SP1)
	ItemIsResend                     = property.NewBool("IsResend", "IsResend", "item:IsResend", readOnly, wire.Exchange2007SP1)
	ItemIsUnmodified                 = property.NewBool("IsUnmodified", "IsUnmodified", "item:IsUnmodified", readOnly, wire.Exchange2007SP1)
	ItemDateTimeSent                 = property.NewDateTime("DateTimeSent", "DateTimeSent", "item:DateTimeSent", readOnly, wire.Exchange2007SP1)
	ItemDateTimeCreated              = property.NewDateTime("DateTimeCreated", "DateTimeCreated", "item:DateTimeCreated", readOnly, wire.Exchange2007SP1)
	ItemResponseObjects              = property.NewFlagSet("AllowedResponseActions", "ResponseObjects", "item:ResponseObjects", readOnly, wire.Exchange2007SP1, property.FlagsFromPresence, responseActionNames)
	ItemReminderDueBy                = property.NewDateTime("ReminderDueBy", "ReminderDueBy", "item:ReminderDueBy", settable, wire.Exchange2007SP1)
	ItemReminderIsSet                = property.NewBool("IsReminderSet", "ReminderIsSet", "item:ReminderIsSet", settable, wire.Exchange2007SP1)
	ItemReminderMinutes              = property.NewInt("ReminderMinutesBeforeStart", "ReminderMinutesBeforeStart", "item:ReminderMinutesBeforeStart", settable, wire.Exchange2007SP1)
	ItemDisplayCc                    = property.NewString("DisplayCc", "DisplayCc", "item:DisplayCc", readOnly, wire.Exchange2007SP1)
	ItemDisplayTo                    = property.NewString("DisplayTo", "DisplayTo", "item:DisplayTo", readOnly, wire.Exchange2007SP1)
	ItemHasAttachments               = property.NewBool("HasAttachments", "HasAttachments", "item:HasAttachments", readOnly, wire.Exchange2007SP1)
	ItemExtendedProperties           = property.NewExtendedProperties("ExtendedProperties", wire.Exchange2007SP1)
	ItemCulture                      = property.NewString("Culture", "Culture", "item:Culture", settable, wire.Exchange2007SP1)
	ItemEffectiveRights              = property.NewFlagSet("EffectiveRights", "EffectiveRights", "item:EffectiveRights", readOnly, wire.Exchange2007SP1, property.FlagsFromBooleans, effectiveRightNames)
	ItemLastModifiedName             = property.NewString("LastModifiedName", "LastModifiedName", "item:LastModifiedName", readOnly, wire.Exchange2007SP1)
	ItemLastModifiedTime             = property.NewDateTime("LastModifiedTime", "LastModifiedTime", "item:LastModifiedTime", readOnly, wire.Exchange2007SP1)
	ItemIsAssociated                 = property.NewBool("IsAssociated", "IsAssociated", "item:IsAssociated", readOnly, wire.Exchange2010)
	ItemWebClientReadFormQueryString = property.NewString("WebClientReadFormQueryString", "WebClientReadFormQueryString", "item:WebClientReadFormQueryString", readOnly, wire.Exchange2010)
	ItemConversationID               = property.NewComplex("ConversationId", "ConversationId", "item:ConversationId", readOnly, wire.Exchange2010, newItemID)
	ItemUniqueBody                   = property.NewComplex("UniqueBody", "UniqueBody", "item:UniqueBody", property.MustBeExplicitlyLoaded, wire.Exchange2010, newBody)
	ItemStoreEntryID                 = property.NewBytes("StoreEntryId", "StoreEntryId", "item:StoreEntryId", readOnly, wire.Exchange2010SP2)
	ItemInstanceKey                  = property.NewBytes("InstanceKey", "InstanceKey", "item:InstanceKey", readOnly, wire.Exchange2013)
	ItemNormalizedBody               = property.NewComplex("NormalizedBody", "NormalizedBody", "item:NormalizedBody", property.MustBeExplicitlyLoaded, wire.Exchange2013, newBody)
	ItemPreview                      = property.NewString("Preview", "Preview", "item:Preview", readOnly, wire.Exchange2013)
)

func newStringList() *property.StringList { return property.NewStringList("") }

// ItemSchema is the schema shared by every item kind.
var ItemSchema = property.Lazy("Item", nil, func(r *property.Registrar) {
	r.Add(ItemMimeContent)
	r.Add(ItemID)
	r.Add(ItemParentFolderID)
	r.Add(ItemClass)
	r.Add(ItemSubject)
	r.Add(ItemSensitivity)
	r.Add(ItemBody, property.NotInSummary())
	r.Add(ItemAttachments, property.NotInSummary())
	r.Add(ItemDateTimeReceived)
	r.Add(ItemSize)
	r.Add(ItemCategories)
	r.Add(ItemImportance)
	r.Add(ItemInReplyTo)
	r.Add(ItemIsSubmitted)
	r.Add(ItemIsDraft)
	r.Add(ItemIsFromMe)
	r.Add(ItemIsResend)
	r.Add(ItemIsUnmodified)
	r.Add(ItemDateTimeSent)
	r.Add(ItemDateTimeCreated)
	r.Add(ItemResponseObjects, property.NotInSummary())
	r.Add(ItemReminderDueBy)
	r.Add(ItemReminderIsSet)
	r.Add(ItemReminderMinutes)
	r.Add(ItemDisplayCc)
	r.Add(ItemDisplayTo)
	r.Add(ItemHasAttachments)
	r.Add(ItemExtendedProperties)
	r.Add(ItemCulture)
	r.Add(ItemEffectiveRights)
	r.Add(ItemLastModifiedName)
	r.Add(ItemLastModifiedTime)
	r.Add(ItemIsAssociated)
	r.Add(ItemWebClientReadFormQueryString)
	r.Add(ItemConversationID)
	r.Add(ItemUniqueBody)
	r.Add(ItemStoreEntryID)
	r.Add(ItemInstanceKey)
	r.Add(ItemNormalizedBody)
	r.Add(ItemPreview)
})

// Message properties.
var (
	MessageSender                     = property.NewContained("Sender", "Sender", wire.ElemMailbox, "message:Sender", settable, wire.Exchange2007SP1, newEmailAddress)
	MessageToRecipients               = property.NewComplex("ToRecipients", "ToRecipients", "message:ToRecipients", collection, wire.Exchange2007SP1, newEmailAddressList)
	MessageCcRecipients               = property.NewComplex("CcRecipients", "CcRecipients", "message:CcRecipients", collection, wire.Exchange2007SP1, newEmailAddressList)
	MessageBccRecipients              = property.NewComplex("BccRecipients", "BccRecipients", "message:BccRecipients", collection, wire.Exchange2007SP1, newEmailAddressList)
	MessageIsReadReceiptRequested     = property.NewBool("IsReadReceiptRequested", "IsReadReceiptRequested", "message:IsReadReceiptRequested", settable, wire.Exchange2007SP1)
	MessageIsDeliveryReceiptRequested = property.NewBool("IsDeliveryReceiptRequested", "IsDeliveryReceiptRequested", "message:IsDeliveryReceiptRequested", settable, wire.Exchange2007SP1)
	MessageConversationIndex          = property.NewBytes("ConversationIndex", "ConversationIndex", "message:ConversationIndex", readOnly, wire.Exchange2007SP1)
	MessageConversationTopic          = property.NewString("ConversationTopic", "ConversationTopic", "message:ConversationTopic", readOnly, wire.Exchange2007SP1)
	MessageFrom                       = property.NewContained("From", "From", wire.ElemMailbox, "message:From", settable, wire.Exchange2007SP1, newEmailAddress)
	MessageInternetMessageID          = property.NewString("InternetMessageId", "InternetMessageId", "message:InternetMessageId", readOnly, wire.Exchange2007SP1)
	MessageIsRead                     = property.NewBool("IsRead", "IsRead", "message:IsRead", settable, wire.Exchange2007SP1)
	MessageIsResponseRequested        = property.NewBool("IsResponseRequested", "IsResponseRequested", "message:IsResponseRequested", settable, wire.Exchange2007SP1)
	MessageReferences                 = property.NewString("References", "References", "message:References", settable, wire.Exchange2007SP1)
	MessageReplyTo                    = property.NewComplex("ReplyTo", "ReplyTo", "message:ReplyTo", collection, wire.Exchange2007SP1, newEmailAddressList)
	MessageReceivedBy                 = property.NewContained("ReceivedBy", "ReceivedBy", wire.ElemMailbox, "message:ReceivedBy", readOnly, wire.Exchange2007SP1, newEmailAddress)
	MessageReceivedRepresenting       = property.NewContained("ReceivedRepresenting", "ReceivedRepresenting", wire.ElemMailbox, "message:ReceivedRepresenting", readOnly, wire.Exchange2007SP1, newEmailAddress)
)

// MessageSchema is the schema of e-mail messages.
var MessageSchema = property.Lazy("Message", ItemSchema, func(r *property.Registrar) {
	r.Add(MessageSender)
	r.Add(MessageToRecipients, property.NotInSummary())
	r.Add(MessageCcRecipients, property.NotInSummary())
	r.Add(MessageBccRecipients, property.NotInSummary())
	r.Add(MessageIsReadReceiptRequested)
	r.Add(MessageIsDeliveryReceiptRequested)
	r.Add(MessageConversationIndex)
	r.Add(MessageConversationTopic)
	r.Add(MessageFrom)
	r.Add(MessageInternetMessageID)
	r.Add(MessageIsRead)
	r.Add(MessageIsResponseRequested)
	r.Add(MessageReferences)
	r.Add(MessageReplyTo, property.NotInSummary())
	r.Add(MessageReceivedBy)
	r.Add(MessageReceivedRepresenting)
})

// Meeting message properties.
var (
	MeetingMessageAssociatedCalendarItemID = property.NewComplex("AssociatedAppointmentId", "AssociatedCalendarItemId", "meeting:AssociatedCalendarItemId", readOnly, wire.Exchange2007SP1, newItemID)
	MeetingMessageIsDelegated              = property.NewBool("IsDelegated", "IsDelegated", "meeting:IsDelegated", readOnly, wire.Exchange2007SP1)
	MeetingMessageIsOutOfDate              = property.NewBool("IsOutOfDate", "IsOutOfDate", "meeting:IsOutOfDate", readOnly, wire.Exchange2007SP1)
	MeetingMessageHasBeenProcessed         = property.NewBool("HasBeenProcessed", "HasBeenProcessed", "meeting:HasBeenProcessed", readOnly, wire.Exchange2007SP1)
	MeetingMessageResponseType             = property.NewEnum[ResponseType]("ResponseType", "ResponseType", "meeting:ResponseType", readOnly, wire.Exchange2007SP1, nil)

	MeetingRequestMeetingRequestType     = property.NewEnum[MeetingRequestType]("MeetingRequestType", "MeetingRequestType", "meetingRequest:MeetingRequestType", readOnly, wire.Exchange2007SP1, nil)
	MeetingRequestIntendedFreeBusyStatus = property.NewEnum[FreeBusyStatus]("IntendedFreeBusyStatus", "IntendedFreeBusyStatus", "meetingRequest:IntendedFreeBusyStatus", readOnly, wire.Exchange2007SP1, nil)

	MeetingResponseProposedStart = property.NewDateTime("ProposedStart", "ProposedStart", "meeting:ProposedStart", readOnly, wire.Exchange2013)
	MeetingResponseProposedEnd   = property.NewDateTime("ProposedEnd", "ProposedEnd", "meeting:ProposedEnd", readOnly, wire.Exchange2013)
)

// MeetingMessageSchema is shared by meeting requests, responses and
// cancellations.
var MeetingMessageSchema = property.Lazy("MeetingMessage", MessageSchema, func(r *property.Registrar) {
	r.Add(MeetingMessageAssociatedCalendarItemID)
	r.Add(MeetingMessageIsDelegated)
	r.Add(MeetingMessageIsOutOfDate)
	r.Add(MeetingMessageHasBeenProcessed)
	r.Add(MeetingMessageResponseType)
	r.Add(AppointmentUID)
})

// MeetingRequestSchema adds the proposed appointment to a meeting message.
var MeetingRequestSchema = property.Lazy("MeetingRequest", MeetingMessageSchema, func(r *property.Registrar) {
	r.Add(MeetingRequestMeetingRequestType)
	r.Add(MeetingRequestIntendedFreeBusyStatus)
	r.Add(AppointmentStart)
	r.Add(AppointmentEnd)
	r.Add(AppointmentIsAllDayEvent)
	r.Add(AppointmentLegacyFreeBusyStatus)
	r.Add(AppointmentLocation)
	r.Add(AppointmentOrganizer)
	r.Add(AppointmentRequiredAttendees, property.NotInSummary())
	r.Add(AppointmentOptionalAttendees, property.NotInSummary())
	r.Add(AppointmentRecurrence, property.NotInSummary())
})

// MeetingResponseSchema carries an attendee's answer.
var MeetingResponseSchema = property.Lazy("MeetingResponse", MeetingMessageSchema, func(r *property.Registrar) {
	r.Add(AppointmentStart)
	r.Add(AppointmentEnd)
	r.Add(AppointmentLocation)
	r.Add(MeetingResponseProposedStart)
	r.Add(MeetingResponseProposedEnd)
})

// MeetingCancellationSchema describes the cancelled meeting.
var MeetingCancellationSchema = property.Lazy("MeetingCancellation", MeetingMessageSchema, func(r *property.Registrar) {
	r.Add(AppointmentStart)
	r.Add(AppointmentEnd)
	r.Add(AppointmentLocation)
	r.Add(AppointmentRecurrence, property.NotInSummary())
})

// Post item properties.
var PostItemPostedTime = property.NewDateTime("PostedTime", "PostedTime", "postitem:PostedTime", readOnly, wire.Exchange2007SP1)

// PostItemSchema is the schema of public folder posts.
var PostItemSchema = property.Lazy("PostItem", ItemSchema, func(r *property.Registrar) {
	r.Add(MessageConversationIndex)
	r.Add(MessageConversationTopic)
	r.Add(MessageFrom)
	r.Add(MessageInternetMessageID)
	r.Add(MessageIsRead)
	r.Add(PostItemPostedTime)
	r.Add(MessageReferences)
	r.Add(MessageSender)
})
