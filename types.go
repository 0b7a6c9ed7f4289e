package ews

import (
	"time"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// readChildren calls fn for each child start element of elem. fn must
// consume the element it is called on.
func readChildren(r *wire.Reader, elem string, fn func(name string) error) error {
	for {
		if err := r.Read(); err != nil {
			return err
		}
		if r.IsEndElement(wire.NamespaceTypes, elem) {
			return nil
		}
		if !r.IsStart() {
			continue
		}
		if err := fn(r.LocalName()); err != nil {
			return err
		}
	}
}

// ID is a server-assigned object id with its change key.
type ID struct {
	property.ChangeNotifier
	typeName  string
	uniqueID  string
	changeKey string
}

// NewItemID returns an item id.
func NewItemID(uniqueID, changeKey string) *ID {
	return &ID{typeName: wire.ElemItemID, uniqueID: uniqueID, changeKey: changeKey}
}

// NewFolderID returns a folder id.
func NewFolderID(uniqueID, changeKey string) *ID {
	return &ID{typeName: wire.ElemFolderID, uniqueID: uniqueID, changeKey: changeKey}
}

func newItemID() *ID   { return NewItemID("", "") }
func newFolderID() *ID { return NewFolderID("", "") }

// UniqueID returns the id.
func (i *ID) UniqueID() string { return i.uniqueID }

// ChangeKey returns the change key of the version the id was read with.
func (i *ID) ChangeKey() string { return i.changeKey }

func (i *ID) String() string { return i.uniqueID }

func (i *ID) LoadXML(r *wire.Reader, _ string) error {
	i.uniqueID = r.Attr(wire.AttrID)
	i.changeKey = r.Attr(wire.AttrChangeKey)
	return r.SkipCurrentElement()
}

func (i *ID) WriteXML(w *wire.Writer, elem string) {
	w.WriteStartElement(wire.NamespaceTypes, elem)
	w.WriteAttribute(wire.AttrID, i.uniqueID)
	if i.changeKey != "" {
		w.WriteAttribute(wire.AttrChangeKey, i.changeKey)
	}
	w.WriteEndElement()
}

func (i *ID) LoadJSON(v any) error {
	o, err := wire.AsObject(v)
	if err != nil {
		return err
	}
	i.uniqueID, _ = o.GetString(wire.AttrID)
	i.changeKey, _ = o.GetString(wire.AttrChangeKey)
	return nil
}

func (i *ID) WriteJSON() (any, error) {
	o := wire.NewObject(i.typeName)
	o[wire.AttrID] = i.uniqueID
	if i.changeKey != "" {
		o[wire.AttrChangeKey] = i.changeKey
	}
	return o, nil
}

func (i *ID) ClearChangeLog() {}

// assign copies the id and change key of o in place. It does not count
// as a change.
func (i *ID) assign(o *ID) {
	i.uniqueID = o.uniqueID
	i.changeKey = o.changeKey
}

func (i *ID) isFolder() bool          { return i.typeName == wire.ElemFolderID }
func (i *ID) writeXML(w *wire.Writer) { i.WriteXML(w, i.typeName) }

func (i *ID) json() wire.Object {
	o, _ := i.WriteJSON()
	return o.(wire.Object)
}

// objectRef is an id or folder reference written into request id lists.
type objectRef interface {
	isFolder() bool
	writeXML(w *wire.Writer)
	json() wire.Object
	String() string
}

// WellKnownFolder names a distinguished folder.
type WellKnownFolder string

// Distinguished folders.
const (
	FolderRoot          WellKnownFolder = "root"
	FolderMsgFolderRoot WellKnownFolder = "msgfolderroot"
	FolderInbox         WellKnownFolder = "inbox"
	FolderDrafts        WellKnownFolder = "drafts"
	FolderSentItems     WellKnownFolder = "sentitems"
	FolderDeletedItems  WellKnownFolder = "deleteditems"
	FolderCalendar      WellKnownFolder = "calendar"
	FolderContacts      WellKnownFolder = "contacts"
	FolderTasks         WellKnownFolder = "tasks"
	FolderNotes         WellKnownFolder = "notes"
)

// FolderRef addresses a folder by id or by well-known name.
type FolderRef struct {
	ID        string
	ChangeKey string
	WellKnown WellKnownFolder
}

// FolderByName refers to a distinguished folder.
func FolderByName(name WellKnownFolder) FolderRef { return FolderRef{WellKnown: name} }

// FolderByID refers to a folder by its id.
func FolderByID(id *ID) FolderRef {
	return FolderRef{ID: id.UniqueID(), ChangeKey: id.ChangeKey()}
}

func (f FolderRef) String() string {
	if f.WellKnown != "" {
		return string(f.WellKnown)
	}
	return f.ID
}

func (f FolderRef) isFolder() bool { return true }

func (f FolderRef) writeXML(w *wire.Writer) {
	if f.WellKnown != "" {
		w.WriteStartElement(wire.NamespaceTypes, wire.ElemDistinguishedFolder)
		w.WriteAttribute(wire.AttrID, string(f.WellKnown))
		w.WriteEndElement()
		return
	}
	NewFolderID(f.ID, f.ChangeKey).WriteXML(w, wire.ElemFolderID)
}

func (f FolderRef) json() wire.Object {
	if f.WellKnown != "" {
		o := wire.NewObject(wire.ElemDistinguishedFolder)
		o[wire.AttrID] = string(f.WellKnown)
		return o
	}
	o, _ := NewFolderID(f.ID, f.ChangeKey).WriteJSON()
	return o.(wire.Object)
}

// EmailAddress is a mailbox: display name, address and routing.
type EmailAddress struct {
	property.ChangeNotifier
	name        string
	address     string
	routingType string
	mailboxType MailboxType
}

// NewEmailAddress returns an SMTP mailbox.
func NewEmailAddress(name, address string) *EmailAddress {
	return &EmailAddress{name: name, address: address, routingType: "SMTP"}
}

func newEmailAddress() *EmailAddress { return &EmailAddress{} }

func (e *EmailAddress) Name() string             { return e.name }
func (e *EmailAddress) Address() string          { return e.address }
func (e *EmailAddress) RoutingType() string      { return e.routingType }
func (e *EmailAddress) MailboxType() MailboxType { return e.mailboxType }

// SetName changes the display name.
func (e *EmailAddress) SetName(s string) {
	e.name = s
	e.Changed()
}

// SetAddress changes the address.
func (e *EmailAddress) SetAddress(s string) {
	e.address = s
	e.Changed()
}

func (e *EmailAddress) String() string {
	if e.name == "" {
		return e.address
	}
	return e.name + " <" + e.address + ">"
}

func (e *EmailAddress) LoadXML(r *wire.Reader, elem string) error {
	return readChildren(r, elem, func(name string) error {
		var dst *string
		switch name {
		case "Name":
			dst = &e.name
		case "EmailAddress":
			dst = &e.address
		case "RoutingType":
			dst = &e.routingType
		case "MailboxType":
			s, err := r.ReadElementValue()
			e.mailboxType = MailboxType(s)
			return err
		default:
			return r.SkipCurrentElement()
		}
		s, err := r.ReadElementValue()
		*dst = s
		return err
	})
}

func (e *EmailAddress) WriteXML(w *wire.Writer, elem string) {
	w.WriteStartElement(wire.NamespaceTypes, elem)
	writeOptional(w, "Name", e.name)
	writeOptional(w, "EmailAddress", e.address)
	writeOptional(w, "RoutingType", e.routingType)
	writeOptional(w, "MailboxType", string(e.mailboxType))
	w.WriteEndElement()
}

func writeOptional(w *wire.Writer, elem, value string) {
	if value != "" {
		w.WriteElementValue(wire.NamespaceTypes, elem, value)
	}
}

func (e *EmailAddress) LoadJSON(v any) error {
	o, err := wire.AsObject(v)
	if err != nil {
		return err
	}
	e.name, _ = o.GetString("Name")
	e.address, _ = o.GetString("EmailAddress")
	e.routingType, _ = o.GetString("RoutingType")
	mt, _ := o.GetString("MailboxType")
	e.mailboxType = MailboxType(mt)
	return nil
}

func (e *EmailAddress) WriteJSON() (any, error) {
	o := wire.NewObject("EmailAddress")
	for k, v := range map[string]string{
		"Name":         e.name,
		"EmailAddress": e.address,
		"RoutingType":  e.routingType,
		"MailboxType":  string(e.mailboxType),
	} {
		if v != "" {
			o[k] = v
		}
	}
	return o, nil
}

func (e *EmailAddress) ClearChangeLog() {}

// EmailAddressList holds recipients written as Mailbox elements.
type EmailAddressList = property.List[*EmailAddress]

func newEmailAddressList() *EmailAddressList {
	return property.NewList(wire.ElemMailbox, newEmailAddress)
}

// NewEmailAddressList returns a recipient list holding addrs.
func NewEmailAddressList(addrs ...*EmailAddress) *EmailAddressList {
	l := newEmailAddressList()
	if len(addrs) > 0 {
		l.Add(addrs...)
	}
	return l
}

// Attendee is a meeting participant and their response.
type Attendee struct {
	property.ChangeNotifier
	mailbox          *EmailAddress
	responseType     ResponseType
	lastResponseTime time.Time
}

// NewAttendee returns an attendee for the given mailbox.
func NewAttendee(name, address string) *Attendee {
	a := &Attendee{}
	a.setMailbox(NewEmailAddress(name, address))
	return a
}

func newAttendee() *Attendee { return &Attendee{} }

func (a *Attendee) setMailbox(m *EmailAddress) {
	a.mailbox = m
	m.SetChangeHandler(a.Changed)
}

// Mailbox returns the attendee's mailbox.
func (a *Attendee) Mailbox() *EmailAddress { return a.mailbox }

// ResponseType returns the attendee's response.
func (a *Attendee) ResponseType() ResponseType { return a.responseType }

// LastResponseTime returns when the attendee last responded.
func (a *Attendee) LastResponseTime() time.Time { return a.lastResponseTime }

func (a *Attendee) LoadXML(r *wire.Reader, elem string) error {
	return readChildren(r, elem, func(name string) error {
		switch name {
		case wire.ElemMailbox:
			m := newEmailAddress()
			if err := m.LoadXML(r, name); err != nil {
				return err
			}
			a.setMailbox(m)
			return nil
		case "ResponseType":
			s, err := r.ReadElementValue()
			a.responseType = ResponseType(s)
			return err
		case "LastResponseTime":
			s, err := r.ReadElementValue()
			if err != nil {
				return err
			}
			t, err := wire.ParseDateTime(s)
			if err != nil {
				return wire.Deserialize(name, s, err)
			}
			a.lastResponseTime = t
			return nil
		}
		return r.SkipCurrentElement()
	})
}

func (a *Attendee) WriteXML(w *wire.Writer, elem string) {
	w.WriteStartElement(wire.NamespaceTypes, elem)
	if a.mailbox != nil {
		a.mailbox.WriteXML(w, wire.ElemMailbox)
	}
	writeOptional(w, "ResponseType", string(a.responseType))
	if !a.lastResponseTime.IsZero() {
		w.WriteElementValue(wire.NamespaceTypes, "LastResponseTime", wire.FormatDateTime(a.lastResponseTime.UTC()))
	}
	w.WriteEndElement()
}

func (a *Attendee) LoadJSON(v any) error {
	o, err := wire.AsObject(v)
	if err != nil {
		return err
	}
	if raw, ok := o[wire.ElemMailbox]; ok {
		m := newEmailAddress()
		if err := m.LoadJSON(raw); err != nil {
			return err
		}
		a.setMailbox(m)
	}
	rt, _ := o.GetString("ResponseType")
	a.responseType = ResponseType(rt)
	if s, ok := o.GetString("LastResponseTime"); ok {
		t, err := wire.ParseDateTime(s)
		if err != nil {
			return wire.Deserialize("LastResponseTime", s, err)
		}
		a.lastResponseTime = t
	}
	return nil
}

func (a *Attendee) WriteJSON() (any, error) {
	o := wire.NewObject("AttendeeType")
	if a.mailbox != nil {
		m, _ := a.mailbox.WriteJSON()
		o[wire.ElemMailbox] = m
	}
	if a.responseType != "" {
		o["ResponseType"] = string(a.responseType)
	}
	if !a.lastResponseTime.IsZero() {
		o["LastResponseTime"] = wire.FormatDateTime(a.lastResponseTime.UTC())
	}
	return o, nil
}

func (a *Attendee) ClearChangeLog() {}

// AttendeeList holds attendees written as Attendee elements.
type AttendeeList = property.List[*Attendee]

func newAttendeeList() *AttendeeList { return property.NewList("Attendee", newAttendee) }

// NewAttendeeList returns a list holding attendees.
func NewAttendeeList(attendees ...*Attendee) *AttendeeList {
	l := newAttendeeList()
	if len(attendees) > 0 {
		l.Add(attendees...)
	}
	return l
}

// Body is message text with its format.
type Body struct {
	property.ChangeNotifier
	bodyType    property.BodyType
	text        string
	isTruncated bool
}

// NewBody returns a body of the given format.
func NewBody(t property.BodyType, text string) *Body {
	return &Body{bodyType: t, text: text}
}

func newBody() *Body { return &Body{} }

// Type returns the body format.
func (b *Body) Type() property.BodyType { return b.bodyType }

// Text returns the body text.
func (b *Body) Text() string { return b.text }

// IsTruncated reports whether the server shortened the text.
func (b *Body) IsTruncated() bool { return b.isTruncated }

// SetText replaces the text.
func (b *Body) SetText(s string) {
	b.text = s
	b.Changed()
}

func (b *Body) String() string { return b.text }

func (b *Body) LoadXML(r *wire.Reader, _ string) error {
	b.bodyType = property.BodyType(r.Attr("BodyType"))
	if s, ok := r.LookupAttr("IsTruncated"); ok {
		v, err := wire.ParseBool(s)
		if err != nil {
			return wire.Deserialize("IsTruncated", s, err)
		}
		b.isTruncated = v
	}
	s, err := r.ReadElementValue()
	b.text = s
	return err
}

func (b *Body) WriteXML(w *wire.Writer, elem string) {
	w.WriteStartElement(wire.NamespaceTypes, elem)
	bt := b.bodyType
	if bt == "" {
		bt = property.BodyText
	}
	w.WriteAttribute("BodyType", string(bt))
	w.WriteValue(b.text)
	w.WriteEndElement()
}

func (b *Body) LoadJSON(v any) error {
	o, err := wire.AsObject(v)
	if err != nil {
		return err
	}
	bt, _ := o.GetString("BodyType")
	b.bodyType = property.BodyType(bt)
	b.text, _ = o.GetString(wire.ElemValue)
	if raw, ok := o["IsTruncated"]; ok {
		if b.isTruncated, err = wire.AsBool(raw); err != nil {
			return wire.Deserialize("IsTruncated", "", err)
		}
	}
	return nil
}

func (b *Body) WriteJSON() (any, error) {
	o := wire.NewObject("BodyContentType")
	bt := b.bodyType
	if bt == "" {
		bt = property.BodyText
	}
	o["BodyType"] = string(bt)
	o[wire.ElemValue] = b.text
	return o, nil
}

func (b *Body) ClearChangeLog() {}

// FileAttachment is a file attached to an item.
type FileAttachment struct {
	property.ChangeNotifier
	id          string
	name        string
	contentType string
	contentID   string
	size        int64
	isInline    bool
	content     []byte
}

// NewFileAttachment returns an attachment with the given content.
func NewFileAttachment(name, contentType string, content []byte) *FileAttachment {
	return &FileAttachment{name: name, contentType: contentType, content: content, size: int64(len(content))}
}

func newFileAttachment() *FileAttachment { return &FileAttachment{} }

func (a *FileAttachment) ID() string          { return a.id }
func (a *FileAttachment) Name() string        { return a.name }
func (a *FileAttachment) ContentType() string { return a.contentType }
func (a *FileAttachment) ContentID() string   { return a.contentID }
func (a *FileAttachment) Size() int64         { return a.size }
func (a *FileAttachment) IsInline() bool      { return a.isInline }

// Content returns the attachment bytes, nil when not loaded.
func (a *FileAttachment) Content() []byte { return a.content }

// SetContent replaces the content.
func (a *FileAttachment) SetContent(b []byte) {
	a.content = b
	a.size = int64(len(b))
	a.Changed()
}

// LoadXML assigns only the fields present in the element, so reloading
// into an existing attachment keeps what the element omits.
func (a *FileAttachment) LoadXML(r *wire.Reader, elem string) error {
	return readChildren(r, elem, func(name string) error {
		if name == "AttachmentId" {
			a.id = r.Attr(wire.AttrID)
			return r.SkipCurrentElement()
		}
		s, err := r.ReadElementValue()
		if err != nil {
			return err
		}
		if err := a.setField(name, s); err != nil {
			return wire.Deserialize(name, s, err)
		}
		return nil
	})
}

func (a *FileAttachment) setField(name, s string) error {
	var err error
	switch name {
	case "Name":
		a.name = s
	case "ContentType":
		a.contentType = s
	case "ContentId":
		a.contentID = s
	case "Size":
		a.size, err = wire.ParseInt(s)
	case "IsInline":
		a.isInline, err = wire.ParseBool(s)
	case "Content":
		a.content, err = wire.ParseBase64(s)
	}
	return err
}

func (a *FileAttachment) WriteXML(w *wire.Writer, elem string) {
	w.WriteStartElement(wire.NamespaceTypes, elem)
	if a.id != "" {
		w.WriteStartElement(wire.NamespaceTypes, "AttachmentId")
		w.WriteAttribute(wire.AttrID, a.id)
		w.WriteEndElement()
	}
	writeOptional(w, "Name", a.name)
	writeOptional(w, "ContentType", a.contentType)
	writeOptional(w, "ContentId", a.contentID)
	w.WriteElementValue(wire.NamespaceTypes, "Size", wire.FormatInt(a.size))
	w.WriteElementValue(wire.NamespaceTypes, "IsInline", wire.FormatBool(a.isInline))
	if a.content != nil {
		w.WriteElementValue(wire.NamespaceTypes, "Content", wire.FormatBase64(a.content))
	}
	w.WriteEndElement()
}

func (a *FileAttachment) LoadJSON(v any) error {
	o, err := wire.AsObject(v)
	if err != nil {
		return err
	}
	if id, ok := o.GetObject("AttachmentId"); ok {
		a.id, _ = id.GetString(wire.AttrID)
	}
	for _, name := range []string{"Name", "ContentType", "ContentId", "Size", "IsInline", "Content"} {
		raw, ok := o[name]
		if !ok {
			continue
		}
		s, err := wire.AsString(raw)
		if err != nil {
			return wire.Deserialize(name, "", err)
		}
		if err := a.setField(name, s); err != nil {
			return wire.Deserialize(name, s, err)
		}
	}
	return nil
}

func (a *FileAttachment) WriteJSON() (any, error) {
	o := wire.NewObject("FileAttachment")
	if a.id != "" {
		id := wire.NewObject("AttachmentId")
		id[wire.AttrID] = a.id
		o["AttachmentId"] = id
	}
	for k, v := range map[string]string{"Name": a.name, "ContentType": a.contentType, "ContentId": a.contentID} {
		if v != "" {
			o[k] = v
		}
	}
	o["Size"] = wire.FormatInt(a.size)
	o["IsInline"] = a.isInline
	if a.content != nil {
		o["Content"] = wire.FormatBase64(a.content)
	}
	return o, nil
}

func (a *FileAttachment) ClearChangeLog() {}

// AttachmentList holds the file attachments of an item.
type AttachmentList = property.List[*FileAttachment]

func newAttachmentList() *AttachmentList {
	return property.NewList("FileAttachment", newFileAttachment)
}
