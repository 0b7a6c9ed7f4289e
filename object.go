package ews

import (
	"context"
	"time"

	"github.com/rbaliyan/ews/property"
)

// Object is a bound or new item or folder.
//
// Objects are not safe for concurrent use. Values are read and written
// through the typed accessors of the concrete views or through the
// exported definitions, e.g. ItemSubject.Get(obj.Bag()).
type Object interface {
	Kind() *Kind
	// ID returns the server id, nil for a new object.
	ID() *ID
	// Bag returns the property bag holding the object's values.
	Bag() *property.Bag
	// IsNew reports whether the object was never saved.
	IsNew() bool
	// IsDirty reports whether there are unsaved changes.
	IsDirty() bool
}

// object is the state every view shares. It is the owner of its bag.
type object struct {
	kind *Kind
	svc  *service
	bag  *property.Bag
	view Object
}

func newObject(svc *service, kind *Kind) *object {
	o := &object{kind: kind, svc: svc}
	o.bag = property.NewBag(o)
	return o
}

func (o *object) Kind() *Kind           { return o.kind }
func (o *object) Bag() *property.Bag    { return o.bag }
func (o *object) IsDirty() bool         { return o.bag.IsDirty() }
func (o *object) Names() property.Names { return o.kind.Names() }

func (o *object) Schema() *property.Schema { return o.kind.Schema() }

func (o *object) Settings() property.Settings { return o.svc.settings }

func (o *object) CustomDateTimeScoping() bool { return o.kind.CustomDateTimeScoping() }

func (o *object) idDefinition() *property.ComplexDefinition[*ID] {
	if o.kind.IsFolder() {
		return FolderID
	}
	return ItemID
}

func (o *object) IsNew() bool {
	id, ok := o.idDefinition().TryGet(o.bag)
	return !ok || id == nil || id.UniqueID() == ""
}

func (o *object) ID() *ID {
	id, ok := o.idDefinition().TryGet(o.bag)
	if !ok {
		return nil
	}
	return id
}

// wrap returns the most specific view of o and remembers it, so hooks and
// results see the same value.
func wrap(o *object) Object {
	if o.view != nil {
		return o.view
	}
	item := Item{o}
	switch o.kind {
	case KindMessage:
		o.view = &EmailMessage{item}
	case KindMeetingRequest:
		o.view = &MeetingRequest{MeetingMessage{EmailMessage{item}}}
	case KindMeetingResponse:
		o.view = &MeetingResponse{MeetingMessage{EmailMessage{item}}}
	case KindMeetingCancellation:
		o.view = &MeetingCancellation{MeetingMessage{EmailMessage{item}}}
	case KindPostItem:
		o.view = &PostItem{item}
	case KindCalendarItem:
		o.view = &Appointment{item}
	case KindContact:
		o.view = &Contact{item}
	case KindTask:
		o.view = &Task{item}
	default:
		if o.kind.IsFolder() {
			o.view = &Folder{o}
		} else {
			o.view = &item
		}
	}
	return o.view
}

// SaveOptions control how a new item is created. The zero value saves
// without sending.
type SaveOptions struct {
	MessageDisposition MessageDisposition
	SendInvitations    SendInvitationsMode
}

// Item is the view shared by every item kind.
type Item struct {
	*object
}

// Load reloads the item with the given properties. A nil set loads the
// first-class properties. Unsaved changes are discarded.
func (i *Item) Load(ctx context.Context, ps *property.PropertySet) error {
	if i.IsNew() {
		return ErrNewObject
	}
	_, err := i.svc.get(ctx, i.ID(), i.object, ps)
	return err
}

// Save creates the item in parent.
func (i *Item) Save(ctx context.Context, parent FolderRef, opts SaveOptions) error {
	return i.svc.create(ctx, i.object, parent, opts)
}

// Update sends the pending changes. It is a no-op when nothing changed.
func (i *Item) Update(ctx context.Context, cr ConflictResolution) error {
	return i.svc.update(ctx, i.object, cr)
}

// Delete deletes the item on the server.
func (i *Item) Delete(ctx context.Context, mode DeleteMode) error {
	return i.svc.delete(ctx, i.object, mode)
}

func (i *Item) Subject() (string, error)      { return ItemSubject.Get(i.bag) }
func (i *Item) SetSubject(s string) error     { return ItemSubject.Set(i.bag, s) }
func (i *Item) Body() (*Body, error)          { return ItemBody.Get(i.bag) }
func (i *Item) SetBody(b *Body) error         { return ItemBody.Set(i.bag, b) }
func (i *Item) ItemClass() (string, error)    { return ItemClass.Get(i.bag) }
func (i *Item) Size() (int, error)            { return ItemSize.Get(i.bag) }
func (i *Item) IsDraft() (bool, error)        { return ItemIsDraft.Get(i.bag) }
func (i *Item) HasAttachments() (bool, error) { return ItemHasAttachments.Get(i.bag) }

func (i *Item) Importance() (Importance, error)   { return ItemImportance.Get(i.bag) }
func (i *Item) SetImportance(v Importance) error  { return ItemImportance.Set(i.bag, v) }
func (i *Item) Sensitivity() (Sensitivity, error) { return ItemSensitivity.Get(i.bag) }
func (i *Item) SetSensitivity(v Sensitivity) error {
	return ItemSensitivity.Set(i.bag, v)
}

// ParentFolderID returns the id of the folder holding the item.
func (i *Item) ParentFolderID() (*ID, error) { return ItemParentFolderID.Get(i.bag) }

// Categories returns the category list. It is created on first use.
func (i *Item) Categories() (*property.StringList, error) { return ItemCategories.Get(i.bag) }

// Attachments returns the attachment list. It is created on first use.
func (i *Item) Attachments() (*AttachmentList, error) { return ItemAttachments.Get(i.bag) }

// ExtendedProperties returns the item's extended properties.
func (i *Item) ExtendedProperties() (*property.ExtendedPropertyCollection, error) {
	return ItemExtendedProperties.Get(i.bag)
}

func (i *Item) DateTimeCreated() (time.Time, error)  { return ItemDateTimeCreated.Get(i.bag) }
func (i *Item) DateTimeReceived() (time.Time, error) { return ItemDateTimeReceived.Get(i.bag) }
func (i *Item) LastModifiedTime() (time.Time, error) { return ItemLastModifiedTime.Get(i.bag) }

func (i *Item) ReminderIsSet() (bool, error)   { return ItemReminderIsSet.Get(i.bag) }
func (i *Item) SetReminderIsSet(v bool) error  { return ItemReminderIsSet.Set(i.bag, v) }
func (i *Item) ReminderMinutes() (int, error)  { return ItemReminderMinutes.Get(i.bag) }
func (i *Item) SetReminderMinutes(n int) error { return ItemReminderMinutes.Set(i.bag, n) }

// EffectiveRights returns the caller's rights on the item.
func (i *Item) EffectiveRights() (EffectiveRights, error) { return ItemEffectiveRights.Get(i.bag) }

// Folder is a mail, calendar, contacts, tasks or search folder.
type Folder struct {
	*object
}

// Load reloads the folder with the given properties.
func (f *Folder) Load(ctx context.Context, ps *property.PropertySet) error {
	if f.IsNew() {
		return ErrNewObject
	}
	_, err := f.svc.get(ctx, f.ID(), f.object, ps)
	return err
}

// Save creates the folder under parent.
func (f *Folder) Save(ctx context.Context, parent FolderRef) error {
	return f.svc.create(ctx, f.object, parent, SaveOptions{})
}

// Update sends the pending changes. Folders always overwrite.
func (f *Folder) Update(ctx context.Context) error {
	return f.svc.update(ctx, f.object, AlwaysOverwrite)
}

func (f *Folder) Delete(ctx context.Context, mode DeleteMode) error {
	return f.svc.delete(ctx, f.object, mode)
}

// Ref returns a reference for use as a parent or subscription folder.
func (f *Folder) Ref() FolderRef {
	if id := f.ID(); id != nil {
		return FolderByID(id)
	}
	return FolderRef{}
}

func (f *Folder) DisplayName() (string, error)   { return FolderDisplayName.Get(f.bag) }
func (f *Folder) SetDisplayName(s string) error  { return FolderDisplayName.Set(f.bag, s) }
func (f *Folder) FolderClass() (string, error)   { return FolderClass.Get(f.bag) }
func (f *Folder) SetFolderClass(s string) error  { return FolderClass.Set(f.bag, s) }
func (f *Folder) TotalCount() (int, error)       { return FolderTotalCount.Get(f.bag) }
func (f *Folder) UnreadCount() (int, error)      { return FolderUnreadCount.Get(f.bag) }
func (f *Folder) ChildFolderCount() (int, error) { return FolderChildFolderCount.Get(f.bag) }

// ParentFolderID returns the id of the parent folder.
func (f *Folder) ParentFolderID() (*ID, error) { return FolderParentFolderID.Get(f.bag) }

func (f *Folder) ExtendedProperties() (*property.ExtendedPropertyCollection, error) {
	return FolderExtendedProperties.Get(f.bag)
}

func (f *Folder) EffectiveRights() (EffectiveRights, error) { return FolderEffectiveRights.Get(f.bag) }
