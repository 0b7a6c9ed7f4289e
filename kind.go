package ews

import (
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// Kind describes one object kind: its element name, its schema and the
// element names it uses in change documents.
type Kind struct {
	name          string
	folder        bool
	schema        func() *property.Schema
	customScoping bool
}

// Object kinds. Responses are mapped to kinds by element name.
var (
	KindItem                = &Kind{name: "Item", schema: ItemSchema}
	KindMessage             = &Kind{name: "Message", schema: MessageSchema}
	KindMeetingRequest      = &Kind{name: "MeetingRequest", schema: MeetingRequestSchema}
	KindMeetingResponse     = &Kind{name: "MeetingResponse", schema: MeetingResponseSchema}
	KindMeetingCancellation = &Kind{name: "MeetingCancellation", schema: MeetingCancellationSchema}
	KindPostItem            = &Kind{name: "PostItem", schema: PostItemSchema}
	KindCalendarItem        = &Kind{name: "CalendarItem", schema: AppointmentSchema, customScoping: true}
	KindContact             = &Kind{name: "Contact", schema: ContactSchema}
	KindTask                = &Kind{name: "Task", schema: TaskSchema}

	KindFolder         = &Kind{name: "Folder", folder: true, schema: FolderSchema}
	KindCalendarFolder = &Kind{name: "CalendarFolder", folder: true, schema: CalendarFolderSchema}
	KindContactsFolder = &Kind{name: "ContactsFolder", folder: true, schema: ContactsFolderSchema}
	KindTasksFolder    = &Kind{name: "TasksFolder", folder: true, schema: TasksFolderSchema}
	KindSearchFolder   = &Kind{name: "SearchFolder", folder: true, schema: SearchFolderSchema}
)

var kindsByElement = func() map[string]*Kind {
	m := make(map[string]*Kind)
	for _, k := range []*Kind{
		KindItem, KindMessage, KindMeetingRequest, KindMeetingResponse,
		KindMeetingCancellation, KindPostItem, KindCalendarItem, KindContact,
		KindTask, KindFolder, KindCalendarFolder, KindContactsFolder,
		KindTasksFolder, KindSearchFolder,
	} {
		m[k.name] = k
	}
	return m
}()

// KindOf returns the kind whose element name is elem.
func KindOf(elem string) (*Kind, bool) {
	k, ok := kindsByElement[elem]
	return k, ok
}

// Name returns the element name, e.g. "Message".
func (k *Kind) Name() string { return k.name }

// IsFolder reports whether objects of this kind are folders.
func (k *Kind) IsFolder() bool { return k.folder }

// Schema returns the kind's schema.
func (k *Kind) Schema() *property.Schema { return k.schema() }

// CustomDateTimeScoping reports whether floating date-times of this kind
// are scoped by its own time zone properties.
func (k *Kind) CustomDateTimeScoping() bool { return k.customScoping }

// Names returns the element names used in create and update documents.
func (k *Kind) Names() property.Names {
	if k.folder {
		return property.Names{
			Object:      k.name,
			Change:      "FolderChange",
			SetField:    "SetFolderField",
			DeleteField: "DeleteFolderField",
			ID:          wire.ElemFolderID,
			Container:   "Folder",
		}
	}
	return property.Names{
		Object:      k.name,
		Change:      "ItemChange",
		SetField:    "SetItemField",
		DeleteField: "DeleteItemField",
		ID:          wire.ElemItemID,
		Container:   "Item",
	}
}

func (k *Kind) String() string { return k.name }
