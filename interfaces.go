package ews

import (
	"context"
	"io"

	"github.com/rbaliyan/ews/property"
)

// ServiceHealth provides health and state information about the service.
type ServiceHealth interface {
	// IsConnected returns true if the service is connected and ready.
	IsConnected() bool
}

// Service is a connection to one mailbox server.
// It owns the transport, the request limits and the event bus, and
// creates and binds the objects that talk through it.
//
// Composed of:
//   - ServiceHealth: Health and state queries (IsConnected)
//   - ObjectFactory: New unsaved objects
//   - Binder: Binding objects by id
//   - ItemFinder: Folder listings
//   - Notifier: Pull subscriptions
//   - Archiver: Snapshots and attachment archive
type Service interface {
	ServiceHealth
	ObjectFactory
	Binder
	ItemFinder
	Notifier
	Archiver

	// Connect connects the snapshot store, the event bus and the plugins.
	Connect(ctx context.Context) error
	// Close waits for in-flight requests and closes all connections.
	Close(ctx context.Context) error
	// Settings returns the connection settings objects of this service use.
	Settings() property.Settings
	// Events returns per-service event instances for subscribing and publishing.
	// Each service has its own events bound to its own event bus, enabling
	// independent event routing and parallel testing.
	Events() *ServiceEvents
}

// ObjectFactory creates new objects. They are saved with Save.
type ObjectFactory interface {
	NewMessage() *EmailMessage
	NewPostItem() *PostItem
	NewAppointment() *Appointment
	NewContact() *Contact
	NewTask() *Task
	// NewFolder returns a new folder of a folder kind.
	NewFolder(kind *Kind) (*Folder, error)
}

// Binder loads existing objects from the server.
//
// A nil property set loads the first-class properties.
type Binder interface {
	// BindItem returns the item in its most specific view, e.g. *EmailMessage.
	BindItem(ctx context.Context, id *ID, ps *property.PropertySet) (Object, error)
	// BindMessage binds a message or meeting message.
	BindMessage(ctx context.Context, id *ID, ps *property.PropertySet) (*EmailMessage, error)
	BindAppointment(ctx context.Context, id *ID, ps *property.PropertySet) (*Appointment, error)
	BindContact(ctx context.Context, id *ID, ps *property.PropertySet) (*Contact, error)
	BindTask(ctx context.Context, id *ID, ps *property.PropertySet) (*Task, error)
	BindFolder(ctx context.Context, folder FolderRef, ps *property.PropertySet) (*Folder, error)
	// BindItems binds many items with bounded concurrency. Failed binds are
	// reported per id in the result.
	BindItems(ctx context.Context, ids []*ID, ps *property.PropertySet) (*BulkResult, error)
	// BindCached rehydrates an object from its snapshot without a request.
	BindCached(ctx context.Context, id string) (Object, error)
}

// ItemFinder lists folder contents.
type ItemFinder interface {
	// FindItems returns one page of a folder. Items carry the summary
	// first-class properties only.
	FindItems(ctx context.Context, folder FolderRef, view ItemView) (*FindItemsResult, error)
	// StreamItems pages through a folder.
	StreamItems(ctx context.Context, folder FolderRef, opts StreamOptions) (ItemIterator, error)
}

// Notifier manages pull subscriptions.
type Notifier interface {
	// Subscribe creates a pull subscription on folders. With no event
	// types every type is subscribed.
	Subscribe(ctx context.Context, folders []FolderRef, types ...EventType) (*Subscription, error)
	// GetEvents pulls the events since the subscription watermark,
	// advances the watermark and publishes each event on
	// Events().Notification.
	GetEvents(ctx context.Context, sub *Subscription) (*GetEventsResult, error)
	Unsubscribe(ctx context.Context, sub *Subscription) error
}

// Archiver persists object snapshots and attachment content.
type Archiver interface {
	// ArchiveAttachment stores the attachment content in the attachment
	// store and returns its URI.
	ArchiveAttachment(ctx context.Context, att *FileAttachment, labels map[string]string) (string, error)
	// OpenArchivedAttachment opens content stored by ArchiveAttachment.
	// The caller closes the reader.
	OpenArchivedAttachment(ctx context.Context, uri string) (io.ReadCloser, error)
	// CleanupSnapshots deletes snapshots older than the retention period.
	// Call this periodically using your application's scheduler.
	CleanupSnapshots(ctx context.Context) (*CleanupSnapshotsResult, error)
}
