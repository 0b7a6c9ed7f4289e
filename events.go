package ews

import (
	"context"
	"fmt"
	"time"

	"github.com/rbaliyan/event/v3"
)

// Event names for service events.
const (
	EventNameNotification  = "ews.notification"
	EventNameObjectChanged = "ews.object.changed"
)

// NotificationEvent is published for every event returned by GetEvents.
// Item events carry ItemID; folder events carry FolderID. Moved and copied
// events also carry the old ids.
type NotificationEvent struct {
	SubscriptionID    string    `json:"subscription_id"`
	Watermark         string    `json:"watermark"`
	Type              EventType `json:"type"`
	Timestamp         time.Time `json:"timestamp"`
	IsFolder          bool      `json:"is_folder"`
	ItemID            string    `json:"item_id,omitempty"`
	FolderID          string    `json:"folder_id,omitempty"`
	ParentFolderID    string    `json:"parent_folder_id,omitempty"`
	OldItemID         string    `json:"old_item_id,omitempty"`
	OldFolderID       string    `json:"old_folder_id,omitempty"`
	OldParentFolderID string    `json:"old_parent_folder_id,omitempty"`
	UnreadCount       int       `json:"unread_count,omitempty"`
}

// ChangeType says what happened to an object in an ObjectChangedEvent.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ObjectChangedEvent is published after this service created, updated or
// deleted an object.
type ObjectChangedEvent struct {
	ID        string     `json:"id"`
	ChangeKey string     `json:"change_key,omitempty"`
	Kind      string     `json:"kind"`
	Change    ChangeType `json:"change"`
	At        time.Time  `json:"at"`
}

// ServiceEvents provides access to per-service event instances.
// Each service creates its own events bound to its own event bus,
// enabling independent event routing and parallel testing.
//
// Subscribe to events:
//
//	svc.Events().Notification.Subscribe(ctx, handler)
//	svc.Events().ObjectChanged.Subscribe(ctx, handler)
type ServiceEvents struct {
	// Notification is published for each server notification pulled by GetEvents.
	Notification event.Event[NotificationEvent]

	// ObjectChanged is published after a successful create, update or delete.
	ObjectChanged event.Event[ObjectChangedEvent]
}

// newServiceEvents creates per-service event instances with a unique name prefix.
func newServiceEvents(namePrefix string) *ServiceEvents {
	return &ServiceEvents{
		Notification:  event.New[NotificationEvent](namePrefix + "." + EventNameNotification),
		ObjectChanged: event.New[ObjectChangedEvent](namePrefix + "." + EventNameObjectChanged),
	}
}

// registerServiceEvents registers per-service events with the given bus.
func registerServiceEvents(ctx context.Context, bus *event.Bus, events *ServiceEvents) error {
	if err := event.Register(ctx, bus, events.Notification); err != nil {
		return fmt.Errorf("register Notification: %w", err)
	}
	if err := event.Register(ctx, bus, events.ObjectChanged); err != nil {
		return fmt.Errorf("register ObjectChanged: %w", err)
	}
	return nil
}
