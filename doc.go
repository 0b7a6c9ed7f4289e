// Package ews is a client object model for Exchange Web Services.
//
// Items and folders are property bags: every value is read and written
// through a typed property definition, and the bag records which
// properties were loaded, added, modified or deleted so that an update
// sends exactly the changed fields. Requests are written as XML or JSON
// and delivered by a pluggable Transport.
//
// # Basic Usage
//
//	svc, err := ews.NewService(
//	    ews.WithTransport(transport),
//	    ews.WithVersion(wire.Exchange2010SP2),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := svc.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer svc.Close(ctx)
//
//	// Create a message in Drafts
//	msg := svc.NewMessage()
//	msg.SetSubject("Hello")
//	msg.SetBody(ews.NewBody(property.BodyText, "World"))
//	if err := msg.Save(ctx, ews.FolderByName(ews.FolderDrafts), ews.SaveOptions{}); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Change one property; only the subject is sent
//	msg.SetSubject("Hello again")
//	err = msg.Update(ctx, ews.AutoResolve)
//
// # Objects
//
//   - EmailMessage, MeetingRequest, MeetingResponse, MeetingCancellation
//   - PostItem, Appointment, Contact, Task
//   - Folder and its calendar, contacts, tasks and search kinds
//
// Typed getters return property.ErrNotLoaded for a bound object whose
// property was not requested. Bind with a property set to load more:
//
//	ps := property.FirstClass()
//	ps.Add(ews.ItemBody)
//	msg, err := svc.BindMessage(ctx, id, ps)
//
// # Listings and Notifications
//
// FindItems returns one page of a folder; StreamItems pages through it.
// Subscribe creates a pull subscription whose events are returned by
// GetEvents and published on Events().Notification.
//
// # Snapshots
//
// With WithSnapshotStore every bound or saved object is persisted and can
// be rehydrated offline with BindCached. Stores are in store/memory,
// store/mongo, store/postgres and store/redis.
//
// # Events
//
// The service publishes typed events through github.com/rbaliyan/event/v3.
// Pass WithRedisClient or WithEventTransport to route them; the default
// transport discards them.
//
//	svc.Events().ObjectChanged.Subscribe(ctx, handler)
//	svc.Events().Notification.Subscribe(ctx, handler)
package ews
