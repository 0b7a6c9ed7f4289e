package ews_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rbaliyan/event/v3/transport/channel"
	"github.com/rbaliyan/ews"
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/retry"
	"github.com/rbaliyan/ews/store"
	snapshots "github.com/rbaliyan/ews/store/memory"
	"github.com/rbaliyan/ews/transport/memory"
	"github.com/rbaliyan/ews/wire"
)

// connected returns a connected service talking to a fresh in-memory
// server.
func connected(t *testing.T, opts ...ews.Option) (ews.Service, *memory.Server) {
	t.Helper()
	srv := memory.New()
	svc, err := ews.NewService(append([]ews.Option{ews.WithTransport(srv), ews.WithoutRetry()}, opts...)...)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	ctx := context.Background()
	if err := svc.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { svc.Close(ctx) })
	return svc, srv
}

func saveDraft(t *testing.T, svc ews.Service, subject string) *ews.EmailMessage {
	t.Helper()
	msg := svc.NewMessage()
	if err := msg.SetSubject(subject); err != nil {
		t.Fatalf("SetSubject() error = %v", err)
	}
	if err := msg.Save(context.Background(), ews.FolderRef{}, ews.SaveOptions{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return msg
}

var formats = []wire.Format{wire.FormatXML, wire.FormatJSON}

func TestMessageLifecycle(t *testing.T) {
	ctx := context.Background()
	for _, format := range formats {
		t.Run(format.String(), func(t *testing.T) {
			svc, srv := connected(t, ews.WithFormat(format))

			msg := svc.NewMessage()
			_ = msg.SetSubject("Status")
			_ = msg.SetBody(ews.NewBody(property.BodyText, "All green."))
			_ = msg.SetIsRead(false)
			_ = msg.SetImportance(ews.ImportanceHigh)
			if err := msg.Save(ctx, ews.FolderByName(ews.FolderDrafts), ews.SaveOptions{}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if msg.IsNew() || msg.IsDirty() {
				t.Fatalf("after Save IsNew = %v IsDirty = %v", msg.IsNew(), msg.IsDirty())
			}
			if got := srv.Count(ews.FolderDrafts); got != 1 {
				t.Errorf("drafts = %d, want 1", got)
			}

			bound, err := svc.BindMessage(ctx, msg.ID(), nil)
			if err != nil {
				t.Fatalf("BindMessage() error = %v", err)
			}
			if s, _ := bound.Subject(); s != "Status" {
				t.Errorf("Subject() = %q, want Status", s)
			}
			if b, _ := bound.Body(); b == nil || b.Text() != "All green." {
				t.Errorf("Body() = %v, want All green.", b)
			}
			if v, _ := bound.Importance(); v != ews.ImportanceHigh {
				t.Errorf("Importance() = %v, want High", v)
			}
			if draft, _ := bound.IsDraft(); !draft {
				t.Error("IsDraft() = false, want true")
			}
			if class, _ := bound.ItemClass(); class != "IPM.Note" {
				t.Errorf("ItemClass() = %q, want IPM.Note", class)
			}

			oldKey := bound.ID().ChangeKey()
			_ = bound.SetSubject("Status (updated)")
			if err := bound.Update(ctx, ews.AutoResolve); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if bound.ID().ChangeKey() == oldKey {
				t.Error("change key not refreshed after Update")
			}
			if s, _ := bound.Subject(); s != "Status (updated)" {
				t.Errorf("Subject() after Update = %q", s)
			}

			if err := bound.Delete(ctx, ews.HardDelete); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := svc.BindMessage(ctx, msg.ID(), nil); !errors.Is(err, ews.ErrNotFound) {
				t.Errorf("BindMessage() after delete error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestUpdateSendsOnlyChanges(t *testing.T) {
	ctx := context.Background()
	svc, srv := connected(t)
	msg := saveDraft(t, svc, "Original")

	bound, err := svc.BindMessage(ctx, msg.ID(), nil)
	if err != nil {
		t.Fatalf("BindMessage() error = %v", err)
	}
	_ = bound.SetSubject("Changed")
	if err := bound.Update(ctx, ews.AutoResolve); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	last, _ := srv.LastRequest()
	body := string(last.Body)
	if last.Operation != ews.OpUpdateItem {
		t.Fatalf("last operation = %s, want UpdateItem", last.Operation)
	}
	if n := strings.Count(body, "<t:SetItemField>"); n != 1 {
		t.Errorf("update has %d SetItemField elements, want 1: %s", n, body)
	}
	if !strings.Contains(body, `FieldURI="item:Subject"`) {
		t.Errorf("update does not set the subject: %s", body)
	}

	before := len(srv.Requests())
	if err := bound.Update(ctx, ews.AutoResolve); err != nil {
		t.Fatalf("Update() without changes error = %v", err)
	}
	if got := len(srv.Requests()); got != before {
		t.Errorf("Update() without changes sent %d requests", got-before)
	}
}

func TestUpdateConflict(t *testing.T) {
	ctx := context.Background()
	svc, _ := connected(t)
	msg := saveDraft(t, svc, "Shared")

	first, err := svc.BindMessage(ctx, msg.ID(), nil)
	if err != nil {
		t.Fatalf("BindMessage() error = %v", err)
	}
	second, err := svc.BindMessage(ctx, msg.ID(), nil)
	if err != nil {
		t.Fatalf("BindMessage() error = %v", err)
	}
	_ = first.SetSubject("First")
	if err := first.Update(ctx, ews.NeverOverwrite); err != nil {
		t.Fatalf("first Update() error = %v", err)
	}
	_ = second.SetSubject("Second")
	if err := second.Update(ctx, ews.NeverOverwrite); !errors.Is(err, ews.ErrConflict) {
		t.Errorf("stale Update() error = %v, want ErrConflict", err)
	}
}

func TestMoveToDeletedItems(t *testing.T) {
	ctx := context.Background()
	svc, srv := connected(t)
	msg := saveDraft(t, svc, "Old news")
	if err := msg.Delete(ctx, ews.MoveToDeletedItems); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := srv.Count(ews.FolderDeletedItems); got != 1 {
		t.Errorf("deleted items = %d, want 1", got)
	}
	if got := srv.Count(ews.FolderDrafts); got != 0 {
		t.Errorf("drafts = %d, want 0", got)
	}
}

func TestBindFolder(t *testing.T) {
	ctx := context.Background()
	for _, format := range formats {
		t.Run(format.String(), func(t *testing.T) {
			svc, _ := connected(t, ews.WithFormat(format))
			saveDraft(t, svc, "one")
			saveDraft(t, svc, "two")

			drafts, err := svc.BindFolder(ctx, ews.FolderByName(ews.FolderDrafts), nil)
			if err != nil {
				t.Fatalf("BindFolder() error = %v", err)
			}
			if name, _ := drafts.DisplayName(); name != "Drafts" {
				t.Errorf("DisplayName() = %q, want Drafts", name)
			}
			if n, _ := drafts.TotalCount(); n != 2 {
				t.Errorf("TotalCount() = %d, want 2", n)
			}

			folder, err := svc.NewFolder(ews.KindFolder)
			if err != nil {
				t.Fatalf("NewFolder() error = %v", err)
			}
			_ = folder.SetDisplayName("Projects")
			if err := folder.Save(ctx, ews.FolderByName(ews.FolderInbox)); err != nil {
				t.Fatalf("Folder.Save() error = %v", err)
			}
			again, err := svc.BindFolder(ctx, folder.Ref(), nil)
			if err != nil {
				t.Fatalf("BindFolder() by id error = %v", err)
			}
			if name, _ := again.DisplayName(); name != "Projects" {
				t.Errorf("DisplayName() = %q, want Projects", name)
			}
		})
	}
}

func TestFolderCountsFollowContents(t *testing.T) {
	ctx := context.Background()
	for _, format := range formats {
		t.Run(format.String(), func(t *testing.T) {
			svc, _ := connected(t, ews.WithFormat(format))
			drafts := ews.FolderByName(ews.FolderDrafts)
			counts := func() (int, int) {
				t.Helper()
				f, err := svc.BindFolder(ctx, drafts, nil)
				if err != nil {
					t.Fatalf("BindFolder() error = %v", err)
				}
				total, err := f.TotalCount()
				if err != nil {
					t.Fatalf("TotalCount() error = %v", err)
				}
				children, err := f.ChildFolderCount()
				if err != nil {
					t.Fatalf("ChildFolderCount() error = %v", err)
				}
				return total, children
			}

			saveDraft(t, svc, "one")
			if total, children := counts(); total != 1 || children != 0 {
				t.Errorf("first bind counts = %d, %d, want 1, 0", total, children)
			}

			saveDraft(t, svc, "two")
			sub, err := svc.NewFolder(ews.KindFolder)
			if err != nil {
				t.Fatalf("NewFolder() error = %v", err)
			}
			_ = sub.SetDisplayName("Pending")
			if err := sub.Save(ctx, drafts); err != nil {
				t.Fatalf("Folder.Save() error = %v", err)
			}
			if total, children := counts(); total != 2 || children != 1 {
				t.Errorf("second bind counts = %d, %d, want 2, 1", total, children)
			}
		})
	}
}

func TestBindKindMismatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := connected(t)
	msg := saveDraft(t, svc, "Not a contact")
	if _, err := svc.BindContact(ctx, msg.ID(), nil); !errors.Is(err, ews.ErrKindMismatch) {
		t.Errorf("BindContact() error = %v, want ErrKindMismatch", err)
	}
	obj, err := svc.BindItem(ctx, msg.ID(), nil)
	if err != nil {
		t.Fatalf("BindItem() error = %v", err)
	}
	if _, ok := obj.(*ews.EmailMessage); !ok {
		t.Errorf("BindItem() = %T, want *ews.EmailMessage", obj)
	}
}

func TestSendDispositions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		disposition ews.MessageDisposition
		sent        int
	}{
		{ews.SendOnly, 0},
		{ews.SendAndSaveCopy, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.disposition), func(t *testing.T) {
			svc, srv := connected(t)
			msg := svc.NewMessage()
			_ = msg.SetSubject("Outbound")
			if err := msg.Save(ctx, ews.FolderRef{}, ews.SaveOptions{MessageDisposition: tt.disposition}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if got := srv.Count(ews.FolderSentItems); got != tt.sent {
				t.Errorf("sent items = %d, want %d", got, tt.sent)
			}
			if msg.IsDirty() {
				t.Error("IsDirty() = true after send")
			}
		})
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("transient failures are retried", func(t *testing.T) {
		svc, srv := connected(t, ews.WithRetry(retry.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}))
		srv.FailNext(2, ews.ErrServerBusy)
		if _, err := svc.BindFolder(ctx, ews.FolderByName(ews.FolderInbox), nil); err != nil {
			t.Fatalf("BindFolder() error = %v", err)
		}
		if got := len(srv.Requests()); got != 3 {
			t.Errorf("requests = %d, want 3", got)
		}
	})

	for _, format := range []wire.Format{wire.FormatXML, wire.FormatJSON} {
		t.Run("throttled response waits for the hint/"+format.String(), func(t *testing.T) {
			var waits []time.Duration
			cfg := retry.Config{
				MaxRetries:     2,
				InitialBackoff: time.Millisecond,
				OnRetry:        func(_ int, _ error, d time.Duration) { waits = append(waits, d) },
			}
			svc, srv := connected(t, ews.WithRetry(cfg), ews.WithFormat(format))
			srv.Throttle(1, 20*time.Millisecond)
			if _, err := svc.BindFolder(ctx, ews.FolderByName(ews.FolderInbox), nil); err != nil {
				t.Fatalf("BindFolder() error = %v", err)
			}
			if len(waits) != 1 || waits[0] != 20*time.Millisecond {
				t.Errorf("waits = %v, want [20ms]", waits)
			}
		})
	}

	t.Run("throttling outlasting retries", func(t *testing.T) {
		svc, srv := connected(t, ews.WithRetry(retry.Config{MaxRetries: 1, InitialBackoff: time.Millisecond}))
		srv.Throttle(2, time.Millisecond)
		_, err := svc.BindFolder(ctx, ews.FolderByName(ews.FolderInbox), nil)
		if !errors.Is(err, ews.ErrServerBusy) {
			t.Fatalf("BindFolder() error = %v, want ErrServerBusy", err)
		}
		se, ok := ews.IsServiceError(err)
		if !ok || se.RetryAfter() != time.Millisecond {
			t.Errorf("IsServiceError() = %v, %v, want back-off 1ms", se, ok)
		}
	})

	t.Run("server verdicts are not retried", func(t *testing.T) {
		svc, srv := connected(t, ews.WithRetry(retry.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}))
		_, err := svc.BindMessage(ctx, ews.NewItemID("missing", ""), nil)
		if !errors.Is(err, ews.ErrNotFound) {
			t.Fatalf("BindMessage() error = %v, want ErrNotFound", err)
		}
		if got := len(srv.Requests()); got != 1 {
			t.Errorf("requests = %d, want 1", got)
		}
	})

	t.Run("without retry", func(t *testing.T) {
		svc, srv := connected(t)
		srv.FailNext(1, ews.ErrServerBusy)
		if _, err := svc.BindFolder(ctx, ews.FolderByName(ews.FolderInbox), nil); !errors.Is(err, ews.ErrServerBusy) {
			t.Errorf("BindFolder() error = %v, want ErrServerBusy", err)
		}
	})
}

func TestAppointmentStartTimeZoneOnExchange2007SP1(t *testing.T) {
	ctx := context.Background()
	svc, srv := connected(t, ews.WithVersion(wire.Exchange2007SP1))
	start := time.Date(2024, 5, 6, 15, 0, 0, 0, time.UTC)

	appt := svc.NewAppointment()
	_ = appt.SetSubject("Planning")
	_ = appt.SetStart(start)
	_ = appt.SetEnd(start.Add(time.Hour))
	err := appt.Save(ctx, ews.FolderRef{}, ews.SaveOptions{})
	if !errors.Is(err, ews.ErrStartTimeZoneRequired) {
		t.Fatalf("Save() without zone error = %v, want ErrStartTimeZoneRequired", err)
	}
	if got := len(srv.Requests()); got != 0 {
		t.Fatalf("invalid Save() sent %d requests", got)
	}

	if err := appt.SetStartTimeZone(time.UTC); err != nil {
		t.Fatalf("SetStartTimeZone() error = %v", err)
	}
	if err := appt.Save(ctx, ews.FolderRef{}, ews.SaveOptions{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	last, _ := srv.LastRequest()
	body := string(last.Body)
	if !strings.Contains(body, "MeetingTimeZone") {
		t.Errorf("create does not carry MeetingTimeZone: %s", body)
	}
	for _, elem := range []string{"StartTimeZone", "EndTimeZone"} {
		if strings.Contains(body, elem) {
			t.Errorf("create carries %s: %s", elem, body)
		}
	}
	if got := srv.Count(ews.FolderCalendar); got != 1 {
		t.Errorf("calendar items = %d, want 1", got)
	}

	bound, err := svc.BindAppointment(ctx, appt.ID(), nil)
	if err != nil {
		t.Fatalf("BindAppointment() error = %v", err)
	}
	loc, err := bound.StartTimeZone()
	if err != nil || loc == nil || loc.String() != "UTC" {
		t.Fatalf("StartTimeZone() = %v, %v, want UTC from MeetingTimeZone", loc, err)
	}
	_ = bound.SetStart(start.Add(2 * time.Hour))
	_ = bound.SetEnd(start.Add(3 * time.Hour))
	if err := bound.Update(ctx, ews.AutoResolve); err != nil {
		t.Fatalf("Update() rescheduling error = %v", err)
	}
	last, _ = srv.LastRequest()
	if !strings.Contains(string(last.Body), "calendar:MeetingTimeZone") {
		t.Errorf("reschedule does not carry the meeting time zone: %s", last.Body)
	}
}

func TestFindItems(t *testing.T) {
	ctx := context.Background()
	for _, format := range formats {
		t.Run(format.String(), func(t *testing.T) {
			svc, _ := connected(t, ews.WithFormat(format))
			for i := range 5 {
				saveDraft(t, svc, fmt.Sprintf("message %d", i))
			}

			page, err := svc.FindItems(ctx, ews.FolderByName(ews.FolderDrafts), ews.ItemView{PageSize: 2})
			if err != nil {
				t.Fatalf("FindItems() error = %v", err)
			}
			if len(page.Items) != 2 || page.TotalCount != 5 || !page.MoreAvailable || page.NextOffset != 2 {
				t.Errorf("page = %d items total %d more %v next %d, want 2 5 true 2",
					len(page.Items), page.TotalCount, page.MoreAvailable, page.NextOffset)
			}
			if msg, ok := page.Items[0].(*ews.EmailMessage); !ok {
				t.Errorf("item = %T, want *ews.EmailMessage", page.Items[0])
			} else if s, _ := msg.Subject(); s != "message 0" {
				t.Errorf("first subject = %q, want message 0", s)
			}

			last, err := svc.FindItems(ctx, ews.FolderByName(ews.FolderDrafts), ews.ItemView{PageSize: 2, Offset: 4})
			if err != nil {
				t.Fatalf("FindItems() last page error = %v", err)
			}
			if len(last.Items) != 1 || last.MoreAvailable {
				t.Errorf("last page = %d items more %v, want 1 false", len(last.Items), last.MoreAvailable)
			}
		})
	}

	t.Run("body cannot be listed", func(t *testing.T) {
		svc, _ := connected(t)
		saveDraft(t, svc, "with body")
		view := ews.ItemView{Properties: property.NewPropertySet(property.IDOnly, ews.ItemBody)}
		if _, err := svc.FindItems(ctx, ews.FolderByName(ews.FolderDrafts), view); !errors.Is(err, ews.ErrInvalidObject) {
			t.Errorf("FindItems() error = %v, want ErrInvalidObject", err)
		}
	})
}

func TestStreamItems(t *testing.T) {
	ctx := context.Background()
	svc, srv := connected(t)
	for i := range 5 {
		saveDraft(t, svc, fmt.Sprintf("message %d", i))
	}
	before := len(srv.Requests())

	it, err := svc.StreamItems(ctx, ews.FolderByName(ews.FolderDrafts), ews.StreamOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("StreamItems() error = %v", err)
	}
	var subjects []string
	for {
		ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !ok {
			break
		}
		obj, err := it.Item()
		if err != nil {
			t.Fatalf("Item() error = %v", err)
		}
		s, _ := obj.(*ews.EmailMessage).Subject()
		subjects = append(subjects, s)
	}
	if len(subjects) != 5 || subjects[4] != "message 4" {
		t.Errorf("streamed %v, want 5 messages in order", subjects)
	}
	if got := len(srv.Requests()) - before; got != 3 {
		t.Errorf("pages fetched = %d, want 3", got)
	}
}

func TestBindItems(t *testing.T) {
	ctx := context.Background()
	svc, _ := connected(t)
	a := saveDraft(t, svc, "a")
	b := saveDraft(t, svc, "b")

	res, err := svc.BindItems(ctx, []*ews.ID{a.ID(), b.ID(), ews.NewItemID("missing", "")}, nil)
	if err != nil {
		t.Fatalf("BindItems() error = %v", err)
	}
	if res.SuccessCount() != 2 || res.FailureCount() != 1 {
		t.Errorf("BindItems() = %d ok %d failed, want 2 and 1", res.SuccessCount(), res.FailureCount())
	}
	if !errors.Is(res.Results[2].Error, ews.ErrNotFound) {
		t.Errorf("missing id error = %v, want ErrNotFound", res.Results[2].Error)
	}
	if ids := res.FailedIDs(); len(ids) != 1 || ids[0] != "missing" {
		t.Errorf("FailedIDs() = %v, want [missing]", ids)
	}
}

func TestBindCached(t *testing.T) {
	ctx := context.Background()
	svc, srv := connected(t, ews.WithSnapshotStore(snapshots.New()))
	msg := saveDraft(t, svc, "Cached")
	if _, err := svc.BindMessage(ctx, msg.ID(), nil); err != nil {
		t.Fatalf("BindMessage() error = %v", err)
	}

	before := len(srv.Requests())
	obj, err := svc.BindCached(ctx, msg.ID().UniqueID())
	if err != nil {
		t.Fatalf("BindCached() error = %v", err)
	}
	if got := len(srv.Requests()); got != before {
		t.Errorf("BindCached() sent %d requests", got-before)
	}
	cached, ok := obj.(*ews.EmailMessage)
	if !ok {
		t.Fatalf("BindCached() = %T, want *ews.EmailMessage", obj)
	}
	if s, _ := cached.Subject(); s != "Cached" {
		t.Errorf("Subject() = %q, want Cached", s)
	}
	if cached.IsNew() || cached.IsDirty() {
		t.Errorf("cached IsNew = %v IsDirty = %v, want false false", cached.IsNew(), cached.IsDirty())
	}

	if err := msg.Delete(ctx, ews.HardDelete); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.BindCached(ctx, msg.ID().UniqueID()); !errors.Is(err, ews.ErrNotFound) {
		t.Errorf("BindCached() after delete error = %v, want ErrNotFound", err)
	}
}

func TestBindCachedNarrowSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _ := connected(t, ews.WithSnapshotStore(snapshots.New()))
	msg := saveDraft(t, svc, "Cached")
	if _, err := svc.BindMessage(ctx, msg.ID(), property.IDOnlySet()); err != nil {
		t.Fatalf("BindMessage() error = %v", err)
	}

	obj, err := svc.BindCached(ctx, msg.ID().UniqueID())
	if err != nil {
		t.Fatalf("BindCached() error = %v", err)
	}
	cached := obj.(*ews.EmailMessage)
	if cached.ID() == nil || cached.ID().UniqueID() != msg.ID().UniqueID() {
		t.Errorf("ID() = %v, want %v", cached.ID(), msg.ID())
	}
	if s, err := cached.Subject(); !errors.Is(err, property.ErrNotLoaded) {
		t.Errorf("Subject() = %q, %v, want ErrNotLoaded", s, err)
	}
	if _, err := cached.Body(); !errors.Is(err, property.ErrNotLoaded) {
		t.Errorf("Body() error = %v, want ErrNotLoaded", err)
	}
}

func TestBindCachedCorrupt(t *testing.T) {
	ctx := context.Background()
	snaps := snapshots.New()
	svc, _ := connected(t, ews.WithSnapshotStore(snaps))
	msg := saveDraft(t, svc, "Tampered")
	if _, err := svc.BindMessage(ctx, msg.ID(), nil); err != nil {
		t.Fatalf("BindMessage() error = %v", err)
	}

	key := msg.ID().UniqueID()
	snap, err := snaps.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	snap.Data = append(snap.Data, ' ')
	if err := snaps.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := svc.BindCached(ctx, key); !store.IsCorrupt(err) {
		t.Fatalf("BindCached() error = %v, want checksum mismatch", err)
	}
	if _, err := snaps.Get(ctx, key); !store.IsNotFound(err) {
		t.Errorf("corrupt snapshot kept: Get() error = %v", err)
	}
}

func TestBindCachedWithoutStore(t *testing.T) {
	svc, _ := connected(t)
	if _, err := svc.BindCached(context.Background(), "id"); !errors.Is(err, ews.ErrSnapshotStoreNotConfigured) {
		t.Errorf("BindCached() error = %v, want ErrSnapshotStoreNotConfigured", err)
	}
}

func TestPullNotifications(t *testing.T) {
	ctx := context.Background()
	for _, format := range formats {
		t.Run(format.String(), func(t *testing.T) {
			svc, _ := connected(t, ews.WithFormat(format), ews.WithEventTransport(channel.New()))
			sub, err := svc.Subscribe(ctx, []ews.FolderRef{ews.FolderByName(ews.FolderDrafts)}, ews.EventCreated, ews.EventModified)
			if err != nil {
				t.Fatalf("Subscribe() error = %v", err)
			}
			start := sub.Watermark

			msg := saveDraft(t, svc, "Watched")
			res, err := svc.GetEvents(ctx, sub)
			if err != nil {
				t.Fatalf("GetEvents() error = %v", err)
			}
			if len(res.Events) != 1 {
				t.Fatalf("GetEvents() = %d events, want 1", len(res.Events))
			}
			evt := res.Events[0]
			if evt.Type != ews.EventCreated || evt.ItemID != msg.ID().UniqueID() {
				t.Errorf("event = %s %s, want CreatedEvent %s", evt.Type, evt.ItemID, msg.ID())
			}
			if evt.ParentFolderID == "" {
				t.Error("event has no parent folder id")
			}
			if sub.Watermark == start {
				t.Error("watermark did not advance")
			}

			_ = msg.SetSubject("Watched (edited)")
			if err := msg.Update(ctx, ews.AutoResolve); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			res, err = svc.GetEvents(ctx, sub)
			if err != nil {
				t.Fatalf("GetEvents() error = %v", err)
			}
			if len(res.Events) != 1 || res.Events[0].Type != ews.EventModified {
				t.Errorf("GetEvents() = %v, want one ModifiedEvent", res.Events)
			}

			res, err = svc.GetEvents(ctx, sub)
			if err != nil {
				t.Fatalf("GetEvents() error = %v", err)
			}
			if len(res.Events) != 0 || res.MoreEvents {
				t.Errorf("idle GetEvents() = %d events more %v", len(res.Events), res.MoreEvents)
			}

			if err := svc.Unsubscribe(ctx, sub); err != nil {
				t.Fatalf("Unsubscribe() error = %v", err)
			}
			if _, err := svc.GetEvents(ctx, sub); !errors.Is(err, ews.ErrSubscriptionNotFound) {
				t.Errorf("GetEvents() after Unsubscribe error = %v, want ErrSubscriptionNotFound", err)
			}
		})
	}
}

func TestNotConnected(t *testing.T) {
	svc, err := ews.NewService(ews.WithTransport(memory.New()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	_, err = svc.BindFolder(context.Background(), ews.FolderByName(ews.FolderInbox), nil)
	if !errors.Is(err, ews.ErrNotConnected) {
		t.Errorf("BindFolder() error = %v, want ErrNotConnected", err)
	}
}
