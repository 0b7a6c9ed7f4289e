package ews_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rbaliyan/ews"
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/recurrence"
	snapshots "github.com/rbaliyan/ews/store/memory"
)

type auditPlugin struct {
	saved, loaded []string
	reject        bool
}

var errRejected = errors.New("rejected by audit")

func (p *auditPlugin) Name() string                                { return "audit" }
func (p *auditPlugin) Init(context.Context) error                  { return nil }
func (p *auditPlugin) Close(context.Context) error                 { return nil }
func (p *auditPlugin) AfterSave(context.Context, ews.Object) error { return nil }

func (p *auditPlugin) BeforeSave(_ context.Context, obj ews.Object) error {
	if p.reject {
		return errRejected
	}
	p.saved = append(p.saved, obj.Kind().Name())
	return nil
}

func (p *auditPlugin) AfterLoad(_ context.Context, obj ews.Object) error {
	p.loaded = append(p.loaded, obj.Kind().Name())
	return nil
}

func TestPluginHooks(t *testing.T) {
	ctx := context.Background()
	audit := &auditPlugin{}
	svc, srv := connected(t, ews.WithPlugin(audit))

	msg := saveDraft(t, svc, "Audited")
	if _, err := svc.BindMessage(ctx, msg.ID(), nil); err != nil {
		t.Fatalf("BindMessage() error = %v", err)
	}
	if len(audit.saved) != 1 || audit.saved[0] != "Message" {
		t.Errorf("saved = %v, want [Message]", audit.saved)
	}
	if len(audit.loaded) != 1 {
		t.Errorf("loaded = %v, want one load", audit.loaded)
	}

	audit.reject = true
	before := len(srv.Requests())
	_ = msg.SetSubject("Blocked")
	err := msg.Update(ctx, ews.AutoResolve)
	var pe *ews.PluginError
	if !errors.As(err, &pe) || !errors.Is(err, errRejected) {
		t.Fatalf("Update() error = %v, want PluginError wrapping rejection", err)
	}
	if got := len(srv.Requests()); got != before {
		t.Errorf("rejected Update() sent %d requests", got-before)
	}
	if !msg.IsDirty() {
		t.Error("rejected Update() cleared the pending change")
	}
}

func TestLoadAfterFind(t *testing.T) {
	ctx := context.Background()
	svc, _ := connected(t)
	msg := svc.NewMessage()
	_ = msg.SetSubject("Summary")
	_ = msg.SetBody(ews.NewBody(property.BodyHTML, "<p>details</p>"))
	if err := msg.Save(ctx, ews.FolderRef{}, ews.SaveOptions{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	res, err := svc.FindItems(ctx, ews.FolderByName(ews.FolderDrafts), ews.ItemView{PageSize: 10})
	if err != nil {
		t.Fatalf("FindItems() error = %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("FindItems() = %d items, want 1", len(res.Items))
	}
	found, ok := res.Items[0].(*ews.EmailMessage)
	if !ok {
		t.Fatalf("item = %T, want *ews.EmailMessage", res.Items[0])
	}
	if _, err := found.Body(); !errors.Is(err, property.ErrNotLoaded) {
		t.Fatalf("Body() from a listing error = %v, want ErrNotLoaded", err)
	}

	if err := found.Load(ctx, nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	body, err := found.Body()
	if err != nil {
		t.Fatalf("Body() after Load error = %v", err)
	}
	if body.Type() != property.BodyHTML || body.Text() != "<p>details</p>" {
		t.Errorf("Body() = %s %q", body.Type(), body.Text())
	}
}

func TestRecurringAppointment(t *testing.T) {
	ctx := context.Background()
	for _, format := range formats {
		t.Run(format.String(), func(t *testing.T) {
			svc, _ := connected(t, ews.WithFormat(format))
			start := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)

			appt := svc.NewAppointment()
			_ = appt.SetSubject("Standup")
			_ = appt.SetStart(start)
			_ = appt.SetEnd(start.Add(15 * time.Minute))
			_ = appt.SetRecurrence(recurrence.New(
				&recurrence.Weekly{Interval: 1, DaysOfWeek: []recurrence.DayOfWeek{recurrence.Monday, recurrence.Wednesday}},
				&recurrence.NumberedRange{StartDate: start, Occurrences: 10},
			))
			if err := appt.Save(ctx, ews.FolderByName(ews.FolderCalendar), ews.SaveOptions{SendInvitations: ews.SendToNone}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			bound, err := svc.BindAppointment(ctx, appt.ID(), nil)
			if err != nil {
				t.Fatalf("BindAppointment() error = %v", err)
			}
			rec, err := bound.Recurrence()
			if err != nil {
				t.Fatalf("Recurrence() error = %v", err)
			}
			weekly, ok := rec.Pattern().(*recurrence.Weekly)
			if !ok || len(weekly.DaysOfWeek) != 2 {
				t.Fatalf("Pattern() = %#v, want weekly on two days", rec.Pattern())
			}
			numbered, ok := rec.Range().(*recurrence.NumberedRange)
			if !ok || numbered.Occurrences != 10 {
				t.Errorf("Range() = %#v, want 10 occurrences", rec.Range())
			}
			if got, _ := bound.Start(); !got.Equal(start) {
				t.Errorf("Start() = %v, want %v", got, start)
			}
		})
	}
}

func TestArchiveAttachment(t *testing.T) {
	ctx := context.Background()
	svc, _ := connected(t, ews.WithAttachmentStore(snapshots.NewBlobStore()))

	att := ews.NewFileAttachment("agenda.txt", "text/plain", []byte("1. budget"))
	uri, err := svc.ArchiveAttachment(ctx, att, map[string]string{"mailbox": "ops"})
	if err != nil {
		t.Fatalf("ArchiveAttachment() error = %v", err)
	}
	rc, err := svc.OpenArchivedAttachment(ctx, uri)
	if err != nil {
		t.Fatalf("OpenArchivedAttachment() error = %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil || string(got) != "1. budget" {
		t.Errorf("archived content = %q, %v", got, err)
	}

	if _, err := svc.ArchiveAttachment(ctx, ews.NewFileAttachment("empty.txt", "text/plain", nil), nil); !errors.Is(err, ews.ErrInvalidAttachment) {
		t.Errorf("ArchiveAttachment(empty) error = %v, want ErrInvalidAttachment", err)
	}
	blocked := ews.NewFileAttachment("run.exe", "application/x-msdownload", []byte("MZ"))
	if _, err := svc.ArchiveAttachment(ctx, blocked, nil); err == nil {
		t.Error("ArchiveAttachment(executable) error = nil")
	}

	plain, _ := connected(t)
	if _, err := plain.ArchiveAttachment(ctx, att, nil); !errors.Is(err, ews.ErrAttachmentStoreNotConfigured) {
		t.Errorf("ArchiveAttachment() without store error = %v, want ErrAttachmentStoreNotConfigured", err)
	}
}

func TestCleanupSnapshots(t *testing.T) {
	ctx := context.Background()
	snaps := snapshots.New()
	svc, _ := connected(t, ews.WithSnapshotStore(snaps), ews.WithSnapshotRetention(time.Hour))
	msg := saveDraft(t, svc, "Fresh")

	res, err := svc.CleanupSnapshots(ctx)
	if err != nil {
		t.Fatalf("CleanupSnapshots() error = %v", err)
	}
	if res.DeletedCount != 0 {
		t.Errorf("DeletedCount = %d, want 0 for a fresh snapshot", res.DeletedCount)
	}
	if _, err := svc.BindCached(ctx, msg.ID().UniqueID()); err != nil {
		t.Errorf("BindCached() after cleanup error = %v", err)
	}
	if time.Since(res.Cutoff) < time.Hour {
		t.Errorf("Cutoff = %v, want at least an hour ago", res.Cutoff)
	}
}
