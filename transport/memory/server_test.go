package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rbaliyan/ews"
	"github.com/rbaliyan/ews/wire"
)

const ns = `xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages" xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"`

var fixed = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestServer(opts ...Option) *Server {
	return New(append([]Option{WithClock(func() time.Time { return fixed })}, opts...)...)
}

func roundTrip(t *testing.T, s *Server, op string, format wire.Format, body string) string {
	t.Helper()
	resp, err := s.RoundTrip(context.Background(), &ews.Request{
		Operation: op,
		Version:   wire.Exchange2013,
		Format:    format,
		Body:      []byte(body),
	})
	if err != nil {
		t.Fatalf("RoundTrip(%s) error = %v", op, err)
	}
	return string(resp.Body)
}

func mustContain(t *testing.T, doc string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(doc, p) {
			t.Errorf("response does not contain %q:\n%s", p, doc)
		}
	}
}

// createDraft stores a message in drafts and returns its id.
func createDraft(t *testing.T, s *Server, subject string) *object {
	t.Helper()
	before := len(s.order)
	roundTrip(t, s, ews.OpCreateItem, wire.FormatXML,
		`<m:CreateItem `+ns+` MessageDisposition="SaveOnly"><m:Items><t:Message><t:Subject>`+subject+`</t:Subject><t:IsRead>false</t:IsRead></t:Message></m:Items></m:CreateItem>`)
	if len(s.order) != before+1 {
		t.Fatalf("CreateItem stored %d objects, want 1", len(s.order)-before)
	}
	return s.objects[s.order[len(s.order)-1]]
}

func TestNewServerFolders(t *testing.T) {
	s := newTestServer()
	for _, name := range []ews.WellKnownFolder{
		ews.FolderRoot, ews.FolderMsgFolderRoot, ews.FolderInbox, ews.FolderDrafts,
		ews.FolderSentItems, ews.FolderDeletedItems, ews.FolderCalendar,
		ews.FolderContacts, ews.FolderTasks, ews.FolderNotes,
	} {
		if s.FolderID(name) == "" {
			t.Errorf("FolderID(%s) is empty", name)
		}
	}
	if k := s.objects[s.FolderID(ews.FolderCalendar)].kind; k != ews.KindCalendarFolder {
		t.Errorf("calendar kind = %v, want CalendarFolder", k)
	}
}

func TestGetFolder(t *testing.T) {
	tests := []struct {
		name   string
		format wire.Format
		body   string
		want   []string
	}{
		{
			name:   "xml distinguished",
			format: wire.FormatXML,
			body:   `<m:GetFolder ` + ns + `><m:FolderShape><t:BaseShape>AllProperties</t:BaseShape></m:FolderShape><m:FolderIds><t:DistinguishedFolderId Id="inbox"/></m:FolderIds></m:GetFolder>`,
			want:   []string{`ResponseClass="Success"`, `<t:Folder>`, `<t:DisplayName>Inbox</t:DisplayName>`, `<t:TotalCount>0</t:TotalCount>`},
		},
		{
			name:   "json distinguished",
			format: wire.FormatJSON,
			body:   `{"__type":"GetFolderRequest:#Exchange","FolderShape":{"BaseShape":"IdOnly"},"FolderIds":[{"__type":"DistinguishedFolderId:#Exchange","Id":"drafts"}]}`,
			want:   []string{`"ResponseClass":"Success"`, `"FolderId"`},
		},
		{
			name:   "unknown folder",
			format: wire.FormatXML,
			body:   `<m:GetFolder ` + ns + `><m:FolderShape><t:BaseShape>IdOnly</t:BaseShape></m:FolderShape><m:FolderIds><t:FolderId Id="missing"/></m:FolderIds></m:GetFolder>`,
			want:   []string{`ResponseClass="Error"`, `ErrorFolderNotFound`},
		},
		{
			name:   "empty id",
			format: wire.FormatXML,
			body:   `<m:GetFolder ` + ns + `><m:FolderShape><t:BaseShape>IdOnly</t:BaseShape></m:FolderShape><m:FolderIds><t:FolderId Id=""/></m:FolderIds></m:GetFolder>`,
			want:   []string{`ErrorInvalidIdEmpty`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			mustContain(t, roundTrip(t, s, ews.OpGetFolder, tt.format, tt.body), tt.want...)
		})
	}
}

func TestCreateItemDisposition(t *testing.T) {
	tests := []struct {
		disposition string
		folder      ews.WellKnownFolder
		stored      int
		draft       bool
		returnsID   bool
	}{
		{"SaveOnly", ews.FolderDrafts, 1, true, true},
		{"SendAndSaveCopy", ews.FolderSentItems, 1, false, false},
		{"SendOnly", ews.FolderDrafts, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.disposition, func(t *testing.T) {
			s := newTestServer()
			doc := roundTrip(t, s, ews.OpCreateItem, wire.FormatXML,
				`<m:CreateItem `+ns+` MessageDisposition="`+tt.disposition+`"><m:Items><t:Message><t:Subject>Hi</t:Subject></t:Message></m:Items></m:CreateItem>`)
			mustContain(t, doc, `ResponseClass="Success"`)
			if got := s.Count(tt.folder); got != tt.stored {
				t.Errorf("Count(%s) = %d, want %d", tt.folder, got, tt.stored)
			}
			if got := strings.Contains(doc, "<t:ItemId"); got != tt.returnsID {
				t.Errorf("response has ItemId = %v, want %v", got, tt.returnsID)
			}
			if tt.stored == 0 {
				return
			}
			o := s.objects[s.order[len(s.order)-1]]
			if isDraft(o) != tt.draft {
				t.Errorf("IsDraft = %v, want %v", isDraft(o), tt.draft)
			}
			if v, _ := o.bag.TryGet(ews.ItemClass); v != "IPM.Note" {
				t.Errorf("ItemClass = %v, want IPM.Note", v)
			}
		})
	}
}

func TestGetItemReturnsStoredValues(t *testing.T) {
	s := newTestServer()
	o := createDraft(t, s, "Quarterly report")

	doc := roundTrip(t, s, ews.OpGetItem, wire.FormatXML,
		`<m:GetItem `+ns+`><m:ItemShape><t:BaseShape>AllProperties</t:BaseShape></m:ItemShape><m:ItemIds><t:ItemId Id="`+o.id+`"/></m:ItemIds></m:GetItem>`)
	mustContain(t, doc,
		`<t:Subject>Quarterly report</t:Subject>`,
		`ChangeKey="`+o.changeKey+`"`,
		`<t:DateTimeCreated>`+wire.FormatDateTime(fixed)+`</t:DateTimeCreated>`,
		`<t:IsDraft>true</t:IsDraft>`,
	)

	idOnly := roundTrip(t, s, ews.OpGetItem, wire.FormatJSON,
		`{"__type":"GetItemRequest:#Exchange","ItemShape":{"BaseShape":"IdOnly"},"ItemIds":[{"__type":"ItemId:#Exchange","Id":"`+o.id+`"}]}`)
	if strings.Contains(idOnly, "Quarterly") {
		t.Errorf("IdOnly response carries the subject: %s", idOnly)
	}
	mustContain(t, idOnly, o.id)
}

func TestUpdateItem(t *testing.T) {
	t.Run("set and delete", func(t *testing.T) {
		s := newTestServer()
		o := createDraft(t, s, "Before")
		oldKey := o.changeKey

		doc := roundTrip(t, s, ews.OpUpdateItem, wire.FormatXML,
			`<m:UpdateItem `+ns+` ConflictResolution="AutoResolve" MessageDisposition="SaveOnly"><m:ItemChanges><t:ItemChange><t:ItemId Id="`+o.id+`" ChangeKey="`+oldKey+`"/><t:Updates>`+
				`<t:SetItemField><t:FieldURI FieldURI="item:Subject"/><t:Message><t:Subject>After</t:Subject></t:Message></t:SetItemField>`+
				`<t:DeleteItemField><t:FieldURI FieldURI="message:IsRead"/></t:DeleteItemField>`+
				`</t:Updates></t:ItemChange></m:ItemChanges></m:UpdateItem>`)
		mustContain(t, doc, `ResponseClass="Success"`)
		if o.changeKey == oldKey {
			t.Error("change key not renewed")
		}
		if v, _ := o.bag.TryGet(ews.ItemSubject); v != "After" {
			t.Errorf("Subject = %v, want After", v)
		}
		if o.bag.Contains(ews.MessageIsRead) {
			t.Error("IsRead still present after delete")
		}
	})

	t.Run("stale change key", func(t *testing.T) {
		s := newTestServer()
		o := createDraft(t, s, "Before")
		doc := roundTrip(t, s, ews.OpUpdateItem, wire.FormatJSON,
			`{"__type":"UpdateItemRequest:#Exchange","ConflictResolution":"NeverOverwrite","MessageDisposition":"SaveOnly","ItemChanges":[{"__type":"ItemChange:#Exchange","ItemId":{"__type":"ItemId:#Exchange","Id":"`+o.id+`","ChangeKey":"stale"},"Updates":[{"__type":"SetItemField:#Exchange","Path":{"__type":"PropertyUri:#Exchange","FieldURI":"item:Subject"},"Item":{"__type":"Message:#Exchange","Subject":"After"}}]}]}`)
		mustContain(t, doc, `"ResponseCode":"ErrorIrresolvableConflict"`)
		if v, _ := o.bag.TryGet(ews.ItemSubject); v != "Before" {
			t.Errorf("Subject = %v, want unchanged", v)
		}
	})

	t.Run("unknown property", func(t *testing.T) {
		s := newTestServer()
		o := createDraft(t, s, "Before")
		doc := roundTrip(t, s, ews.OpUpdateItem, wire.FormatXML,
			`<m:UpdateItem `+ns+` ConflictResolution="AutoResolve"><m:ItemChanges><t:ItemChange><t:ItemId Id="`+o.id+`"/><t:Updates>`+
				`<t:DeleteItemField><t:FieldURI FieldURI="item:NoSuchThing"/></t:DeleteItemField>`+
				`</t:Updates></t:ItemChange></m:ItemChanges></m:UpdateItem>`)
		mustContain(t, doc, `ErrorInvalidPropertyRequest`)
	})
}

func TestDeleteItem(t *testing.T) {
	tests := []struct {
		mode        string
		wantDrafts  int
		wantDeleted int
	}{
		{"MoveToDeletedItems", 0, 1},
		{"SoftDelete", 0, 0},
		{"HardDelete", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			s := newTestServer()
			o := createDraft(t, s, "Bye")
			doc := roundTrip(t, s, ews.OpDeleteItem, wire.FormatXML,
				`<m:DeleteItem `+ns+` DeleteType="`+tt.mode+`"><m:ItemIds><t:ItemId Id="`+o.id+`"/></m:ItemIds></m:DeleteItem>`)
			mustContain(t, doc, `ResponseClass="Success"`)
			if got := s.Count(ews.FolderDrafts); got != tt.wantDrafts {
				t.Errorf("drafts = %d, want %d", got, tt.wantDrafts)
			}
			if got := s.Count(ews.FolderDeletedItems); got != tt.wantDeleted {
				t.Errorf("deleted items = %d, want %d", got, tt.wantDeleted)
			}
		})
	}

	t.Run("distinguished folder", func(t *testing.T) {
		s := newTestServer()
		doc := roundTrip(t, s, ews.OpDeleteFolder, wire.FormatXML,
			`<m:DeleteFolder `+ns+` DeleteType="HardDelete"><m:FolderIds><t:DistinguishedFolderId Id="inbox"/></m:FolderIds></m:DeleteFolder>`)
		mustContain(t, doc, `ErrorCannotDeleteObject`)
	})
}

func TestFindItemPaging(t *testing.T) {
	s := newTestServer()
	for _, subject := range []string{"one", "two", "three"} {
		createDraft(t, s, subject)
	}
	find := func(offset, max string) string {
		return roundTrip(t, s, ews.OpFindItem, wire.FormatXML,
			`<m:FindItem `+ns+` Traversal="Shallow"><m:ItemShape><t:BaseShape>AllProperties</t:BaseShape></m:ItemShape>`+
				`<m:IndexedPageItemView MaxEntriesReturned="`+max+`" Offset="`+offset+`" BasePoint="Beginning"/>`+
				`<m:ParentFolderIds><t:DistinguishedFolderId Id="drafts"/></m:ParentFolderIds></m:FindItem>`)
	}

	first := find("0", "2")
	mustContain(t, first, `IndexedPagingOffset="2"`, `TotalItemsInView="3"`, `IncludesLastItemInRange="false"`, `one`, `two`)
	if strings.Contains(first, "three") {
		t.Errorf("first page contains the third item")
	}
	second := find("2", "2")
	mustContain(t, second, `IndexedPagingOffset="3"`, `IncludesLastItemInRange="true"`, `three`)

	body := roundTrip(t, s, ews.OpFindItem, wire.FormatXML,
		`<m:FindItem `+ns+` Traversal="Shallow"><m:ItemShape><t:BaseShape>IdOnly</t:BaseShape><t:AdditionalProperties><t:FieldURI FieldURI="item:Body"/></t:AdditionalProperties></m:ItemShape>`+
			`<m:ParentFolderIds><t:DistinguishedFolderId Id="drafts"/></m:ParentFolderIds></m:FindItem>`)
	mustContain(t, body, `ErrorInvalidPropertyRequest`)
}

func TestPullSubscription(t *testing.T) {
	s := newTestServer(WithMaxEvents(2))
	doc := roundTrip(t, s, ews.OpSubscribe, wire.FormatJSON,
		`{"__type":"SubscribeRequest:#Exchange","SubscriptionRequest":{"__type":"PullSubscriptionRequest:#Exchange","FolderIds":[{"__type":"DistinguishedFolderId:#Exchange","Id":"drafts"}],"EventTypes":["CreatedEvent","ModifiedEvent"],"Timeout":"10"}}`)
	obj, err := wire.DecodeObject([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeObject() error = %v", err)
	}
	container, _ := obj.GetObject(wire.ElemResponseMessages)
	items, _ := container.GetArray(wire.ElemItems)
	msg, _ := wire.AsObject(items[0])
	id, _ := msg.GetString("SubscriptionId")
	watermark, _ := msg.GetString("Watermark")
	if id == "" || watermark == "" {
		t.Fatalf("Subscribe returned id %q watermark %q", id, watermark)
	}

	for _, subject := range []string{"a", "b", "c"} {
		createDraft(t, s, subject)
	}
	pull := func(wm string) string {
		return roundTrip(t, s, ews.OpGetEvents, wire.FormatXML,
			`<m:GetEvents `+ns+`><m:SubscriptionId>`+id+`</m:SubscriptionId><m:Watermark>`+wm+`</m:Watermark></m:GetEvents>`)
	}

	first := pull(watermark)
	mustContain(t, first, `<t:MoreEvents>true</t:MoreEvents>`, `<t:CreatedEvent>`)
	if n := strings.Count(first, "<t:CreatedEvent>"); n != 2 {
		t.Errorf("first pull has %d events, want 2", n)
	}
	last := s.subs[id].events[1].watermark

	second := pull(last)
	mustContain(t, second, `<t:MoreEvents>false</t:MoreEvents>`)
	if n := strings.Count(second, "<t:CreatedEvent>"); n != 1 {
		t.Errorf("second pull has %d events, want 1", n)
	}
	last = s.subs[id].events[0].watermark

	mustContain(t, pull(last), `<t:StatusEvent>`)
	mustContain(t, pull("bogus"), `ErrorInvalidWatermark`)

	unsub := `<m:Unsubscribe ` + ns + `><m:SubscriptionId>` + id + `</m:SubscriptionId></m:Unsubscribe>`
	mustContain(t, roundTrip(t, s, ews.OpUnsubscribe, wire.FormatXML, unsub), `ResponseClass="Success"`)
	mustContain(t, roundTrip(t, s, ews.OpUnsubscribe, wire.FormatXML, unsub), `ErrorSubscriptionNotFound`)
}

func TestSubscriptionExpires(t *testing.T) {
	now := fixed
	s := New(WithClock(func() time.Time { return now }))
	doc := roundTrip(t, s, ews.OpSubscribe, wire.FormatXML,
		`<m:Subscribe `+ns+`><m:PullSubscriptionRequest><t:FolderIds><t:DistinguishedFolderId Id="inbox"/></t:FolderIds><t:EventTypes><t:EventType>NewMailEvent</t:EventType></t:EventTypes><t:Timeout>5</t:Timeout></m:PullSubscriptionRequest></m:Subscribe>`)
	mustContain(t, doc, `<m:SubscriptionId>`)
	var id, wm string
	for k, sub := range s.subs {
		id, wm = k, sub.start
	}

	now = now.Add(6 * time.Minute)
	mustContain(t, roundTrip(t, s, ews.OpGetEvents, wire.FormatXML,
		`<m:GetEvents `+ns+`><m:SubscriptionId>`+id+`</m:SubscriptionId><m:Watermark>`+wm+`</m:Watermark></m:GetEvents>`),
		`ErrorExpiredSubscription`)
}

func TestFailNextAndRequests(t *testing.T) {
	s := newTestServer()
	boom := errors.New("connection reset")
	s.FailNext(2, boom)

	body := `<m:GetFolder ` + ns + `><m:FolderShape><t:BaseShape>IdOnly</t:BaseShape></m:FolderShape><m:FolderIds><t:DistinguishedFolderId Id="inbox"/></m:FolderIds></m:GetFolder>`
	req := &ews.Request{Operation: ews.OpGetFolder, Version: wire.Exchange2013, Body: []byte(body)}
	for i := range 2 {
		if _, err := s.RoundTrip(context.Background(), req); !errors.Is(err, boom) {
			t.Errorf("RoundTrip() #%d error = %v, want %v", i, err, boom)
		}
	}
	if _, err := s.RoundTrip(context.Background(), req); err != nil {
		t.Errorf("RoundTrip() after failures error = %v", err)
	}
	if got := len(s.Requests()); got != 3 {
		t.Errorf("Requests() = %d, want 3", got)
	}
	last, ok := s.LastRequest()
	if !ok || last.Operation != ews.OpGetFolder {
		t.Errorf("LastRequest() = %v, %v", last.Operation, ok)
	}
}

func TestUnsupportedOperation(t *testing.T) {
	s := newTestServer()
	_, err := s.RoundTrip(context.Background(), &ews.Request{Operation: "SyncFolderItems", Body: []byte(`<m:SyncFolderItems ` + ns + `/>`)})
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("RoundTrip() error = %v, want ErrUnsupportedOperation", err)
	}
}
