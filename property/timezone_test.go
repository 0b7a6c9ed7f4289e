package property

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rbaliyan/ews/wire"
)

type zoneTable map[string]*time.Location

func (z zoneTable) Resolve(name string) (*time.Location, error) {
	if loc, ok := z[name]; ok {
		return loc, nil
	}
	return nil, ErrInvalid
}

func (z zoneTable) Name(loc *time.Location) string {
	for name, l := range z {
		if l == loc {
			return name
		}
	}
	return loc.String()
}

var (
	pacific = time.FixedZone("Pacific", -8*3600)
	zones   = zoneTable{"Pacific Standard Time": pacific, "UTC": time.UTC}
)

var (
	tMeetingTZ = NewMeetingTimeZone("MeetingTimeZone", "MeetingTimeZone", "calendar:MeetingTimeZone", CanSet|CanUpdate|Associated, wire.Exchange2007SP1)
	tStartTZ   = NewStartTimeZone("StartTimeZone", "StartTimeZone", "calendar:StartTimeZone", CanSet|CanUpdate, wire.Exchange2007SP1, tMeetingTZ)
	tStart     = NewScopedDateTime("Start", "Start", "calendar:Start", CanSet|CanUpdate, wire.Exchange2007SP1, func(wire.Version) *TimeZone { return tStartTZ })
	tReceived  = NewDateTime("DateTimeReceived", "DateTimeReceived", "item:DateTimeReceived", CanFind, wire.Exchange2007SP1)
)

var calendarSchema = MustSchema("Calendar", nil, func(r *Registrar) {
	r.Add(tReceived)
	r.Add(tStart)
	r.Add(tStartTZ)
	r.Add(tMeetingTZ)
})

func newCalendarBag(isNew bool, s Settings) *Bag {
	s.TimeZones = zones
	return NewBag(&testOwner{schema: calendarSchema, isNew: isNew, settings: s, scoped: true})
}

func TestStartTimeZoneBranches(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     string
		absent   string
	}{
		{
			name:     "latest writes direct element",
			settings: Settings{Version: wire.Exchange2013},
			want:     `<t:StartTimeZone Id="Pacific Standard Time"/>`,
			absent:   "MeetingTimeZone",
		},
		{
			name:     "oldest writes legacy element",
			settings: Settings{Version: wire.Exchange2007SP1},
			want:     `<t:MeetingTimeZone TimeZoneName="Pacific Standard Time"><t:BaseOffset>PT8H</t:BaseOffset></t:MeetingTimeZone>`,
			absent:   "StartTimeZone",
		},
		{
			name:     "compatibility mode writes nothing",
			settings: Settings{Version: wire.Exchange2007SP1, Exchange2007Compatibility: true},
			want:     `<t:Message/>`,
			absent:   "TimeZone",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newCalendarBag(true, tt.settings)
			if err := tStartTZ.Set(b, pacific); err != nil {
				t.Fatal(err)
			}
			got := render(t, b.WriteXML)
			if !strings.Contains(got, tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if strings.Contains(got, tt.absent) {
				t.Errorf("got %s, must not contain %s", got, tt.absent)
			}
		})
	}
}

func TestStartTimeZoneUpdatePath(t *testing.T) {
	b := newCalendarBag(true, Settings{Version: wire.Exchange2007SP1})
	got := render(t, func(w *wire.Writer) { tStartTZ.WritePathXML(w, wire.Exchange2007SP1) })
	if got != `<t:FieldURI FieldURI="calendar:MeetingTimeZone"/>` {
		t.Errorf("legacy path = %s", got)
	}
	got = render(t, func(w *wire.Writer) { tStartTZ.WritePathXML(w, wire.Exchange2010) })
	if got != `<t:FieldURI FieldURI="calendar:StartTimeZone"/>` {
		t.Errorf("path = %s", got)
	}
	if err := tMeetingTZ.Set(b, pacific); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(render(t, b.WriteXML), "MeetingTimeZone") {
		t.Error("associated definition written on its own")
	}
}

func TestLoadTimeZones(t *testing.T) {
	b := newCalendarBag(false, Settings{Version: wire.Exchange2010})
	loadDoc(t, b, `<t:StartTimeZone Id="Pacific Standard Time"><t:Periods/></t:StartTimeZone>`+
		`<t:MeetingTimeZone TimeZoneName="Unknown Zone"><t:BaseOffset>PT5H</t:BaseOffset><t:Standard/></t:MeetingTimeZone>`)

	loc, err := tStartTZ.Get(b)
	if err != nil || loc != pacific {
		t.Errorf("StartTimeZone = %v, %v", loc, err)
	}
	legacy, err := tMeetingTZ.Get(b)
	if err != nil {
		t.Fatal(err)
	}
	if _, off := time.Date(2024, 1, 1, 0, 0, 0, 0, legacy).Zone(); off != -5*3600 {
		t.Errorf("legacy offset = %d", off)
	}
}

func TestStartTimeZoneReadsLegacySlot(t *testing.T) {
	doc := `<t:MeetingTimeZone TimeZoneName="Pacific Standard Time"><t:BaseOffset>PT8H</t:BaseOffset></t:MeetingTimeZone>`

	b := newCalendarBag(false, Settings{Version: wire.Exchange2007SP1})
	loadDoc(t, b, doc)
	if loc, err := tStartTZ.Get(b); err != nil || loc != pacific {
		t.Errorf("Get() = %v, %v, want Pacific from the legacy element", loc, err)
	}
	if loc, ok := tStartTZ.TryGet(b); !ok || loc != pacific {
		t.Errorf("TryGet() = %v, %v, want Pacific", loc, ok)
	}
	if err := tStartTZ.Set(b, time.UTC); err != nil {
		t.Fatal(err)
	}
	if loc, _ := tStartTZ.Get(b); loc != time.UTC {
		t.Errorf("Get() after Set = %v, want UTC", loc)
	}

	later := newCalendarBag(false, Settings{Version: wire.Exchange2010})
	loadDoc(t, later, doc)
	if loc, ok := tStartTZ.TryGet(later); ok {
		t.Errorf("TryGet() on Exchange2010 = %v, want no value", loc)
	}
}

func loadDoc(t *testing.T, b *Bag, body string) {
	t.Helper()
	loadXML(t, b, message(body), FirstClass())
}

func TestScopedDateTime(t *testing.T) {
	wall := wire.ToFloating(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	eastern := time.FixedZone("Eastern", -5*3600)

	tests := []struct {
		name   string
		isNew  bool
		ver    wire.Version
		zone   bool
		scoped bool
		want   string
	}{
		{name: "create without zone uses connection zone", isNew: true, ver: wire.Exchange2013, scoped: true, want: "2024-05-01T14:00:00Z"},
		{name: "create with updated zone", isNew: true, ver: wire.Exchange2013, zone: true, scoped: true, want: "2024-05-01T17:00:00Z"},
		{name: "update with updated zone", ver: wire.Exchange2013, zone: true, scoped: true, want: "2024-05-01T17:00:00Z"},
		{name: "update on latest defers to server", ver: wire.Exchange2013, scoped: true, want: "2024-05-01T09:00:00"},
		{name: "update on oldest uses connection zone", ver: wire.Exchange2007SP1, scoped: true, want: "2024-05-01T14:00:00Z"},
		{name: "owner without custom scoping", ver: wire.Exchange2013, zone: true, want: "2024-05-01T14:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := &testOwner{
				schema:   calendarSchema,
				isNew:    tt.isNew,
				settings: Settings{Version: tt.ver, TimeZone: eastern, TimeZones: zones},
				scoped:   tt.scoped,
			}
			b := NewBag(owner)
			if !tt.isNew {
				loadDoc(t, b, `<t:Start>2024-04-01T00:00:00Z</t:Start>`)
			}
			if tt.zone {
				if err := tStartTZ.Set(b, pacific); err != nil {
					t.Fatal(err)
				}
			}
			if err := tStart.Set(b, wall); err != nil {
				t.Fatal(err)
			}

			var got string
			if tt.isNew {
				got = render(t, b.WriteXML)
			} else {
				got = render(t, b.WriteUpdateXML)
			}
			want := "<t:Start>" + tt.want + "</t:Start>"
			if !strings.Contains(got, want) {
				t.Errorf("got %s, want %s", got, want)
			}
		})
	}
}

func TestDateTimeLoadUsesConnectionZone(t *testing.T) {
	eastern := time.FixedZone("Eastern", -5*3600)
	b := NewBag(&testOwner{schema: calendarSchema, settings: Settings{Version: wire.Exchange2010, TimeZone: eastern}})
	loadDoc(t, b, `<t:DateTimeReceived>2024-05-01T12:00:00Z</t:DateTimeReceived>`)

	got, err := tReceived.Get(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.Location() != eastern || got.Hour() != 7 {
		t.Errorf("received = %v", got)
	}

	bad := NewBag(&testOwner{schema: calendarSchema, settings: Settings{Version: wire.Exchange2010}})
	r := wire.NewReaderBytes([]byte(message(`<t:DateTimeReceived>yesterday</t:DateTimeReceived>`)))
	if err := r.ReadToStart(wire.NamespaceTypes, "Message"); err != nil {
		t.Fatal(err)
	}
	err = bad.LoadXML(r, true, FirstClass(), false)
	var de *wire.DeserializationError
	if !errors.As(err, &de) || de.Element != "DateTimeReceived" {
		t.Errorf("err = %v, want deserialization error for DateTimeReceived", err)
	}
}
