package recurrence

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func allPatterns() []Pattern {
	return []Pattern{
		&Daily{Interval: 2},
		&Weekly{Interval: 1, DaysOfWeek: []DayOfWeek{Monday, Wednesday, Friday}, FirstDayOfWeek: Monday},
		&Weekly{Interval: 3, DaysOfWeek: []DayOfWeek{Sunday}},
		&AbsoluteMonthly{Interval: 1, DayOfMonth: 31},
		&RelativeMonthly{Interval: 2, DayOfWeek: Tuesday, DayOfWeekIndex: Second},
		&AbsoluteYearly{DayOfMonth: 29, Month: time.February},
		&RelativeYearly{DayOfWeek: WeekendDay, DayOfWeekIndex: Last, Month: time.March},
		&DailyRegeneration{Interval: 4},
		&WeeklyRegeneration{Interval: 1},
		&MonthlyRegeneration{Interval: 6},
		&YearlyRegeneration{Interval: 1},
	}
}

func allRanges() []Range {
	return []Range{
		&NoEndRange{StartDate: date(2024, 1, 15)},
		&EndDateRange{StartDate: date(2024, 1, 15), EndDate: date(2024, 12, 31)},
		&NumberedRange{StartDate: date(2024, 1, 15), Occurrences: 10},
	}
}

func TestRoundTripAllPairs(t *testing.T) {
	for _, p := range allPatterns() {
		for _, rg := range allRanges() {
			t.Run(p.XMLElement()+"/"+rg.XMLElement(), func(t *testing.T) {
				rec := New(p, rg)
				if err := rec.Validate(); err != nil {
					t.Fatalf("Validate: %v", err)
				}

				w := wire.NewWriter()
				rec.WriteXML(w, "Recurrence")
				doc, err := w.Bytes()
				if err != nil {
					t.Fatal(err)
				}
				fromXML := &Recurrence{}
				r := wire.NewReaderBytes(doc)
				if err := r.ReadToStart(wire.NamespaceTypes, "Recurrence"); err != nil {
					t.Fatal(err)
				}
				if err := fromXML.LoadXML(r, "Recurrence"); err != nil {
					t.Fatalf("LoadXML(%s): %v", doc, err)
				}
				assertSame(t, "xml", fromXML, rec)

				js, err := rec.WriteJSON()
				if err != nil {
					t.Fatal(err)
				}
				data, err := js.(wire.Object).Marshal()
				if err != nil {
					t.Fatal(err)
				}
				decoded, err := wire.DecodeObject(data)
				if err != nil {
					t.Fatal(err)
				}
				fromJSON := &Recurrence{}
				if err := fromJSON.LoadJSON(decoded); err != nil {
					t.Fatalf("LoadJSON(%s): %v", data, err)
				}
				assertSame(t, "json", fromJSON, rec)
			})
		}
	}
}

func assertSame(t *testing.T, enc string, got, want *Recurrence) {
	t.Helper()
	if !reflect.DeepEqual(got.Pattern(), want.Pattern()) {
		t.Errorf("%s pattern = %#v, want %#v", enc, got.Pattern(), want.Pattern())
	}
	if !reflect.DeepEqual(got.Range(), want.Range()) {
		t.Errorf("%s range = %#v, want %#v", enc, got.Range(), want.Range())
	}
}

func TestWriteXML(t *testing.T) {
	rec := New(
		&Weekly{Interval: 1, DaysOfWeek: []DayOfWeek{Monday, Thursday}},
		&NumberedRange{StartDate: date(2024, 5, 6), Occurrences: 4},
	)
	w := wire.NewWriter()
	rec.WriteXML(w, "Recurrence")
	got, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	want := `<t:Recurrence><t:WeeklyRecurrence><t:Interval>1</t:Interval><t:DaysOfWeek>Monday Thursday</t:DaysOfWeek></t:WeeklyRecurrence>` +
		`<t:NumberedRecurrence><t:StartDate>2024-05-06</t:StartDate><t:NumberOfOccurrences>4</t:NumberOfOccurrences></t:NumberedRecurrence></t:Recurrence>`
	if string(got) != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func load(body string) (*Recurrence, error) {
	doc := `<t:Recurrence xmlns:t="` + wire.TypesURI + `">` + body + `</t:Recurrence>`
	r := wire.NewReaderBytes([]byte(doc))
	if err := r.ReadToStart(wire.NamespaceTypes, "Recurrence"); err != nil {
		return nil, err
	}
	rec := &Recurrence{}
	return rec, rec.LoadXML(r, "Recurrence")
}

func TestLoadXMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		elem    string
		wantErr error
	}{
		{
			name:    "unknown pattern",
			body:    `<t:HourlyRecurrence><t:Interval>1</t:Interval></t:HourlyRecurrence><t:NoEndRecurrence><t:StartDate>2024-01-01</t:StartDate></t:NoEndRecurrence>`,
			elem:    "HourlyRecurrence",
			wantErr: ErrUnknownPattern,
		},
		{
			name:    "unknown range",
			body:    `<t:DailyRecurrence><t:Interval>1</t:Interval></t:DailyRecurrence><t:ForeverRecurrence/>`,
			elem:    "ForeverRecurrence",
			wantErr: ErrUnknownRange,
		},
		{
			name:    "missing range",
			body:    `<t:DailyRecurrence><t:Interval>1</t:Interval></t:DailyRecurrence>`,
			elem:    "Recurrence",
			wantErr: ErrIncomplete,
		},
		{
			name:    "bad day",
			body:    `<t:WeeklyRecurrence><t:Interval>1</t:Interval><t:DaysOfWeek>Monday Funday</t:DaysOfWeek></t:WeeklyRecurrence>`,
			elem:    "DaysOfWeek",
			wantErr: ErrInvalid,
		},
		{
			name:    "bad start date",
			body:    `<t:DailyRecurrence><t:Interval>1</t:Interval></t:DailyRecurrence><t:NoEndRecurrence><t:StartDate>soon</t:StartDate></t:NoEndRecurrence>`,
			elem:    "StartDate",
			wantErr: wire.ErrInvalidValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.body)
			if !errors.Is(err, tt.wantErr) || !errors.Is(err, wire.ErrDeserialization) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var de *wire.DeserializationError
			if !errors.As(err, &de) || de.Element != tt.elem {
				t.Errorf("err = %v, want element %s", err, tt.elem)
			}
		})
	}
}

func TestLoadXMLSkipsUnknownFields(t *testing.T) {
	rec, err := load(`<t:AbsoluteMonthlyRecurrence><t:Interval>1</t:Interval><t:Extra>x</t:Extra><t:DayOfMonth>5</t:DayOfMonth></t:AbsoluteMonthlyRecurrence>` +
		`<t:EndDateRecurrence><t:StartDate>2024-01-01Z</t:StartDate><t:EndDate>2024-06-30-07:00</t:EndDate></t:EndDateRecurrence>`)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := rec.Pattern().(*AbsoluteMonthly); !ok || p.DayOfMonth != 5 || p.Interval != 1 {
		t.Errorf("pattern = %#v", rec.Pattern())
	}
	if rg, ok := rec.Range().(*EndDateRange); !ok || !rg.EndDate.Equal(date(2024, 6, 30)) {
		t.Errorf("range = %#v", rec.Range())
	}
}

func TestLoadJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"unknown pattern", `{"RecurrencePattern":{"__type":"HourlyRecurrence:#Exchange"},"RecurrenceRange":{"__type":"NoEndRecurrence:#Exchange","StartDate":"2024-01-01"}}`, ErrUnknownPattern},
		{"unknown range", `{"RecurrencePattern":{"__type":"DailyRecurrence:#Exchange","Interval":1},"RecurrenceRange":{"__type":"Other:#Exchange"}}`, ErrUnknownRange},
		{"missing range", `{"RecurrencePattern":{"__type":"DailyRecurrence:#Exchange","Interval":1}}`, ErrIncomplete},
		{"bad interval", `{"RecurrencePattern":{"__type":"DailyRecurrence:#Exchange","Interval":"often"},"RecurrenceRange":{"__type":"NoEndRecurrence:#Exchange","StartDate":"2024-01-01"}}`, ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := wire.DecodeObject([]byte(tt.doc))
			if err != nil {
				t.Fatal(err)
			}
			err = (&Recurrence{}).LoadJSON(o)
			if !errors.Is(err, tt.wantErr) || !errors.Is(err, wire.ErrDeserialization) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	start := date(2024, 3, 1)
	tests := []struct {
		name    string
		rec     *Recurrence
		wantErr error
	}{
		{"no pattern", New(nil, &NoEndRange{StartDate: start}), ErrIncomplete},
		{"no range", New(&Daily{Interval: 1}, nil), ErrIncomplete},
		{"zero interval", New(&Daily{}, &NoEndRange{StartDate: start}), ErrInvalid},
		{"weekly without days", New(&Weekly{Interval: 1}, &NoEndRange{StartDate: start}), ErrInvalid},
		{"day of month 32", New(&AbsoluteMonthly{Interval: 1, DayOfMonth: 32}, &NoEndRange{StartDate: start}), ErrInvalid},
		{"day of month 0", New(&AbsoluteYearly{Month: time.May}, &NoEndRange{StartDate: start}), ErrInvalid},
		{"missing month", New(&AbsoluteYearly{DayOfMonth: 1}, &NoEndRange{StartDate: start}), ErrInvalid},
		{"missing week index", New(&RelativeMonthly{Interval: 1, DayOfWeek: Friday}, &NoEndRange{StartDate: start}), ErrInvalid},
		{"zero occurrences", New(&Daily{Interval: 1}, &NumberedRange{StartDate: start}), ErrInvalid},
		{"end before start", New(&Daily{Interval: 1}, &EndDateRange{StartDate: start, EndDate: start.AddDate(0, 0, -1)}), ErrInvalid},
		{"missing start", New(&Daily{Interval: 1}, &NoEndRange{}), ErrInvalid},
		{"end equals start", New(&Daily{Interval: 1}, &EndDateRange{StartDate: start, EndDate: start}), nil},
		{"regeneration", New(&YearlyRegeneration{Interval: 1}, &NumberedRange{StartDate: start, Occurrences: 1}), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDayOfWeek(t *testing.T) {
	if got := FromWeekday(time.Saturday); got != Saturday {
		t.Errorf("FromWeekday(Saturday) = %v", got)
	}
	for d := Sunday; d <= WeekendDay; d++ {
		back, err := ParseDayOfWeek(d.String())
		if err != nil || back != d {
			t.Errorf("ParseDayOfWeek(%s) = %v, %v", d, back, err)
		}
	}
	if _, err := ParseWeekIndex("Fifth"); !errors.Is(err, ErrInvalid) {
		t.Errorf("ParseWeekIndex(Fifth) = %v", err)
	}
}

type owner struct {
	isNew bool
}

var (
	defRecurrence = NewDefinition("Recurrence", "Recurrence", "calendar:Recurrence", property.CanSet|property.CanUpdate|property.CanDelete, wire.Exchange2007SP1)
	defSubject    = property.NewString("Subject", "Subject", "item:Subject", property.CanSet|property.CanUpdate, wire.Exchange2007SP1)
	schema        = property.MustSchema("CalendarItem", nil, func(r *property.Registrar) {
		r.Add(defSubject)
		r.Add(defRecurrence)
	})
)

func (o *owner) Schema() *property.Schema { return schema }

func (o *owner) IsNew() bool { return o.isNew }

func (o *owner) Settings() property.Settings {
	return property.Settings{Version: wire.Exchange2010}
}

func (o *owner) CustomDateTimeScoping() bool { return true }

func (o *owner) Names() property.Names {
	return property.Names{
		Object:      "CalendarItem",
		Change:      "ItemChange",
		SetField:    "SetItemField",
		DeleteField: "DeleteItemField",
		ID:          "ItemId",
		Container:   "Item",
	}
}

func TestRecurrenceInBag(t *testing.T) {
	b := property.NewBag(&owner{})
	doc := `<t:CalendarItem xmlns:t="` + wire.TypesURI + `"><t:Subject>standup</t:Subject><t:Recurrence>` +
		`<t:DailyRecurrence><t:Interval>1</t:Interval></t:DailyRecurrence>` +
		`<t:NoEndRecurrence><t:StartDate>2024-01-01</t:StartDate></t:NoEndRecurrence></t:Recurrence></t:CalendarItem>`
	r := wire.NewReaderBytes([]byte(doc))
	if err := r.ReadToStart(wire.NamespaceTypes, "CalendarItem"); err != nil {
		t.Fatal(err)
	}
	if err := b.LoadXML(r, true, property.FirstClass(), false); err != nil {
		t.Fatal(err)
	}
	if b.IsUpdateCallNecessary() {
		t.Fatal("update necessary right after load")
	}

	rec, err := defRecurrence.Get(b)
	if err != nil {
		t.Fatal(err)
	}
	rec.SetRange(&NumberedRange{StartDate: date(2024, 1, 1), Occurrences: 5})
	if !b.IsPropertyUpdated(defRecurrence) || !b.IsUpdateCallNecessary() {
		t.Fatal("range change not recorded")
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	w := wire.NewWriter()
	b.WriteUpdateXML(w)
	out, err := w.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `<t:FieldURI FieldURI="calendar:Recurrence"/>`) ||
		!strings.Contains(string(out), `<t:NumberOfOccurrences>5</t:NumberOfOccurrences>`) {
		t.Errorf("update = %s", out)
	}
	if strings.Contains(string(out), "Subject") {
		t.Errorf("unchanged subject written: %s", out)
	}

	b.CommitUpdate()
	if b.IsDirty() {
		t.Error("dirty after commit")
	}

	rec.SetPattern(&Daily{})
	if err := b.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate = %v, want ErrInvalid", err)
	}
}
