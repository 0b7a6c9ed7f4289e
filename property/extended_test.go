package property

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rbaliyan/ews/wire"
)

var testSetGUID = uuid.MustParse("00020329-0000-0000-c000-000000000046")

func TestExtendedDefinitionEquality(t *testing.T) {
	other := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	base := NewNamedProperty(PropertySetPublicStrings, "Color", MapiString)
	tests := []struct {
		name  string
		other *ExtendedPropertyDefinition
		equal bool
	}{
		{"same fields", NewNamedProperty(PropertySetPublicStrings, "Color", MapiString), true},
		{"different set", NewNamedProperty(PropertySetCommon, "Color", MapiString), false},
		{"different name", NewNamedProperty(PropertySetPublicStrings, "Colour", MapiString), false},
		{"different type", NewNamedProperty(PropertySetPublicStrings, "Color", MapiStringArray), false},
		{"id instead of name", NewIDProperty(PropertySetPublicStrings, 1, MapiString), false},
		{"guid set", NewGUIDNamedProperty(other, "Color", MapiString), false},
		{"tag", NewTaggedProperty(0x1000, MapiString), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.equal {
				t.Errorf("Equal = %v, want %v", got, tt.equal)
			}
			if got := base.Key() == tt.other.Key(); got != tt.equal {
				t.Errorf("Key equality = %v, want %v", got, tt.equal)
			}
		})
	}

	a := NewGUIDIDProperty(testSetGUID, 0x8233, MapiInteger)
	b := NewGUIDIDProperty(uuid.MustParse(strings.ToUpper(testSetGUID.String())), 0x8233, MapiInteger)
	if !a.Equal(b) {
		t.Error("GUIDs parsed from different case should be equal")
	}
}

func TestExtendedFieldURIRoundTrip(t *testing.T) {
	defs := []*ExtendedPropertyDefinition{
		NewTaggedProperty(0x0E08, MapiInteger),
		NewNamedProperty(PropertySetInternetHeaders, "X-Custom", MapiString),
		NewIDProperty(PropertySetAppointment, 0x8205, MapiInteger),
		NewGUIDNamedProperty(testSetGUID, "Name", MapiBoolean),
		NewGUIDIDProperty(testSetGUID, 17, MapiSystemTimeArray),
	}
	for _, d := range defs {
		t.Run(d.Name(), func(t *testing.T) {
			doc := render(t, func(w *wire.Writer) { d.WritePathXML(w, wire.Latest) })
			r := wire.NewReaderBytes([]byte(doc))
			if err := r.Read(); err != nil {
				t.Fatal(err)
			}
			p, err := ReadPath(r)
			if err != nil {
				t.Fatalf("ReadPath(%s): %v", doc, err)
			}
			got, ok := p.(*ExtendedPropertyDefinition)
			if !ok || !got.Equal(d) {
				t.Errorf("ReadPath = %v, want %v", p, d)
			}

			jp, err := ReadPathJSON(d.PathJSON(wire.Latest))
			if err != nil {
				t.Fatal(err)
			}
			if jp.Key() != d.Key() {
				t.Errorf("ReadPathJSON key = %s, want %s", jp.Key(), d.Key())
			}
		})
	}
}

func TestExtendedFieldURIErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad guid", `<t:ExtendedFieldURI PropertySetId="not-a-guid" PropertyName="x" PropertyType="String"/>`},
		{"bad tag", `<t:ExtendedFieldURI PropertyTag="0xZZ" PropertyType="String"/>`},
		{"bad type", `<t:ExtendedFieldURI PropertyTag="0x1000" PropertyType="Quaternion"/>`},
		{"missing type", `<t:ExtendedFieldURI PropertyTag="0x1000"/>`},
		{"tag with set", `<t:ExtendedFieldURI DistinguishedPropertySetId="Common" PropertyTag="0x1000" PropertyType="String"/>`},
		{"name and id", `<t:ExtendedFieldURI DistinguishedPropertySetId="Common" PropertyName="a" PropertyId="1" PropertyType="String"/>`},
		{"unknown set", `<t:ExtendedFieldURI DistinguishedPropertySetId="Nope" PropertyName="a" PropertyType="String"/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := wire.NewReaderBytes([]byte(tt.doc))
			if err := r.Read(); err != nil {
				t.Fatal(err)
			}
			_, err := ReadPath(r)
			if !errors.Is(err, wire.ErrDeserialization) {
				t.Errorf("err = %v, want ErrDeserialization", err)
			}
			var de *wire.DeserializationError
			if !errors.As(err, &de) || de.Element != wire.ElemExtendedFieldURI {
				t.Errorf("err = %v, want element %s", err, wire.ElemExtendedFieldURI)
			}
		})
	}
}

func TestMapiValues(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		typ   MapiType
		value any
	}{
		{MapiShort, int16(-12)},
		{MapiInteger, int32(1 << 20)},
		{MapiLong, int64(1) << 40},
		{MapiCurrency, int64(12345)},
		{MapiError, int32(-2147221233)},
		{MapiFloat, float32(1.5)},
		{MapiDouble, 3.25},
		{MapiApplicationTime, 45000.5},
		{MapiBoolean, true},
		{MapiString, "hello"},
		{MapiBinary, []byte{0, 1, 2, 250}},
		{MapiCLSID, testSetGUID},
		{MapiSystemTime, when},
		{MapiStringArray, []string{"a", "b"}},
		{MapiIntegerArray, []int32{1, 2, 3}},
		{MapiSystemTimeArray, []time.Time{when, when.Add(time.Hour)}},
		{MapiBinaryArray, [][]byte{{1}, {2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if err := tt.typ.Check(tt.value); err != nil {
				t.Fatalf("Check: %v", err)
			}
			c := NewExtendedPropertyCollection()
			d := NewTaggedProperty(0x6000, tt.typ)
			if err := c.Set(d, tt.value); err != nil {
				t.Fatal(err)
			}
			doc := render(t, func(w *wire.Writer) { c.WriteXML(w, wire.ElemExtendedProperty) })

			loaded := NewExtendedPropertyCollection()
			r := wire.NewReaderBytes([]byte(doc))
			if err := r.ReadToStart(wire.NamespaceTypes, wire.ElemExtendedProperty); err != nil {
				t.Fatal(err)
			}
			if err := loaded.LoadXML(r, wire.ElemExtendedProperty); err != nil {
				t.Fatalf("LoadXML(%s): %v", doc, err)
			}
			got, ok := loaded.Get(d)
			if !ok {
				t.Fatalf("value missing after load of %s", doc)
			}
			if !mapiEqual(got, tt.value) {
				t.Errorf("round trip = %#v, want %#v", got, tt.value)
			}

			js, err := c.WriteJSON()
			if err != nil {
				t.Fatal(err)
			}
			fromJSON := NewExtendedPropertyCollection()
			if err := fromJSON.LoadJSON(js); err != nil {
				t.Fatal(err)
			}
			if got, _ := fromJSON.Get(d); !mapiEqual(got, tt.value) {
				t.Errorf("json round trip = %#v, want %#v", got, tt.value)
			}
		})
	}
}

func mapiEqual(a, b any) bool {
	switch x := a.(type) {
	case []byte:
		y, ok := b.([]byte)
		return ok && slices.Equal(x, y)
	case [][]byte:
		y, ok := b.([][]byte)
		return ok && slices.EqualFunc(x, y, slices.Equal[[]byte])
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case []time.Time:
		y, ok := b.([]time.Time)
		return ok && slices.EqualFunc(x, y, time.Time.Equal)
	case []string:
		y, ok := b.([]string)
		return ok && slices.Equal(x, y)
	case []int32:
		y, ok := b.([]int32)
		return ok && slices.Equal(x, y)
	}
	return a == b
}

func TestMapiCheckRejectsWrongType(t *testing.T) {
	c := NewExtendedPropertyCollection()
	err := c.Set(NewTaggedProperty(0x1000, MapiInteger), "text")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("err = %v, want ErrTypeMismatch", err)
	}
	if _, err := MapiShort.ParseValue("70000"); !errors.Is(err, wire.ErrInvalidValue) {
		t.Errorf("overflow err = %v", err)
	}
}

func TestExtendedPropertiesInBag(t *testing.T) {
	color := NewNamedProperty(PropertySetPublicStrings, "Color", MapiString)
	flag := NewTaggedProperty(0x1090, MapiInteger)

	b := newTestBag(false, wire.Exchange2010)
	loadXML(t, b, message(
		`<t:ExtendedProperty><t:ExtendedFieldURI DistinguishedPropertySetId="PublicStrings" PropertyName="Color" PropertyType="String"/><t:Value>red</t:Value></t:ExtendedProperty>`+
			`<t:ExtendedProperty><t:ExtendedFieldURI PropertyTag="0x1090" PropertyType="Integer"/><t:Value>2</t:Value></t:ExtendedProperty>`,
	), FirstClass())

	props, err := tExtended.Get(b)
	if err != nil {
		t.Fatal(err)
	}
	if props.Len() != 2 {
		t.Fatalf("loaded %d extended properties", props.Len())
	}
	if v, _ := props.Get(color); v != "red" {
		t.Errorf("Color = %v", v)
	}
	if b.IsDirty() {
		t.Fatal("bag dirty after load")
	}

	if err := props.Set(color, "blue"); err != nil {
		t.Fatal(err)
	}
	props.Remove(flag)

	got := render(t, b.WriteUpdateXML)
	want := `<t:ItemChange><t:Updates>` +
		`<t:SetItemField><t:ExtendedFieldURI DistinguishedPropertySetId="PublicStrings" PropertyName="Color" PropertyType="String"/>` +
		`<t:Message><t:ExtendedProperty><t:ExtendedFieldURI DistinguishedPropertySetId="PublicStrings" PropertyName="Color" PropertyType="String"/>` +
		`<t:Value>blue</t:Value></t:ExtendedProperty></t:Message></t:SetItemField>` +
		`<t:DeleteItemField><t:ExtendedFieldURI PropertyTag="0x1090" PropertyType="Integer"/></t:DeleteItemField>` +
		`</t:Updates></t:ItemChange>`
	if got != want {
		t.Errorf("update\n got %s\nwant %s", got, want)
	}

	o, err := b.WriteUpdateJSON()
	if err != nil {
		t.Fatal(err)
	}
	updates, _ := o.GetArray(wire.ElemUpdates)
	if len(updates) != 2 {
		t.Fatalf("json updates = %v", updates)
	}
	del, _ := wire.AsObject(updates[1])
	if del.TypeName() != "DeleteItemField" {
		t.Errorf("second update = %v", del)
	}

	b.CommitUpdate()
	if b.IsDirty() || len(props.PendingRemovals()) != 0 {
		t.Error("extended changes should be committed")
	}
}
