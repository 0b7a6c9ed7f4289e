package property

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rbaliyan/ews/wire"
)

// DistinguishedPropertySet names a well-known MAPI property set.
type DistinguishedPropertySet int

// Well-known property sets.
const (
	PropertySetNone DistinguishedPropertySet = iota
	PropertySetMeeting
	PropertySetAppointment
	PropertySetCommon
	PropertySetPublicStrings
	PropertySetAddress
	PropertySetInternetHeaders
	PropertySetCalendarAssistant
	PropertySetUnifiedMessaging
	PropertySetTask
	PropertySetSharing
)

var propertySetNames = []string{
	"", "Meeting", "Appointment", "Common", "PublicStrings", "Address",
	"InternetHeaders", "CalendarAssistant", "UnifiedMessaging", "Task", "Sharing",
}

func (s DistinguishedPropertySet) String() string {
	if int(s) >= 0 && int(s) < len(propertySetNames) {
		return propertySetNames[s]
	}
	return fmt.Sprintf("DistinguishedPropertySet(%d)", int(s))
}

// ParsePropertySet parses a distinguished property set name.
func ParsePropertySet(s string) (DistinguishedPropertySet, error) {
	for i, n := range propertySetNames {
		if i > 0 && n == s {
			return DistinguishedPropertySet(i), nil
		}
	}
	return PropertySetNone, fmt.Errorf("%w: property set %q", wire.ErrInvalidValue, s)
}

const (
	attrPropertySetID       = "DistinguishedPropertySetId"
	attrPropertySetGUID     = "PropertySetId"
	attrPropertyTag         = "PropertyTag"
	attrPropertyName        = "PropertyName"
	attrPropertyID          = "PropertyId"
	attrPropertyType        = "PropertyType"
	elemExtendedFieldURIKey = wire.ElemExtendedFieldURI
)

// ExtendedPropertyDefinition addresses a MAPI property by tag, or by a
// property set (distinguished or GUID) plus a name or numeric id.
// Definitions are values; two are equal when every addressing field and
// the MAPI type match.
type ExtendedPropertyDefinition struct {
	set     DistinguishedPropertySet
	setGUID uuid.UUID
	tag     int // -1 when not addressed by tag
	name    string
	id      int
	hasID   bool
	typ     MapiType
}

// NewTaggedProperty addresses a property by its 16-bit tag.
func NewTaggedProperty(tag uint16, t MapiType) *ExtendedPropertyDefinition {
	return &ExtendedPropertyDefinition{tag: int(tag), typ: t}
}

// NewNamedProperty addresses a named property in a distinguished set.
func NewNamedProperty(set DistinguishedPropertySet, name string, t MapiType) *ExtendedPropertyDefinition {
	return &ExtendedPropertyDefinition{set: set, name: name, tag: -1, typ: t}
}

// NewIDProperty addresses a numbered property in a distinguished set.
func NewIDProperty(set DistinguishedPropertySet, id int, t MapiType) *ExtendedPropertyDefinition {
	return &ExtendedPropertyDefinition{set: set, id: id, hasID: true, tag: -1, typ: t}
}

// NewGUIDNamedProperty addresses a named property in a GUID property set.
func NewGUIDNamedProperty(set uuid.UUID, name string, t MapiType) *ExtendedPropertyDefinition {
	return &ExtendedPropertyDefinition{setGUID: set, name: name, tag: -1, typ: t}
}

// NewGUIDIDProperty addresses a numbered property in a GUID property set.
func NewGUIDIDProperty(set uuid.UUID, id int, t MapiType) *ExtendedPropertyDefinition {
	return &ExtendedPropertyDefinition{setGUID: set, id: id, hasID: true, tag: -1, typ: t}
}

// Type returns the MAPI type.
func (d *ExtendedPropertyDefinition) Type() MapiType { return d.typ }

// Tag returns the property tag and whether the definition is tag-addressed.
func (d *ExtendedPropertyDefinition) Tag() (uint16, bool) {
	if d.tag < 0 {
		return 0, false
	}
	return uint16(d.tag), true
}

// Equal reports whether both definitions address the same property with
// the same type.
func (d *ExtendedPropertyDefinition) Equal(o *ExtendedPropertyDefinition) bool {
	if d == nil || o == nil {
		return d == o
	}
	return *d == *o
}

// Key identifies the definition; equal definitions have equal keys.
func (d *ExtendedPropertyDefinition) Key() string {
	return fmt.Sprintf("ext:%d|%s|%d|%s|%d|%t|%s", int(d.set), d.setGUID, d.tag, d.name, d.id, d.hasID, d.typ)
}

// Name returns a readable description of the address.
func (d *ExtendedPropertyDefinition) Name() string {
	var sb strings.Builder
	if t, ok := d.Tag(); ok {
		fmt.Fprintf(&sb, "0x%04X", t)
	} else {
		if d.set != PropertySetNone {
			sb.WriteString(d.set.String())
		} else {
			sb.WriteString(d.setGUID.String())
		}
		sb.WriteByte(':')
		if d.hasID {
			sb.WriteString(strconv.Itoa(d.id))
		} else {
			sb.WriteString(d.name)
		}
	}
	sb.WriteByte('/')
	sb.WriteString(d.typ.String())
	return sb.String()
}

func (d *ExtendedPropertyDefinition) String() string { return d.Name() }

type attr struct{ name, value string }

func (d *ExtendedPropertyDefinition) attrs() []attr {
	var out []attr
	if d.set != PropertySetNone {
		out = append(out, attr{attrPropertySetID, d.set.String()})
	}
	if d.setGUID != uuid.Nil {
		out = append(out, attr{attrPropertySetGUID, d.setGUID.String()})
	}
	if d.tag >= 0 {
		out = append(out, attr{attrPropertyTag, fmt.Sprintf("0x%04X", d.tag)})
	}
	if d.name != "" {
		out = append(out, attr{attrPropertyName, d.name})
	}
	if d.hasID {
		out = append(out, attr{attrPropertyID, strconv.Itoa(d.id)})
	}
	return append(out, attr{attrPropertyType, d.typ.String()})
}

func (d *ExtendedPropertyDefinition) WritePathXML(w *wire.Writer, _ wire.Version) {
	w.WriteStartElement(wire.NamespaceTypes, wire.ElemExtendedFieldURI)
	for _, a := range d.attrs() {
		w.WriteAttribute(a.name, a.value)
	}
	w.WriteEndElement()
}

func (d *ExtendedPropertyDefinition) PathJSON(_ wire.Version) wire.Object {
	o := wire.NewObject("ExtendedPropertyUri")
	for _, a := range d.attrs() {
		o[a.name] = a.value
	}
	return o
}

// validate checks the addressing rules after parsing.
func (d *ExtendedPropertyDefinition) validate() error {
	hasSet := d.set != PropertySetNone || d.setGUID != uuid.Nil
	switch {
	case !d.typ.Valid():
		return fmt.Errorf("%w: missing property type", wire.ErrInvalidValue)
	case d.tag >= 0 && (hasSet || d.name != "" || d.hasID):
		return fmt.Errorf("%w: tag cannot be combined with a property set", wire.ErrInvalidValue)
	case d.tag < 0 && !hasSet:
		return fmt.Errorf("%w: property set or tag required", wire.ErrInvalidValue)
	case d.tag < 0 && (d.name != "") == d.hasID:
		return fmt.Errorf("%w: exactly one of name or id required", wire.ErrInvalidValue)
	case d.set != PropertySetNone && d.setGUID != uuid.Nil:
		return fmt.Errorf("%w: both distinguished and GUID property sets", wire.ErrInvalidValue)
	}
	return nil
}

func parseExtended(get func(string) (string, bool)) (*ExtendedPropertyDefinition, error) {
	d := &ExtendedPropertyDefinition{tag: -1}
	if s, ok := get(attrPropertySetID); ok {
		set, err := ParsePropertySet(s)
		if err != nil {
			return nil, wire.Deserialize(elemExtendedFieldURIKey, s, err)
		}
		d.set = set
	}
	if s, ok := get(attrPropertySetGUID); ok {
		g, err := uuid.Parse(s)
		if err != nil {
			return nil, wire.Deserialize(elemExtendedFieldURIKey, s, fmt.Errorf("%w: %v", wire.ErrInvalidValue, err))
		}
		d.setGUID = g
	}
	if s, ok := get(attrPropertyTag); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
		if err != nil {
			return nil, wire.Deserialize(elemExtendedFieldURIKey, s, fmt.Errorf("%w: %v", wire.ErrInvalidValue, err))
		}
		d.tag = int(n)
	}
	if s, ok := get(attrPropertyName); ok {
		d.name = s
	}
	if s, ok := get(attrPropertyID); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, wire.Deserialize(elemExtendedFieldURIKey, s, fmt.Errorf("%w: %v", wire.ErrInvalidValue, err))
		}
		d.id, d.hasID = n, true
	}
	if s, ok := get(attrPropertyType); ok {
		t, err := ParseMapiType(s)
		if err != nil {
			return nil, wire.Deserialize(elemExtendedFieldURIKey, s, err)
		}
		d.typ = t
	}
	if err := d.validate(); err != nil {
		return nil, wire.Deserialize(elemExtendedFieldURIKey, "", err)
	}
	return d, nil
}

// readExtendedFieldURI parses the attributes of the ExtendedFieldURI
// element the reader is on. It does not move the reader.
func readExtendedFieldURI(r *wire.Reader) (*ExtendedPropertyDefinition, error) {
	return parseExtended(r.LookupAttr)
}

func extendedFromJSON(o wire.Object) (*ExtendedPropertyDefinition, error) {
	return parseExtended(o.GetString)
}

// ExtendedProperty is one extended property value.
type ExtendedProperty struct {
	Definition *ExtendedPropertyDefinition
	Value      any
}

func (p *ExtendedProperty) writeXML(w *wire.Writer) {
	w.WriteStartElement(wire.NamespaceTypes, wire.ElemExtendedProperty)
	p.Definition.WritePathXML(w, wire.Latest)
	t := p.Definition.Type()
	if t.IsArray() {
		items, err := t.FormatValues(p.Value)
		if err != nil {
			w.Fail(err)
			return
		}
		w.WriteStartElement(wire.NamespaceTypes, wire.ElemValues)
		for _, s := range items {
			w.WriteElementValue(wire.NamespaceTypes, wire.ElemValue, s)
		}
		w.WriteEndElement()
	} else {
		s, err := t.FormatValue(p.Value)
		if err != nil {
			w.Fail(err)
			return
		}
		w.WriteElementValue(wire.NamespaceTypes, wire.ElemValue, s)
	}
	w.WriteEndElement()
}

func (p *ExtendedProperty) json() (wire.Object, error) {
	o := wire.Object{wire.ElemExtendedFieldURI: p.Definition.PathJSON(wire.Latest)}
	t := p.Definition.Type()
	if t.IsArray() {
		items, err := t.FormatValues(p.Value)
		if err != nil {
			return nil, err
		}
		vals := make([]any, len(items))
		for i, s := range items {
			vals[i] = s
		}
		o[wire.ElemValues] = vals
		return o, nil
	}
	s, err := t.FormatValue(p.Value)
	if err != nil {
		return nil, err
	}
	o[wire.ElemValue] = s
	return o, nil
}

// ExtendedPropertyCollection holds the extended properties of an object.
// On the wire each property is a sibling ExtendedProperty element, so the
// collection loads one property per LoadXML call. Removals are tracked and
// sent as field deletions on update.
type ExtendedPropertyCollection struct {
	ChangeNotifier
	items   []*ExtendedProperty
	changed []*ExtendedPropertyDefinition
	removed []*ExtendedPropertyDefinition
}

// NewExtendedPropertyCollection returns an empty collection.
func NewExtendedPropertyCollection() *ExtendedPropertyCollection {
	return &ExtendedPropertyCollection{}
}

func (c *ExtendedPropertyCollection) index(d *ExtendedPropertyDefinition) int {
	return slices.IndexFunc(c.items, func(p *ExtendedProperty) bool { return p.Definition.Equal(d) })
}

func containsDef(list []*ExtendedPropertyDefinition, d *ExtendedPropertyDefinition) bool {
	return slices.ContainsFunc(list, d.Equal)
}

func removeDef(list []*ExtendedPropertyDefinition, d *ExtendedPropertyDefinition) []*ExtendedPropertyDefinition {
	return slices.DeleteFunc(list, d.Equal)
}

// Len returns the number of properties.
func (c *ExtendedPropertyCollection) Len() int { return len(c.items) }

// Items returns copies of the properties in load or insertion order.
func (c *ExtendedPropertyCollection) Items() []ExtendedProperty {
	out := make([]ExtendedProperty, len(c.items))
	for i, p := range c.items {
		out[i] = *p
	}
	return out
}

// Get returns the value of d.
func (c *ExtendedPropertyCollection) Get(d *ExtendedPropertyDefinition) (any, bool) {
	if i := c.index(d); i >= 0 {
		return c.items[i].Value, true
	}
	return nil, false
}

// Set stores v under d. v must match the definition's MAPI type.
func (c *ExtendedPropertyCollection) Set(d *ExtendedPropertyDefinition, v any) error {
	if err := d.Type().Check(v); err != nil {
		return &Error{Property: d.Name(), Err: err}
	}
	if i := c.index(d); i >= 0 {
		c.items[i].Value = v
	} else {
		c.items = append(c.items, &ExtendedProperty{Definition: d, Value: v})
	}
	c.removed = removeDef(c.removed, d)
	if !containsDef(c.changed, d) {
		c.changed = append(c.changed, d)
	}
	c.Changed()
	return nil
}

// Remove deletes d. It reports whether d was present.
func (c *ExtendedPropertyCollection) Remove(d *ExtendedPropertyDefinition) bool {
	i := c.index(d)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	c.changed = removeDef(c.changed, d)
	if !containsDef(c.removed, d) {
		c.removed = append(c.removed, d)
	}
	c.Changed()
	return true
}

// PendingRemovals returns the definitions removed since the last sync.
func (c *ExtendedPropertyCollection) PendingRemovals() []*ExtendedPropertyDefinition {
	return slices.Clone(c.removed)
}

func (c *ExtendedPropertyCollection) put(p *ExtendedProperty) {
	if i := c.index(p.Definition); i >= 0 {
		c.items[i] = p
		return
	}
	c.items = append(c.items, p)
}

// LoadXML loads the single ExtendedProperty element the reader is on.
func (c *ExtendedPropertyCollection) LoadXML(r *wire.Reader, elem string) error {
	var (
		def    *ExtendedPropertyDefinition
		value  string
		values []string
		isArr  bool
		hasVal bool
	)
	for {
		if err := r.Read(); err != nil {
			return err
		}
		if r.IsEndElement(wire.NamespaceTypes, elem) {
			break
		}
		if !r.IsStart() {
			continue
		}
		switch r.LocalName() {
		case wire.ElemExtendedFieldURI:
			d, err := readExtendedFieldURI(r)
			if err != nil {
				return err
			}
			def = d
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
		case wire.ElemValue:
			s, err := r.ReadElementValue()
			if err != nil {
				return err
			}
			value, hasVal = s, true
		case wire.ElemValues:
			isArr = true
			for {
				if err := r.Read(); err != nil {
					return err
				}
				if r.IsEndElement(wire.NamespaceTypes, wire.ElemValues) {
					break
				}
				if r.IsStartElement(wire.NamespaceTypes, wire.ElemValue) {
					s, err := r.ReadElementValue()
					if err != nil {
						return err
					}
					values = append(values, s)
				} else if err := r.SkipCurrentElement(); err != nil {
					return err
				}
			}
		default:
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
		}
	}
	if def == nil {
		return wire.Deserialize(elem, "", fmt.Errorf("%w: missing %s", wire.ErrUnexpectedNode, wire.ElemExtendedFieldURI))
	}
	return c.load(def, value, values, isArr, hasVal)
}

func (c *ExtendedPropertyCollection) load(def *ExtendedPropertyDefinition, value string, values []string, isArr, hasVal bool) error {
	var (
		v   any
		err error
	)
	switch {
	case def.Type().IsArray():
		if !isArr && hasVal {
			values = []string{value}
		}
		v, err = def.Type().ParseValues(values)
	case hasVal:
		v, err = def.Type().ParseValue(value)
	default:
		return wire.Deserialize(wire.ElemExtendedProperty, "", fmt.Errorf("%w: missing value for %s", wire.ErrInvalidValue, def.Name()))
	}
	if err != nil {
		return wire.Deserialize(wire.ElemExtendedProperty, value, err)
	}
	c.put(&ExtendedProperty{Definition: def, Value: v})
	return nil
}

// WriteXML writes every property as a sibling elem element.
func (c *ExtendedPropertyCollection) WriteXML(w *wire.Writer, _ string) {
	for _, p := range c.items {
		p.writeXML(w)
	}
}

// LoadJSON loads an array of extended property objects.
func (c *ExtendedPropertyCollection) LoadJSON(v any) error {
	arr, err := wire.AsArray(v)
	if err != nil {
		if o, oerr := wire.AsObject(v); oerr == nil {
			arr = []any{o}
		} else {
			return err
		}
	}
	for _, raw := range arr {
		o, err := wire.AsObject(raw)
		if err != nil {
			return err
		}
		pathObj, ok := o.GetObject(wire.ElemExtendedFieldURI)
		if !ok {
			return wire.Deserialize(wire.ElemExtendedProperty, "", fmt.Errorf("%w: missing %s", wire.ErrUnexpectedNode, wire.ElemExtendedFieldURI))
		}
		def, err := extendedFromJSON(pathObj)
		if err != nil {
			return err
		}
		value, hasVal := o.GetString(wire.ElemValue)
		var values []string
		raws, isArr := o.GetArray(wire.ElemValues)
		for _, rv := range raws {
			s, err := wire.AsString(rv)
			if err != nil {
				return wire.Deserialize(wire.ElemValues, "", err)
			}
			values = append(values, s)
		}
		if err := c.load(def, value, values, isArr, hasVal); err != nil {
			return err
		}
	}
	return nil
}

func (c *ExtendedPropertyCollection) WriteJSON() (any, error) {
	out := make([]any, 0, len(c.items))
	for _, p := range c.items {
		o, err := p.json()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (c *ExtendedPropertyCollection) ClearChangeLog() {
	c.changed = nil
	c.removed = nil
}

func (c *ExtendedPropertyCollection) WriteSetUpdateXML(w *wire.Writer, b *Bag, _ Definition) bool {
	for _, d := range c.changed {
		i := c.index(d)
		if i < 0 {
			continue
		}
		p := c.items[i]
		b.WriteSetFieldXML(w, d, p.writeXML)
	}
	for _, d := range c.removed {
		b.WriteDeleteFieldXML(w, d)
	}
	return true
}

func (c *ExtendedPropertyCollection) WriteDeleteUpdateXML(w *wire.Writer, b *Bag, _ Definition) bool {
	for _, p := range c.items {
		b.WriteDeleteFieldXML(w, p.Definition)
	}
	return true
}

func (c *ExtendedPropertyCollection) SetUpdatesJSON(b *Bag, _ Definition) ([]any, bool, error) {
	var out []any
	for _, d := range c.changed {
		i := c.index(d)
		if i < 0 {
			continue
		}
		o, err := c.items[i].json()
		if err != nil {
			return nil, true, err
		}
		out = append(out, b.SetFieldJSON(d, wire.ElemExtendedProperty, []any{o}))
	}
	for _, d := range c.removed {
		out = append(out, b.DeleteFieldJSON(d))
	}
	return out, true, nil
}

func (c *ExtendedPropertyCollection) DeleteUpdatesJSON(b *Bag, _ Definition) ([]any, bool) {
	out := make([]any, 0, len(c.items))
	for _, p := range c.items {
		out = append(out, b.DeleteFieldJSON(p.Definition))
	}
	return out, true
}

// NewExtendedProperties creates the definition holding an object's
// extended property collection.
func NewExtendedProperties(name string, v wire.Version) *ComplexDefinition[*ExtendedPropertyCollection] {
	return NewComplex(name, wire.ElemExtendedProperty, "", AutoInstantiateOnRead|ReuseInstance|CanSet|CanUpdate|CanDelete, v, NewExtendedPropertyCollection)
}
