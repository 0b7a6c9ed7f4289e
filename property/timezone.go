package property

import (
	"time"

	"github.com/rbaliyan/ews/wire"
)

const (
	attrTimeZoneName = "TimeZoneName"
	elemBaseOffset   = "BaseOffset"
)

// TimeZone holds a *time.Location written as <t:Elem Id="zone"/>.
//
// A TimeZone created with NewStartTimeZone falls back to a legacy
// MeetingTimeZone on Exchange2007SP1: it writes the legacy element, uses
// the legacy path and takes its flags from the legacy definition. In
// Exchange2007 compatibility mode it writes nothing.
type TimeZone struct {
	base
	legacy *MeetingTimeZone
}

// NewTimeZone creates a time zone definition.
func NewTimeZone(name, elem, uri string, flags Flags, v wire.Version, opts ...Option) *TimeZone {
	return &TimeZone{base: newBase(name, elem, uri, flags, v, true, opts)}
}

// NewStartTimeZone creates a time zone definition backed by legacy on
// Exchange2007SP1.
func NewStartTimeZone(name, elem, uri string, flags Flags, v wire.Version, legacy *MeetingTimeZone, opts ...Option) *TimeZone {
	d := NewTimeZone(name, elem, uri, flags, v, opts...)
	d.legacy = legacy
	return d
}

func (d *TimeZone) useLegacy(v wire.Version) bool {
	return d.legacy != nil && v == wire.Exchange2007SP1
}

// HasFlag defers to the legacy definition on Exchange2007SP1.
func (d *TimeZone) HasFlag(f Flags, v wire.Version) bool {
	if d.useLegacy(v) {
		return d.legacy.HasFlag(f, v)
	}
	return d.base.HasFlag(f, v)
}

func (d *TimeZone) WritePathXML(w *wire.Writer, v wire.Version) {
	if d.useLegacy(v) {
		d.legacy.WritePathXML(w, v)
		return
	}
	d.base.WritePathXML(w, v)
}

func (d *TimeZone) PathJSON(v wire.Version) wire.Object {
	if d.useLegacy(v) {
		return d.legacy.PathJSON(v)
	}
	return d.base.PathJSON(v)
}

// Emits reports whether anything is written under s.
func (d *TimeZone) Emits(s Settings) bool {
	return !(d.useLegacy(s.Version) && s.Exchange2007Compatibility)
}

func (d *TimeZone) LoadXML(r *wire.Reader, b *Bag) error {
	id := r.Attr(wire.AttrID)
	if id == "" {
		id = r.Attr("Name")
	}
	if err := r.SkipCurrentElement(); err != nil {
		return wire.Deserialize(d.elem, "", err)
	}
	loc, err := b.settings().Resolver().Resolve(id)
	if err != nil {
		return wire.Deserialize(d.elem, id, err)
	}
	return b.Set(d, loc)
}

func (d *TimeZone) LoadJSON(v any, b *Bag) error {
	o, err := wire.AsObject(v)
	if err != nil {
		return wire.Deserialize(d.elem, "", err)
	}
	id, _ := o.GetString(wire.AttrID)
	loc, err := b.settings().Resolver().Resolve(id)
	if err != nil {
		return wire.Deserialize(d.elem, id, err)
	}
	return b.Set(d, loc)
}

func (d *TimeZone) WriteXML(w *wire.Writer, b *Bag, _ bool) {
	loc, ok := typedValue[*time.Location](b, d)
	if !ok || loc == nil {
		return
	}
	s := b.settings()
	if d.useLegacy(s.Version) {
		if !s.Exchange2007Compatibility {
			d.legacy.write(w, loc, s)
		}
		return
	}
	w.WriteStartElement(wire.NamespaceTypes, d.elem)
	w.WriteAttribute(wire.AttrID, s.Resolver().Name(loc))
	w.WriteEndElement()
}

func (d *TimeZone) WriteJSON(o wire.Object, b *Bag, _ bool) error {
	loc, ok := typedValue[*time.Location](b, d)
	if !ok || loc == nil {
		return nil
	}
	s := b.settings()
	if d.useLegacy(s.Version) {
		if !s.Exchange2007Compatibility {
			o[d.legacy.elem] = d.legacy.json(loc, s)
		}
		return nil
	}
	tz := wire.NewObject("TimeZoneDefinitionType")
	tz[wire.AttrID] = s.Resolver().Name(loc)
	o[d.elem] = tz
	return nil
}

// Get returns the time zone. On Exchange2007SP1 a zone loaded from the
// legacy MeetingTimeZone element is returned when none was set here.
func (d *TimeZone) Get(b *Bag) (*time.Location, error) {
	if loc, ok := d.legacyValue(b); ok {
		return loc, nil
	}
	return get[*time.Location](b, d)
}

// TryGet returns the time zone when present, including one loaded from the
// legacy element on Exchange2007SP1.
func (d *TimeZone) TryGet(b *Bag) (*time.Location, bool) {
	if loc, ok := typedValue[*time.Location](b, d); ok && loc != nil {
		return loc, true
	}
	return d.legacyValue(b)
}

// legacyValue returns the legacy slot when d falls back to it and has no
// value of its own.
func (d *TimeZone) legacyValue(b *Bag) (*time.Location, bool) {
	if !d.useLegacy(b.settings().Version) || b.Contains(d) {
		return nil, false
	}
	loc, ok := typedValue[*time.Location](b, d.legacy)
	return loc, ok && loc != nil
}

// Set assigns the time zone. A nil loc deletes the property.
func (d *TimeZone) Set(b *Bag, loc *time.Location) error {
	if loc == nil {
		return b.Delete(d)
	}
	return b.Set(d, loc)
}

// Delete removes the time zone.
func (d *TimeZone) Delete(b *Bag) error { return b.Delete(d) }

// MeetingTimeZone is the legacy time zone element of Exchange2007SP1:
// <t:MeetingTimeZone TimeZoneName="zone"><t:BaseOffset>PT8H</t:BaseOffset></t:MeetingTimeZone>.
// BaseOffset is the negated standard UTC offset.
type MeetingTimeZone struct {
	base
}

// NewMeetingTimeZone creates the legacy definition.
func NewMeetingTimeZone(name, elem, uri string, flags Flags, v wire.Version, opts ...Option) *MeetingTimeZone {
	return &MeetingTimeZone{base: newBase(name, elem, uri, flags, v, true, opts)}
}

// StandardOffset returns the standard (non-daylight) UTC offset of loc in
// the current year.
func StandardOffset(loc *time.Location) time.Duration {
	year := time.Now().Year()
	_, jan := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).Zone()
	_, jul := time.Date(year, time.July, 1, 0, 0, 0, 0, loc).Zone()
	return time.Duration(min(jan, jul)) * time.Second
}

func (d *MeetingTimeZone) write(w *wire.Writer, loc *time.Location, s Settings) {
	w.WriteStartElement(wire.NamespaceTypes, d.elem)
	w.WriteAttribute(attrTimeZoneName, s.Resolver().Name(loc))
	w.WriteElementValue(wire.NamespaceTypes, elemBaseOffset, wire.FormatDuration(-StandardOffset(loc)))
	w.WriteEndElement()
}

func (d *MeetingTimeZone) json(loc *time.Location, s Settings) wire.Object {
	o := wire.NewObject("MeetingTimeZone")
	o[attrTimeZoneName] = s.Resolver().Name(loc)
	o[elemBaseOffset] = wire.FormatDuration(-StandardOffset(loc))
	return o
}

// location resolves name, falling back to a fixed zone built from the
// base offset.
func (d *MeetingTimeZone) location(name string, baseOffset time.Duration, s Settings) *time.Location {
	if name != "" {
		if loc, err := s.Resolver().Resolve(name); err == nil {
			return loc
		}
	}
	return time.FixedZone(name, int(-baseOffset/time.Second))
}

func (d *MeetingTimeZone) LoadXML(r *wire.Reader, b *Bag) error {
	name := r.Attr(attrTimeZoneName)
	var offset time.Duration
	for {
		if err := r.Read(); err != nil {
			return wire.Deserialize(d.elem, "", err)
		}
		if r.IsEndElement(wire.NamespaceTypes, d.elem) {
			break
		}
		if !r.IsStart() {
			continue
		}
		if r.LocalName() != elemBaseOffset {
			if err := r.SkipCurrentElement(); err != nil {
				return wire.Deserialize(d.elem, "", err)
			}
			continue
		}
		s, err := r.ReadElementValue()
		if err != nil {
			return wire.Deserialize(elemBaseOffset, "", err)
		}
		if offset, err = wire.ParseDuration(s); err != nil {
			return wire.Deserialize(elemBaseOffset, s, err)
		}
	}
	return b.Set(d, d.location(name, offset, b.settings()))
}

func (d *MeetingTimeZone) LoadJSON(v any, b *Bag) error {
	o, err := wire.AsObject(v)
	if err != nil {
		return wire.Deserialize(d.elem, "", err)
	}
	name, _ := o.GetString(attrTimeZoneName)
	var offset time.Duration
	if s, ok := o.GetString(elemBaseOffset); ok {
		if offset, err = wire.ParseDuration(s); err != nil {
			return wire.Deserialize(elemBaseOffset, s, err)
		}
	}
	return b.Set(d, d.location(name, offset, b.settings()))
}

func (d *MeetingTimeZone) WriteXML(w *wire.Writer, b *Bag, _ bool) {
	if loc, ok := typedValue[*time.Location](b, d); ok && loc != nil {
		d.write(w, loc, b.settings())
	}
}

func (d *MeetingTimeZone) WriteJSON(o wire.Object, b *Bag, _ bool) error {
	if loc, ok := typedValue[*time.Location](b, d); ok && loc != nil {
		o[d.elem] = d.json(loc, b.settings())
	}
	return nil
}

// Get returns the legacy time zone.
func (d *MeetingTimeZone) Get(b *Bag) (*time.Location, error) { return get[*time.Location](b, d) }

// Set assigns the legacy time zone.
func (d *MeetingTimeZone) Set(b *Bag, loc *time.Location) error {
	if loc == nil {
		return b.Delete(d)
	}
	return b.Set(d, loc)
}
