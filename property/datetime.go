package property

import (
	"fmt"
	"time"

	"github.com/rbaliyan/ews/wire"
)

// DateTime holds a time.Time. Values placed in wire.Floating are wall-clock
// times scoped to a zone when written; values read from the wire are
// returned in the connection time zone.
//
// A scoped DateTime on an owner with custom date-time scoping uses a linked
// time zone property instead of the connection time zone, see scope.
type DateTime struct {
	base
	timeZone func(v wire.Version) *TimeZone
}

// NewDateTime creates a date-time definition scoped by the connection time
// zone.
func NewDateTime(name, elem, uri string, flags Flags, v wire.Version, opts ...Option) *DateTime {
	return &DateTime{base: newBase(name, elem, uri, flags, v, false, opts)}
}

// NewScopedDateTime creates a date-time definition whose floating values
// are scoped by the time zone property timeZone returns for the request
// version.
func NewScopedDateTime(name, elem, uri string, flags Flags, v wire.Version, timeZone func(wire.Version) *TimeZone, opts ...Option) *DateTime {
	d := NewDateTime(name, elem, uri, flags, v, opts...)
	d.timeZone = timeZone
	return d
}

// TimeZoneFor returns the linked time zone definition for v, or nil.
func (d *DateTime) TimeZoneFor(v wire.Version) *TimeZone {
	if d.timeZone == nil {
		return nil
	}
	return d.timeZone(v)
}

// scope resolves the instant written for t. A floating result is written
// without an offset and scoped by the server.
//
// Floating values on owners without custom scoping use the connection time
// zone. With custom scoping, a linked time zone that was set and changed
// locally wins. Otherwise a create uses the connection time zone, as does
// an update on Exchange2007SP1; an update on later versions leaves the
// value floating.
func (d *DateTime) scope(t time.Time, b *Bag, isUpdate bool) time.Time {
	if !wire.IsFloating(t) {
		return t.UTC()
	}
	s := b.settings()
	tz := d.TimeZoneFor(s.Version)
	if tz == nil || !b.owner.CustomDateTimeScoping() {
		return wire.Rezone(t, s.Location()).UTC()
	}
	if b.IsPropertyUpdated(tz) {
		if loc, ok := tz.TryGet(b); ok {
			return wire.Rezone(t, loc).UTC()
		}
	}
	if !isUpdate || s.Version == wire.Exchange2007SP1 {
		return wire.Rezone(t, s.Location()).UTC()
	}
	return t
}

func (d *DateTime) local(t time.Time, b *Bag) time.Time {
	loc := b.settings().Location()
	if wire.IsFloating(t) {
		return wire.Rezone(t, loc)
	}
	return t.In(loc)
}

func (d *DateTime) LoadXML(r *wire.Reader, b *Bag) error {
	s, err := r.ReadElementValue()
	if err != nil {
		return wire.Deserialize(d.elem, "", err)
	}
	t, err := wire.ParseDateTime(s)
	if err != nil {
		return wire.Deserialize(d.elem, s, err)
	}
	return b.Set(d, d.local(t, b))
}

func (d *DateTime) LoadJSON(v any, b *Bag) error {
	s, err := wire.AsString(v)
	if err != nil {
		return wire.Deserialize(d.elem, fmt.Sprint(v), err)
	}
	t, err := wire.ParseDateTime(s)
	if err != nil {
		return wire.Deserialize(d.elem, s, err)
	}
	return b.Set(d, d.local(t, b))
}

func (d *DateTime) WriteXML(w *wire.Writer, b *Bag, isUpdate bool) {
	t, ok := typedValue[time.Time](b, d)
	if !ok {
		return
	}
	w.WriteElementValue(wire.NamespaceTypes, d.elem, wire.FormatDateTime(d.scope(t, b, isUpdate)))
}

func (d *DateTime) WriteJSON(o wire.Object, b *Bag, isUpdate bool) error {
	t, ok := typedValue[time.Time](b, d)
	if !ok {
		return nil
	}
	o[d.elem] = wire.FormatDateTime(d.scope(t, b, isUpdate))
	return nil
}

// Get returns the date-time.
func (d *DateTime) Get(b *Bag) (time.Time, error) { return get[time.Time](b, d) }

// TryGet returns the date-time when present.
func (d *DateTime) TryGet(b *Bag) (time.Time, bool) { return typedValue[time.Time](b, d) }

// Set assigns the date-time.
func (d *DateTime) Set(b *Bag, t time.Time) error { return b.Set(d, t) }

// Delete removes the date-time.
func (d *DateTime) Delete(b *Bag) error { return b.Delete(d) }
