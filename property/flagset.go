package property

import (
	"fmt"

	"github.com/rbaliyan/ews/wire"
)

// FlagMode selects how a flag set is encoded.
type FlagMode int

const (
	// FlagsFromBooleans encodes each flag as a boolean child element
	// (<t:Read>true</t:Read>) or a boolean JSON member.
	FlagsFromBooleans FlagMode = iota
	// FlagsFromPresence encodes each set flag as an empty child element
	// (<t:AcceptItem/>) or a typed JSON object in an array.
	FlagsFromPresence
)

// FlagName binds a child element name to a flag bit.
type FlagName[F ~uint32] struct {
	Element string
	Flag    F
}

// FlagSet is a bit-flag property assembled from child elements. Unknown
// children are ignored.
type FlagSet[F ~uint32] struct {
	base
	mode  FlagMode
	names []FlagName[F]
}

// NewFlagSet creates a flag set definition.
func NewFlagSet[F ~uint32](name, elem, uri string, flags Flags, v wire.Version, mode FlagMode, names []FlagName[F], opts ...Option) *FlagSet[F] {
	return &FlagSet[F]{base: newBase(name, elem, uri, flags, v, false, opts), mode: mode, names: names}
}

func (d *FlagSet[F]) lookup(elem string) (F, bool) {
	for _, n := range d.names {
		if n.Element == elem {
			return n.Flag, true
		}
	}
	return 0, false
}

func (d *FlagSet[F]) LoadXML(r *wire.Reader, b *Bag) error {
	var value F
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
		flag, known := d.lookup(r.LocalName())
		if !known || d.mode == FlagsFromPresence {
			if err := r.SkipCurrentElement(); err != nil {
				return wire.Deserialize(d.elem, "", err)
			}
			if known {
				value |= flag
			}
			continue
		}
		child := r.LocalName()
		s, err := r.ReadElementValue()
		if err != nil {
			return wire.Deserialize(child, "", err)
		}
		on, err := wire.ParseBool(s)
		if err != nil {
			return wire.Deserialize(child, s, err)
		}
		if on {
			value |= flag
		}
	}
	return b.Set(d, value)
}

func (d *FlagSet[F]) LoadJSON(v any, b *Bag) error {
	var value F
	switch d.mode {
	case FlagsFromBooleans:
		o, err := wire.AsObject(v)
		if err != nil {
			return wire.Deserialize(d.elem, "", err)
		}
		for _, n := range d.names {
			raw, ok := o[n.Element]
			if !ok {
				continue
			}
			on, err := wire.AsBool(raw)
			if err != nil {
				return wire.Deserialize(n.Element, fmt.Sprint(raw), err)
			}
			if on {
				value |= n.Flag
			}
		}
	case FlagsFromPresence:
		arr, err := wire.AsArray(v)
		if err != nil {
			return wire.Deserialize(d.elem, "", err)
		}
		for _, raw := range arr {
			o, err := wire.AsObject(raw)
			if err != nil {
				return wire.Deserialize(d.elem, "", err)
			}
			if flag, ok := d.lookup(o.TypeName()); ok {
				value |= flag
			}
		}
	}
	return b.Set(d, value)
}

func (d *FlagSet[F]) WriteXML(w *wire.Writer, b *Bag, _ bool) {
	value, ok := typedValue[F](b, d)
	if !ok {
		return
	}
	w.WriteStartElement(wire.NamespaceTypes, d.elem)
	for _, n := range d.names {
		set := value&n.Flag == n.Flag
		switch d.mode {
		case FlagsFromBooleans:
			w.WriteElementValue(wire.NamespaceTypes, n.Element, wire.FormatBool(set))
		case FlagsFromPresence:
			if set {
				w.WriteStartElement(wire.NamespaceTypes, n.Element)
				w.WriteEndElement()
			}
		}
	}
	w.WriteEndElement()
}

func (d *FlagSet[F]) WriteJSON(o wire.Object, b *Bag, _ bool) error {
	value, ok := typedValue[F](b, d)
	if !ok {
		return nil
	}
	switch d.mode {
	case FlagsFromBooleans:
		obj := wire.Object{}
		for _, n := range d.names {
			obj[n.Element] = value&n.Flag == n.Flag
		}
		o[d.elem] = obj
	case FlagsFromPresence:
		arr := []any{}
		for _, n := range d.names {
			if value&n.Flag == n.Flag {
				arr = append(arr, wire.NewObject(n.Element))
			}
		}
		o[d.elem] = arr
	}
	return nil
}

// Get returns the flag value.
func (d *FlagSet[F]) Get(b *Bag) (F, error) { return get[F](b, d) }

// TryGet returns the flag value when present.
func (d *FlagSet[F]) TryGet(b *Bag) (F, bool) { return typedValue[F](b, d) }

// Set assigns the flag value.
func (d *FlagSet[F]) Set(b *Bag, v F) error { return b.Set(d, v) }
