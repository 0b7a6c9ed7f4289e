// Package recurrence models the repeating schedule of calendar items and
// tasks: one Pattern crossed with one Range.
//
// A Recurrence is a complex property value. Pattern and range structs are
// plain values; after changing one in place, call SetPattern or SetRange so
// the owning item records the change.
package recurrence

import (
	"fmt"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// JSON member names of the two halves.
const (
	JSONPattern = "RecurrencePattern"
	JSONRange   = "RecurrenceRange"
	jsonType    = "RecurrenceType"
)

// Recurrence is a pattern with its range.
type Recurrence struct {
	property.ChangeNotifier
	pattern Pattern
	rng     Range
}

// New returns a recurrence of p bounded by r.
func New(p Pattern, r Range) *Recurrence {
	return &Recurrence{pattern: p, rng: r}
}

// Pattern returns the pattern, or nil.
func (rec *Recurrence) Pattern() Pattern { return rec.pattern }

// Range returns the range, or nil.
func (rec *Recurrence) Range() Range { return rec.rng }

// SetPattern replaces the pattern.
func (rec *Recurrence) SetPattern(p Pattern) {
	rec.pattern = p
	rec.Changed()
}

// SetRange replaces the range.
func (rec *Recurrence) SetRange(r Range) {
	rec.rng = r
	rec.Changed()
}

// Validate checks that both halves are present and well formed.
func (rec *Recurrence) Validate() error {
	if rec.pattern == nil || rec.rng == nil {
		return ErrIncomplete
	}
	if err := rec.pattern.Validate(); err != nil {
		return fmt.Errorf("%s: %w", rec.pattern.XMLElement(), err)
	}
	if err := rec.rng.Validate(); err != nil {
		return fmt.Errorf("%s: %w", rec.rng.XMLElement(), err)
	}
	return nil
}

type fielder interface {
	XMLElement() string
	fields(emit func(name string, v any))
	setField(name, value string) error
}

// LoadXML reads the pattern element, then the range element, then splices
// the range into the recurrence.
func (rec *Recurrence) LoadXML(r *wire.Reader, elem string) error {
	name, err := nextChild(r, elem)
	if err != nil {
		return err
	}
	p, err := newPattern(name)
	if err != nil {
		return wire.Deserialize(name, "", err)
	}
	if err := readFields(r, p); err != nil {
		return err
	}

	name, err = nextChild(r, elem)
	if err != nil {
		return err
	}
	rg, err := newRange(name)
	if err != nil {
		return wire.Deserialize(name, "", err)
	}
	if err := readFields(r, rg); err != nil {
		return err
	}
	if err := r.ReadEndElementIfNecessary(wire.NamespaceTypes, elem); err != nil {
		return wire.Deserialize(elem, "", err)
	}

	rec.pattern = p
	rec.rng = rg
	return nil
}

// nextChild advances to the next child start element of elem and returns
// its name. Reaching the end of elem first is an error.
func nextChild(r *wire.Reader, elem string) (string, error) {
	for {
		if err := r.Read(); err != nil {
			return "", wire.Deserialize(elem, "", err)
		}
		if r.IsStart() {
			return r.LocalName(), nil
		}
		if r.IsEndElement(wire.NamespaceTypes, elem) {
			return "", wire.Deserialize(elem, "", ErrIncomplete)
		}
	}
}

func readFields(r *wire.Reader, f fielder) error {
	elem := f.XMLElement()
	for {
		if err := r.Read(); err != nil {
			return wire.Deserialize(elem, "", err)
		}
		if r.IsEndElement(wire.NamespaceTypes, elem) {
			return nil
		}
		if !r.IsStart() {
			continue
		}
		name := r.LocalName()
		s, err := r.ReadElementValue()
		if err != nil {
			return wire.Deserialize(name, "", err)
		}
		if err := f.setField(name, s); err != nil {
			return wire.Deserialize(name, s, err)
		}
	}
}

// WriteXML writes elem with the pattern and range children.
func (rec *Recurrence) WriteXML(w *wire.Writer, elem string) {
	w.WriteStartElement(wire.NamespaceTypes, elem)
	for _, f := range rec.halves() {
		w.WriteStartElement(wire.NamespaceTypes, f.XMLElement())
		f.fields(func(name string, v any) {
			w.WriteElementValue(wire.NamespaceTypes, name, fmt.Sprint(v))
		})
		w.WriteEndElement()
	}
	w.WriteEndElement()
}

func (rec *Recurrence) halves() []fielder {
	var out []fielder
	if rec.pattern != nil {
		out = append(out, rec.pattern)
	}
	if rec.rng != nil {
		out = append(out, rec.rng)
	}
	return out
}

func (rec *Recurrence) LoadJSON(v any) error {
	o, err := wire.AsObject(v)
	if err != nil {
		return err
	}
	po, ok := o.GetObject(JSONPattern)
	if !ok {
		return wire.Deserialize(JSONPattern, "", ErrIncomplete)
	}
	p, err := newPattern(po.TypeName())
	if err != nil {
		return wire.Deserialize(JSONPattern, po.TypeName(), err)
	}
	if err := readJSONFields(po, p); err != nil {
		return err
	}

	ro, ok := o.GetObject(JSONRange)
	if !ok {
		return wire.Deserialize(JSONRange, "", ErrIncomplete)
	}
	rg, err := newRange(ro.TypeName())
	if err != nil {
		return wire.Deserialize(JSONRange, ro.TypeName(), err)
	}
	if err := readJSONFields(ro, rg); err != nil {
		return err
	}

	rec.pattern = p
	rec.rng = rg
	return nil
}

func readJSONFields(o wire.Object, f fielder) error {
	for name, raw := range o {
		if name == wire.JSONTypeKey {
			continue
		}
		s, err := wire.AsString(raw)
		if err != nil {
			return wire.Deserialize(name, "", err)
		}
		if err := f.setField(name, s); err != nil {
			return wire.Deserialize(name, s, err)
		}
	}
	return nil
}

func (rec *Recurrence) WriteJSON() (any, error) {
	o := wire.NewObject(jsonType)
	if rec.pattern != nil {
		o[JSONPattern] = fieldsJSON(rec.pattern)
	}
	if rec.rng != nil {
		o[JSONRange] = fieldsJSON(rec.rng)
	}
	return o, nil
}

func fieldsJSON(f fielder) wire.Object {
	o := wire.NewObject(f.XMLElement())
	f.fields(func(name string, v any) { o[name] = v })
	return o
}

func (rec *Recurrence) ClearChangeLog() {}

// NewDefinition returns the definition of a recurrence property.
func NewDefinition(name, elem, uri string, flags property.Flags, v wire.Version, opts ...property.Option) *property.ComplexDefinition[*Recurrence] {
	return property.NewComplex(name, elem, uri, flags, v, func() *Recurrence { return &Recurrence{} }, opts...)
}
