package property

import (
	"fmt"
	"slices"

	"github.com/rbaliyan/ews/wire"
)

// BaseShape selects the properties a property set starts from.
type BaseShape int

const (
	// IDOnly requests the object id and the additional properties only.
	IDOnly BaseShape = iota
	// FirstClassProperties requests every first-class property.
	FirstClassProperties
)

func (b BaseShape) String() string {
	switch b {
	case IDOnly:
		return "IdOnly"
	case FirstClassProperties:
		return "AllProperties"
	default:
		return fmt.Sprintf("BaseShape(%d)", int(b))
	}
}

// BodyType is the requested body format.
type BodyType string

// Body formats.
const (
	BodyBest BodyType = "Best"
	BodyHTML BodyType = "HTML"
	BodyText BodyType = "Text"
)

// PropertySet lists the properties to load for an object.
type PropertySet struct {
	base     BaseShape
	paths    []Path
	bodyType BodyType
}

// NewPropertySet returns a property set with base shape and additional
// paths. Duplicate paths are dropped.
func NewPropertySet(base BaseShape, paths ...Path) *PropertySet {
	ps := &PropertySet{base: base}
	ps.Add(paths...)
	return ps
}

// FirstClass returns a property set of all first-class properties.
func FirstClass() *PropertySet { return NewPropertySet(FirstClassProperties) }

// IDOnlySet returns a property set of the object id only.
func IDOnlySet() *PropertySet { return NewPropertySet(IDOnly) }

// Base returns the base shape.
func (ps *PropertySet) Base() BaseShape { return ps.base }

// Add appends paths not already present.
func (ps *PropertySet) Add(paths ...Path) {
	for _, p := range paths {
		if p != nil && !ps.Contains(p) {
			ps.paths = append(ps.paths, p)
		}
	}
}

// Contains reports whether p is one of the additional paths.
func (ps *PropertySet) Contains(p Path) bool {
	key := p.Key()
	return slices.ContainsFunc(ps.paths, func(x Path) bool { return x.Key() == key })
}

// Paths returns the additional paths.
func (ps *PropertySet) Paths() []Path { return slices.Clone(ps.paths) }

// WithBodyType sets the requested body format and returns ps.
func (ps *PropertySet) WithBodyType(t BodyType) *PropertySet {
	ps.bodyType = t
	return ps
}

// BodyType returns the requested body format, empty for the server default.
func (ps *PropertySet) BodyType() BodyType { return ps.bodyType }

// Validate checks that every additional definition is supported by v.
func (ps *PropertySet) Validate(v wire.Version) error {
	for _, p := range ps.paths {
		if d, ok := p.(Definition); ok {
			if err := CheckVersion(d, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteXML writes the shape element, e.g. ItemShape or FolderShape.
func (ps *PropertySet) WriteXML(w *wire.Writer, v wire.Version, elem string) {
	w.WriteStartElement(wire.NamespaceMessages, elem)
	w.WriteElementValue(wire.NamespaceTypes, wire.ElemBaseShape, ps.base.String())
	if ps.bodyType != "" {
		w.WriteElementValue(wire.NamespaceTypes, "BodyType", string(ps.bodyType))
	}
	if len(ps.paths) > 0 {
		w.WriteStartElement(wire.NamespaceTypes, wire.ElemAdditionalProperties)
		for _, p := range ps.paths {
			p.WritePathXML(w, v)
		}
		w.WriteEndElement()
	}
	w.WriteEndElement()
}

// JSON returns the shape object.
func (ps *PropertySet) JSON(v wire.Version) wire.Object {
	o := wire.Object{wire.ElemBaseShape: ps.base.String()}
	if ps.bodyType != "" {
		o["BodyType"] = string(ps.bodyType)
	}
	if len(ps.paths) > 0 {
		paths := make([]any, len(ps.paths))
		for i, p := range ps.paths {
			paths[i] = p.PathJSON(v)
		}
		o[wire.ElemAdditionalProperties] = paths
	}
	return o
}

// ReadPropertySetXML parses a shape element the reader is positioned on.
func ReadPropertySetXML(r *wire.Reader) (*PropertySet, error) {
	elem := r.LocalName()
	ps := &PropertySet{}
	for {
		if err := r.Read(); err != nil {
			return nil, wire.Deserialize(elem, "", err)
		}
		if r.IsEndElement(wire.NamespaceNone, elem) {
			return ps, nil
		}
		if !r.IsStart() {
			continue
		}
		switch r.LocalName() {
		case wire.ElemBaseShape:
			s, err := r.ReadElementValue()
			if err != nil {
				return nil, wire.Deserialize(wire.ElemBaseShape, "", err)
			}
			if s == FirstClassProperties.String() {
				ps.base = FirstClassProperties
			}
		case "BodyType":
			s, err := r.ReadElementValue()
			if err != nil {
				return nil, wire.Deserialize("BodyType", "", err)
			}
			ps.bodyType = BodyType(s)
		case wire.ElemAdditionalProperties:
			for {
				if err := r.Read(); err != nil {
					return nil, wire.Deserialize(wire.ElemAdditionalProperties, "", err)
				}
				if r.IsEndElement(wire.NamespaceTypes, wire.ElemAdditionalProperties) {
					break
				}
				if !r.IsStart() {
					continue
				}
				p, err := ReadPath(r)
				if err != nil {
					return nil, err
				}
				ps.Add(p)
			}
		default:
			if err := r.SkipCurrentElement(); err != nil {
				return nil, wire.Deserialize(elem, "", err)
			}
		}
	}
}

// ReadPropertySetJSON parses a shape object.
func ReadPropertySetJSON(o wire.Object) (*PropertySet, error) {
	ps := &PropertySet{}
	if s, _ := o.GetString(wire.ElemBaseShape); s == FirstClassProperties.String() {
		ps.base = FirstClassProperties
	}
	if s, ok := o.GetString("BodyType"); ok {
		ps.bodyType = BodyType(s)
	}
	paths, _ := o.GetArray(wire.ElemAdditionalProperties)
	for _, raw := range paths {
		p, err := ReadPathJSON(raw)
		if err != nil {
			return nil, err
		}
		ps.Add(p)
	}
	return ps, nil
}
