package property

import "github.com/rbaliyan/ews/wire"

// IndexedPath addresses one entry of a dictionary property, e.g.
// FieldURI "contacts:EmailAddress" with FieldIndex "EmailAddress1".
type IndexedPath struct {
	URI   string
	Index string
}

// Key identifies the entry.
func (p IndexedPath) Key() string {
	return "idx:" + p.URI + "#" + p.Index
}

func (p IndexedPath) WritePathXML(w *wire.Writer, _ wire.Version) {
	w.WriteStartElement(wire.NamespaceTypes, wire.ElemIndexedFieldURI)
	w.WriteAttribute(wire.AttrFieldURI, p.URI)
	w.WriteAttribute(wire.AttrFieldIndex, p.Index)
	w.WriteEndElement()
}

func (p IndexedPath) PathJSON(_ wire.Version) wire.Object {
	o := wire.NewObject("PathToIndexedFieldType")
	o[wire.AttrFieldURI] = p.URI
	o[wire.AttrFieldIndex] = p.Index
	return o
}

// ReadPath parses a FieldURI, IndexedFieldURI or ExtendedFieldURI element
// the reader is positioned on.
func ReadPath(r *wire.Reader) (Path, error) {
	switch r.LocalName() {
	case wire.ElemFieldURI:
		uri := r.Attr(wire.AttrFieldURI)
		if err := r.SkipCurrentElement(); err != nil {
			return nil, err
		}
		return URIPath(uri), nil
	case wire.ElemIndexedFieldURI:
		p := IndexedPath{URI: r.Attr(wire.AttrFieldURI), Index: r.Attr(wire.AttrFieldIndex)}
		if err := r.SkipCurrentElement(); err != nil {
			return nil, err
		}
		return p, nil
	case wire.ElemExtendedFieldURI:
		d, err := readExtendedFieldURI(r)
		if err != nil {
			return nil, err
		}
		if err := r.SkipCurrentElement(); err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, wire.Deserialize(r.LocalName(), "", wire.ErrUnexpectedNode)
}

// ReadPathJSON parses a path object by its type discriminator.
func ReadPathJSON(v any) (Path, error) {
	o, err := wire.AsObject(v)
	if err != nil {
		return nil, err
	}
	uri, _ := o.GetString(wire.AttrFieldURI)
	switch o.TypeName() {
	case "PropertyUri":
		return URIPath(uri), nil
	case "PathToIndexedFieldType":
		idx, _ := o.GetString(wire.AttrFieldIndex)
		return IndexedPath{URI: uri, Index: idx}, nil
	case "ExtendedPropertyUri":
		return extendedFromJSON(o)
	}
	return nil, wire.Deserialize("Path", o.TypeName(), wire.ErrUnexpectedNode)
}

// URIPath addresses a schema property by its field URI.
type URIPath string

// Key identifies the property; it equals the Key of the definition with
// the same URI.
func (p URIPath) Key() string { return "uri:" + string(p) }

func (p URIPath) WritePathXML(w *wire.Writer, _ wire.Version) { writeFieldURI(w, string(p)) }

func (p URIPath) PathJSON(_ wire.Version) wire.Object { return fieldURIJSON(string(p)) }
