package wire

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NodeType classifies the node the Reader is positioned on.
type NodeType int

// Node types.
const (
	NodeNone NodeType = iota
	NodeStartElement
	NodeEndElement
	NodeText
)

func (t NodeType) String() string {
	switch t {
	case NodeStartElement:
		return "start element"
	case NodeEndElement:
		return "end element"
	case NodeText:
		return "text"
	default:
		return "none"
	}
}

// Reader is a forward-only XML cursor. Whitespace-only text, comments and
// processing instructions are skipped.
//
// Element readers follow one convention: they are entered positioned on
// their start element and return positioned on their end element.
type Reader struct {
	dec  *xml.Decoder
	typ  NodeType
	name xml.Name
	attr []xml.Attr
	text string
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r)}
}

// NewReaderBytes creates a Reader over an in-memory document.
func NewReaderBytes(b []byte) *Reader {
	return NewReader(bytes.NewReader(b))
}

// Read advances to the next significant node.
// It returns io.EOF at the end of the document.
func (r *Reader) Read() error {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.typ = NodeNone
				return io.EOF
			}
			return fmt.Errorf("%w: %v", ErrDeserialization, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			r.typ = NodeStartElement
			r.name = t.Name
			r.attr = append(r.attr[:0], t.Attr...)
			r.text = ""
			return nil
		case xml.EndElement:
			r.typ = NodeEndElement
			r.name = t.Name
			r.attr = r.attr[:0]
			r.text = ""
			return nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			r.typ = NodeText
			r.text = string(t)
			r.attr = r.attr[:0]
			return nil
		}
	}
}

// NodeType returns the type of the current node.
func (r *Reader) NodeType() NodeType { return r.typ }

// LocalName returns the local name of the current element.
func (r *Reader) LocalName() string { return r.name.Local }

// Namespace returns the namespace of the current element.
func (r *Reader) Namespace() Namespace { return namespaceFromURI(r.name.Space) }

// Text returns the content of the current text node.
func (r *Reader) Text() string { return r.text }

// IsStart reports whether the reader is on any start element.
func (r *Reader) IsStart() bool { return r.typ == NodeStartElement }

// IsStartElement reports whether the reader is on the start of ns:local.
func (r *Reader) IsStartElement(ns Namespace, local string) bool {
	return r.typ == NodeStartElement && r.matches(ns, local)
}

// IsEndElement reports whether the reader is on the end of ns:local.
func (r *Reader) IsEndElement(ns Namespace, local string) bool {
	return r.typ == NodeEndElement && r.matches(ns, local)
}

func (r *Reader) matches(ns Namespace, local string) bool {
	if r.name.Local != local {
		return false
	}
	return ns == NamespaceNone || namespaceFromURI(r.name.Space) == ns
}

// Attr returns the value of the named attribute of the current element,
// or "" when absent.
func (r *Reader) Attr(name string) string {
	v, _ := r.LookupAttr(name)
	return v
}

// LookupAttr returns the value of the named attribute and whether it exists.
func (r *Reader) LookupAttr(name string) (string, bool) {
	for _, a := range r.attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttrs reports whether the current element carries attributes other
// than namespace declarations.
func (r *Reader) HasAttrs() bool {
	for _, a := range r.attr {
		if a.Name.Space != "xmlns" && a.Name.Local != "xmlns" {
			return true
		}
	}
	return false
}

// Attrs returns a copy of the current element's attributes.
func (r *Reader) Attrs() []xml.Attr {
	out := make([]xml.Attr, len(r.attr))
	copy(out, r.attr)
	return out
}

// EnsureStartElement fails unless the reader is on the start of ns:local.
func (r *Reader) EnsureStartElement(ns Namespace, local string) error {
	if !r.IsStartElement(ns, local) {
		return r.unexpected("start of " + local)
	}
	return nil
}

// EnsureEndElement fails unless the reader is on the end of ns:local.
func (r *Reader) EnsureEndElement(ns Namespace, local string) error {
	if !r.IsEndElement(ns, local) {
		return r.unexpected("end of " + local)
	}
	return nil
}

// ReadStartElement advances and requires the start of ns:local.
func (r *Reader) ReadStartElement(ns Namespace, local string) error {
	if err := r.Read(); err != nil {
		return err
	}
	return r.EnsureStartElement(ns, local)
}

// ReadEndElement advances and requires the end of ns:local.
func (r *Reader) ReadEndElement(ns Namespace, local string) error {
	if err := r.Read(); err != nil {
		return err
	}
	return r.EnsureEndElement(ns, local)
}

// ReadEndElementIfNecessary advances to the end of ns:local unless the
// reader is already there. Intervening content is skipped.
func (r *Reader) ReadEndElementIfNecessary(ns Namespace, local string) error {
	for !r.IsEndElement(ns, local) {
		if err := r.Read(); err != nil {
			return err
		}
		if r.IsStart() {
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadElementValue reads the text content of the current element and
// leaves the reader on its end tag. Empty elements yield "".
func (r *Reader) ReadElementValue() (string, error) {
	if r.typ != NodeStartElement {
		return "", r.unexpected("start element")
	}
	name := r.name
	var sb strings.Builder
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return "", Deserialize(name.Local, "", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			r.typ = NodeEndElement
			r.name = t.Name
			r.attr = r.attr[:0]
			r.text = ""
			return sb.String(), nil
		case xml.StartElement:
			return "", Deserialize(name.Local, "", fmt.Errorf("%w: element %s inside text value", ErrUnexpectedNode, t.Name.Local))
		}
	}
}

// ReadValueElement advances to the start of ns:local and returns its text.
func (r *Reader) ReadValueElement(ns Namespace, local string) (string, error) {
	if err := r.ReadStartElement(ns, local); err != nil {
		return "", err
	}
	return r.ReadElementValue()
}

// SkipCurrentElement skips the current element and all of its content,
// leaving the reader on its end tag. It is a no-op on other node types.
func (r *Reader) SkipCurrentElement() error {
	if r.typ != NodeStartElement {
		return nil
	}
	depth := 1
	for depth > 0 {
		if err := r.Read(); err != nil {
			return err
		}
		switch r.typ {
		case NodeStartElement:
			depth++
		case NodeEndElement:
			depth--
		}
	}
	return nil
}

// ReadToStart advances until the start of ns:local, skipping anything
// before it. It returns io.EOF when the element is not found.
func (r *Reader) ReadToStart(ns Namespace, local string) error {
	for !r.IsStartElement(ns, local) {
		if err := r.Read(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) unexpected(want string) error {
	got := r.typ.String()
	if r.typ == NodeStartElement || r.typ == NodeEndElement {
		got += " " + r.name.Local
	}
	return fmt.Errorf("%w: expected %s, found %s", ErrUnexpectedNode, want, got)
}
