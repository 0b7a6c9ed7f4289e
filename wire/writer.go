package wire

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Writer emits protocol XML with fixed namespace prefixes ("m", "t").
// Errors are sticky: after the first failure every call is a no-op and
// Err reports the failure.
//
// Start tags are held open until content or the matching end arrives, so
// an element with no content is written self-closed.
type Writer struct {
	buf     bytes.Buffer
	stack   []string
	pending bool
	err     error
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

func qualified(ns Namespace, local string) string {
	if p := ns.Prefix(); p != "" {
		return p + ":" + local
	}
	return local
}

func (w *Writer) closePending() {
	if w.pending {
		w.buf.WriteByte('>')
		w.pending = false
	}
}

// WriteStartElement opens ns:local.
func (w *Writer) WriteStartElement(ns Namespace, local string) {
	if w.err != nil {
		return
	}
	w.closePending()
	name := qualified(ns, local)
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	w.stack = append(w.stack, name)
	w.pending = true
}

// WriteAttribute adds an attribute to the element just opened.
func (w *Writer) WriteAttribute(name, value string) {
	if w.err != nil {
		return
	}
	if !w.pending {
		w.err = fmt.Errorf("%w: attribute %s outside a start tag", ErrUnbalancedWrite, name)
		return
	}
	w.buf.WriteByte(' ')
	w.buf.WriteString(name)
	w.buf.WriteString(`="`)
	w.escape(value)
	w.buf.WriteByte('"')
}

// WriteNamespaceDeclarations declares the m and t prefixes on the element
// just opened. Used on document roots.
func (w *Writer) WriteNamespaceDeclarations() {
	w.WriteAttribute("xmlns:m", MessagesURI)
	w.WriteAttribute("xmlns:t", TypesURI)
}

// WriteValue writes escaped character data.
func (w *Writer) WriteValue(s string) {
	if w.err != nil || s == "" {
		return
	}
	w.closePending()
	w.escape(s)
}

// WriteEndElement closes the innermost open element.
func (w *Writer) WriteEndElement() {
	if w.err != nil {
		return
	}
	if len(w.stack) == 0 {
		w.err = fmt.Errorf("%w: no open element", ErrUnbalancedWrite)
		return
	}
	name := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if w.pending {
		w.buf.WriteString("/>")
		w.pending = false
		return
	}
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
}

// WriteElementValue writes <ns:local>value</ns:local>.
func (w *Writer) WriteElementValue(ns Namespace, local, value string) {
	w.WriteStartElement(ns, local)
	w.WriteValue(value)
	w.WriteEndElement()
}

// Fail records err as the writer's sticky error if none is set.
func (w *Writer) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Err returns the first error encountered.
func (w *Writer) Err() error { return w.err }

// Depth returns the number of open elements.
func (w *Writer) Depth() int { return len(w.stack) }

// Bytes returns the document written so far. It fails if elements are
// still open.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if len(w.stack) != 0 {
		return nil, fmt.Errorf("%w: %d element(s) left open", ErrUnbalancedWrite, len(w.stack))
	}
	return w.buf.Bytes(), nil
}

// String returns the document written so far, ignoring errors.
func (w *Writer) String() string {
	s := w.buf.String()
	if w.pending {
		s += ">"
	}
	return s
}

func (w *Writer) escape(s string) {
	if err := xml.EscapeText(&w.buf, []byte(s)); err != nil {
		w.err = err
	}
}
