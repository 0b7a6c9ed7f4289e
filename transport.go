package ews

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rbaliyan/ews/wire"
)

// Operation names.
const (
	OpGetItem      = "GetItem"
	OpCreateItem   = "CreateItem"
	OpUpdateItem   = "UpdateItem"
	OpDeleteItem   = "DeleteItem"
	OpFindItem     = "FindItem"
	OpGetFolder    = "GetFolder"
	OpCreateFolder = "CreateFolder"
	OpUpdateFolder = "UpdateFolder"
	OpDeleteFolder = "DeleteFolder"
	OpSubscribe    = "Subscribe"
	OpUnsubscribe  = "Unsubscribe"
	OpGetEvents    = "GetEvents"
)

// Request is one operation document. Body holds the operation element in
// the request format: an m:-namespaced XML element, or a JSON object
// whose "__type" names the operation.
type Request struct {
	Operation string
	Version   wire.Version
	Format    wire.Format
	RequestID string
	Body      []byte
}

// Response carries the response document of one request.
type Response struct {
	Body []byte
}

// Transport delivers requests to a server. Implementations handle the
// envelope, authentication and the connection; they must be safe for
// concurrent use. A transport error means the request did not produce a
// response document; failed response messages are reported in the body.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// RoundTrip calls f.
func (f TransportFunc) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// responseMessage is the status part of one response message.
type responseMessage struct {
	class   string
	code    string
	text    string
	backOff time.Duration
}

func (m responseMessage) err(op string) error {
	if m.class == "" || m.class == "Success" || m.class == "Warning" {
		return nil
	}
	return &ServiceError{Operation: op, Code: m.code, Message: m.text, BackOff: m.backOff}
}

// backOffValue names the MessageXml value in which a throttled response
// carries the requested delay.
const backOffValue = "BackOffMilliseconds"

func parseBackOff(s string) time.Duration {
	ms, err := wire.ParseInt(s)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// throttled returns the error of a response whose first message is a
// server busy failure. Such a response fails the whole request.
func throttled(op string, format wire.Format, body []byte) error {
	if !bytes.Contains(body, []byte("ErrorServerBusy")) {
		return nil
	}
	var msgs []responseMessage
	var err error
	if format == wire.FormatJSON {
		_, msgs, err = readResponseJSON(body)
	} else {
		msgs, err = readResponseXML(body, nil)
	}
	if err != nil || len(msgs) == 0 || msgs[0].code != "ErrorServerBusy" {
		return nil
	}
	return msgs[0].err(op)
}

// newRequestWriter starts an XML request document for op.
func newRequestWriter(op string) *wire.Writer {
	w := wire.NewWriter()
	w.WriteStartElement(wire.NamespaceMessages, op)
	w.WriteNamespaceDeclarations()
	return w
}

// newRequestObject starts a JSON request document for op.
func newRequestObject(op string) wire.Object {
	return wire.NewObject(op + "Request")
}

// readResponseXML walks the response messages of an XML response
// document. For every payload child of message i, fn is called positioned
// on the child's start element and must consume it.
func readResponseXML(body []byte, fn func(i int, r *wire.Reader) error) ([]responseMessage, error) {
	r := wire.NewReaderBytes(body)
	if err := r.ReadToStart(wire.NamespaceMessages, wire.ElemResponseMessages); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no %s element", ErrUnexpectedResponse, wire.ElemResponseMessages)
		}
		return nil, err
	}
	var msgs []responseMessage
	for {
		if err := r.Read(); err != nil {
			return nil, wire.Deserialize(wire.ElemResponseMessages, "", err)
		}
		if r.IsEndElement(wire.NamespaceMessages, wire.ElemResponseMessages) {
			return msgs, nil
		}
		if !r.IsStart() {
			continue
		}
		msg, err := readMessageXML(r, len(msgs), fn)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
}

func readMessageXML(r *wire.Reader, i int, fn func(i int, r *wire.Reader) error) (responseMessage, error) {
	elem := r.LocalName()
	msg := responseMessage{class: r.Attr(wire.AttrResponseClass)}
	for {
		if err := r.Read(); err != nil {
			return msg, wire.Deserialize(elem, "", err)
		}
		if r.IsEndElement(wire.NamespaceMessages, elem) {
			return msg, nil
		}
		if !r.IsStart() {
			continue
		}
		var err error
		switch r.LocalName() {
		case wire.ElemResponseCode:
			msg.code, err = r.ReadElementValue()
		case wire.ElemMessageText:
			msg.text, err = r.ReadElementValue()
		case "MessageXml":
			msg.backOff, err = readMessageXMLValues(r)
		case "DescriptiveLinkKey":
			err = r.SkipCurrentElement()
		default:
			if fn == nil {
				err = r.SkipCurrentElement()
			} else {
				err = fn(i, r)
			}
		}
		if err != nil {
			return msg, err
		}
	}
}

// readMessageXMLValues consumes a MessageXml element and returns the
// back-off delay among its values, if any.
func readMessageXMLValues(r *wire.Reader) (time.Duration, error) {
	var backOff time.Duration
	for {
		if err := r.Read(); err != nil {
			return 0, wire.Deserialize("MessageXml", "", err)
		}
		if r.IsEndElement(wire.NamespaceMessages, "MessageXml") {
			return backOff, nil
		}
		if !r.IsStart() {
			continue
		}
		if r.LocalName() != "Value" || r.Attr("Name") != backOffValue {
			if err := r.SkipCurrentElement(); err != nil {
				return 0, err
			}
			continue
		}
		v, err := r.ReadElementValue()
		if err != nil {
			return 0, err
		}
		backOff = parseBackOff(v)
	}
}

// readResponseJSON returns the response message objects of a JSON
// response document.
func readResponseJSON(body []byte) ([]wire.Object, []responseMessage, error) {
	doc, err := wire.DecodeObject(body)
	if err != nil {
		return nil, nil, err
	}
	container, ok := doc.GetObject(wire.ElemResponseMessages)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no %s member", ErrUnexpectedResponse, wire.ElemResponseMessages)
	}
	items, _ := container.GetArray(wire.ElemItems)
	objs := make([]wire.Object, 0, len(items))
	msgs := make([]responseMessage, 0, len(items))
	for _, raw := range items {
		o, err := wire.AsObject(raw)
		if err != nil {
			return nil, nil, wire.Deserialize(wire.ElemResponseMessages, "", err)
		}
		var m responseMessage
		m.class, _ = o.GetString(wire.AttrResponseClass)
		m.code, _ = o.GetString(wire.ElemResponseCode)
		m.text, _ = o.GetString(wire.ElemMessageText)
		if x, ok := o.GetObject("MessageXml"); ok {
			v, _ := x.GetString(backOffValue)
			m.backOff = parseBackOff(v)
		}
		objs = append(objs, o)
		msgs = append(msgs, m)
	}
	return objs, msgs, nil
}
