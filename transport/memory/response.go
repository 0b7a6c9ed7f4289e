package memory

import (
	"fmt"
	"time"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// message is one response message before encoding.
type message struct {
	code    string // empty on success
	text    string
	backOff time.Duration

	container    string // "Items" or "Folders"
	objects      []rendered
	fields       []field
	root         *rootFolder
	notification *notification
}

// field is a text payload element such as SubscriptionId.
type field struct {
	name  string
	value string
}

type rootFolder struct {
	offset int
	total  int
	last   bool
	items  []rendered
}

type notification struct {
	subscription string
	previous     string
	more         bool
	events       []event
}

// rendered is an object with the properties to write for it.
type rendered struct {
	obj  *object
	view view
}

// view selects the properties written for one object.
type view struct {
	defs []property.Definition
	ext  []*property.ExtendedPropertyDefinition
}

// backOffName names the MessageXml value carrying a throttling delay.
const backOffName = "BackOffMilliseconds"

func failure(code, text string) message {
	return message{code: code, text: text}
}

func failuref(code, format string, args ...any) message {
	return message{code: code, text: fmt.Sprintf(format, args...)}
}

// idView writes the id only.
func idView(o *object) view {
	d, _ := o.def(o.idElement())
	return view{defs: []property.Definition{d}}
}

// viewFor resolves a property set against the schema of o. In a summary
// view a property that lists do not return fails with
// ErrorInvalidPropertyRequest. Folder counts are refreshed first so the
// view sees them.
func (s *Server) viewFor(o *object, ps *property.PropertySet, summary bool) (view, *message) {
	if o.isFolder() {
		if err := s.refreshCounts(o); err != nil {
			m := failuref("ErrorInternalServerError", "refresh folder counts: %v", err)
			return view{}, &m
		}
	}
	schema := o.Schema()
	want := make(map[property.Definition]bool)
	if d, ok := o.def(o.idElement()); ok {
		want[d] = true
	}
	if ps != nil && ps.Base() == property.FirstClassProperties {
		base := schema.FirstClass()
		if summary {
			base = schema.FirstClassSummary()
		}
		for _, d := range base {
			want[d] = true
		}
		for _, d := range schema.Definitions() {
			if d.Flags().Has(property.Associated) {
				want[d] = true
			}
		}
	}
	extDef, _ := o.def(wire.ElemExtendedProperty)
	delete(want, extDef)

	var v view
	if ps != nil {
		for _, p := range ps.Paths() {
			switch p := p.(type) {
			case property.URIPath:
				d, ok := schema.LookupURI(string(p))
				if !ok {
					continue
				}
				if summary && !schema.IsFirstClass(d, true) {
					m := failuref("ErrorInvalidPropertyRequest", "%s cannot be requested in a list", p)
					return view{}, &m
				}
				want[d] = true
			case property.IndexedPath:
				if d, _, ok := o.dictionaryFor(p.URI); ok {
					want[d] = true
				}
			case *property.ExtendedPropertyDefinition:
				v.ext = append(v.ext, p)
			}
		}
	}
	version := s.settings.Version
	for _, d := range schema.Definitions() {
		if want[d] && d.Version() <= version && o.bag.Contains(d) {
			v.defs = append(v.defs, d)
		}
	}
	return v, nil
}

// extendedValues returns the requested extended properties o has.
func (r rendered) extendedValues() *property.ExtendedPropertyCollection {
	if len(r.view.ext) == 0 {
		return nil
	}
	_, stored := r.obj.extended()
	if stored == nil {
		return nil
	}
	out := property.NewExtendedPropertyCollection()
	for _, d := range r.view.ext {
		for _, p := range stored.Items() {
			if p.Definition.Equal(d) {
				_ = out.Set(p.Definition, p.Value)
			}
		}
	}
	if out.Len() == 0 {
		return nil
	}
	return out
}

func (s *Server) writeObjectXML(w *wire.Writer, r rendered) {
	w.WriteStartElement(wire.NamespaceTypes, r.obj.kind.Name())
	for _, d := range r.view.defs {
		d.WriteXML(w, r.obj.bag, false)
	}
	if c := r.extendedValues(); c != nil {
		c.WriteXML(w, wire.ElemExtendedProperty)
	}
	w.WriteEndElement()
}

func (s *Server) objectJSON(r rendered) (wire.Object, error) {
	o := wire.NewObject(r.obj.kind.Name())
	for _, d := range r.view.defs {
		if err := d.WriteJSON(o, r.obj.bag, false); err != nil {
			return nil, err
		}
	}
	if c := r.extendedValues(); c != nil {
		v, err := c.WriteJSON()
		if err != nil {
			return nil, err
		}
		o[wire.ElemExtendedProperty] = v
	}
	return o, nil
}

func responseClass(m message) string {
	if m.code == "" {
		return "Success"
	}
	return "Error"
}

func (s *Server) encodeXML(op string, msgs []message) ([]byte, error) {
	w := wire.NewWriter()
	w.WriteStartElement(wire.NamespaceMessages, op+"Response")
	w.WriteNamespaceDeclarations()
	w.WriteStartElement(wire.NamespaceMessages, wire.ElemResponseMessages)
	for _, m := range msgs {
		w.WriteStartElement(wire.NamespaceMessages, op+"ResponseMessage")
		w.WriteAttribute(wire.AttrResponseClass, responseClass(m))
		if m.code != "" {
			w.WriteElementValue(wire.NamespaceMessages, wire.ElemMessageText, m.text)
			w.WriteElementValue(wire.NamespaceMessages, wire.ElemResponseCode, m.code)
			if m.backOff > 0 {
				w.WriteStartElement(wire.NamespaceMessages, "MessageXml")
				w.WriteStartElement(wire.NamespaceTypes, "Value")
				w.WriteAttribute("Name", backOffName)
				w.WriteValue(wire.FormatInt(m.backOff.Milliseconds()))
				w.WriteEndElement()
				w.WriteEndElement()
			}
			w.WriteEndElement()
			continue
		}
		w.WriteElementValue(wire.NamespaceMessages, wire.ElemResponseCode, "NoError")
		if m.container != "" {
			w.WriteStartElement(wire.NamespaceMessages, m.container)
			for _, r := range m.objects {
				s.writeObjectXML(w, r)
			}
			w.WriteEndElement()
		}
		for _, f := range m.fields {
			w.WriteElementValue(wire.NamespaceMessages, f.name, f.value)
		}
		if m.root != nil {
			s.writeRootFolderXML(w, m.root)
		}
		if m.notification != nil {
			writeNotificationXML(w, m.notification)
		}
		w.WriteEndElement()
	}
	w.WriteEndElement()
	w.WriteEndElement()
	return w.Bytes()
}

func (s *Server) writeRootFolderXML(w *wire.Writer, root *rootFolder) {
	w.WriteStartElement(wire.NamespaceMessages, "RootFolder")
	w.WriteAttribute("IndexedPagingOffset", wire.FormatInt(int64(root.offset)))
	w.WriteAttribute("TotalItemsInView", wire.FormatInt(int64(root.total)))
	w.WriteAttribute("IncludesLastItemInRange", wire.FormatBool(root.last))
	w.WriteStartElement(wire.NamespaceTypes, wire.ElemItems)
	for _, r := range root.items {
		s.writeObjectXML(w, r)
	}
	w.WriteEndElement()
	w.WriteEndElement()
}

func writeNotificationXML(w *wire.Writer, n *notification) {
	w.WriteStartElement(wire.NamespaceMessages, "Notification")
	w.WriteElementValue(wire.NamespaceTypes, "SubscriptionId", n.subscription)
	w.WriteElementValue(wire.NamespaceTypes, "PreviousWatermark", n.previous)
	w.WriteElementValue(wire.NamespaceTypes, "MoreEvents", wire.FormatBool(n.more))
	for _, e := range n.events {
		w.WriteStartElement(wire.NamespaceTypes, e.typ)
		w.WriteElementValue(wire.NamespaceTypes, "Watermark", e.watermark)
		if e.typ != statusEvent {
			w.WriteElementValue(wire.NamespaceTypes, "TimeStamp", wire.FormatDateTime(e.time))
			for _, id := range e.ids() {
				w.WriteStartElement(wire.NamespaceTypes, id.name)
				w.WriteAttribute(wire.AttrID, id.ref.id)
				if id.ref.changeKey != "" {
					w.WriteAttribute(wire.AttrChangeKey, id.ref.changeKey)
				}
				w.WriteEndElement()
			}
			if e.hasUnread {
				w.WriteElementValue(wire.NamespaceTypes, "UnreadCount", wire.FormatInt(int64(e.unread)))
			}
		}
		w.WriteEndElement()
	}
	w.WriteEndElement()
}

func (s *Server) encodeJSON(op string, msgs []message) ([]byte, error) {
	items := make([]any, 0, len(msgs))
	for _, m := range msgs {
		o := wire.NewObject(op + "ResponseMessage")
		o[wire.AttrResponseClass] = responseClass(m)
		if m.code != "" {
			o[wire.ElemResponseCode] = m.code
			o[wire.ElemMessageText] = m.text
			if m.backOff > 0 {
				o["MessageXml"] = wire.Object{backOffName: wire.FormatInt(m.backOff.Milliseconds())}
			}
			items = append(items, o)
			continue
		}
		o[wire.ElemResponseCode] = "NoError"
		if m.container != "" {
			arr, err := s.objectsJSON(m.objects)
			if err != nil {
				return nil, err
			}
			o[m.container] = arr
		}
		for _, f := range m.fields {
			o[f.name] = f.value
		}
		if m.root != nil {
			arr, err := s.objectsJSON(m.root.items)
			if err != nil {
				return nil, err
			}
			o["RootFolder"] = wire.Object{
				"IndexedPagingOffset":     m.root.offset,
				"TotalItemsInView":        m.root.total,
				"IncludesLastItemInRange": m.root.last,
				wire.ElemItems:            arr,
			}
		}
		if m.notification != nil {
			o["Notification"] = notificationJSON(m.notification)
		}
		items = append(items, o)
	}
	doc := wire.NewObject(op + "Response")
	doc[wire.ElemResponseMessages] = wire.Object{wire.ElemItems: items}
	return doc.Marshal()
}

func (s *Server) objectsJSON(list []rendered) ([]any, error) {
	out := make([]any, 0, len(list))
	for _, r := range list {
		o, err := s.objectJSON(r)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func notificationJSON(n *notification) wire.Object {
	events := make([]any, 0, len(n.events))
	for _, e := range n.events {
		o := wire.NewObject(e.typ)
		o["Watermark"] = e.watermark
		if e.typ != statusEvent {
			o["TimeStamp"] = wire.FormatDateTime(e.time)
			for _, id := range e.ids() {
				ref := wire.Object{wire.AttrID: id.ref.id}
				if id.ref.changeKey != "" {
					ref[wire.AttrChangeKey] = id.ref.changeKey
				}
				o[id.name] = ref
			}
			if e.hasUnread {
				o["UnreadCount"] = e.unread
			}
		}
		events = append(events, o)
	}
	return wire.Object{
		"SubscriptionId":    n.subscription,
		"PreviousWatermark": n.previous,
		"MoreEvents":        n.more,
		"Events":            events,
	}
}

// containerFor returns the response container of objects of a kind.
func containerFor(folder bool) string {
	if folder {
		return wire.ElemFolders
	}
	return wire.ElemItems
}

