package memory

import (
	"time"

	"github.com/rbaliyan/ews"
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// object is a stored item or folder. Its bag is owned as a new object so
// the server can set and delete any property without flag checks.
type object struct {
	srv       *Server
	kind      *ews.Kind
	bag       *property.Bag
	id        string
	changeKey string
	parent    string
	wellKnown string
	created   time.Time
}

func (s *Server) newObject(kind *ews.Kind) *object {
	o := &object{srv: s, kind: kind}
	o.bag = property.NewBag(o)
	return o
}

func (o *object) Schema() *property.Schema    { return o.kind.Schema() }
func (o *object) IsNew() bool                 { return true }
func (o *object) Settings() property.Settings { return o.srv.settings }
func (o *object) Names() property.Names       { return o.kind.Names() }
func (o *object) CustomDateTimeScoping() bool { return o.kind.CustomDateTimeScoping() }
func (o *object) isFolder() bool              { return o.kind.IsFolder() }
func (o *object) idElement() string           { return o.kind.Names().ID }

func (o *object) ref() ref {
	return ref{id: o.id, changeKey: o.changeKey, folder: o.isFolder()}
}

func (o *object) def(elem string) (property.Definition, bool) {
	return o.Schema().LookupElement(elem)
}

// loadValues loads the property elements fn writes into the bag, keeping
// the values already present.
func (o *object) loadValues(fn func(w *wire.Writer)) error {
	w := wire.NewWriter()
	w.WriteStartElement(wire.NamespaceTypes, o.kind.Name())
	fn(w)
	w.WriteEndElement()
	data, err := w.Bytes()
	if err != nil {
		return err
	}
	r := wire.NewReaderBytes(data)
	if err := r.ReadToStart(wire.NamespaceTypes, o.kind.Name()); err != nil {
		return err
	}
	return o.bag.LoadXML(r, false, nil, false)
}

// defaultItemClass is the message class given to items created without one.
var defaultItemClass = map[*ews.Kind]string{
	ews.KindMessage:      "IPM.Note",
	ews.KindPostItem:     "IPM.Post",
	ews.KindCalendarItem: "IPM.Appointment",
	ews.KindContact:      "IPM.Contact",
	ews.KindTask:         "IPM.Task",
}

// stamp loads the server-managed properties: the id with its current
// change key, the parent folder and the timestamps.
func (s *Server) stamp(o *object, draft bool) error {
	now := wire.FormatDateTime(s.now().UTC())
	return o.loadValues(func(w *wire.Writer) {
		w.WriteStartElement(wire.NamespaceTypes, o.idElement())
		w.WriteAttribute(wire.AttrID, o.id)
		w.WriteAttribute(wire.AttrChangeKey, o.changeKey)
		w.WriteEndElement()
		if o.parent != "" {
			p := s.objects[o.parent]
			w.WriteStartElement(wire.NamespaceTypes, wire.ElemParentFolderID)
			w.WriteAttribute(wire.AttrID, p.id)
			w.WriteAttribute(wire.AttrChangeKey, p.changeKey)
			w.WriteEndElement()
		}
		if o.isFolder() {
			if o.wellKnown != "" {
				w.WriteElementValue(wire.NamespaceTypes, wire.ElemDistinguishedFolder, o.wellKnown)
			}
			return
		}
		w.WriteElementValue(wire.NamespaceTypes, "DateTimeCreated", wire.FormatDateTime(o.created))
		w.WriteElementValue(wire.NamespaceTypes, "LastModifiedTime", now)
		w.WriteElementValue(wire.NamespaceTypes, "IsDraft", wire.FormatBool(draft))
		if o.kind == ews.KindMessage && !draft && !o.bag.Contains(ews.ItemDateTimeReceived) {
			w.WriteElementValue(wire.NamespaceTypes, "DateTimeReceived", now)
		}
		if class, ok := defaultItemClass[o.kind]; ok && !o.bag.Contains(ews.ItemClass) {
			w.WriteElementValue(wire.NamespaceTypes, "ItemClass", class)
		}
	})
}

// refreshCounts loads the item and child folder counts of a folder.
func (s *Server) refreshCounts(f *object) error {
	items := len(s.children(f.id, false))
	folders := len(s.children(f.id, true))
	unread := s.unreadCount(f.id)
	return f.loadValues(func(w *wire.Writer) {
		w.WriteElementValue(wire.NamespaceTypes, "TotalCount", wire.FormatInt(int64(items)))
		w.WriteElementValue(wire.NamespaceTypes, "ChildFolderCount", wire.FormatInt(int64(folders)))
		w.WriteElementValue(wire.NamespaceTypes, "UnreadCount", wire.FormatInt(int64(unread)))
	})
}

// unreadCount counts the messages in a folder whose IsRead is false.
func (s *Server) unreadCount(folderID string) int {
	n := 0
	for _, it := range s.children(folderID, false) {
		if v, ok := it.bag.TryGet(ews.MessageIsRead); ok {
			if read, _ := v.(bool); !read {
				n++
			}
		}
	}
	return n
}

// entryDictionary is implemented by dictionary properties whose entries
// are addressed by an indexed path.
type entryDictionary interface {
	EntryURI() string
	EntryKeys() []string
	Entry(key string) (string, bool)
	SetEntry(key, value string)
	RemoveEntry(key string) bool
}

// dictionaryFor returns the dictionary property that holds entries
// addressed by uri, and its value when present.
func (o *object) dictionaryFor(uri string) (property.Definition, entryDictionary, bool) {
	for _, d := range o.Schema().Definitions() {
		v, ok := o.bag.TryGet(d)
		if !ok {
			continue
		}
		if dict, ok := v.(entryDictionary); ok && dict.EntryURI() == uri {
			return d, dict, true
		}
	}
	return nil, nil, false
}

// extended returns the extended property collection of the object.
func (o *object) extended() (property.Definition, *property.ExtendedPropertyCollection) {
	d, ok := o.def(wire.ElemExtendedProperty)
	if !ok {
		return nil, nil
	}
	v, _ := o.bag.TryGet(d)
	c, _ := v.(*property.ExtendedPropertyCollection)
	return d, c
}

// apply merges the values loaded into src over the values of o. Entries
// of an indexed dictionary update are added to the stored dictionary.
func (o *object) apply(path property.Path, src *object) error {
	var copied []property.Definition
	for _, d := range src.bag.Loaded() {
		if _, indexed := path.(property.IndexedPath); indexed {
			v, _ := src.bag.TryGet(d)
			if in, ok := v.(entryDictionary); ok {
				if cur, ok := o.bag.TryGet(d); ok {
					if dict, ok := cur.(entryDictionary); ok {
						for _, k := range in.EntryKeys() {
							val, _ := in.Entry(k)
							dict.SetEntry(k, val)
						}
						continue
					}
				}
			}
		}
		copied = append(copied, d)
	}
	if len(copied) == 0 {
		return nil
	}
	return o.loadValues(func(w *wire.Writer) {
		for _, d := range copied {
			d.WriteXML(w, src.bag, false)
		}
	})
}

// remove deletes the value path addresses. It reports whether the path
// names a property of the object.
func (o *object) remove(path property.Path) bool {
	switch p := path.(type) {
	case property.URIPath:
		d, ok := o.Schema().LookupURI(string(p))
		if !ok {
			return false
		}
		return o.bag.Delete(d) == nil
	case property.IndexedPath:
		if _, dict, ok := o.dictionaryFor(p.URI); ok {
			dict.RemoveEntry(p.Index)
		}
		return true
	case *property.ExtendedPropertyDefinition:
		if _, c := o.extended(); c != nil {
			c.Remove(p)
		}
		return true
	}
	return false
}
