package memory

import (
	"fmt"
	"strconv"

	"github.com/rbaliyan/ews"
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// ref names an item, a folder or a distinguished folder.
type ref struct {
	id        string
	changeKey string
	wellKnown string
	folder    bool
}

func (r ref) String() string {
	if r.wellKnown != "" {
		return r.wellKnown
	}
	return r.id
}

// update is one set-field or delete-field change.
type update struct {
	path  property.Path
	value *object // nil for a delete
}

type change struct {
	target  ref
	updates []update
}

// request is an operation document in either encoding.
type request struct {
	attrs   map[string]string
	shape   *property.PropertySet
	ids     []ref
	parent  *ref
	objects []*object
	changes []change

	folders    []ref
	offset     int
	maxEntries int

	eventTypes   []string
	timeout      int
	subscription string
	watermark    string
}

func newRequest() *request {
	return &request{attrs: make(map[string]string)}
}

func (r *request) attr(name string) string { return r.attrs[name] }

// parseXML reads an m:-namespaced operation element.
func (s *Server) parseXML(op string, body []byte) (*request, error) {
	r := wire.NewReaderBytes(body)
	if err := r.ReadToStart(wire.NamespaceMessages, op); err != nil {
		return nil, fmt.Errorf("no %s element: %w", op, err)
	}
	req := newRequest()
	for _, a := range r.Attrs() {
		if a.Name.Space == "" {
			req.attrs[a.Name.Local] = a.Value
		}
	}
	for {
		if err := r.Read(); err != nil {
			return nil, err
		}
		if r.IsEndElement(wire.NamespaceMessages, op) {
			return req, nil
		}
		if !r.IsStart() {
			continue
		}
		if err := s.readParamXML(r, req); err != nil {
			return nil, err
		}
	}
}

func (s *Server) readParamXML(r *wire.Reader, req *request) error {
	name := r.LocalName()
	var err error
	switch name {
	case "ItemShape", "FolderShape":
		req.shape, err = property.ReadPropertySetXML(r)
	case "ItemIds", "FolderIds":
		req.ids, err = readRefsXML(r, name)
	case "ParentFolderIds":
		req.folders, err = readRefsXML(r, name)
	case "SavedItemFolderId", wire.ElemParentFolderID:
		var refs []ref
		if refs, err = readRefsXML(r, name); err == nil && len(refs) > 0 {
			req.parent = &refs[0]
		}
	case wire.ElemItems, wire.ElemFolders:
		err = eachChild(r, name, func() error {
			o, err := s.readObjectXML(r)
			if o != nil {
				req.objects = append(req.objects, o)
			}
			return err
		})
	case "ItemChanges", "FolderChanges":
		err = eachChild(r, name, func() error {
			c, err := s.readChangeXML(r)
			req.changes = append(req.changes, c)
			return err
		})
	case "IndexedPageItemView":
		if req.maxEntries, err = atoi(r.Attr("MaxEntriesReturned")); err == nil {
			req.offset, err = atoi(r.Attr("Offset"))
		}
		if err == nil {
			err = r.SkipCurrentElement()
		}
	case "PullSubscriptionRequest":
		err = eachChild(r, name, func() error {
			var err error
			switch r.LocalName() {
			case "FolderIds":
				req.folders, err = readRefsXML(r, "FolderIds")
			case "EventTypes":
				err = eachChild(r, "EventTypes", func() error {
					v, err := r.ReadElementValue()
					req.eventTypes = append(req.eventTypes, v)
					return err
				})
			case "Timeout":
				var v string
				if v, err = r.ReadElementValue(); err == nil {
					req.timeout, err = atoi(v)
				}
			default:
				err = r.SkipCurrentElement()
			}
			return err
		})
	case "SubscriptionId":
		req.subscription, err = r.ReadElementValue()
	case "Watermark":
		req.watermark, err = r.ReadElementValue()
	default:
		err = r.SkipCurrentElement()
	}
	return err
}

// eachChild calls fn on every child start element of elem. fn must
// consume the element.
func eachChild(r *wire.Reader, elem string, fn func() error) error {
	for {
		if err := r.Read(); err != nil {
			return err
		}
		if r.IsEndElement(wire.NamespaceNone, elem) {
			return nil
		}
		if !r.IsStart() {
			continue
		}
		if err := fn(); err != nil {
			return err
		}
	}
}

func readRefsXML(r *wire.Reader, elem string) ([]ref, error) {
	var refs []ref
	err := eachChild(r, elem, func() error {
		switch r.LocalName() {
		case wire.ElemItemID:
			refs = append(refs, ref{id: r.Attr(wire.AttrID), changeKey: r.Attr(wire.AttrChangeKey)})
		case wire.ElemFolderID:
			refs = append(refs, ref{id: r.Attr(wire.AttrID), changeKey: r.Attr(wire.AttrChangeKey), folder: true})
		case wire.ElemDistinguishedFolder:
			refs = append(refs, ref{wellKnown: r.Attr(wire.AttrID), folder: true})
		}
		return r.SkipCurrentElement()
	})
	return refs, err
}

// readObjectXML loads the object element the reader is on into a
// detached object. Unknown elements yield nil.
func (s *Server) readObjectXML(r *wire.Reader) (*object, error) {
	kind, ok := ews.KindOf(r.LocalName())
	if !ok {
		return nil, r.SkipCurrentElement()
	}
	o := s.newObject(kind)
	if err := o.bag.LoadXML(r, true, nil, false); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Server) readChangeXML(r *wire.Reader) (change, error) {
	var c change
	err := eachChild(r, r.LocalName(), func() error {
		switch name := r.LocalName(); name {
		case wire.ElemItemID, wire.ElemFolderID:
			c.target = ref{id: r.Attr(wire.AttrID), changeKey: r.Attr(wire.AttrChangeKey), folder: name == wire.ElemFolderID}
			return r.SkipCurrentElement()
		case wire.ElemUpdates:
			return eachChild(r, wire.ElemUpdates, func() error {
				u, err := s.readUpdateXML(r)
				c.updates = append(c.updates, u)
				return err
			})
		}
		return r.SkipCurrentElement()
	})
	return c, err
}

func (s *Server) readUpdateXML(r *wire.Reader) (update, error) {
	var u update
	elem := r.LocalName()
	err := eachChild(r, elem, func() error {
		switch r.LocalName() {
		case wire.ElemFieldURI, wire.ElemIndexedFieldURI, wire.ElemExtendedFieldURI:
			p, err := property.ReadPath(r)
			u.path = p
			return err
		}
		if isDelete(elem) {
			return r.SkipCurrentElement()
		}
		o, err := s.readObjectXML(r)
		if o != nil {
			u.value = o
		}
		return err
	})
	if err == nil && u.path == nil {
		err = fmt.Errorf("%s without a path", elem)
	}
	return u, err
}

func isDelete(elem string) bool {
	return elem == "DeleteItemField" || elem == "DeleteFolderField"
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// parseJSON reads a request object.
func (s *Server) parseJSON(op string, body []byte) (*request, error) {
	doc, err := wire.DecodeObject(body)
	if err != nil {
		return nil, err
	}
	if doc.TypeName() != op+"Request" {
		return nil, fmt.Errorf("request type %q does not match %s", doc.TypeName(), op)
	}
	req := newRequest()
	for k, v := range doc {
		if str, ok := v.(string); ok {
			req.attrs[k] = str
		}
	}
	for _, key := range []string{"ItemShape", "FolderShape"} {
		if o, ok := doc.GetObject(key); ok {
			if req.shape, err = property.ReadPropertySetJSON(o); err != nil {
				return nil, err
			}
		}
	}
	for _, key := range []string{"ItemIds", "FolderIds"} {
		if arr, ok := doc.GetArray(key); ok {
			if req.ids, err = refsJSON(arr); err != nil {
				return nil, err
			}
		}
	}
	if arr, ok := doc.GetArray("ParentFolderIds"); ok {
		if req.folders, err = refsJSON(arr); err != nil {
			return nil, err
		}
	}
	for _, key := range []string{"SavedItemFolderId", wire.ElemParentFolderID} {
		if o, ok := doc.GetObject(key); ok {
			base, ok := o.GetObject("BaseFolderId")
			if !ok {
				return nil, fmt.Errorf("%s without BaseFolderId", key)
			}
			p := refJSON(base)
			req.parent = &p
		}
	}
	for _, key := range []string{wire.ElemItems, wire.ElemFolders} {
		arr, _ := doc.GetArray(key)
		for _, raw := range arr {
			o, err := s.objectFromJSON(raw)
			if err != nil {
				return nil, err
			}
			if o != nil {
				req.objects = append(req.objects, o)
			}
		}
	}
	for _, key := range []string{"ItemChanges", "FolderChanges"} {
		arr, _ := doc.GetArray(key)
		for _, raw := range arr {
			c, err := s.changeFromJSON(raw)
			if err != nil {
				return nil, err
			}
			req.changes = append(req.changes, c)
		}
	}
	if paging, ok := doc.GetObject("Paging"); ok {
		if req.maxEntries, err = intMember(paging, "MaxEntriesReturned"); err != nil {
			return nil, err
		}
		if req.offset, err = intMember(paging, "Offset"); err != nil {
			return nil, err
		}
	}
	if sub, ok := doc.GetObject("SubscriptionRequest"); ok {
		arr, _ := sub.GetArray("FolderIds")
		if req.folders, err = refsJSON(arr); err != nil {
			return nil, err
		}
		types, _ := sub.GetArray("EventTypes")
		for _, t := range types {
			name, err := wire.AsString(t)
			if err != nil {
				return nil, err
			}
			req.eventTypes = append(req.eventTypes, name)
		}
		if v, ok := sub.GetString("Timeout"); ok {
			if req.timeout, err = atoi(v); err != nil {
				return nil, err
			}
		}
	}
	req.subscription = req.attrs["SubscriptionId"]
	req.watermark = req.attrs["Watermark"]
	return req, nil
}

func intMember(o wire.Object, key string) (int, error) {
	v, ok := o[key]
	if !ok {
		return 0, nil
	}
	n, err := wire.AsInt(v)
	return int(n), err
}

func refJSON(o wire.Object) ref {
	id, _ := o.GetString(wire.AttrID)
	ck, _ := o.GetString(wire.AttrChangeKey)
	switch o.TypeName() {
	case wire.ElemDistinguishedFolder:
		return ref{wellKnown: id, folder: true}
	case wire.ElemFolderID:
		return ref{id: id, changeKey: ck, folder: true}
	}
	return ref{id: id, changeKey: ck}
}

func refsJSON(arr []any) ([]ref, error) {
	refs := make([]ref, 0, len(arr))
	for _, raw := range arr {
		o, err := wire.AsObject(raw)
		if err != nil {
			return nil, err
		}
		refs = append(refs, refJSON(o))
	}
	return refs, nil
}

// objectFromJSON loads a typed object. Unknown types yield nil.
func (s *Server) objectFromJSON(raw any) (*object, error) {
	o, err := wire.AsObject(raw)
	if err != nil {
		return nil, err
	}
	kind, ok := ews.KindOf(o.TypeName())
	if !ok {
		return nil, nil
	}
	obj := s.newObject(kind)
	if err := obj.bag.LoadJSON(o, true, nil, false); err != nil {
		return nil, err
	}
	return obj, nil
}

func (s *Server) changeFromJSON(raw any) (change, error) {
	var c change
	o, err := wire.AsObject(raw)
	if err != nil {
		return c, err
	}
	for _, key := range []string{wire.ElemItemID, wire.ElemFolderID} {
		if id, ok := o.GetObject(key); ok {
			c.target = refJSON(id)
			c.target.folder = key == wire.ElemFolderID
		}
	}
	updates, _ := o.GetArray(wire.ElemUpdates)
	for _, rawUpdate := range updates {
		uo, err := wire.AsObject(rawUpdate)
		if err != nil {
			return c, err
		}
		var u update
		if u.path, err = property.ReadPathJSON(uo["Path"]); err != nil {
			return c, err
		}
		if !isDelete(uo.TypeName()) {
			for _, key := range []string{"Item", "Folder"} {
				if v, ok := uo[key]; ok {
					if u.value, err = s.objectFromJSON(v); err != nil {
						return c, err
					}
				}
			}
		}
		c.updates = append(c.updates, u)
	}
	return c, nil
}
