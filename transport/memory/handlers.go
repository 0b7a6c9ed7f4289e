package memory

import (
	"github.com/rbaliyan/ews"
	"github.com/rbaliyan/ews/property"
)

// defaultParent is the folder an item is created in when the request
// names none.
var defaultParent = map[*ews.Kind]ews.WellKnownFolder{
	ews.KindCalendarItem: ews.FolderCalendar,
	ews.KindContact:      ews.FolderContacts,
	ews.KindTask:         ews.FolderTasks,
	ews.KindPostItem:     ews.FolderInbox,
}

// lookup resolves r to a live object of the right family.
func (s *Server) lookup(r ref) (*object, *message) {
	if r.id == "" && r.wellKnown == "" {
		m := failure("ErrorInvalidIdEmpty", "Id must not be empty.")
		return nil, &m
	}
	o, ok := s.resolve(r)
	if !ok || o.isFolder() != r.folder {
		code := "ErrorItemNotFound"
		if r.folder {
			code = "ErrorFolderNotFound"
		}
		m := failuref(code, "The specified object %s was not found in the store.", r)
		return nil, &m
	}
	return o, nil
}

func (s *Server) get(req *request) []message {
	msgs := make([]message, 0, len(req.ids))
	for _, r := range req.ids {
		o, fail := s.lookup(r)
		if fail != nil {
			msgs = append(msgs, *fail)
			continue
		}
		v, fail := s.viewFor(o, req.shape, false)
		if fail != nil {
			msgs = append(msgs, *fail)
			continue
		}
		msgs = append(msgs, message{
			container: containerFor(o.isFolder()),
			objects:   []rendered{{obj: o, view: v}},
		})
	}
	return msgs
}

func (s *Server) parentFor(req *request, o *object) (*object, *message) {
	if req.parent != nil {
		return s.lookup(*req.parent)
	}
	name := ews.FolderMsgFolderRoot
	if !o.isFolder() {
		name = ews.FolderDrafts
		if n, ok := defaultParent[o.kind]; ok {
			name = n
		}
	}
	return s.lookup(ref{wellKnown: string(name), folder: true})
}

func (s *Server) create(req *request) []message {
	disposition := ews.MessageDisposition(req.attr("MessageDisposition"))
	if disposition == "" {
		disposition = ews.SaveOnly
	}
	msgs := make([]message, 0, len(req.objects))
	for _, o := range req.objects {
		parent, fail := s.parentFor(req, o)
		if fail != nil {
			msgs = append(msgs, *fail)
			continue
		}
		isMessage := o.kind == ews.KindMessage
		if isMessage && disposition == ews.SendOnly {
			msgs = append(msgs, message{container: containerFor(false)})
			continue
		}
		if isMessage && disposition == ews.SendAndSaveCopy && req.parent == nil {
			parent = s.objects[s.wellKnown[string(ews.FolderSentItems)]]
		}

		o.id = newID()
		o.changeKey = newID()
		o.parent = parent.id
		o.created = s.now().UTC()
		draft := isMessage && disposition == ews.SaveOnly
		if err := s.stamp(o, draft); err != nil {
			msgs = append(msgs, failure("ErrorSchemaValidation", err.Error()))
			continue
		}
		s.store(o)
		s.recordCreated(o)

		m := message{container: containerFor(o.isFolder())}
		if !isMessage || disposition == ews.SaveOnly {
			m.objects = []rendered{{obj: o, view: idView(o)}}
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// isDraft reports the stored IsDraft value of an item.
func isDraft(o *object) bool {
	v, _ := o.bag.TryGet(ews.ItemIsDraft)
	b, _ := v.(bool)
	return b
}

func (s *Server) update(req *request) []message {
	cr := ews.ConflictResolution(req.attr("ConflictResolution"))
	msgs := make([]message, 0, len(req.changes))
	for _, c := range req.changes {
		o, fail := s.lookup(c.target)
		if fail == nil {
			fail = s.checkChange(o, c, cr)
		}
		if fail != nil {
			msgs = append(msgs, *fail)
			continue
		}
		var err error
		for _, u := range c.updates {
			if u.value == nil {
				o.remove(u.path)
				continue
			}
			if err = o.apply(u.path, u.value); err != nil {
				break
			}
		}
		if err == nil {
			o.changeKey = newID()
			err = s.stamp(o, isDraft(o))
		}
		if err != nil {
			msgs = append(msgs, failure("ErrorSchemaValidation", err.Error()))
			continue
		}
		s.record(ews.EventModified, o, "")
		if o.kind == ews.KindCalendarItem {
			s.record(ews.EventFreeBusyChanged, o, "")
		}
		msgs = append(msgs, message{
			container: containerFor(o.isFolder()),
			objects:   []rendered{{obj: o, view: idView(o)}},
		})
	}
	return msgs
}

// checkChange validates a change before any of it is applied.
func (s *Server) checkChange(o *object, c change, cr ews.ConflictResolution) *message {
	if cr == ews.NeverOverwrite && c.target.changeKey != "" && c.target.changeKey != o.changeKey {
		m := failure("ErrorIrresolvableConflict", "The send or update operation could not be performed because the change key passed in the request does not match the current change key for the item.")
		return &m
	}
	for _, u := range c.updates {
		if u.value != nil && u.value.kind != o.kind {
			m := failuref("ErrorObjectTypeChanged", "cannot set a %s property on a %s", u.value.kind.Name(), o.kind.Name())
			return &m
		}
		if p, ok := u.path.(property.URIPath); ok {
			if _, known := o.Schema().LookupURI(string(p)); !known {
				m := failuref("ErrorInvalidPropertyRequest", "%s is not a property of %s", p, o.kind.Name())
				return &m
			}
		}
	}
	return nil
}

func (s *Server) delete(req *request) []message {
	mode := ews.DeleteMode(req.attr("DeleteType"))
	deleted := s.wellKnown[string(ews.FolderDeletedItems)]
	msgs := make([]message, 0, len(req.ids))
	for _, r := range req.ids {
		o, fail := s.lookup(r)
		if fail != nil {
			msgs = append(msgs, *fail)
			continue
		}
		if o.wellKnown != "" {
			msgs = append(msgs, failuref("ErrorCannotDeleteObject", "Distinguished folder %s cannot be deleted.", o.wellKnown))
			continue
		}
		if mode == ews.MoveToDeletedItems && o.parent != deleted {
			old := o.parent
			o.parent = deleted
			o.changeKey = newID()
			if err := s.stamp(o, isDraft(o)); err != nil {
				msgs = append(msgs, failure("ErrorSchemaValidation", err.Error()))
				continue
			}
			s.record(ews.EventMoved, o, old)
			msgs = append(msgs, message{})
			continue
		}
		s.destroy(o)
		msgs = append(msgs, message{})
	}
	return msgs
}

// destroy removes o and, for a folder, everything below it.
func (s *Server) destroy(o *object) {
	if o.isFolder() {
		for _, c := range s.children(o.id, false) {
			s.destroy(c)
		}
		for _, c := range s.children(o.id, true) {
			s.destroy(c)
		}
	}
	s.record(ews.EventDeleted, o, "")
	s.remove(o)
}

func (s *Server) findItem(req *request) []message {
	if len(req.folders) == 0 {
		return []message{failure("ErrorInvalidRequest", "FindItem requires a parent folder.")}
	}
	f, fail := s.lookup(req.folders[0])
	if fail != nil {
		return []message{*fail}
	}
	items := s.children(f.id, false)
	total := len(items)
	start := min(max(req.offset, 0), total)
	end := total
	if req.maxEntries > 0 {
		end = min(start+req.maxEntries, total)
	}

	root := &rootFolder{offset: end, total: total, last: end >= total}
	for _, o := range items[start:end] {
		v, fail := s.viewFor(o, req.shape, true)
		if fail != nil {
			return []message{*fail}
		}
		root.items = append(root.items, rendered{obj: o, view: v})
	}
	return []message{{root: root}}
}
