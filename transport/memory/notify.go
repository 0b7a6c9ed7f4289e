package memory

import (
	"slices"
	"time"

	"github.com/rbaliyan/ews"
	"github.com/rbaliyan/ews/wire"
)

const statusEvent = "StatusEvent"

// Pull subscription timeout bounds, in minutes.
const (
	minTimeout = 1
	maxTimeout = 1440
)

// event is one queued notification.
type event struct {
	typ       string
	watermark string
	time      time.Time
	object    ref
	parent    ref
	oldParent ref
	unread    int
	hasUnread bool
}

type idElement struct {
	name string
	ref  ref
}

// ids returns the id elements of the event in protocol order.
func (e event) ids() []idElement {
	name := wire.ElemItemID
	if e.object.folder {
		name = wire.ElemFolderID
	}
	out := []idElement{{name: name, ref: e.object}}
	if e.parent.id != "" {
		out = append(out, idElement{name: wire.ElemParentFolderID, ref: e.parent})
	}
	if e.oldParent.id != "" {
		out = append(out, idElement{name: "OldParentFolderId", ref: e.oldParent})
	}
	return out
}

// subscription is a pull subscription. Events stay queued until a
// GetEvents call presents a later watermark.
type subscription struct {
	id       string
	folders  map[string]bool
	types    map[string]bool
	start    string
	events   []event
	timeout  time.Duration
	lastPull time.Time
}

func (s *Server) folderRef(id string) ref {
	if f, ok := s.objects[id]; ok {
		return f.ref()
	}
	return ref{id: id, folder: true}
}

// record queues an event about o on every subscription watching its
// folder. oldParent is the previous folder of a moved object.
func (s *Server) record(typ ews.EventType, o *object, oldParent string) {
	if len(s.subs) == 0 {
		return
	}
	e := event{typ: string(typ), time: s.now().UTC(), object: o.ref()}
	if o.parent != "" {
		e.parent = s.folderRef(o.parent)
	}
	if oldParent != "" {
		e.oldParent = s.folderRef(oldParent)
	}
	if o.isFolder() && typ == ews.EventModified {
		e.unread, e.hasUnread = s.unreadCount(o.id), true
	}
	for _, sub := range s.subs {
		if !sub.types[e.typ] {
			continue
		}
		if !sub.folders[o.parent] && (oldParent == "" || !sub.folders[oldParent]) {
			continue
		}
		queued := e
		queued.watermark = newID()
		sub.events = append(sub.events, queued)
	}
}

// recordCreated queues the events of a newly stored object.
func (s *Server) recordCreated(o *object) {
	s.record(ews.EventCreated, o, "")
	switch {
	case o.kind == ews.KindMessage && o.parent == s.wellKnown[string(ews.FolderInbox)]:
		s.record(ews.EventNewMail, o, "")
	case o.kind == ews.KindCalendarItem:
		s.record(ews.EventFreeBusyChanged, o, "")
	}
}

func knownEventType(name string) bool {
	return slices.Contains(ews.AllEventTypes, ews.EventType(name))
}

func (s *Server) subscribe(req *request) []message {
	if len(req.folders) == 0 {
		return []message{failure("ErrorInvalidSubscriptionRequest", "A subscription needs at least one folder.")}
	}
	sub := &subscription{
		id:       newID(),
		start:    newID(),
		folders:  make(map[string]bool, len(req.folders)),
		types:    make(map[string]bool, len(req.eventTypes)),
		lastPull: s.now(),
	}
	for _, r := range req.folders {
		f, fail := s.lookup(r)
		if fail != nil {
			return []message{*fail}
		}
		sub.folders[f.id] = true
	}
	if len(req.eventTypes) == 0 {
		return []message{failure("ErrorInvalidSubscriptionRequest", "A subscription needs at least one event type.")}
	}
	for _, t := range req.eventTypes {
		if !knownEventType(t) {
			return []message{failuref("ErrorInvalidRequest", "Unknown event type %s.", t)}
		}
		if ews.EventType(t) == ews.EventFreeBusyChanged && s.settings.Version < wire.Exchange2010SP1 {
			return []message{failuref("ErrorInvalidServerVersion", "%s requires %s.", t, wire.Exchange2010SP1)}
		}
		sub.types[t] = true
	}
	minutes := req.timeout
	if minutes < minTimeout || minutes > maxTimeout {
		return []message{failuref("ErrorInvalidPullSubscriptionTimeout", "Timeout must be between %d and %d minutes.", minTimeout, maxTimeout)}
	}
	sub.timeout = time.Duration(minutes) * time.Minute
	s.subs[sub.id] = sub
	return []message{{fields: []field{
		{name: "SubscriptionId", value: sub.id},
		{name: "Watermark", value: sub.start},
	}}}
}

// subscriptionFor returns a live subscription, dropping it when it was not
// pulled within its timeout.
func (s *Server) subscriptionFor(id string) (*subscription, *message) {
	sub, ok := s.subs[id]
	if !ok {
		m := failure("ErrorSubscriptionNotFound", "The specified subscription was not found.")
		return nil, &m
	}
	if s.now().Sub(sub.lastPull) > sub.timeout {
		delete(s.subs, id)
		m := failure("ErrorExpiredSubscription", "The subscription has expired.")
		return nil, &m
	}
	return sub, nil
}

func (s *Server) getEvents(req *request) []message {
	sub, fail := s.subscriptionFor(req.subscription)
	if fail != nil {
		return []message{*fail}
	}
	if req.watermark != sub.start {
		i := slices.IndexFunc(sub.events, func(e event) bool { return e.watermark == req.watermark })
		if i < 0 {
			return []message{failure("ErrorInvalidWatermark", "The watermark is not valid for this subscription.")}
		}
		sub.events = sub.events[i+1:]
		sub.start = req.watermark
	}
	sub.lastPull = s.now()

	n := min(len(sub.events), s.maxEvents)
	batch := slices.Clone(sub.events[:n])
	if len(batch) == 0 {
		batch = []event{{typ: statusEvent, watermark: sub.start}}
	}
	return []message{{notification: &notification{
		subscription: sub.id,
		previous:     req.watermark,
		more:         len(sub.events) > n,
		events:       batch,
	}}}
}

func (s *Server) unsubscribe(req *request) []message {
	if _, ok := s.subs[req.subscription]; !ok {
		return []message{failure("ErrorSubscriptionNotFound", "The specified subscription was not found.")}
	}
	delete(s.subs, req.subscription)
	return []message{{}}
}
