// Package memory provides an in-memory mailbox server that implements
// ews.Transport for both request encodings.
//
// The server keeps items and folders as property bags built on the same
// schemas the client uses, so every property the client can write is
// stored and returned. It is meant for tests and examples: there is no
// persistence, no permission model and no search.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rbaliyan/ews"
	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
)

// DefaultMaxEvents is the most events one GetEvents response carries.
const DefaultMaxEvents = 50

// ErrUnsupportedOperation is returned by RoundTrip for operations the
// server does not implement.
var ErrUnsupportedOperation = errors.New("memory: unsupported operation")

// Server is an in-memory mailbox. It is safe for concurrent use.
type Server struct {
	mu        sync.Mutex
	settings  property.Settings
	now       func() time.Time
	maxEvents int

	objects   map[string]*object // by id, items and folders
	order     []string           // creation order of live objects
	wellKnown map[string]string  // well-known name -> folder id
	subs      map[string]*subscription

	requests  []ews.Request
	failures  []error
	throttles []time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxEvents sets how many events one GetEvents response carries.
func WithMaxEvents(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxEvents = n
		}
	}
}

// WithTimeZones sets the resolver used for time zone names.
func WithTimeZones(r property.TimeZoneResolver) Option {
	return func(s *Server) {
		s.settings.TimeZones = r
	}
}

// New returns a server holding the distinguished folders.
func New(opts ...Option) *Server {
	s := &Server{
		settings:  property.Settings{Version: wire.Latest},
		now:       time.Now,
		maxEvents: DefaultMaxEvents,
		objects:   make(map[string]*object),
		wellKnown: make(map[string]string),
		subs:      make(map[string]*subscription),
	}
	for _, opt := range opts {
		opt(s)
	}

	root := s.addFolder(ews.KindFolder, ews.FolderRoot, "", "Root", "")
	top := s.addFolder(ews.KindFolder, ews.FolderMsgFolderRoot, root.id, "Top of Information Store", "IPF")
	for _, f := range []struct {
		kind  *ews.Kind
		name  ews.WellKnownFolder
		title string
		class string
	}{
		{ews.KindFolder, ews.FolderInbox, "Inbox", "IPF.Note"},
		{ews.KindFolder, ews.FolderDrafts, "Drafts", "IPF.Note"},
		{ews.KindFolder, ews.FolderSentItems, "Sent Items", "IPF.Note"},
		{ews.KindFolder, ews.FolderDeletedItems, "Deleted Items", "IPF.Note"},
		{ews.KindCalendarFolder, ews.FolderCalendar, "Calendar", "IPF.Appointment"},
		{ews.KindContactsFolder, ews.FolderContacts, "Contacts", "IPF.Contact"},
		{ews.KindTasksFolder, ews.FolderTasks, "Tasks", "IPF.Task"},
		{ews.KindFolder, ews.FolderNotes, "Notes", "IPF.StickyNote"},
	} {
		s.addFolder(f.kind, f.name, top.id, f.title, f.class)
	}
	return s
}

// RoundTrip handles one request document.
func (s *Server) RoundTrip(ctx context.Context, req *ews.Request) (*ews.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, ews.Request{
		Operation: req.Operation,
		Version:   req.Version,
		Format:    req.Format,
		RequestID: req.RequestID,
		Body:      append([]byte(nil), req.Body...),
	})
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return nil, err
	}
	if len(s.throttles) > 0 {
		m := failure("ErrorServerBusy", "The server cannot service this request right now. Try again later.")
		m.backOff = s.throttles[0]
		s.throttles = s.throttles[1:]
		return s.encode(req, []message{m})
	}

	s.settings.Version = req.Version
	var parsed *request
	var err error
	if req.Format == wire.FormatJSON {
		parsed, err = s.parseJSON(req.Operation, req.Body)
	} else {
		parsed, err = s.parseXML(req.Operation, req.Body)
	}
	if err != nil {
		return s.encode(req, []message{failure("ErrorSchemaValidation", err.Error())})
	}

	var msgs []message
	switch req.Operation {
	case ews.OpGetItem, ews.OpGetFolder:
		msgs = s.get(parsed)
	case ews.OpCreateItem, ews.OpCreateFolder:
		msgs = s.create(parsed)
	case ews.OpUpdateItem, ews.OpUpdateFolder:
		msgs = s.update(parsed)
	case ews.OpDeleteItem, ews.OpDeleteFolder:
		msgs = s.delete(parsed)
	case ews.OpFindItem:
		msgs = s.findItem(parsed)
	case ews.OpSubscribe:
		msgs = s.subscribe(parsed)
	case ews.OpGetEvents:
		msgs = s.getEvents(parsed)
	case ews.OpUnsubscribe:
		msgs = s.unsubscribe(parsed)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, req.Operation)
	}
	return s.encode(req, msgs)
}

func (s *Server) encode(req *ews.Request, msgs []message) (*ews.Response, error) {
	var body []byte
	var err error
	if req.Format == wire.FormatJSON {
		body, err = s.encodeJSON(req.Operation, msgs)
	} else {
		body, err = s.encodeXML(req.Operation, msgs)
	}
	if err != nil {
		return nil, err
	}
	return &ews.Response{Body: body}, nil
}

// FailNext makes the next n round trips return err without being handled.
func (s *Server) FailNext(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range n {
		s.failures = append(s.failures, err)
	}
}

// Throttle makes the next n round trips answer with ErrorServerBusy,
// asking the client to back off for backOff.
func (s *Server) Throttle(n int, backOff time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range n {
		s.throttles = append(s.throttles, backOff)
	}
}

// Requests returns copies of every request received, in order.
func (s *Server) Requests() []ews.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ews.Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (ews.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return ews.Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// FolderID returns the id of a distinguished folder.
func (s *Server) FolderID(name ews.WellKnownFolder) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wellKnown[string(name)]
}

// Count returns the number of items in a folder.
func (s *Server) Count(folder ews.WellKnownFolder) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.children(s.wellKnown[string(folder)], false))
}

// newID returns a fresh unique id or change key.
func newID() string { return uuid.NewString() }

func (s *Server) addFolder(kind *ews.Kind, name ews.WellKnownFolder, parent, title, class string) *object {
	f := s.newObject(kind)
	f.id = newID()
	f.changeKey = newID()
	f.parent = parent
	f.wellKnown = string(name)
	f.created = s.now().UTC()
	s.store(f)
	f.loadValues(func(w *wire.Writer) {
		w.WriteElementValue(wire.NamespaceTypes, "DisplayName", title)
		if class != "" {
			w.WriteElementValue(wire.NamespaceTypes, "FolderClass", class)
		}
	})
	_ = s.stamp(f, false)
	if name != "" {
		s.wellKnown[string(name)] = f.id
	}
	return f
}

func (s *Server) store(o *object) {
	s.objects[o.id] = o
	s.order = append(s.order, o.id)
}

func (s *Server) remove(o *object) {
	delete(s.objects, o.id)
	for i, id := range s.order {
		if id == o.id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// children returns the live items, or folders, whose parent is id, in
// creation order.
func (s *Server) children(id string, folders bool) []*object {
	var out []*object
	for _, oid := range s.order {
		o := s.objects[oid]
		if o.parent == id && o.kind.IsFolder() == folders {
			out = append(out, o)
		}
	}
	return out
}

// resolve finds the object a reference names.
func (s *Server) resolve(r ref) (*object, bool) {
	id := r.id
	if r.wellKnown != "" {
		id = s.wellKnown[r.wellKnown]
	}
	o, ok := s.objects[id]
	return o, ok
}
