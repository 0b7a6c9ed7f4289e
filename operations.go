package ews

import (
	"context"
	"fmt"
	"time"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
	"go.opentelemetry.io/otel/attribute"
)

// opNames are the operation and element names of items or folders.
type opNames struct {
	get, create, update, delete string
	shape, ids, container       string
	parent, changes             string
}

var (
	itemOps = opNames{
		get: OpGetItem, create: OpCreateItem, update: OpUpdateItem, delete: OpDeleteItem,
		shape: "ItemShape", ids: "ItemIds", container: wire.ElemItems,
		parent: "SavedItemFolderId", changes: "ItemChanges",
	}
	folderOps = opNames{
		get: OpGetFolder, create: OpCreateFolder, update: OpUpdateFolder, delete: OpDeleteFolder,
		shape: "FolderShape", ids: "FolderIds", container: wire.ElemFolders,
		parent: "ParentFolderId", changes: "FolderChanges",
	}
)

func opsFor(folder bool) opNames {
	if folder {
		return folderOps
	}
	return itemOps
}

// loadFunc loads the current response object into a bag.
type loadFunc func(b *property.Bag, clear bool, ps *property.PropertySet, summaryOnly bool) error

// objectSink receives each object of response message i. It either calls
// load or ignores the object.
type objectSink func(i int, kind *Kind, load loadFunc) error

func (s *service) isJSON() bool { return s.opts.format == wire.FormatJSON }

// readObjects parses a response whose messages carry objects in container.
// It returns the status of every message; objects of failed messages are
// not passed to sink.
func (s *service) readObjects(op, container string, body []byte, sink objectSink) ([]error, error) {
	if s.isJSON() {
		msgs, status, err := readResponseJSON(body)
		if err != nil {
			return nil, err
		}
		errs := make([]error, len(msgs))
		for i, m := range msgs {
			if errs[i] = status[i].err(op); errs[i] != nil || sink == nil {
				continue
			}
			arr, _ := m.GetArray(container)
			if err := s.readObjectsJSON(arr, i, sink); err != nil {
				return nil, err
			}
		}
		return errs, nil
	}

	status, err := readResponseXML(body, func(i int, r *wire.Reader) error {
		if sink == nil || r.LocalName() != container {
			return r.SkipCurrentElement()
		}
		return s.readObjectsXML(r, i, sink)
	})
	if err != nil {
		return nil, err
	}
	errs := make([]error, len(status))
	for i, m := range status {
		errs[i] = m.err(op)
	}
	return errs, nil
}

// readObjectsXML reads the objects inside the container element the reader
// is positioned on.
func (s *service) readObjectsXML(r *wire.Reader, i int, sink objectSink) error {
	elem := r.LocalName()
	for {
		if err := r.Read(); err != nil {
			return wire.Deserialize(elem, "", err)
		}
		if r.IsEndElement(wire.NamespaceNone, elem) {
			return nil
		}
		if !r.IsStart() {
			continue
		}
		kind, ok := KindOf(r.LocalName())
		if !ok {
			s.logger.Debug("skipping unknown object", "element", r.LocalName())
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
			continue
		}
		consumed := false
		err := sink(i, kind, func(b *property.Bag, clear bool, ps *property.PropertySet, summaryOnly bool) error {
			consumed = true
			return b.LoadXML(r, clear, ps, summaryOnly)
		})
		if err != nil {
			return err
		}
		if !consumed {
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
		}
	}
}

func (s *service) readObjectsJSON(arr []any, i int, sink objectSink) error {
	for _, raw := range arr {
		o, err := wire.AsObject(raw)
		if err != nil {
			return wire.Deserialize(wire.ElemItems, "", err)
		}
		kind, ok := KindOf(o.TypeName())
		if !ok {
			s.logger.Debug("skipping unknown object", "type", o.TypeName())
			continue
		}
		err = sink(i, kind, func(b *property.Bag, clear bool, ps *property.PropertySet, summaryOnly bool) error {
			return b.LoadJSON(o, clear, ps, summaryOnly)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// single returns the status of the only message of a one-id request.
func single(op string, errs []error) error {
	if len(errs) == 0 {
		return fmt.Errorf("%w: no response message for %s", ErrUnexpectedResponse, op)
	}
	return errs[0]
}

// encode finishes a request document in the configured format.
func (s *service) encode(xml func(w *wire.Writer), json func(o wire.Object) error, op string) ([]byte, error) {
	if s.isJSON() {
		o := newRequestObject(op)
		if err := json(o); err != nil {
			return nil, err
		}
		return o.Marshal()
	}
	w := newRequestWriter(op)
	xml(w)
	w.WriteEndElement()
	return w.Bytes()
}

// get binds the object ref names. When into is set it is reloaded in
// place; otherwise a new object of the returned kind is created.
func (s *service) get(ctx context.Context, ref objectRef, into *object, ps *property.PropertySet) (_ *object, err error) {
	if ps == nil {
		ps = property.FirstClass()
	}
	if err := ps.Validate(s.opts.version); err != nil {
		return nil, err
	}
	names := opsFor(ref.isFolder())

	ctx, end := s.otel.startSpan(ctx, "ews.bind", attribute.String("ews.id", ref.String()))
	start := time.Now()
	kind := "unknown"
	defer func() {
		s.otel.recordBind(ctx, time.Since(start), kind, err)
		end(err)
	}()

	body, err := s.encode(func(w *wire.Writer) {
		ps.WriteXML(w, s.opts.version, names.shape)
		w.WriteStartElement(wire.NamespaceMessages, names.ids)
		ref.writeXML(w)
		w.WriteEndElement()
	}, func(o wire.Object) error {
		o[names.shape] = ps.JSON(s.opts.version)
		o[names.ids] = []any{ref.json()}
		return nil
	}, names.get)
	if err != nil {
		return nil, err
	}
	resp, err := s.call(ctx, names.get, body)
	if err != nil {
		return nil, err
	}

	var got *object
	errs, err := s.readObjects(names.get, names.container, resp, func(_ int, k *Kind, load loadFunc) error {
		if got != nil {
			return nil
		}
		o := into
		if o == nil {
			o = newObject(s, k)
		}
		if err := load(o.bag, true, ps, false); err != nil {
			return err
		}
		got = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := single(names.get, errs); err != nil {
		return nil, err
	}
	if got == nil {
		return nil, fmt.Errorf("%w: %s returned no object", ErrUnexpectedResponse, names.get)
	}
	kind = got.kind.Name()

	if err := s.plugins.afterLoad(ctx, wrap(got)); err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, got)
	return got, nil
}

// create sends a CreateItem or CreateFolder for o.
func (s *service) create(ctx context.Context, o *object, parent FolderRef, opts SaveOptions) (err error) {
	if !o.IsNew() {
		return ErrNotNew
	}
	names := opsFor(o.kind.IsFolder())
	if opts.MessageDisposition == "" {
		opts.MessageDisposition = SaveOnly
	}
	if opts.SendInvitations == "" {
		opts.SendInvitations = SendToNone
	}

	ctx, end := s.otel.startSpan(ctx, "ews.save", attribute.String("ews.kind", o.kind.Name()))
	start := time.Now()
	defer func() {
		s.otel.recordSave(ctx, time.Since(start), o.kind.Name(), err)
		end(err)
	}()

	if err := s.validate(o); err != nil {
		return err
	}
	if err := s.plugins.beforeSave(ctx, wrap(o)); err != nil {
		return err
	}

	hasParent := parent.ID != "" || parent.WellKnown != ""
	body, err := s.encode(func(w *wire.Writer) {
		if !o.kind.IsFolder() {
			w.WriteAttribute("MessageDisposition", string(opts.MessageDisposition))
			if o.kind == KindCalendarItem {
				w.WriteAttribute("SendMeetingInvitations", string(opts.SendInvitations))
			}
		}
		if hasParent {
			w.WriteStartElement(wire.NamespaceMessages, names.parent)
			parent.writeXML(w)
			w.WriteEndElement()
		}
		w.WriteStartElement(wire.NamespaceMessages, names.container)
		o.bag.WriteXML(w)
		w.WriteEndElement()
	}, func(req wire.Object) error {
		if !o.kind.IsFolder() {
			req["MessageDisposition"] = string(opts.MessageDisposition)
			if o.kind == KindCalendarItem {
				req["SendMeetingInvitations"] = string(opts.SendInvitations)
			}
		}
		if hasParent {
			req[names.parent] = wire.Object{"BaseFolderId": parent.json()}
		}
		obj, err := o.bag.WriteJSON()
		if err != nil {
			return err
		}
		req[names.container] = []any{obj}
		return nil
	}, names.create)
	if err != nil {
		return err
	}
	resp, err := s.call(ctx, names.create, body)
	if err != nil {
		return err
	}

	loaded := false
	errs, err := s.readObjects(names.create, names.container, resp, func(_ int, _ *Kind, load loadFunc) error {
		if loaded {
			return nil
		}
		loaded = true
		return load(o.bag, false, nil, false)
	})
	if err != nil {
		return err
	}
	if err := single(names.create, errs); err != nil {
		return err
	}
	if !loaded {
		// A sent message has no id to return.
		if opts.MessageDisposition != SaveOnly {
			o.bag.ClearChangeLog()
			return nil
		}
		return fmt.Errorf("%w: %s returned no object", ErrUnexpectedResponse, names.create)
	}
	o.bag.CommitCreate()

	s.logger.Debug("object created", "kind", o.kind.Name(), "id", o.ID())
	s.saveSnapshot(ctx, o)
	if err := s.publishChange(ctx, o, o.ID(), ChangeCreated); err != nil {
		return err
	}
	return s.plugins.afterSave(ctx, wrap(o))
}

// update sends the pending changes of o. The id and change key of the
// response are copied in place so values loaded earlier stay loaded.
func (s *service) update(ctx context.Context, o *object, cr ConflictResolution) (err error) {
	if o.IsNew() {
		return ErrNewObject
	}
	if !o.bag.IsUpdateCallNecessary() {
		s.logger.Debug("update skipped, no changes", "kind", o.kind.Name(), "id", o.ID())
		return nil
	}
	if cr == "" {
		cr = AutoResolve
	}
	names := opsFor(o.kind.IsFolder())

	changes := len(o.bag.Added()) + len(o.bag.Modified()) + len(o.bag.Deleted())
	ctx, end := s.otel.startSpan(ctx, "ews.update",
		attribute.String("ews.kind", o.kind.Name()),
		attribute.String("ews.id", o.ID().String()),
	)
	start := time.Now()
	defer func() {
		s.otel.recordUpdate(ctx, time.Since(start), o.kind.Name(), changes, err)
		end(err)
	}()

	if err := s.validate(o); err != nil {
		return err
	}
	if err := s.plugins.beforeSave(ctx, wrap(o)); err != nil {
		return err
	}

	body, err := s.encode(func(w *wire.Writer) {
		if !o.kind.IsFolder() {
			w.WriteAttribute("ConflictResolution", string(cr))
			w.WriteAttribute("MessageDisposition", string(SaveOnly))
			if o.kind == KindCalendarItem {
				w.WriteAttribute("SendMeetingInvitationsOrCancellations", string(SendToNone))
			}
		}
		w.WriteStartElement(wire.NamespaceMessages, names.changes)
		o.bag.WriteUpdateXML(w)
		w.WriteEndElement()
	}, func(req wire.Object) error {
		if !o.kind.IsFolder() {
			req["ConflictResolution"] = string(cr)
			req["MessageDisposition"] = string(SaveOnly)
			if o.kind == KindCalendarItem {
				req["SendMeetingInvitationsOrCancellations"] = string(SendToNone)
			}
		}
		change, err := o.bag.WriteUpdateJSON()
		if err != nil {
			return err
		}
		req[names.changes] = []any{change}
		return nil
	}, names.update)
	if err != nil {
		return err
	}
	resp, err := s.call(ctx, names.update, body)
	if err != nil {
		return err
	}

	var newID *ID
	errs, err := s.readObjects(names.update, names.container, resp, func(_ int, k *Kind, load loadFunc) error {
		if newID != nil {
			return nil
		}
		tmp := newObject(s, k)
		if err := load(tmp.bag, true, nil, false); err != nil {
			return err
		}
		newID = tmp.ID()
		return nil
	})
	if err != nil {
		return err
	}
	if err := single(names.update, errs); err != nil {
		return err
	}
	o.bag.CommitUpdate()
	if newID != nil {
		o.ID().assign(newID)
	}

	s.logger.Debug("object updated", "kind", o.kind.Name(), "id", o.ID(), "changes", changes)
	s.saveSnapshot(ctx, o)
	if err := s.publishChange(ctx, o, o.ID(), ChangeUpdated); err != nil {
		return err
	}
	return s.plugins.afterSave(ctx, wrap(o))
}

// delete sends a DeleteItem or DeleteFolder for o.
func (s *service) delete(ctx context.Context, o *object, mode DeleteMode) (err error) {
	if o.IsNew() {
		return ErrNewObject
	}
	if mode == "" {
		mode = MoveToDeletedItems
	}
	names := opsFor(o.kind.IsFolder())
	id := o.ID()

	ctx, end := s.otel.startSpan(ctx, "ews.delete", attribute.String("ews.id", id.String()))
	start := time.Now()
	defer func() {
		s.otel.recordDelete(ctx, time.Since(start), mode, err)
		end(err)
	}()

	body, err := s.encode(func(w *wire.Writer) {
		w.WriteAttribute("DeleteType", string(mode))
		if o.kind == KindCalendarItem {
			w.WriteAttribute("SendMeetingCancellations", string(SendToNone))
		}
		if o.kind == KindTask {
			w.WriteAttribute("AffectedTaskOccurrences", "AllOccurrences")
		}
		w.WriteStartElement(wire.NamespaceMessages, names.ids)
		id.writeXML(w)
		w.WriteEndElement()
	}, func(req wire.Object) error {
		req["DeleteType"] = string(mode)
		if o.kind == KindCalendarItem {
			req["SendMeetingCancellations"] = string(SendToNone)
		}
		if o.kind == KindTask {
			req["AffectedTaskOccurrences"] = "AllOccurrences"
		}
		req[names.ids] = []any{id.json()}
		return nil
	}, names.delete)
	if err != nil {
		return err
	}
	resp, err := s.call(ctx, names.delete, body)
	if err != nil {
		return err
	}
	errs, err := s.readObjects(names.delete, names.container, resp, nil)
	if err != nil {
		return err
	}
	if err := single(names.delete, errs); err != nil {
		return err
	}

	s.logger.Debug("object deleted", "kind", o.kind.Name(), "id", id, "mode", mode)
	s.deleteSnapshot(ctx, id.UniqueID())
	return s.publishChange(ctx, o, id, ChangeDeleted)
}
