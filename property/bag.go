package property

import (
	"slices"

	"github.com/rbaliyan/ews/wire"
)

type deletion struct {
	def   Definition
	value any
}

// Bag stores the property values of one object together with their load
// and change state.
//
// A property cell is either not loaded, loaded and clean, or loaded and
// dirty. Values placed by the caller on a new object start dirty. Values
// read from a server response are loaded and clean. A known value never
// returns to not loaded until Clear.
//
// A Bag is not safe for concurrent use.
type Bag struct {
	owner  Owner
	values map[Definition]any
	loaded map[Definition]bool

	added    []Definition
	modified []Definition
	deleted  []deletion

	requested   *PropertySet
	summaryOnly bool
	loading     bool
	transmitted []Definition
}

// NewBag returns an empty bag for owner.
func NewBag(owner Owner) *Bag {
	return &Bag{
		owner:  owner,
		values: make(map[Definition]any),
		loaded: make(map[Definition]bool),
	}
}

// Owner returns the object the bag belongs to.
func (b *Bag) Owner() Owner { return b.owner }

func (b *Bag) settings() Settings { return b.owner.Settings() }

// RequestedProperties returns the property set of the last load, or nil.
func (b *Bag) RequestedProperties() *PropertySet { return b.requested }

// Get returns the value of d.
//
// A missing AutoInstantiateOnRead complex value is created and stored
// clean. On a bound object a property that was neither loaded nor
// requested fails with ErrNotLoaded; one that was loaded but is absent
// returns nil. On a new object a value never assigned fails with ErrNotSet.
func (b *Bag) Get(d Definition) (any, error) {
	v := b.settings().Version
	if err := CheckVersion(d, v); err != nil {
		return nil, err
	}
	if val, ok := b.values[d]; ok {
		return val, nil
	}
	if inst, ok := d.(instantiator); ok && d.HasFlag(AutoInstantiateOnRead, v) {
		c := inst.newInstance()
		b.store(d, c)
		return c, nil
	}
	if !b.owner.IsNew() {
		if !b.IsPropertyLoaded(d) {
			return nil, newError(d, ErrNotLoaded)
		}
		return nil, nil
	}
	return nil, newError(d, ErrNotSet)
}

// TryGet returns the value of d when it is present and d is supported by
// the connection version.
func (b *Bag) TryGet(d Definition) (any, bool) {
	if CheckVersion(d, b.settings().Version) != nil {
		return nil, false
	}
	v, ok := b.values[d]
	return v, ok
}

// Contains reports whether a value for d is present.
func (b *Bag) Contains(d Definition) bool {
	_, ok := b.values[d]
	return ok
}

// Set assigns v to d and records the change. A nil v deletes the value.
//
// Outside of loading, a new object accepts only CanSet definitions and a
// bound object only CanUpdate definitions.
func (b *Bag) Set(d Definition, v any) error {
	if isNil(v) {
		return b.Delete(d)
	}
	if b.loading {
		b.store(d, v)
		b.loaded[d] = true
		return nil
	}
	s := b.settings()
	if err := CheckVersion(d, s.Version); err != nil {
		return err
	}
	if b.owner.IsNew() {
		if !d.HasFlag(CanSet, s.Version) {
			return newError(d, ErrReadOnly)
		}
	} else if !d.HasFlag(CanUpdate, s.Version) {
		return newError(d, ErrCannotUpdate)
	}

	if i := b.deletedIndex(d); i >= 0 {
		b.deleted = slices.Delete(b.deleted, i, i+1)
		b.markModified(d)
	} else if _, had := b.values[d]; !had {
		if !slices.Contains(b.added, d) {
			b.added = append(b.added, d)
		}
	} else {
		b.markModified(d)
	}
	b.store(d, v)
	return nil
}

// Delete removes the value of d. Deleting a property of a bound object is
// sent to the server on the next update.
func (b *Bag) Delete(d Definition) error {
	isNew := b.owner.IsNew()
	if !b.loading {
		s := b.settings()
		if err := CheckVersion(d, s.Version); err != nil {
			return err
		}
		if !isNew && !d.HasFlag(CanDelete, s.Version) {
			return newError(d, ErrCannotDelete)
		}
	}
	old, had := b.values[d]
	wasAdded := slices.Contains(b.added, d)
	if had {
		if c, ok := old.(Complex); ok {
			c.SetChangeHandler(nil)
		}
		delete(b.values, d)
	}
	b.added = slices.DeleteFunc(b.added, func(x Definition) bool { return x == d })
	b.modified = slices.DeleteFunc(b.modified, func(x Definition) bool { return x == d })
	if b.loading || isNew || wasAdded || b.deletedIndex(d) >= 0 {
		return nil
	}
	b.deleted = append(b.deleted, deletion{def: d, value: old})
	return nil
}

func (b *Bag) deletedIndex(d Definition) int {
	return slices.IndexFunc(b.deleted, func(x deletion) bool { return x.def == d })
}

func (b *Bag) markModified(d Definition) {
	if !slices.Contains(b.added, d) && !slices.Contains(b.modified, d) {
		b.modified = append(b.modified, d)
	}
}

// store places v in the cell of d, moving the change handler from the old
// complex value to the new one.
func (b *Bag) store(d Definition, v any) {
	if old, ok := b.values[d].(Complex); ok && any(old) != v {
		old.SetChangeHandler(nil)
	}
	if c, ok := v.(Complex); ok {
		c.SetChangeHandler(func() { b.complexChanged(d) })
	}
	b.values[d] = v
}

func (b *Bag) complexChanged(d Definition) {
	if b.loading {
		return
	}
	b.markModified(d)
}

// IsPropertyLoaded reports whether d was loaded from the server or is part
// of the requested property set.
func (b *Bag) IsPropertyLoaded(d Definition) bool {
	return b.loaded[d] || b.IsRequested(d)
}

// IsRequested reports whether d is part of the property set used by the
// last load.
func (b *Bag) IsRequested(d Definition) bool {
	if b.requested == nil {
		return false
	}
	if b.requested.Contains(d) {
		return true
	}
	if b.requested.Base() != FirstClassProperties {
		return false
	}
	return b.owner.Schema().IsFirstClass(d, b.summaryOnly)
}

// IsPropertyUpdated reports whether d was added or modified locally.
func (b *Bag) IsPropertyUpdated(d Definition) bool {
	return slices.Contains(b.added, d) || slices.Contains(b.modified, d)
}

// IsDirty reports whether any change is pending.
func (b *Bag) IsDirty() bool {
	return len(b.added) > 0 || len(b.modified) > 0 || len(b.deleted) > 0
}

// Added returns the definitions whose values were assigned locally and
// were not present before.
func (b *Bag) Added() []Definition { return slices.Clone(b.added) }

// Modified returns the definitions whose present values changed locally.
func (b *Bag) Modified() []Definition { return slices.Clone(b.modified) }

// Deleted returns the definitions queued for deletion.
func (b *Bag) Deleted() []Definition {
	out := make([]Definition, len(b.deleted))
	for i, x := range b.deleted {
		out[i] = x.def
	}
	return out
}

// Loaded returns the definitions with a present value, in schema order.
func (b *Bag) Loaded() []Definition {
	var out []Definition
	for _, d := range b.owner.Schema().Definitions() {
		if b.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// IsUpdateCallNecessary reports whether an update request would change
// anything on the server.
func (b *Bag) IsUpdateCallNecessary() bool {
	v := b.settings().Version
	for _, d := range b.added {
		if d.HasFlag(CanUpdate, v) {
			return true
		}
	}
	for _, d := range b.modified {
		if d.HasFlag(CanUpdate, v) {
			return true
		}
	}
	for _, x := range b.deleted {
		if x.def.HasFlag(CanUpdate, v) {
			return true
		}
	}
	return false
}

func (b *Bag) emits(d Definition, s Settings) bool {
	if e, ok := d.(Emitter); ok {
		return e.Emits(s)
	}
	return true
}

func (b *Bag) beginLoad(clear bool, requested *PropertySet, summaryOnly bool) {
	if clear {
		b.Clear()
	}
	b.requested = requested
	b.summaryOnly = summaryOnly
	b.loading = true
}

// LoadXML loads the object element the reader is positioned on. Child
// elements are routed to definitions by element name; unknown elements are
// skipped. The change log is cleared afterwards.
func (b *Bag) LoadXML(r *wire.Reader, clear bool, requested *PropertySet, summaryOnly bool) error {
	elem := r.LocalName()
	b.beginLoad(clear, requested, summaryOnly)
	defer func() { b.loading = false }()

	schema := b.owner.Schema()
	for {
		if err := r.Read(); err != nil {
			return wire.Deserialize(elem, "", err)
		}
		if r.IsEndElement(wire.NamespaceTypes, elem) {
			break
		}
		if !r.IsStart() {
			continue
		}
		d, ok := schema.LookupElement(r.LocalName())
		if !ok {
			if err := r.SkipCurrentElement(); err != nil {
				return wire.Deserialize(elem, "", err)
			}
			continue
		}
		if err := d.LoadXML(r, b); err != nil {
			return err
		}
		b.loaded[d] = true
	}
	b.ClearChangeLog()
	return nil
}

// LoadJSON loads an object in its JSON form. Members are matched to
// definitions by element name; unknown members are ignored.
func (b *Bag) LoadJSON(o wire.Object, clear bool, requested *PropertySet, summaryOnly bool) error {
	b.beginLoad(clear, requested, summaryOnly)
	defer func() { b.loading = false }()

	for _, d := range b.owner.Schema().Definitions() {
		raw, ok := o[d.XMLElement()]
		if !ok {
			continue
		}
		if err := d.LoadJSON(raw, b); err != nil {
			return err
		}
		b.loaded[d] = true
	}
	b.ClearChangeLog()
	return nil
}

func (b *Bag) writesOnCreate(d Definition, s Settings) bool {
	return d.HasFlag(CanSet, s.Version) &&
		!d.Flags().Has(Associated) &&
		d.Version() <= s.Version &&
		b.Contains(d) &&
		b.emits(d, s)
}

// WriteXML writes the complete object element for a create request.
func (b *Bag) WriteXML(w *wire.Writer) {
	s := b.settings()
	w.WriteStartElement(wire.NamespaceTypes, b.owner.Names().Object)
	for _, d := range b.owner.Schema().Definitions() {
		if b.writesOnCreate(d, s) {
			d.WriteXML(w, b, false)
		}
	}
	w.WriteEndElement()
}

// WriteJSON returns the JSON object for a create request.
func (b *Bag) WriteJSON() (wire.Object, error) {
	s := b.settings()
	o := wire.NewObject(b.owner.Names().Object)
	for _, d := range b.owner.Schema().Definitions() {
		if !b.writesOnCreate(d, s) {
			continue
		}
		if err := d.WriteJSON(o, b, false); err != nil {
			return nil, newError(d, err)
		}
	}
	return o, nil
}

// WriteValuesXML writes every present value in schema order, regardless of
// mutability flags. The result loads back with LoadXML.
func (b *Bag) WriteValuesXML(w *wire.Writer) {
	v := b.settings().Version
	w.WriteStartElement(wire.NamespaceTypes, b.owner.Names().Object)
	for _, d := range b.owner.Schema().Definitions() {
		if b.Contains(d) && d.Version() <= v && !d.Flags().Has(Associated) {
			d.WriteXML(w, b, false)
		}
	}
	w.WriteEndElement()
}

func (b *Bag) pending() []Definition {
	out := make([]Definition, 0, len(b.added)+len(b.modified))
	out = append(out, b.added...)
	return append(out, b.modified...)
}

// WriteUpdateXML writes the change element of an update request: the
// object id followed by one set-field update per added or modified
// property and one delete-field update per deleted property. The written
// definitions are remembered for CommitUpdate.
func (b *Bag) WriteUpdateXML(w *wire.Writer) {
	s := b.settings()
	n := b.owner.Names()
	b.transmitted = b.transmitted[:0]

	w.WriteStartElement(wire.NamespaceTypes, n.Change)
	if id, ok := b.owner.Schema().LookupElement(n.ID); ok {
		id.WriteXML(w, b, false)
	}
	w.WriteStartElement(wire.NamespaceTypes, wire.ElemUpdates)
	for _, d := range b.pending() {
		if !d.HasFlag(CanUpdate, s.Version) || !b.emits(d, s) {
			continue
		}
		if us, ok := b.values[d].(UpdateSerializer); !ok || !us.WriteSetUpdateXML(w, b, d) {
			b.WriteSetFieldXML(w, d, func(w *wire.Writer) { d.WriteXML(w, b, true) })
		}
		b.transmitted = append(b.transmitted, d)
	}
	for _, x := range b.deleted {
		if !x.def.HasFlag(CanDelete, s.Version) || !b.emits(x.def, s) {
			continue
		}
		if us, ok := x.value.(UpdateSerializer); !ok || !us.WriteDeleteUpdateXML(w, b, x.def) {
			b.WriteDeleteFieldXML(w, x.def)
		}
		b.transmitted = append(b.transmitted, x.def)
	}
	w.WriteEndElement()
	w.WriteEndElement()
}

// WriteUpdateJSON returns the change object of an update request.
func (b *Bag) WriteUpdateJSON() (wire.Object, error) {
	s := b.settings()
	n := b.owner.Names()
	b.transmitted = b.transmitted[:0]

	o := wire.NewObject(n.Change)
	if id, ok := b.owner.Schema().LookupElement(n.ID); ok {
		if err := id.WriteJSON(o, b, false); err != nil {
			return nil, newError(id, err)
		}
	}
	updates := []any{}
	for _, d := range b.pending() {
		if !d.HasFlag(CanUpdate, s.Version) || !b.emits(d, s) {
			continue
		}
		if us, ok := b.values[d].(UpdateSerializer); ok {
			list, handled, err := us.SetUpdatesJSON(b, d)
			if err != nil {
				return nil, newError(d, err)
			}
			if handled {
				updates = append(updates, list...)
				b.transmitted = append(b.transmitted, d)
				continue
			}
		}
		obj := wire.NewObject(n.Object)
		if err := d.WriteJSON(obj, b, true); err != nil {
			return nil, newError(d, err)
		}
		updates = append(updates, b.setField(d, obj))
		b.transmitted = append(b.transmitted, d)
	}
	for _, x := range b.deleted {
		if !x.def.HasFlag(CanDelete, s.Version) || !b.emits(x.def, s) {
			continue
		}
		if us, ok := x.value.(UpdateSerializer); ok {
			if list, handled := us.DeleteUpdatesJSON(b, x.def); handled {
				updates = append(updates, list...)
				b.transmitted = append(b.transmitted, x.def)
				continue
			}
		}
		updates = append(updates, b.DeleteFieldJSON(x.def))
		b.transmitted = append(b.transmitted, x.def)
	}
	o[wire.ElemUpdates] = updates
	return o, nil
}

// WriteSetFieldXML writes one set-field update for path. value writes the
// property element inside the object element.
func (b *Bag) WriteSetFieldXML(w *wire.Writer, path Path, value func(w *wire.Writer)) {
	n := b.owner.Names()
	w.WriteStartElement(wire.NamespaceTypes, n.SetField)
	path.WritePathXML(w, b.settings().Version)
	w.WriteStartElement(wire.NamespaceTypes, n.Object)
	value(w)
	w.WriteEndElement()
	w.WriteEndElement()
}

// WriteDeleteFieldXML writes one delete-field update for path.
func (b *Bag) WriteDeleteFieldXML(w *wire.Writer, path Path) {
	w.WriteStartElement(wire.NamespaceTypes, b.owner.Names().DeleteField)
	path.WritePathXML(w, b.settings().Version)
	w.WriteEndElement()
}

func (b *Bag) setField(path Path, obj wire.Object) wire.Object {
	n := b.owner.Names()
	u := wire.NewObject(n.SetField)
	u["Path"] = path.PathJSON(b.settings().Version)
	u[n.Container] = obj
	return u
}

// SetFieldJSON returns one set-field update for path whose object holds
// value under key.
func (b *Bag) SetFieldJSON(path Path, key string, value any) wire.Object {
	obj := wire.NewObject(b.owner.Names().Object)
	obj[key] = value
	return b.setField(path, obj)
}

// DeleteFieldJSON returns one delete-field update for path.
func (b *Bag) DeleteFieldJSON(path Path) wire.Object {
	u := wire.NewObject(b.owner.Names().DeleteField)
	u["Path"] = path.PathJSON(b.settings().Version)
	return u
}

// CommitCreate marks every present value loaded and clears the change log.
// Call it after a successful create.
func (b *Bag) CommitCreate() {
	for d := range b.values {
		b.loaded[d] = true
	}
	b.ClearChangeLog()
}

// CommitUpdate clears the change state of the definitions written by the
// last WriteUpdateXML or WriteUpdateJSON. Changes made to other properties
// stay pending.
func (b *Bag) CommitUpdate() {
	for _, d := range b.transmitted {
		b.added = slices.DeleteFunc(b.added, func(x Definition) bool { return x == d })
		b.modified = slices.DeleteFunc(b.modified, func(x Definition) bool { return x == d })
		b.deleted = slices.DeleteFunc(b.deleted, func(x deletion) bool { return x.def == d })
		if c, ok := b.values[d].(Complex); ok {
			c.ClearChangeLog()
		}
		if b.Contains(d) {
			b.loaded[d] = true
		}
	}
	b.transmitted = nil
}

// ClearChangeLog forgets every pending change, including those recorded by
// complex values.
func (b *Bag) ClearChangeLog() {
	b.added = nil
	b.modified = nil
	b.deleted = nil
	for _, v := range b.values {
		if c, ok := v.(Complex); ok {
			c.ClearChangeLog()
		}
	}
}

// Validate checks that every changed property is supported by the
// connection version and that changed complex values are valid.
func (b *Bag) Validate() error {
	v := b.settings().Version
	for _, d := range b.pending() {
		if err := CheckVersion(d, v); err != nil {
			return err
		}
		if val, ok := b.values[d].(Validator); ok {
			if err := val.Validate(); err != nil {
				return newError(d, err)
			}
		}
	}
	for _, x := range b.deleted {
		if err := CheckVersion(x.def, v); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every value and all load and change state.
func (b *Bag) Clear() {
	for _, v := range b.values {
		if c, ok := v.(Complex); ok {
			c.SetChangeHandler(nil)
		}
	}
	clear(b.values)
	clear(b.loaded)
	b.added = nil
	b.modified = nil
	b.deleted = nil
	b.transmitted = nil
	b.requested = nil
	b.summaryOnly = false
}
