package property

import (
	"slices"

	"github.com/rbaliyan/ews/wire"
)

// Dictionary maps keys to strings (e-mail addresses, phone numbers, IM
// addresses). Entries are updated individually through indexed paths.
type Dictionary[K ~string] struct {
	ChangeNotifier
	entryURI string
	entries  map[K]string
	order    []K
	changed  []K
	removed  []K
}

// NewDictionary creates an empty dictionary whose entries are addressed by
// entryURI plus the key.
func NewDictionary[K ~string](entryURI string) *Dictionary[K] {
	return &Dictionary[K]{entryURI: entryURI, entries: map[K]string{}}
}

// Get returns the value stored under k.
func (d *Dictionary[K]) Get(k K) (string, bool) {
	v, ok := d.entries[k]
	return v, ok
}

// Keys returns the keys in insertion order.
func (d *Dictionary[K]) Keys() []K { return slices.Clone(d.order) }

// Len returns the number of entries.
func (d *Dictionary[K]) Len() int { return len(d.entries) }

// Set stores v under k.
func (d *Dictionary[K]) Set(k K, v string) {
	if old, ok := d.entries[k]; ok && old == v {
		return
	}
	if _, ok := d.entries[k]; !ok {
		d.order = append(d.order, k)
	}
	d.entries[k] = v
	d.removed = slices.DeleteFunc(d.removed, func(x K) bool { return x == k })
	if !slices.Contains(d.changed, k) {
		d.changed = append(d.changed, k)
	}
	d.Changed()
}

// Remove deletes the entry under k.
func (d *Dictionary[K]) Remove(k K) bool {
	if _, ok := d.entries[k]; !ok {
		return false
	}
	delete(d.entries, k)
	d.order = slices.DeleteFunc(d.order, func(x K) bool { return x == k })
	d.changed = slices.DeleteFunc(d.changed, func(x K) bool { return x == k })
	d.removed = append(d.removed, k)
	d.Changed()
	return true
}

// EntryURI returns the field URI entries are addressed by.
func (d *Dictionary[K]) EntryURI() string { return d.entryURI }

// EntryKeys returns the keys as strings, in insertion order.
func (d *Dictionary[K]) EntryKeys() []string {
	out := make([]string, len(d.order))
	for i, k := range d.order {
		out[i] = string(k)
	}
	return out
}

// Entry returns the value stored under key.
func (d *Dictionary[K]) Entry(key string) (string, bool) { return d.Get(K(key)) }

// SetEntry stores v under key.
func (d *Dictionary[K]) SetEntry(key, v string) { d.Set(K(key), v) }

// RemoveEntry deletes the entry under key.
func (d *Dictionary[K]) RemoveEntry(key string) bool { return d.Remove(K(key)) }

func (d *Dictionary[K]) path(k K) IndexedPath {
	return IndexedPath{URI: d.entryURI, Index: string(k)}
}

func (d *Dictionary[K]) put(k K, v string) {
	if _, ok := d.entries[k]; !ok {
		d.order = append(d.order, k)
	}
	d.entries[k] = v
}

func (d *Dictionary[K]) reset() {
	d.entries = map[K]string{}
	d.order = nil
	d.changed = nil
	d.removed = nil
}

func (d *Dictionary[K]) LoadXML(r *wire.Reader, elem string) error {
	d.reset()
	for {
		if err := r.Read(); err != nil {
			return err
		}
		if r.IsEndElement(wire.NamespaceTypes, elem) {
			return nil
		}
		if !r.IsStart() {
			continue
		}
		if r.LocalName() != wire.ElemEntry {
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
			continue
		}
		k := K(r.Attr(wire.AttrKey))
		v, err := r.ReadElementValue()
		if err != nil {
			return err
		}
		d.put(k, v)
	}
}

func (d *Dictionary[K]) writeEntry(w *wire.Writer, k K) {
	w.WriteStartElement(wire.NamespaceTypes, wire.ElemEntry)
	w.WriteAttribute(wire.AttrKey, string(k))
	w.WriteValue(d.entries[k])
	w.WriteEndElement()
}

func (d *Dictionary[K]) WriteXML(w *wire.Writer, elem string) {
	w.WriteStartElement(wire.NamespaceTypes, elem)
	for _, k := range d.order {
		d.writeEntry(w, k)
	}
	w.WriteEndElement()
}

func (d *Dictionary[K]) LoadJSON(v any) error {
	d.reset()
	arr, err := wire.AsArray(v)
	if err != nil {
		return err
	}
	for _, raw := range arr {
		o, err := wire.AsObject(raw)
		if err != nil {
			return err
		}
		k, _ := o.GetString(wire.AttrKey)
		val, _ := o.GetString(wire.ElemValue)
		d.put(K(k), val)
	}
	return nil
}

func (d *Dictionary[K]) entryJSON(k K) wire.Object {
	return wire.Object{wire.AttrKey: string(k), wire.ElemValue: d.entries[k]}
}

func (d *Dictionary[K]) WriteJSON() (any, error) {
	out := make([]any, 0, len(d.order))
	for _, k := range d.order {
		out = append(out, d.entryJSON(k))
	}
	return out, nil
}

func (d *Dictionary[K]) ClearChangeLog() {
	d.changed = nil
	d.removed = nil
}

func (d *Dictionary[K]) WriteSetUpdateXML(w *wire.Writer, b *Bag, def Definition) bool {
	for _, k := range d.changed {
		b.WriteSetFieldXML(w, d.path(k), func(w *wire.Writer) {
			w.WriteStartElement(wire.NamespaceTypes, def.XMLElement())
			d.writeEntry(w, k)
			w.WriteEndElement()
		})
	}
	for _, k := range d.removed {
		b.WriteDeleteFieldXML(w, d.path(k))
	}
	return true
}

func (d *Dictionary[K]) WriteDeleteUpdateXML(w *wire.Writer, b *Bag, _ Definition) bool {
	for _, k := range d.order {
		b.WriteDeleteFieldXML(w, d.path(k))
	}
	for _, k := range d.removed {
		b.WriteDeleteFieldXML(w, d.path(k))
	}
	return true
}

func (d *Dictionary[K]) SetUpdatesJSON(b *Bag, def Definition) ([]any, bool, error) {
	var out []any
	for _, k := range d.changed {
		out = append(out, b.SetFieldJSON(d.path(k), def.XMLElement(), []any{d.entryJSON(k)}))
	}
	for _, k := range d.removed {
		out = append(out, b.DeleteFieldJSON(d.path(k)))
	}
	return out, true, nil
}

func (d *Dictionary[K]) DeleteUpdatesJSON(b *Bag, _ Definition) ([]any, bool) {
	var out []any
	for _, k := range append(d.Keys(), d.removed...) {
		out = append(out, b.DeleteFieldJSON(d.path(k)))
	}
	return out, true
}
