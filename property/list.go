package property

import (
	"slices"

	"github.com/rbaliyan/ews/wire"
)

// List is an ordered collection of complex values written as repeated
// child elements. Changes to the list or to any item mark the owning
// property modified.
type List[T Complex] struct {
	ChangeNotifier
	itemElem string
	create   func() T
	items    []T
}

// NewList creates an empty list whose items are itemElem elements.
func NewList[T Complex](itemElem string, create func() T) *List[T] {
	return &List[T]{itemElem: itemElem, create: create}
}

// Len returns the number of items.
func (l *List[T]) Len() int { return len(l.items) }

// At returns the item at index i.
func (l *List[T]) At(i int) T { return l.items[i] }

// Items returns a copy of the items.
func (l *List[T]) Items() []T { return slices.Clone(l.items) }

// Add appends items.
func (l *List[T]) Add(items ...T) {
	for _, it := range items {
		l.attach(it)
		l.items = append(l.items, it)
	}
	l.Changed()
}

// RemoveAt removes the item at index i.
func (l *List[T]) RemoveAt(i int) {
	l.items[i].SetChangeHandler(nil)
	l.items = slices.Delete(l.items, i, i+1)
	l.Changed()
}

// Clear removes all items.
func (l *List[T]) Clear() {
	if len(l.items) == 0 {
		return
	}
	for _, it := range l.items {
		it.SetChangeHandler(nil)
	}
	l.items = nil
	l.Changed()
}

func (l *List[T]) attach(it T) {
	it.SetChangeHandler(l.Changed)
}

func (l *List[T]) LoadXML(r *wire.Reader, elem string) error {
	l.items = nil
	return l.readItems(r, elem, func(int) (T, bool) { return l.create(), true })
}

// UpdateXML merges the element positionally: the n-th item element
// updates the n-th existing item in place and extra elements are appended.
func (l *List[T]) UpdateXML(r *wire.Reader, elem string) error {
	return l.readItems(r, elem, func(i int) (T, bool) {
		if i < len(l.items) {
			return l.items[i], false
		}
		return l.create(), true
	})
}

func (l *List[T]) readItems(r *wire.Reader, elem string, next func(int) (T, bool)) error {
	i := 0
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
		if r.LocalName() != l.itemElem {
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
			continue
		}
		it, fresh := next(i)
		var err error
		if u, ok := any(it).(Updater); ok && !fresh {
			err = u.UpdateXML(r, l.itemElem)
		} else {
			err = it.LoadXML(r, l.itemElem)
		}
		if err != nil {
			return err
		}
		if fresh {
			l.attach(it)
			l.items = append(l.items, it)
		}
		i++
	}
}

func (l *List[T]) WriteXML(w *wire.Writer, elem string) {
	w.WriteStartElement(wire.NamespaceTypes, elem)
	for _, it := range l.items {
		it.WriteXML(w, l.itemElem)
	}
	w.WriteEndElement()
}

func (l *List[T]) LoadJSON(v any) error {
	l.items = nil
	return l.readJSON(v, func(int) (T, bool) { return l.create(), true })
}

// UpdateJSON is the JSON form of UpdateXML.
func (l *List[T]) UpdateJSON(v any) error {
	return l.readJSON(v, func(i int) (T, bool) {
		if i < len(l.items) {
			return l.items[i], false
		}
		return l.create(), true
	})
}

func (l *List[T]) readJSON(v any, next func(int) (T, bool)) error {
	arr, err := wire.AsArray(v)
	if err != nil {
		return err
	}
	for i, raw := range arr {
		it, fresh := next(i)
		if u, ok := any(it).(Updater); ok && !fresh {
			err = u.UpdateJSON(raw)
		} else {
			err = it.LoadJSON(raw)
		}
		if err != nil {
			return err
		}
		if fresh {
			l.attach(it)
			l.items = append(l.items, it)
		}
	}
	return nil
}

func (l *List[T]) WriteJSON() (any, error) {
	out := make([]any, 0, len(l.items))
	for _, it := range l.items {
		j, err := it.WriteJSON()
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

func (l *List[T]) ClearChangeLog() {
	for _, it := range l.items {
		it.ClearChangeLog()
	}
}

// Validate validates every item that implements Validator.
func (l *List[T]) Validate() error {
	for _, it := range l.items {
		if v, ok := any(it).(Validator); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// StringList is a list of strings written as repeated text elements,
// e.g. <t:Categories><t:String>a</t:String></t:Categories>.
type StringList struct {
	ChangeNotifier
	itemElem string
	items    []string
}

// NewStringList creates a list whose items are written as itemElem
// elements ("String" when empty).
func NewStringList(itemElem string, items ...string) *StringList {
	if itemElem == "" {
		itemElem = wire.ElemString
	}
	return &StringList{itemElem: itemElem, items: items}
}

// Items returns a copy of the strings.
func (l *StringList) Items() []string { return slices.Clone(l.items) }

// Len returns the number of strings.
func (l *StringList) Len() int { return len(l.items) }

// Contains reports whether s is in the list.
func (l *StringList) Contains(s string) bool { return slices.Contains(l.items, s) }

// Add appends strings.
func (l *StringList) Add(items ...string) {
	l.items = append(l.items, items...)
	l.Changed()
}

// Remove removes the first occurrence of s.
func (l *StringList) Remove(s string) bool {
	i := slices.Index(l.items, s)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	l.Changed()
	return true
}

// Clear removes all strings.
func (l *StringList) Clear() {
	l.items = nil
	l.Changed()
}

func (l *StringList) LoadXML(r *wire.Reader, elem string) error {
	l.items = nil
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
		if r.LocalName() != l.itemElem {
			if err := r.SkipCurrentElement(); err != nil {
				return err
			}
			continue
		}
		s, err := r.ReadElementValue()
		if err != nil {
			return err
		}
		l.items = append(l.items, s)
	}
}

func (l *StringList) WriteXML(w *wire.Writer, elem string) {
	w.WriteStartElement(wire.NamespaceTypes, elem)
	for _, s := range l.items {
		w.WriteElementValue(wire.NamespaceTypes, l.itemElem, s)
	}
	w.WriteEndElement()
}

func (l *StringList) LoadJSON(v any) error {
	arr, err := wire.AsArray(v)
	if err != nil {
		return err
	}
	l.items = make([]string, 0, len(arr))
	for _, raw := range arr {
		s, err := wire.AsString(raw)
		if err != nil {
			return err
		}
		l.items = append(l.items, s)
	}
	return nil
}

func (l *StringList) WriteJSON() (any, error) {
	out := make([]any, len(l.items))
	for i, s := range l.items {
		out[i] = s
	}
	return out, nil
}

func (l *StringList) ClearChangeLog() {}
