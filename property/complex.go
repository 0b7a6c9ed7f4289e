package property

import (
	"reflect"

	"github.com/rbaliyan/ews/wire"
)

// Complex is a structured property value that loads and writes its own
// element and reports local changes to the bag slot holding it.
type Complex interface {
	// LoadXML is entered on the start of elem and leaves the reader on its end.
	LoadXML(r *wire.Reader, elem string) error
	// WriteXML writes the complete elem element.
	WriteXML(w *wire.Writer, elem string)
	LoadJSON(v any) error
	WriteJSON() (any, error)
	ClearChangeLog()
	SetChangeHandler(fn func())
}

// Updater is implemented by complex values that merge a reloaded element
// into themselves instead of being reloaded from scratch.
type Updater interface {
	UpdateXML(r *wire.Reader, elem string) error
	UpdateJSON(v any) error
}

// Validator is implemented by values that check themselves before a save.
type Validator interface {
	Validate() error
}

// UpdateSerializer is implemented by complex values that emit their own
// field updates instead of one set or delete for the whole property.
// Each method reports whether it handled the update.
type UpdateSerializer interface {
	WriteSetUpdateXML(w *wire.Writer, b *Bag, d Definition) bool
	WriteDeleteUpdateXML(w *wire.Writer, b *Bag, d Definition) bool
	SetUpdatesJSON(b *Bag, d Definition) ([]any, bool, error)
	DeleteUpdatesJSON(b *Bag, d Definition) ([]any, bool)
}

// ChangeNotifier is embedded by complex values to implement
// SetChangeHandler.
type ChangeNotifier struct {
	onChange func()
}

// SetChangeHandler installs the callback run by Changed.
func (c *ChangeNotifier) SetChangeHandler(fn func()) {
	c.onChange = fn
}

// Changed notifies the owning bag slot.
func (c *ChangeNotifier) Changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// instantiator is implemented by definitions able to create an empty value.
type instantiator interface {
	newInstance() Complex
}

// ComplexDefinition holds a complex value of type T. When contained is set
// the value is wrapped in an extra element, e.g.
// <t:Organizer><t:Mailbox>...</t:Mailbox></t:Organizer>.
type ComplexDefinition[T Complex] struct {
	base
	create    func() T
	contained string
}

// NewComplex creates a complex definition whose values come from create.
func NewComplex[T Complex](name, elem, uri string, flags Flags, v wire.Version, create func() T, opts ...Option) *ComplexDefinition[T] {
	return &ComplexDefinition[T]{base: newBase(name, elem, uri, flags, v, true, opts), create: create}
}

// NewContained creates a complex definition whose value element sits
// inside a container element named elem.
func NewContained[T Complex](name, elem, contained, uri string, flags Flags, v wire.Version, create func() T, opts ...Option) *ComplexDefinition[T] {
	d := NewComplex(name, elem, uri, flags, v, create, opts...)
	d.contained = contained
	return d
}

func (d *ComplexDefinition[T]) newInstance() Complex {
	return d.create()
}

// instance returns the value to load into and whether it was just created.
func (d *ComplexDefinition[T]) instance(b *Bag) (T, bool) {
	if d.HasFlag(ReuseInstance, b.settings().Version) {
		if v, ok := typedValue[T](b, d); ok {
			return v, false
		}
	}
	return d.create(), true
}

func (d *ComplexDefinition[T]) LoadXML(r *wire.Reader, b *Bag) error {
	if d.contained != "" {
		if err := r.Read(); err != nil {
			return wire.Deserialize(d.elem, "", err)
		}
		if r.IsEndElement(wire.NamespaceTypes, d.elem) {
			return nil
		}
		if err := r.EnsureStartElement(wire.NamespaceTypes, d.contained); err != nil {
			return wire.Deserialize(d.elem, "", err)
		}
	}
	elem := r.LocalName()
	v, created := d.instance(b)
	var err error
	if u, ok := any(v).(Updater); ok && !created && d.HasFlag(UpdateCollectionItems, b.settings().Version) {
		err = u.UpdateXML(r, elem)
	} else {
		err = v.LoadXML(r, elem)
	}
	if err != nil {
		return wire.Deserialize(d.elem, "", err)
	}
	if d.contained != "" {
		if err := r.ReadEndElementIfNecessary(wire.NamespaceTypes, d.elem); err != nil {
			return wire.Deserialize(d.elem, "", err)
		}
	}
	return b.Set(d, v)
}

func (d *ComplexDefinition[T]) LoadJSON(val any, b *Bag) error {
	if d.contained != "" {
		o, err := wire.AsObject(val)
		if err != nil {
			return wire.Deserialize(d.elem, "", err)
		}
		inner, ok := o[d.contained]
		if !ok {
			return nil
		}
		val = inner
	}
	v, created := d.instance(b)
	var err error
	if u, ok := any(v).(Updater); ok && !created && d.HasFlag(UpdateCollectionItems, b.settings().Version) {
		err = u.UpdateJSON(val)
	} else {
		err = v.LoadJSON(val)
	}
	if err != nil {
		return wire.Deserialize(d.elem, "", err)
	}
	return b.Set(d, v)
}

func (d *ComplexDefinition[T]) WriteXML(w *wire.Writer, b *Bag, _ bool) {
	v, ok := typedValue[T](b, d)
	if !ok || isNil(v) {
		return
	}
	if d.contained == "" {
		v.WriteXML(w, d.elem)
		return
	}
	w.WriteStartElement(wire.NamespaceTypes, d.elem)
	v.WriteXML(w, d.contained)
	w.WriteEndElement()
}

func (d *ComplexDefinition[T]) WriteJSON(o wire.Object, b *Bag, _ bool) error {
	v, ok := typedValue[T](b, d)
	if !ok || isNil(v) {
		return nil
	}
	j, err := v.WriteJSON()
	if err != nil {
		return err
	}
	if d.contained != "" {
		j = wire.Object{d.contained: j}
	}
	o[d.elem] = j
	return nil
}

// Get returns the value, creating an empty one for AutoInstantiateOnRead
// definitions.
func (d *ComplexDefinition[T]) Get(b *Bag) (T, error) { return get[T](b, d) }

// TryGet returns the value when it is present.
func (d *ComplexDefinition[T]) TryGet(b *Bag) (T, bool) { return typedValue[T](b, d) }

// Set assigns v. A nil v deletes the property.
func (d *ComplexDefinition[T]) Set(b *Bag, v T) error {
	if isNil(v) {
		return b.Delete(d)
	}
	return b.Set(d, v)
}

// Delete removes the value.
func (d *ComplexDefinition[T]) Delete(b *Bag) error { return b.Delete(d) }

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
