package property

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Schema is the ordered, immutable table of definitions of one object kind.
// A schema is built by copying its parent's table and registering the
// definitions declared for the kind itself.
type Schema struct {
	name   string
	parent *Schema
	defs   []Definition

	byName map[string]Definition
	byElem map[string]Definition
	byURI  map[string]Definition

	notInSummary map[Definition]bool
	firstClass   map[Definition]bool
}

// RegisterOption adjusts how a definition is registered.
type RegisterOption func(*registration)

type registration struct {
	notInSummary bool
}

// NotInSummary excludes the definition from the first-class summary
// properties returned by list operations.
func NotInSummary() RegisterOption {
	return func(r *registration) { r.notInSummary = true }
}

// Registrar collects the definitions of a schema under construction. The
// first failure is kept and returned by NewSchema.
type Registrar struct {
	s     *Schema
	local map[string]bool
	err   error
}

// Add registers d. Registering a definition whose name is inherited
// replaces the parent's slot in place, provided both have the same type.
func (r *Registrar) Add(d Definition, opts ...RegisterOption) {
	if r.err != nil {
		return
	}
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}
	if err := r.add(d, reg); err != nil {
		r.err = fmt.Errorf("schema %s: %w", r.s.name, err)
	}
}

func (r *Registrar) add(d Definition, reg registration) error {
	s := r.s
	name := d.Name()
	prev, exists := s.byName[name]
	switch {
	case exists && prev == d:
		return nil
	case exists && r.local[name]:
		return newError(d, ErrDuplicate)
	case exists && reflect.TypeOf(prev) != reflect.TypeOf(d):
		return newError(d, fmt.Errorf("%w: %T overrides %T", ErrIncompatible, d, prev))
	}
	if other, ok := s.byElem[d.XMLElement()]; ok && other != prev {
		return newError(d, fmt.Errorf("%w: element %s already used by %s", ErrDuplicate, d.XMLElement(), other.Name()))
	}
	if d.URI() != "" {
		if other, ok := s.byURI[d.URI()]; ok && other != prev {
			return newError(d, fmt.Errorf("%w: uri %s already used by %s", ErrDuplicate, d.URI(), other.Name()))
		}
	}

	if exists {
		i := slices.Index(s.defs, prev)
		s.defs[i] = d
		delete(s.byElem, prev.XMLElement())
		if prev.URI() != "" {
			delete(s.byURI, prev.URI())
		}
		delete(s.notInSummary, prev)
	} else {
		s.defs = append(s.defs, d)
	}
	r.local[name] = true
	s.byName[name] = d
	s.byElem[d.XMLElement()] = d
	if d.URI() != "" {
		s.byURI[d.URI()] = d
	}
	if reg.notInSummary {
		s.notInSummary[d] = true
	}
	return nil
}

// NewSchema builds a schema from parent's definitions followed by those
// register adds. parent may be nil.
func NewSchema(name string, parent *Schema, register func(*Registrar)) (*Schema, error) {
	s := &Schema{
		name:         name,
		parent:       parent,
		byName:       make(map[string]Definition),
		byElem:       make(map[string]Definition),
		byURI:        make(map[string]Definition),
		notInSummary: make(map[Definition]bool),
		firstClass:   make(map[Definition]bool),
	}
	if parent != nil {
		s.defs = slices.Clone(parent.defs)
		for k, v := range parent.byName {
			s.byName[k] = v
		}
		for k, v := range parent.byElem {
			s.byElem[k] = v
		}
		for k, v := range parent.byURI {
			s.byURI[k] = v
		}
		for k, v := range parent.notInSummary {
			s.notInSummary[k] = v
		}
	}
	r := &Registrar{s: s, local: make(map[string]bool)}
	if register != nil {
		register(r)
	}
	if r.err != nil {
		return nil, r.err
	}
	for _, d := range s.defs {
		if !d.Flags().Has(MustBeExplicitlyLoaded) {
			s.firstClass[d] = true
		}
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Schemas are declared
// statically, so a failure is a programming error.
func MustSchema(name string, parent *Schema, register func(*Registrar)) *Schema {
	s, err := NewSchema(name, parent, register)
	if err != nil {
		panic(err)
	}
	return s
}

// Lazy returns an accessor that builds the schema on first use. Concurrent
// first calls share one build.
func Lazy(name string, parent func() *Schema, register func(*Registrar)) func() *Schema {
	return sync.OnceValue(func() *Schema {
		var p *Schema
		if parent != nil {
			p = parent()
		}
		return MustSchema(name, p, register)
	})
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Parent returns the schema this one was built from, or nil.
func (s *Schema) Parent() *Schema { return s.parent }

// Len returns the number of definitions.
func (s *Schema) Len() int { return len(s.defs) }

// Definitions returns the definitions in declaration order, inherited ones
// first.
func (s *Schema) Definitions() []Definition { return slices.Clone(s.defs) }

// Lookup returns the definition registered under name.
func (s *Schema) Lookup(name string) (Definition, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// LookupElement returns the definition read from element elem.
func (s *Schema) LookupElement(elem string) (Definition, bool) {
	d, ok := s.byElem[elem]
	return d, ok
}

// LookupURI returns the definition with field URI uri.
func (s *Schema) LookupURI(uri string) (Definition, bool) {
	d, ok := s.byURI[uri]
	return d, ok
}

// MustLookup returns the definition registered under name or an error
// wrapping ErrNotFound.
func (s *Schema) MustLookup(name string) (Definition, error) {
	if d, ok := s.byName[name]; ok {
		return d, nil
	}
	return nil, &Error{Property: name, Err: fmt.Errorf("%w in schema %s", ErrNotFound, s.name)}
}

// Contains reports whether d is registered.
func (s *Schema) Contains(d Definition) bool {
	return s.byName[d.Name()] == d
}

// FirstClass returns the definitions loaded by a FirstClassProperties
// property set.
func (s *Schema) FirstClass() []Definition {
	var out []Definition
	for _, d := range s.defs {
		if s.firstClass[d] {
			out = append(out, d)
		}
	}
	return out
}

// FirstClassSummary returns the first-class definitions returned by list
// operations.
func (s *Schema) FirstClassSummary() []Definition {
	var out []Definition
	for _, d := range s.defs {
		if s.firstClass[d] && !s.notInSummary[d] {
			out = append(out, d)
		}
	}
	return out
}

// IsFirstClass reports whether d is a first-class property, restricted to
// summary properties when summary is set.
func (s *Schema) IsFirstClass(d Definition, summary bool) bool {
	if !s.firstClass[d] {
		return false
	}
	return !summary || !s.notInSummary[d]
}
