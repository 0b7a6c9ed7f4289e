package property

import (
	"fmt"
	"time"

	"github.com/rbaliyan/ews/wire"
)

// Path addresses a property in property sets and update requests.
type Path interface {
	// Key identifies the addressed property. Equal keys address the same
	// property.
	Key() string
	WritePathXML(w *wire.Writer, v wire.Version)
	PathJSON(v wire.Version) wire.Object
}

// Definition describes one named property of an object kind. Definitions
// are immutable and shared by every object of the kinds that register them.
//
// LoadXML is entered on the property's start element and must leave the
// reader on its end element. WriteXML writes the complete property element;
// failures are recorded on the writer.
type Definition interface {
	Path

	Name() string
	XMLElement() string
	URI() string
	Version() wire.Version
	Flags() Flags
	HasFlag(f Flags, v wire.Version) bool
	Nullable() bool

	LoadXML(r *wire.Reader, b *Bag) error
	LoadJSON(v any, b *Bag) error
	WriteXML(w *wire.Writer, b *Bag, isUpdate bool)
	WriteJSON(o wire.Object, b *Bag, isUpdate bool) error
}

// Emitter is implemented by definitions that write nothing under some
// settings. The bag skips them on create and update.
type Emitter interface {
	Emits(s Settings) bool
}

// TimeZoneResolver maps protocol time zone names to locations.
type TimeZoneResolver interface {
	Resolve(name string) (*time.Location, error)
	Name(loc *time.Location) string
}

type locationResolver struct{}

func (locationResolver) Resolve(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: time zone %q", ErrInvalid, name)
	}
	return loc, nil
}

func (locationResolver) Name(loc *time.Location) string {
	return loc.String()
}

// DefaultResolver resolves names with time.LoadLocation.
var DefaultResolver TimeZoneResolver = locationResolver{}

// Settings is the connection state definitions consult while reading and
// writing.
type Settings struct {
	Version                   wire.Version
	TimeZone                  *time.Location
	Exchange2007Compatibility bool
	TimeZones                 TimeZoneResolver
}

// Location returns the connection time zone, UTC when unset.
func (s Settings) Location() *time.Location {
	if s.TimeZone == nil {
		return time.UTC
	}
	return s.TimeZone
}

// Resolver returns the configured resolver or DefaultResolver.
func (s Settings) Resolver() TimeZoneResolver {
	if s.TimeZones == nil {
		return DefaultResolver
	}
	return s.TimeZones
}

// Names are the element names an owner uses in create and update documents.
type Names struct {
	Object      string // e.g. "Message"
	Change      string // "ItemChange" or "FolderChange"
	SetField    string // "SetItemField" or "SetFolderField"
	DeleteField string // "DeleteItemField" or "DeleteFolderField"
	ID          string // "ItemId" or "FolderId"
	Container   string // JSON key holding the object in a set-field update
}

// Owner is the object a bag belongs to.
type Owner interface {
	Schema() *Schema
	IsNew() bool
	Settings() Settings
	Names() Names
	// CustomDateTimeScoping reports whether floating date-times are scoped
	// by linked time zone properties instead of the connection time zone.
	CustomDateTimeScoping() bool
}

type versionFlags struct {
	version wire.Version
	flags   Flags
}

// base carries the identity and flags shared by every definition.
type base struct {
	name     string
	elem     string
	uri      string
	flags    Flags
	version  wire.Version
	nullable bool
	since    []versionFlags
}

// Option adjusts a definition at construction.
type Option func(*base)

// Nullable lets Get return the zero value for a known but absent property.
func Nullable() Option {
	return func(b *base) { b.nullable = true }
}

// NotNullable makes Get fail for a known but absent property.
func NotNullable() Option {
	return func(b *base) { b.nullable = false }
}

// FlagsSince adds flags that apply from version v onwards.
func FlagsSince(v wire.Version, f Flags) Option {
	return func(b *base) { b.since = append(b.since, versionFlags{version: v, flags: f}) }
}

func newBase(name, elem, uri string, flags Flags, v wire.Version, nullable bool, opts []Option) base {
	b := base{name: name, elem: elem, uri: uri, flags: flags, version: v, nullable: nullable}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (d *base) Name() string          { return d.name }
func (d *base) XMLElement() string    { return d.elem }
func (d *base) URI() string           { return d.uri }
func (d *base) Version() wire.Version { return d.version }
func (d *base) Flags() Flags          { return d.flags }
func (d *base) Nullable() bool        { return d.nullable }

// HasFlag reports whether f applies at version v, counting flags added by
// FlagsSince.
func (d *base) HasFlag(f Flags, v wire.Version) bool {
	all := d.flags
	for _, s := range d.since {
		if v >= s.version {
			all |= s.flags
		}
	}
	return all.Has(f)
}

func (d *base) Key() string {
	if d.uri != "" {
		return "uri:" + d.uri
	}
	return "elem:" + d.elem
}

func (d *base) WritePathXML(w *wire.Writer, _ wire.Version) {
	writeFieldURI(w, d.uri)
}

func (d *base) PathJSON(_ wire.Version) wire.Object {
	return fieldURIJSON(d.uri)
}

func (d *base) String() string {
	return d.name
}

func writeFieldURI(w *wire.Writer, uri string) {
	w.WriteStartElement(wire.NamespaceTypes, wire.ElemFieldURI)
	w.WriteAttribute(wire.AttrFieldURI, uri)
	w.WriteEndElement()
}

func fieldURIJSON(uri string) wire.Object {
	o := wire.NewObject("PropertyUri")
	o[wire.AttrFieldURI] = uri
	return o
}
