package property

import (
	"fmt"
	"slices"
	"time"

	"github.com/rbaliyan/ews/wire"
)

// Codec converts a simple value to and from its wire forms.
type Codec[T any] struct {
	Format   func(T) string
	Parse    func(string) (T, error)
	ToJSON   func(T) any
	FromJSON func(any) (T, error)
}

// Codecs for the primitive shapes.
var (
	BoolCodec = Codec[bool]{
		Format:   wire.FormatBool,
		Parse:    wire.ParseBool,
		ToJSON:   func(b bool) any { return b },
		FromJSON: wire.AsBool,
	}
	IntCodec = Codec[int]{
		Format: func(n int) string { return wire.FormatInt(int64(n)) },
		Parse: func(s string) (int, error) {
			n, err := wire.ParseInt(s)
			return int(n), err
		},
		ToJSON: func(n int) any { return n },
		FromJSON: func(v any) (int, error) {
			n, err := wire.AsInt(v)
			return int(n), err
		},
	}
	Int64Codec = Codec[int64]{
		Format:   wire.FormatInt,
		Parse:    wire.ParseInt,
		ToJSON:   func(n int64) any { return n },
		FromJSON: wire.AsInt,
	}
	DoubleCodec = Codec[float64]{
		Format:   wire.FormatFloat,
		Parse:    wire.ParseFloat,
		ToJSON:   func(f float64) any { return wire.FormatFloat(f) },
		FromJSON: wire.AsFloat,
	}
	StringCodec = Codec[string]{
		Format:   func(s string) string { return s },
		Parse:    func(s string) (string, error) { return s, nil },
		ToJSON:   func(s string) any { return s },
		FromJSON: wire.AsString,
	}
	BytesCodec = Codec[[]byte]{
		Format: wire.FormatBase64,
		Parse:  wire.ParseBase64,
		ToJSON: func(b []byte) any { return wire.FormatBase64(b) },
		FromJSON: func(v any) ([]byte, error) {
			s, err := wire.AsString(v)
			if err != nil {
				return nil, err
			}
			return wire.ParseBase64(s)
		},
	}
	DurationCodec = Codec[time.Duration]{
		Format: wire.FormatDuration,
		Parse:  wire.ParseDuration,
		ToJSON: func(d time.Duration) any { return wire.FormatDuration(d) },
		FromJSON: func(v any) (time.Duration, error) {
			s, err := wire.AsString(v)
			if err != nil {
				return 0, err
			}
			return wire.ParseDuration(s)
		},
	}
)

// EnumCodec maps a string enumeration. When allowed is non-empty, parsed
// values outside it are rejected.
func EnumCodec[E ~string](allowed ...E) Codec[E] {
	parse := func(s string) (E, error) {
		e := E(s)
		if len(allowed) > 0 && !slices.Contains(allowed, e) {
			return "", fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		return e, nil
	}
	return Codec[E]{
		Format: func(e E) string { return string(e) },
		Parse:  parse,
		ToJSON: func(e E) any { return string(e) },
		FromJSON: func(v any) (E, error) {
			s, err := wire.AsString(v)
			if err != nil {
				return "", err
			}
			return parse(s)
		},
	}
}

// Value is a definition whose value is a single text element.
type Value[T any] struct {
	base
	codec Codec[T]
}

// NewValue creates a simple definition. Values are not nullable unless the
// Nullable option is given.
func NewValue[T any](name, elem, uri string, flags Flags, v wire.Version, codec Codec[T], opts ...Option) *Value[T] {
	return &Value[T]{base: newBase(name, elem, uri, flags, v, false, opts), codec: codec}
}

// NewString creates a nullable string definition.
func NewString(name, elem, uri string, flags Flags, v wire.Version, opts ...Option) *Value[string] {
	return &Value[string]{base: newBase(name, elem, uri, flags, v, true, opts), codec: StringCodec}
}

// NewBool creates a boolean definition.
func NewBool(name, elem, uri string, flags Flags, v wire.Version, opts ...Option) *Value[bool] {
	return NewValue(name, elem, uri, flags, v, BoolCodec, opts...)
}

// NewInt creates an integer definition.
func NewInt(name, elem, uri string, flags Flags, v wire.Version, opts ...Option) *Value[int] {
	return NewValue(name, elem, uri, flags, v, IntCodec, opts...)
}

// NewDouble creates a double definition.
func NewDouble(name, elem, uri string, flags Flags, v wire.Version, opts ...Option) *Value[float64] {
	return NewValue(name, elem, uri, flags, v, DoubleCodec, opts...)
}

// NewBytes creates a nullable base64 definition.
func NewBytes(name, elem, uri string, flags Flags, v wire.Version, opts ...Option) *Value[[]byte] {
	return &Value[[]byte]{base: newBase(name, elem, uri, flags, v, true, opts), codec: BytesCodec}
}

// NewDuration creates an xs:duration definition.
func NewDuration(name, elem, uri string, flags Flags, v wire.Version, opts ...Option) *Value[time.Duration] {
	return NewValue(name, elem, uri, flags, v, DurationCodec, opts...)
}

// NewEnum creates a string enumeration definition.
func NewEnum[E ~string](name, elem, uri string, flags Flags, v wire.Version, allowed []E, opts ...Option) *Value[E] {
	return NewValue(name, elem, uri, flags, v, EnumCodec(allowed...), opts...)
}

func (d *Value[T]) LoadXML(r *wire.Reader, b *Bag) error {
	s, err := r.ReadElementValue()
	if err != nil {
		return wire.Deserialize(d.elem, "", err)
	}
	v, err := d.codec.Parse(s)
	if err != nil {
		return wire.Deserialize(d.elem, s, err)
	}
	return b.Set(d, v)
}

func (d *Value[T]) LoadJSON(v any, b *Bag) error {
	val, err := d.codec.FromJSON(v)
	if err != nil {
		return wire.Deserialize(d.elem, fmt.Sprint(v), err)
	}
	return b.Set(d, val)
}

func (d *Value[T]) WriteXML(w *wire.Writer, b *Bag, _ bool) {
	v, ok := typedValue[T](b, d)
	if !ok {
		return
	}
	w.WriteElementValue(wire.NamespaceTypes, d.elem, d.codec.Format(v))
}

func (d *Value[T]) WriteJSON(o wire.Object, b *Bag, _ bool) error {
	v, ok := typedValue[T](b, d)
	if !ok {
		return nil
	}
	o[d.elem] = d.codec.ToJSON(v)
	return nil
}

// Get returns the property value.
func (d *Value[T]) Get(b *Bag) (T, error) { return get[T](b, d) }

// TryGet returns the value when it is present.
func (d *Value[T]) TryGet(b *Bag) (T, bool) { return typedValue[T](b, d) }

// Set assigns the property value.
func (d *Value[T]) Set(b *Bag, v T) error { return b.Set(d, v) }

// Delete removes the property value.
func (d *Value[T]) Delete(b *Bag) error { return b.Delete(d) }

// get reads d from b as T, applying the nullability rule for known but
// absent values.
func get[T any](b *Bag, d Definition) (T, error) {
	var zero T
	v, err := b.Get(d)
	if err != nil {
		return zero, err
	}
	if v == nil {
		if d.Nullable() {
			return zero, nil
		}
		return zero, newError(d, ErrNotSet)
	}
	t, ok := v.(T)
	if !ok {
		return zero, newError(d, fmt.Errorf("%w: stored %T", ErrTypeMismatch, v))
	}
	return t, nil
}

func typedValue[T any](b *Bag, d Definition) (T, bool) {
	var zero T
	v, ok := b.TryGet(d)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
