package property

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rbaliyan/ews/wire"
)

// MapiType is the value type of an extended property.
type MapiType int

// MAPI property types.
const (
	MapiApplicationTime MapiType = iota + 1
	MapiApplicationTimeArray
	MapiBinary
	MapiBinaryArray
	MapiBoolean
	MapiCLSID
	MapiCLSIDArray
	MapiCurrency
	MapiCurrencyArray
	MapiDouble
	MapiDoubleArray
	MapiError
	MapiFloat
	MapiFloatArray
	MapiInteger
	MapiIntegerArray
	MapiLong
	MapiLongArray
	MapiShort
	MapiShortArray
	MapiSystemTime
	MapiSystemTimeArray
	MapiString
	MapiStringArray
)

// mapiScalar converts one scalar MAPI value. valid checks a Go value of the
// scalar type (or a slice of it for arrays).
type mapiScalar struct {
	parse  func(string) (any, error)
	format func(any) (string, bool)
	valid  func(any) bool
	slice  func([]any) any
	items  func(any) ([]any, bool)
}

func scalar[T any](parse func(string) (T, error), format func(T) string) mapiScalar {
	return mapiScalar{
		parse: func(s string) (any, error) { return parse(s) },
		format: func(v any) (string, bool) {
			t, ok := v.(T)
			if !ok {
				return "", false
			}
			return format(t), true
		},
		valid: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
		slice: func(vs []any) any {
			out := make([]T, len(vs))
			for i, v := range vs {
				out[i] = v.(T)
			}
			return out
		},
		items: func(v any) ([]any, bool) {
			ts, ok := v.([]T)
			if !ok {
				return nil, false
			}
			out := make([]any, len(ts))
			for i, t := range ts {
				out[i] = t
			}
			return out, true
		},
	}
}

func parseSized[T ~int16 | ~int32 | ~int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		n, err := wire.ParseInt(s)
		if err != nil {
			return 0, err
		}
		if bits < 64 && (n < -(1<<(bits-1)) || n >= 1<<(bits-1)) {
			return 0, fmt.Errorf("%w: %d overflows %d bits", wire.ErrInvalidValue, n, bits)
		}
		return T(n), nil
	}
}

func formatSized[T ~int16 | ~int32 | ~int64](v T) string { return wire.FormatInt(int64(v)) }

var (
	scalarInt16 = scalar(parseSized[int16](16), formatSized[int16])
	scalarInt32 = scalar(parseSized[int32](32), formatSized[int32])
	scalarInt64 = scalar(parseSized[int64](64), formatSized[int64])
	scalarFloat = scalar(func(s string) (float32, error) {
		f, err := wire.ParseFloat(s)
		return float32(f), err
	}, func(f float32) string { return wire.FormatFloat(float64(f)) })
	scalarDouble = scalar(wire.ParseFloat, wire.FormatFloat)
	scalarBool   = scalar(wire.ParseBool, wire.FormatBool)
	scalarString = scalar(func(s string) (string, error) { return s, nil }, func(s string) string { return s })
	scalarBinary = scalar(wire.ParseBase64, wire.FormatBase64)
	scalarGUID   = scalar(func(s string) (uuid.UUID, error) {
		u, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: guid %q", wire.ErrInvalidValue, s)
		}
		return u, nil
	}, uuid.UUID.String)
	scalarTime = scalar(func(s string) (time.Time, error) {
		t, err := wire.ParseDateTime(s)
		if err != nil {
			return t, err
		}
		if wire.IsFloating(t) {
			t = wire.Rezone(t, time.UTC)
		}
		return t, nil
	}, wire.FormatDateTime)
)

type mapiInfo struct {
	name   string
	code   uint16
	array  bool
	scalar mapiScalar
}

// Property type codes follow the MAPI Ptyp* values; array types set 0x1000.
var mapiTable = map[MapiType]mapiInfo{
	MapiApplicationTime:      {"ApplicationTime", 0x0007, false, scalarDouble},
	MapiApplicationTimeArray: {"ApplicationTimeArray", 0x1007, true, scalarDouble},
	MapiBinary:               {"Binary", 0x0102, false, scalarBinary},
	MapiBinaryArray:          {"BinaryArray", 0x1102, true, scalarBinary},
	MapiBoolean:              {"Boolean", 0x000B, false, scalarBool},
	MapiCLSID:                {"CLSID", 0x0048, false, scalarGUID},
	MapiCLSIDArray:           {"CLSIDArray", 0x1048, true, scalarGUID},
	MapiCurrency:             {"Currency", 0x0006, false, scalarInt64},
	MapiCurrencyArray:        {"CurrencyArray", 0x1006, true, scalarInt64},
	MapiDouble:               {"Double", 0x0005, false, scalarDouble},
	MapiDoubleArray:          {"DoubleArray", 0x1005, true, scalarDouble},
	MapiError:                {"Error", 0x000A, false, scalarInt32},
	MapiFloat:                {"Float", 0x0004, false, scalarFloat},
	MapiFloatArray:           {"FloatArray", 0x1004, true, scalarFloat},
	MapiInteger:              {"Integer", 0x0003, false, scalarInt32},
	MapiIntegerArray:         {"IntegerArray", 0x1003, true, scalarInt32},
	MapiLong:                 {"Long", 0x0014, false, scalarInt64},
	MapiLongArray:            {"LongArray", 0x1014, true, scalarInt64},
	MapiShort:                {"Short", 0x0002, false, scalarInt16},
	MapiShortArray:           {"ShortArray", 0x1002, true, scalarInt16},
	MapiSystemTime:           {"SystemTime", 0x0040, false, scalarTime},
	MapiSystemTimeArray:      {"SystemTimeArray", 0x1040, true, scalarTime},
	MapiString:               {"String", 0x001F, false, scalarString},
	MapiStringArray:          {"StringArray", 0x101F, true, scalarString},
}

func (t MapiType) String() string {
	if info, ok := mapiTable[t]; ok {
		return info.name
	}
	return fmt.Sprintf("MapiType(%d)", int(t))
}

// Code returns the MAPI property type code.
func (t MapiType) Code() uint16 { return mapiTable[t].code }

// IsArray reports whether values are slices.
func (t MapiType) IsArray() bool { return mapiTable[t].array }

// Valid reports whether t is a known type.
func (t MapiType) Valid() bool {
	_, ok := mapiTable[t]
	return ok
}

// ParseMapiType parses a protocol type name such as "StringArray".
func ParseMapiType(s string) (MapiType, error) {
	for t, info := range mapiTable {
		if info.name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: MAPI type %q", wire.ErrInvalidValue, s)
}

// Check reports whether v is a Go value of type t: int16, int32, int64,
// float32, float64, bool, string, []byte, uuid.UUID or time.Time, or a
// slice of one of those for array types.
func (t MapiType) Check(v any) error {
	info, ok := mapiTable[t]
	if !ok {
		return fmt.Errorf("%w: unknown MAPI type %d", ErrInvalid, int(t))
	}
	if info.array {
		if _, ok := info.scalar.items(v); ok {
			return nil
		}
	} else if info.scalar.valid(v) {
		return nil
	}
	return fmt.Errorf("%w: %T is not a %s value", ErrTypeMismatch, v, t)
}

// ParseValue converts a scalar wire value.
func (t MapiType) ParseValue(s string) (any, error) {
	info, ok := mapiTable[t]
	if !ok {
		return nil, fmt.Errorf("%w: unknown MAPI type %d", wire.ErrInvalidValue, int(t))
	}
	return info.scalar.parse(s)
}

// ParseValues converts the wire items of an array value.
func (t MapiType) ParseValues(ss []string) (any, error) {
	info, ok := mapiTable[t]
	if !ok {
		return nil, fmt.Errorf("%w: unknown MAPI type %d", wire.ErrInvalidValue, int(t))
	}
	vs := make([]any, len(ss))
	for i, s := range ss {
		v, err := info.scalar.parse(s)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return info.scalar.slice(vs), nil
}

// FormatValue converts a scalar value to its wire form.
func (t MapiType) FormatValue(v any) (string, error) {
	info := mapiTable[t]
	if info.scalar.format == nil {
		return "", fmt.Errorf("%w: unknown MAPI type %d", ErrInvalid, int(t))
	}
	s, ok := info.scalar.format(v)
	if !ok {
		return "", fmt.Errorf("%w: %T is not a %s value", ErrTypeMismatch, v, t)
	}
	return s, nil
}

// FormatValues converts an array value to its wire items.
func (t MapiType) FormatValues(v any) ([]string, error) {
	info := mapiTable[t]
	if info.scalar.items == nil {
		return nil, fmt.Errorf("%w: unknown MAPI type %d", ErrInvalid, int(t))
	}
	items, ok := info.scalar.items(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a %s value", ErrTypeMismatch, v, t)
	}
	out := make([]string, len(items))
	for i, it := range items {
		s, _ := info.scalar.format(it)
		out[i] = s
	}
	return out, nil
}
