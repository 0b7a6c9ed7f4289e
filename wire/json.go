package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Object is a decoded JSON object. Numbers are kept as json.Number so
// 64-bit integers survive decoding.
type Object map[string]any

// NewObject returns an object typed with the given discriminator, or an
// untyped object when typeName is empty.
func NewObject(typeName string) Object {
	o := Object{}
	if typeName != "" {
		o[JSONTypeKey] = typeName + JSONTypeSuffix
	}
	return o
}

// TypeName returns the discriminator without its suffix, or "".
func (o Object) TypeName() string {
	s, _ := o[JSONTypeKey].(string)
	if i := len(s) - len(JSONTypeSuffix); i >= 0 && s[i:] == JSONTypeSuffix {
		return s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// GetString returns the string at key.
func (o Object) GetString(key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	s, err := AsString(v)
	return s, err == nil
}

// GetObject returns the nested object at key.
func (o Object) GetObject(key string) (Object, bool) {
	v, ok := o[key]
	if !ok {
		return nil, false
	}
	obj, err := AsObject(v)
	return obj, err == nil
}

// GetArray returns the array at key.
func (o Object) GetArray(key string) ([]any, bool) {
	v, ok := o[key]
	if !ok {
		return nil, false
	}
	arr, err := AsArray(v)
	return arr, err == nil
}

// Marshal encodes the object.
func (o Object) Marshal() ([]byte, error) {
	return json.Marshal(map[string]any(o))
}

// DecodeObject parses a JSON document whose root is an object.
func DecodeObject(data []byte) (Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, Deserialize("document", "", err)
	}
	return Object(m), nil
}

// AsObject converts a decoded JSON value to an Object.
func AsObject(v any) (Object, error) {
	switch t := v.(type) {
	case Object:
		return t, nil
	case map[string]any:
		return Object(t), nil
	default:
		return nil, fmt.Errorf("%w: expected object, got %T", ErrInvalidValue, v)
	}
}

// AsArray converts a decoded JSON value to a slice.
func AsArray(v any) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case []Object:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: expected array, got %T", ErrInvalidValue, v)
	}
}

// AsString converts a decoded JSON scalar to its string form.
func AsString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return "", fmt.Errorf("%w: expected string, got %T", ErrInvalidValue, v)
	}
}

// AsInt converts a decoded JSON value to an int64. Strings are parsed.
func AsInt(v any) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Int64()
	case float64:
		return int64(t), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("%w: expected integer, got %T", ErrInvalidValue, v)
	}
}

// AsFloat converts a decoded JSON value to a float64. Strings are parsed.
func AsFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Float64()
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		return ParseFloat(t)
	default:
		return 0, fmt.Errorf("%w: expected number, got %T", ErrInvalidValue, v)
	}
}

// AsBool converts a decoded JSON value to a bool. Strings are parsed.
func AsBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return ParseBool(t)
	default:
		return false, fmt.Errorf("%w: expected boolean, got %T", ErrInvalidValue, v)
	}
}
