// Package wire provides the low-level encoding layer shared by property
// definitions and the service: protocol versions, namespaces, an XML cursor
// reader and writer, JSON object helpers and primitive value codecs.
//
// The reader and writer deliberately mirror a forward-only cursor model:
// every element reader consumes exactly its own element and leaves the
// cursor on the element's end tag, so callers can dispatch on element names
// in any order.
package wire

import (
	"fmt"
	"strings"
)

// Version identifies the protocol schema version a request targets.
// Versions are ordered; a larger value is a newer schema.
type Version int

// Supported protocol versions.
const (
	Exchange2007SP1 Version = iota
	Exchange2010
	Exchange2010SP1
	Exchange2010SP2
	Exchange2013
	Exchange2013SP1
)

// Oldest and Latest bound the supported version range.
const (
	Oldest = Exchange2007SP1
	Latest = Exchange2013SP1
)

var versionNames = map[Version]string{
	Exchange2007SP1: "Exchange2007_SP1",
	Exchange2010:    "Exchange2010",
	Exchange2010SP1: "Exchange2010_SP1",
	Exchange2010SP2: "Exchange2010_SP2",
	Exchange2013:    "Exchange2013",
	Exchange2013SP1: "Exchange2013_SP1",
}

// String returns the protocol name of the version (e.g. "Exchange2010_SP1").
func (v Version) String() string {
	if s, ok := versionNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// Valid reports whether v is a known version.
func (v Version) Valid() bool {
	_, ok := versionNames[v]
	return ok
}

// ParseVersion parses a protocol version name. Matching is case-insensitive
// and tolerates a missing underscore before the service pack suffix.
func ParseVersion(s string) (Version, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "")
	for v, name := range versionNames {
		if strings.ReplaceAll(strings.ToLower(name), "_", "") == norm {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown version %q", ErrInvalidValue, s)
}

// Format selects the document encoding used for a request.
type Format int

// Supported encodings.
const (
	FormatXML Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ContentType returns the MIME type for documents in this format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json; charset=utf-8"
	}
	return "text/xml; charset=utf-8"
}
