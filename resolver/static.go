// Package resolver provides property.TimeZoneResolver implementations.
package resolver

import (
	"fmt"
	"time"

	"github.com/rbaliyan/ews/property"
)

// Static is a map-based time zone resolver for servers that use their own
// zone names (e.g. "Pacific Standard Time"). Safe for concurrent use
// (read-only after creation).
type Static struct {
	zones map[string]*time.Location
	names map[string]string
}

// NewStatic creates a Static resolver from a map of protocol zone name to
// location. The map is copied to prevent external mutation. When two names
// map to the same location, Name returns the lexically smallest.
func NewStatic(zones map[string]*time.Location) *Static {
	s := &Static{
		zones: make(map[string]*time.Location, len(zones)),
		names: make(map[string]string, len(zones)),
	}
	for name, loc := range zones {
		if loc == nil {
			continue
		}
		s.zones[name] = loc
		if prev, ok := s.names[loc.String()]; !ok || name < prev {
			s.names[loc.String()] = name
		}
	}
	return s
}

// NewStaticFromIANA creates a Static resolver from a map of protocol zone
// name to IANA location name.
func NewStaticFromIANA(zones map[string]string) (*Static, error) {
	m := make(map[string]*time.Location, len(zones))
	for name, iana := range zones {
		loc, err := time.LoadLocation(iana)
		if err != nil {
			return nil, fmt.Errorf("resolver: load %q for %q: %w", iana, name, err)
		}
		m[name] = loc
	}
	return NewStatic(m), nil
}

// Resolve returns the location registered under name.
func (s *Static) Resolve(name string) (*time.Location, error) {
	loc, ok := s.zones[name]
	if !ok {
		return nil, fmt.Errorf("%w: time zone %q", property.ErrInvalid, name)
	}
	return loc, nil
}

// Name returns the protocol name of loc. Locations that were not registered
// are named by their IANA name.
func (s *Static) Name(loc *time.Location) string {
	if name, ok := s.names[loc.String()]; ok {
		return name
	}
	return loc.String()
}

var _ property.TimeZoneResolver = (*Static)(nil)
