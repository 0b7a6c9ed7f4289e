package property

import "strings"

// Flags is the set of behaviors a definition declares.
type Flags uint32

// Definition flags.
const (
	// AutoInstantiateOnRead creates an empty complex value on first read.
	AutoInstantiateOnRead Flags = 1 << iota
	// ReuseInstance loads into the existing complex value instead of a new one.
	ReuseInstance
	// CanSet allows the property on create.
	CanSet
	// CanUpdate allows the property on update.
	CanUpdate
	// CanDelete allows the property to be removed on update.
	CanDelete
	// CanFind allows the property in search restrictions and summary loads.
	CanFind
	// MustBeExplicitlyLoaded excludes the property from first-class loads.
	MustBeExplicitlyLoaded
	// UpdateCollectionItems merges a reused collection positionally.
	UpdateCollectionItems
	// Associated marks a property only ever written through another one.
	Associated

	None Flags = 0
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{AutoInstantiateOnRead, "AutoInstantiateOnRead"},
	{ReuseInstance, "ReuseInstance"},
	{CanSet, "CanSet"},
	{CanUpdate, "CanUpdate"},
	{CanDelete, "CanDelete"},
	{CanFind, "CanFind"},
	{MustBeExplicitlyLoaded, "MustBeExplicitlyLoaded"},
	{UpdateCollectionItems, "UpdateCollectionItems"},
	{Associated, "Associated"},
}

// Has reports whether every bit of flag is set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

func (f Flags) String() string {
	if f == None {
		return "None"
	}
	var parts []string
	for _, n := range flagNames {
		if f.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
