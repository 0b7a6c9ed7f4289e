// Package property maps the properties of remote mailbox objects to typed
// Go values.
//
// A Definition describes one property: its logical name, wire element,
// field URI, minimum protocol version and Flags. Definitions are created
// once and registered in a Schema, the ordered table of one object kind.
// Schemas are composed by copying a parent table:
//
//	var itemSchema = property.Lazy("Item", nil, func(r *property.Registrar) {
//	    r.Add(Subject)
//	    r.Add(Body, property.NotInSummary())
//	})
//
// Each object owns a Bag holding its values. The bag records which
// properties are loaded and which were added, modified or deleted since the
// last sync, so that an update request carries only the delta:
//
//	b := property.NewBag(obj)
//	_ = Subject.Set(b, "hello")
//	w := wire.NewWriter()
//	b.WriteUpdateXML(w)
//	// send w, then
//	b.CommitUpdate()
//
// Both XML and JSON documents are produced from the same definitions.
package property
