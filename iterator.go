package ews

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rbaliyan/ews/property"
	"github.com/rbaliyan/ews/wire"
	"go.opentelemetry.io/otel/attribute"
)

// ErrIteratorOutOfBounds is returned when Item() is called without a successful Next().
var ErrIteratorOutOfBounds = errors.New("ews: iterator out of bounds - call Next() first")

// ItemView selects one page of a folder listing.
type ItemView struct {
	// PageSize is the number of items requested. Zero uses the configured
	// default; values above the configured maximum are clamped.
	PageSize int
	// Offset is the index of the first item, counted from the beginning.
	Offset int
	// Properties are the properties loaded on each item. Only summary
	// properties are returned by a listing. Default: first-class.
	Properties *property.PropertySet
}

// FindItemsResult is one page of a folder listing.
type FindItemsResult struct {
	Items []Object
	// TotalCount is the number of items in the folder.
	TotalCount int
	// NextOffset is the offset of the next page.
	NextOffset int
	// MoreAvailable reports that items remain after this page.
	MoreAvailable bool
}

// FindItems returns one page of the items in folder, oldest index first.
func (s *service) FindItems(ctx context.Context, folder FolderRef, view ItemView) (_ *FindItemsResult, err error) {
	if folder.ID == "" && folder.WellKnown == "" {
		return nil, ErrInvalidID
	}
	if view.Offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", ErrInvalidObject, view.Offset)
	}
	view.PageSize = s.pageSize(view.PageSize)
	ps := view.Properties
	if ps == nil {
		ps = property.FirstClass()
	}
	if err := ps.Validate(s.opts.version); err != nil {
		return nil, err
	}

	ctx, end := s.otel.startSpan(ctx, "ews.find",
		attribute.String("ews.folder", folder.String()),
		attribute.Int("ews.offset", view.Offset),
		attribute.Int("ews.page_size", view.PageSize),
	)
	start := time.Now()
	result := &FindItemsResult{}
	defer func() {
		s.otel.recordFind(ctx, time.Since(start), folder.String(), len(result.Items), err)
		end(err)
	}()

	maxEntries := strconv.Itoa(view.PageSize)
	offset := strconv.Itoa(view.Offset)
	body, err := s.encode(func(w *wire.Writer) {
		w.WriteAttribute("Traversal", "Shallow")
		ps.WriteXML(w, s.opts.version, "ItemShape")
		w.WriteStartElement(wire.NamespaceMessages, "IndexedPageItemView")
		w.WriteAttribute("MaxEntriesReturned", maxEntries)
		w.WriteAttribute("Offset", offset)
		w.WriteAttribute("BasePoint", "Beginning")
		w.WriteEndElement()
		w.WriteStartElement(wire.NamespaceMessages, "ParentFolderIds")
		folder.writeXML(w)
		w.WriteEndElement()
	}, func(req wire.Object) error {
		req["Traversal"] = "Shallow"
		req["ItemShape"] = ps.JSON(s.opts.version)
		paging := wire.NewObject("IndexedPageView")
		paging["MaxEntriesReturned"] = view.PageSize
		paging["Offset"] = view.Offset
		paging["BasePoint"] = "Beginning"
		req["Paging"] = paging
		req["ParentFolderIds"] = []any{folder.json()}
		return nil
	}, OpFindItem)
	if err != nil {
		return nil, err
	}
	resp, err := s.call(ctx, OpFindItem, body)
	if err != nil {
		return nil, err
	}

	sink := func(_ int, k *Kind, load loadFunc) error {
		if k.IsFolder() {
			return nil
		}
		o := newObject(s, k)
		if err := load(o.bag, true, ps, true); err != nil {
			return err
		}
		result.Items = append(result.Items, wrap(o))
		return nil
	}
	if s.isJSON() {
		err = s.readRootFolderJSON(resp, result, sink)
	} else {
		err = s.readRootFolderXML(resp, result, sink)
	}
	if err != nil {
		return nil, err
	}
	if result.NextOffset == 0 {
		result.NextOffset = view.Offset + len(result.Items)
	}

	for _, item := range result.Items {
		if err := s.plugins.afterLoad(ctx, item); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// pageSize applies the configured default and maximum.
func (s *service) pageSize(n int) int {
	if n <= 0 {
		return s.opts.defaultPageSize
	}
	return min(n, s.opts.maxPageSize)
}

func (s *service) readRootFolderXML(body []byte, result *FindItemsResult, sink objectSink) error {
	status, err := readResponseXML(body, func(i int, r *wire.Reader) error {
		if r.LocalName() != "RootFolder" {
			return r.SkipCurrentElement()
		}
		if err := readPaging(result, r.Attr); err != nil {
			return err
		}
		return readChildrenNS(r, wire.NamespaceMessages, "RootFolder", func(name string) error {
			if name != wire.ElemItems {
				return r.SkipCurrentElement()
			}
			return s.readObjectsXML(r, i, sink)
		})
	})
	if err != nil {
		return err
	}
	errs := make([]error, len(status))
	for i, m := range status {
		errs[i] = m.err(OpFindItem)
	}
	return single(OpFindItem, errs)
}

func (s *service) readRootFolderJSON(body []byte, result *FindItemsResult, sink objectSink) error {
	msgs, status, err := readResponseJSON(body)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("%w: no response message for %s", ErrUnexpectedResponse, OpFindItem)
	}
	if err := status[0].err(OpFindItem); err != nil {
		return err
	}
	root, ok := msgs[0].GetObject("RootFolder")
	if !ok {
		return fmt.Errorf("%w: no RootFolder member", ErrUnexpectedResponse)
	}
	attr := func(name string) string {
		v, ok := root[name]
		if !ok {
			return ""
		}
		switch v := v.(type) {
		case bool:
			return wire.FormatBool(v)
		case string:
			return v
		}
		n, _ := wire.AsInt(v)
		return wire.FormatInt(n)
	}
	if err := readPaging(result, attr); err != nil {
		return err
	}
	items, _ := root.GetArray(wire.ElemItems)
	return s.readObjectsJSON(items, 0, sink)
}

// readPaging reads the paging attributes of a RootFolder.
func readPaging(result *FindItemsResult, attr func(string) string) error {
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"IndexedPagingOffset", &result.NextOffset},
		{"TotalItemsInView", &result.TotalCount},
	} {
		v := attr(f.name)
		if v == "" {
			continue
		}
		n, err := wire.ParseInt(v)
		if err != nil {
			return wire.Deserialize(f.name, v, err)
		}
		*f.dst = int(n)
	}
	if v := attr("IncludesLastItemInRange"); v != "" {
		last, err := wire.ParseBool(v)
		if err != nil {
			return wire.Deserialize("IncludesLastItemInRange", v, err)
		}
		result.MoreAvailable = !last
	}
	return nil
}

// ItemIterator provides streaming access to the items of a folder.
// Use Next() to advance, Item() to get the current item.
//
// Ownership: ItemIterator holds no resources requiring cleanup.
// There is no Close method; stop calling Next() when done.
//
// Thread Safety: ItemIterator is NOT safe for concurrent use.
type ItemIterator interface {
	// Next advances to the next item.
	// Returns (true, nil) if there is an item available.
	// Returns (false, nil) if iteration is done (no more items).
	// Returns (false, error) if an error occurred (e.g., service disconnected, context cancelled).
	Next(ctx context.Context) (bool, error)

	// Item returns the current item.
	// Returns ErrIteratorOutOfBounds if called before Next() or after iteration ends.
	Item() (Object, error)
}

// StreamOptions configures streaming behavior.
type StreamOptions struct {
	// BatchSize is the number of items fetched per page.
	// Default: the configured default page size.
	BatchSize int
	// Properties are loaded on each item. Default: first-class.
	Properties *property.PropertySet
}

// batchFetchFunc fetches the page at offset.
type batchFetchFunc func(ctx context.Context, offset int) (*FindItemsResult, error)

// batchIterator pages through a folder by offset. Items added or removed
// while iterating can shift the pages.
type batchIterator struct {
	service  *service
	fetch    batchFetchFunc
	offset   int
	batch    []Object
	batchIdx int
	done     bool
	last     bool
}

func (it *batchIterator) Next(ctx context.Context) (bool, error) {
	if it.done {
		return false, nil
	}

	// Verify service is still connected on each iteration
	if err := it.service.checkAccess(); err != nil {
		it.done = true
		return false, err
	}

	// Check if we need to fetch next batch
	if it.batchIdx >= len(it.batch) {
		if it.last {
			it.done = true
			return false, nil
		}

		page, err := it.fetch(ctx, it.offset)
		if err != nil {
			it.done = true
			return false, err
		}

		it.batch = page.Items
		it.batchIdx = 0
		it.offset = page.NextOffset
		it.last = !page.MoreAvailable

		if len(it.batch) == 0 {
			it.done = true
			return false, nil
		}
	}

	it.batchIdx++
	return true, nil
}

func (it *batchIterator) Item() (Object, error) {
	if it.batchIdx <= 0 || it.batchIdx > len(it.batch) {
		return nil, ErrIteratorOutOfBounds
	}
	return it.batch[it.batchIdx-1], nil
}

// StreamItems returns an iterator over the items of folder.
func (s *service) StreamItems(ctx context.Context, folder FolderRef, opts StreamOptions) (ItemIterator, error) {
	if err := s.checkAccess(); err != nil {
		return nil, err
	}
	if folder.ID == "" && folder.WellKnown == "" {
		return nil, ErrInvalidID
	}
	view := ItemView{PageSize: s.pageSize(opts.BatchSize), Properties: opts.Properties}
	return &batchIterator{
		service: s,
		fetch: func(ctx context.Context, offset int) (*FindItemsResult, error) {
			view.Offset = offset
			return s.FindItems(ctx, folder, view)
		},
	}, nil
}
