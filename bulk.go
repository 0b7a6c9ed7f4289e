package ews

import (
	"context"
	"fmt"

	"github.com/rbaliyan/ews/property"
	"golang.org/x/sync/errgroup"
)

// OperationResult contains the result of a single operation within a bulk operation.
// Results are returned in the same order as the input ids.
type OperationResult struct {
	// ID is the unique id of the object that was processed.
	ID string
	// Success indicates whether the operation succeeded.
	Success bool
	// Error contains the error if the operation failed (nil if successful).
	Error error
	// Object is the bound object (only if successful).
	Object Object
}

// BulkResult contains the result of a bulk operation.
//
// Results are returned in order, matching the input order.
// Use helper methods to check status and iterate results.
type BulkResult struct {
	// Results contains the outcome of each operation in input order.
	Results []OperationResult
}

// SuccessCount returns the number of successful operations.
func (r *BulkResult) SuccessCount() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, res := range r.Results {
		if res.Success {
			count++
		}
	}
	return count
}

// FailureCount returns the number of failed operations.
func (r *BulkResult) FailureCount() int {
	if r == nil {
		return 0
	}
	return len(r.Results) - r.SuccessCount()
}

// HasFailures returns true if any operations failed.
func (r *BulkResult) HasFailures() bool {
	return r.FailureCount() > 0
}

// TotalCount returns the total number of ids processed.
func (r *BulkResult) TotalCount() int {
	if r == nil {
		return 0
	}
	return len(r.Results)
}

// FailedIDs returns the ids that failed.
func (r *BulkResult) FailedIDs() []string {
	if r == nil {
		return nil
	}
	var ids []string
	for _, res := range r.Results {
		if !res.Success {
			ids = append(ids, res.ID)
		}
	}
	return ids
}

// Objects returns the successfully bound objects in input order.
func (r *BulkResult) Objects() []Object {
	if r == nil {
		return nil
	}
	var objs []Object
	for _, res := range r.Results {
		if res.Success && res.Object != nil {
			objs = append(objs, res.Object)
		}
	}
	return objs
}

// Err returns an error if there are failures, nil otherwise.
func (r *BulkResult) Err() error {
	if !r.HasFailures() {
		return nil
	}
	return &BulkOperationError{Result: r}
}

// BulkOperationError is returned when a bulk operation has partial failures.
// It wraps BulkResult to provide error interface while guaranteeing non-empty Error().
type BulkOperationError struct {
	Result *BulkResult
}

// Error implements the error interface.
func (e *BulkOperationError) Error() string {
	return fmt.Sprintf("ews: bulk operation failed for %d of %d objects",
		e.Result.FailureCount(), e.Result.TotalCount())
}

// Unwrap returns the individual errors from failed operations.
func (e *BulkOperationError) Unwrap() []error {
	var errs []error
	for _, r := range e.Result.Results {
		if r.Error != nil {
			errs = append(errs, r.Error)
		}
	}
	return errs
}

// BindItems binds ids concurrently, at most maxConcurrentRequests at a
// time. A failed bind does not stop the others; the returned error is
// non-nil only when ctx ends or the service is not connected.
func (s *service) BindItems(ctx context.Context, ids []*ID, ps *property.PropertySet) (*BulkResult, error) {
	if err := s.checkAccess(); err != nil {
		return nil, err
	}
	if ps == nil {
		ps = property.FirstClass()
	}

	result := &BulkResult{Results: make([]OperationResult, len(ids))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.maxConcurrentRequests)
	for i, id := range ids {
		res := &result.Results[i]
		if id != nil {
			res.ID = id.UniqueID()
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				res.Error = err
				return nil
			}
			obj, err := s.BindItem(gctx, id, ps)
			if err != nil {
				res.Error = err
				return nil
			}
			res.Success = true
			res.Object = obj
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return result, err
	}

	s.logger.Debug("bulk bind complete", "total", result.TotalCount(), "failed", result.FailureCount())
	return result, nil
}
