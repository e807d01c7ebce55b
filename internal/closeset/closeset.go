// Package closeset aggregates the errors from closing several resources
// (a socket, an open file, a log sink) into one reported error instead of
// only surfacing the first failure.
package closeset

import "github.com/hashicorp/go-multierror"

// Set collects Close funcs and runs all of them, regardless of earlier
// failures, merging every error hit along the way.
type Set struct {
	fns []func() error
}

// Add registers a resource's Close method for later aggregation. Passing a
// nil func is allowed and ignored, so callers can register conditionally
// without an extra nil check.
func (s *Set) Add(closeFn func() error) {
	if closeFn == nil {
		return
	}
	s.fns = append(s.fns, closeFn)
}

// CloseAll runs every registered Close in registration order and returns
// the merged error, or nil if every Close succeeded.
func (s *Set) CloseAll() error {
	var result *multierror.Error
	for _, fn := range s.fns {
		if err := fn(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
