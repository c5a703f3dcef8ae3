package domain

import (
	"github.com/hengadev/errsx"
)

// BatchFailure is the failure of one id in a batch operation.
type BatchFailure struct {
	ID  string
	Err error
}

// BatchResult collects the outcome of a batch operation. The order of Successes and
// Failures is unspecified.
type BatchResult[T any] struct {
	Successes []T
	Failures  []BatchFailure
}

// Err aggregates the failures keyed by id, or returns nil when every id succeeded.
func (b *BatchResult[T]) Err() error {
	if len(b.Failures) == 0 {
		return nil
	}
	errs := make(errsx.Map)
	for _, f := range b.Failures {
		errs.Set(f.ID, f.Err)
	}
	return errs.AsError()
}

// FailedIDs returns the ids that failed.
func (b *BatchResult[T]) FailedIDs() []string {
	ids := make([]string, 0, len(b.Failures))
	for _, f := range b.Failures {
		ids = append(ids, f.ID)
	}
	return ids
}
