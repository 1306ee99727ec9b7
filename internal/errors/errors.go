// internal/errors/errors.go
package errors

import "fmt"

// CollectionError is returned when a full-collection fetch fails. It aborts
// the run: reconciliation needs both collections complete.
type CollectionError struct {
	Collection string
	Err        error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Collection, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// MutationError is a failed create, archive or patch of a single mirror
// record. It carries enough identity for a manual retry; the batch logs it
// and moves on to the next record.
type MutationError struct {
	Op       string // "create", "archive" or "patch"
	Title    string
	RecordID string // empty for creates
	Err      error
}

func (e *MutationError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("%s record %q: %v", e.Op, e.Title, e.Err)
	}
	return fmt.Sprintf("%s record %q (%s): %v", e.Op, e.Title, e.RecordID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
