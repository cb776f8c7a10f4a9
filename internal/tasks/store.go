package tasks

import "context"

// Store is the canonical keyed container of tasks. Implementations must be
// safe for concurrent use and must complete every method atomically with
// respect to other callers on the same id.
//
// Absence is reported through the boolean result, never as an error. A
// non-nil error means the backend itself failed.
type Store interface {
	// List returns a snapshot of every stored task, in no particular order.
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id string) (Task, bool, error)
	// Insert stores t under t.ID, overwriting any existing record.
	Insert(ctx context.Context, t Task) (Task, error)
	// Update replaces the record at t.ID only if one already exists.
	Update(ctx context.Context, t Task) (Task, bool, error)
	// Delete removes the record and reports whether one was present.
	Delete(ctx context.Context, id string) (bool, error)
}
