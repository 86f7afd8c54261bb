// Package store holds protagonist state and defines the transaction
// boundary every player action runs in.
package store

import (
	"context"
	"errors"

	"github.com/nathoo/clinicquest/types"
)

// ErrDuplicateID is returned by Create when the protagonist ID is taken.
var ErrDuplicateID = errors.New("store: duplicate protagonist id")

// UpdateFunc mutates a private copy of a protagonist. Returning a non-nil
// error discards every change made by the function.
type UpdateFunc func(p *types.Protagonist) error

// Store persists protagonists.
//
// Implementations must be safe for concurrent use. Update calls for the
// same protagonist are serialised; calls for different protagonists may
// run in parallel.
type Store interface {
	// Create stores a new protagonist.
	Create(ctx context.Context, p *types.Protagonist) error

	// Get returns a copy of a protagonist or an error wrapping
	// types.ErrNotFound.
	Get(ctx context.Context, id string) (*types.Protagonist, error)

	// Update runs fn on a copy of the protagonist and commits the copy
	// only when fn returns nil. fn's error is returned unchanged.
	Update(ctx context.Context, id string, fn UpdateFunc) error

	// List returns the IDs of all stored protagonists, sorted.
	List(ctx context.Context) ([]string, error)
}
