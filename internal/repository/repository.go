// Package repository provides the persistence layer for grievance cases.
package repository

import (
	"context"

	"github.com/gunaso-platform/grievance/internal/model"
)

// CaseRepository is the storage contract the intake pipeline owns its
// cases through. Implementations must preserve insertion order in All:
// clustering takes the first structural match, so scan order is part of
// the observable behavior.
type CaseRepository interface {
	// Append stores a newly created case.
	Append(ctx context.Context, c *model.Case) error
	// Get returns the case with the given ID or a not-found error.
	Get(ctx context.Context, id string) (*model.Case, error)
	// Update persists a mutated case.
	Update(ctx context.Context, c *model.Case) error
	// All returns every case in insertion order.
	All(ctx context.Context) ([]*model.Case, error)
	// Count returns the number of stored cases.
	Count(ctx context.Context) (int, error)
}
