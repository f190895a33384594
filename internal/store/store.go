// Package store provides the persistence adapters the plant list manager
// works against: a local single-file variant and a remote REST variant,
// interchangeable behind one contract.
package store

import (
	"context"
	"fmt"

	"github.com/quenchapp/quench/internal/models"
)

type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpWater  Op = "water"
)

// OpError tags a persistence failure with the operation that was attempted.
type OpError struct {
	Op  Op
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("plant store %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

type Store interface {
	// List returns every stored plant, in no guaranteed order.
	List(ctx context.Context) ([]models.Plant, error)
	// Create stores a new plant watered now and returns it with its assigned id.
	Create(ctx context.Context, name string, intervalDays, order int) (models.Plant, error)
	// Update applies a partial change set. The file variant silently ignores
	// unknown ids and returns the zero Plant; the API variant fails.
	Update(ctx context.Context, id string, updates models.PlantUpdate) (models.Plant, error)
	// Delete removes the plant with the given id.
	Delete(ctx context.Context, id string) error
	// Water marks the plant as watered now and returns the updated record.
	Water(ctx context.Context, id string) (models.Plant, error)
}
