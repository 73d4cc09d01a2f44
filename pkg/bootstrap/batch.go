package bootstrap

import (
	"context"

	"github.com/marshallshelly/pebble-retail/pkg/builder"
)

// Batch is a group of rows of one model type, inserted together.
type Batch interface {
	// Model returns a zero value of the batch's model type.
	Model() any
	// Len returns the number of rows.
	Len() int
	// Row returns the i-th row.
	Row(i int) any

	insert(ctx context.Context, db *builder.DB) ([]int64, error)
}

type rows[T any] struct {
	items []T
}

// Rows builds a batch from rows of a single model type.
func Rows[T any](items ...T) Batch {
	return rows[T]{items: items}
}

func (r rows[T]) Model() any {
	var zero T
	return zero
}

func (r rows[T]) Len() int { return len(r.items) }

func (r rows[T]) Row(i int) any { return r.items[i] }

func (r rows[T]) insert(ctx context.Context, db *builder.DB) ([]int64, error) {
	if len(r.items) == 0 {
		return nil, nil
	}
	return builder.Insert[T](db).Values(r.items...).ExecIDs(ctx)
}
