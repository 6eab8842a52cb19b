package repository

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/HannahHaeusler/labor/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
// Sequences are lazy: rows are read as the caller pulls them, and a failure is yielded
// once as the final element. Failures are wrapped with ErrStorageUnavailable.
type OrderRepository interface {
	All(ctx context.Context) iter.Seq2[model.Order, error]
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// FindByOwnerID matches owner ids case-insensitively against a regular expression.
	FindByOwnerID(ctx context.Context, pattern string) iter.Seq2[model.Order, error]
	Insert(ctx context.Context, order model.Order) (*model.Order, error)
}
