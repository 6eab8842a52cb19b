package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/usecase"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Orders(ctx context.Context) ([]model.Order, error)
	OrdersByOwner(ctx context.Context, ownerID string) ([]model.Order, error)
	Order(ctx context.Context, id uuid.UUID) (*model.Order, bool, error)
	CreateOrder(ctx context.Context, order model.Order) (usecase.CreateResult, error)
}

// HealthFacade reports storage health.
type HealthFacade interface {
	Ping(ctx context.Context) error
}

// LaborFacade aggregates the full set of operations used across handlers.
type LaborFacade interface {
	OrderFacade
	HealthFacade
}
