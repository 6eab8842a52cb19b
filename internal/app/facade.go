package app

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/usecase"
)

// HealthChecker reports whether the order store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// LaborFacade exposes order operations to the transport layer.
type LaborFacade struct {
	orders *usecase.OrderUseCase
	health HealthChecker
}

// NewLaborFacade constructs the facade.
func NewLaborFacade(orders *usecase.OrderUseCase, health HealthChecker) *LaborFacade {
	return &LaborFacade{orders: orders, health: health}
}

// Orders returns every order enriched with its owner name.
func (f *LaborFacade) Orders(ctx context.Context) ([]model.Order, error) {
	return drain(f.orders.ListAll(ctx))
}

// OrdersByOwner returns the orders of ownerID enriched with its name.
func (f *LaborFacade) OrdersByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	return drain(f.orders.FindByOwnerID(ctx, ownerID))
}

// Order returns the order with id; false when it does not exist.
func (f *LaborFacade) Order(ctx context.Context, id uuid.UUID) (*model.Order, bool, error) {
	return f.orders.FindByID(ctx, id)
}

// CreateOrder validates and stores order.
func (f *LaborFacade) CreateOrder(ctx context.Context, order model.Order) (usecase.CreateResult, error) {
	return f.orders.Create(ctx, order)
}

// Ping checks the order store.
func (f *LaborFacade) Ping(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

// drain collects seq, discarding partial results on the first error.
func drain(seq iter.Seq2[model.Order, error]) ([]model.Order, error) {
	var orders []model.Order
	for order, err := range seq {
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}
