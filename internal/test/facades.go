package test

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/usecase"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	OrdersFn        func(context.Context) ([]model.Order, error)
	OrdersByOwnerFn func(context.Context, string) ([]model.Order, error)
	OrderFn         func(context.Context, uuid.UUID) (*model.Order, bool, error)
	CreateFn        func(context.Context, model.Order) (usecase.CreateResult, error)
	PingFn          func(context.Context) error

	calls atomic.Int32
}

// Orders returns predefined orders.
func (s *OrderFacadeStub) Orders(ctx context.Context) ([]model.Order, error) {
	s.calls.Add(1)
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx)
	}
	return nil, nil
}

// OrdersByOwner returns predefined orders for ownerID.
func (s *OrderFacadeStub) OrdersByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	s.calls.Add(1)
	if s.OrdersByOwnerFn != nil {
		return s.OrdersByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

// Order returns the configured order; by default nothing is found.
func (s *OrderFacadeStub) Order(ctx context.Context, id uuid.UUID) (*model.Order, bool, error) {
	s.calls.Add(1)
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return nil, false, nil
}

// CreateOrder delegates to CreateFn or echoes the order back as created.
func (s *OrderFacadeStub) CreateOrder(ctx context.Context, order model.Order) (usecase.CreateResult, error) {
	s.calls.Add(1)
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	version := 0
	order.ID = uuid.New()
	order.Version = &version
	return usecase.Created{Order: &order}, nil
}

// Ping reports storage health.
func (s *OrderFacadeStub) Ping(ctx context.Context) error {
	if s.PingFn != nil {
		return s.PingFn(ctx)
	}
	return nil
}

// Calls reports how many order operations reached the facade.
func (s *OrderFacadeStub) Calls() int {
	return int(s.calls.Load())
}
