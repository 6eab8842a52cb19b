package test

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
)

// Seq yields orders in order, then err if it is not nil.
func Seq(orders []model.Order, err error) iter.Seq2[model.Order, error] {
	return func(yield func(model.Order, error) bool) {
		for _, order := range orders {
			if !yield(order, nil) {
				return
			}
		}
		if err != nil {
			yield(model.Order{}, err)
		}
	}
}

// OrderRepositoryStub keeps orders in a slice unless a function override is set.
type OrderRepositoryStub struct {
	AllFn           func(context.Context) iter.Seq2[model.Order, error]
	GetByIDFn       func(context.Context, uuid.UUID) (*model.Order, error)
	FindByOwnerIDFn func(context.Context, string) iter.Seq2[model.Order, error]
	InsertFn        func(context.Context, model.Order) (*model.Order, error)

	mu                 sync.Mutex
	Orders             []model.Order
	Inserted           []model.Order
	AllCalls           int
	GetByIDCalls       int
	FindByOwnerIDCalls int
	Patterns           []string
}

// All yields stored orders or delegates to AllFn.
func (s *OrderRepositoryStub) All(ctx context.Context) iter.Seq2[model.Order, error] {
	s.mu.Lock()
	s.AllCalls++
	orders := slices.Clone(s.Orders)
	s.mu.Unlock()

	if s.AllFn != nil {
		return s.AllFn(ctx)
	}
	return Seq(orders, nil)
}

// GetByID returns the stored order with id or ErrNotFound.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	s.GetByIDCalls++
	s.mu.Unlock()

	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.Orders {
		if order.ID == id {
			found := order
			return &found, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// FindByOwnerID yields stored orders whose owner id equals pattern ignoring case.
func (s *OrderRepositoryStub) FindByOwnerID(ctx context.Context, pattern string) iter.Seq2[model.Order, error] {
	s.mu.Lock()
	s.FindByOwnerIDCalls++
	s.Patterns = append(s.Patterns, pattern)
	var matched []model.Order
	for _, order := range s.Orders {
		if strings.EqualFold(order.OwnerID, pattern) {
			matched = append(matched, order)
		}
	}
	s.mu.Unlock()

	if s.FindByOwnerIDFn != nil {
		return s.FindByOwnerIDFn(ctx, pattern)
	}
	return Seq(matched, nil)
}

// Insert assigns id, version and timestamps and remembers the order.
func (s *OrderRepositoryStub) Insert(ctx context.Context, order model.Order) (*model.Order, error) {
	if s.InsertFn != nil {
		return s.InsertFn(ctx, order)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version := 0
	now := time.Now().UTC()
	order.ID = uuid.New()
	order.Version = &version
	order.CreatedAt = now
	order.UpdatedAt = now
	s.Inserted = append(s.Inserted, order)
	s.Orders = append(s.Orders, order)
	return &order, nil
}

// InsertCount reports how many orders were inserted.
func (s *OrderRepositoryStub) InsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Inserted)
}
