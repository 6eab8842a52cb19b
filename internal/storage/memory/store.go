// Package memory provides an in-process order repository for development and tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/domain/repository"
)

// Store keeps orders in a map guarded by a RWMutex. Reads work on a sorted snapshot.
type Store struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]model.Order
	now    func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		orders: make(map[uuid.UUID]model.Order),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// HealthCheck always succeeds.
func (s *Store) HealthCheck(context.Context) error { return nil }

// Orders returns the store as an order repository.
func (s *Store) Orders() repository.OrderRepository { return s }

// All yields every order sorted by creation time, then id.
func (s *Store) All(ctx context.Context) iter.Seq2[model.Order, error] {
	return s.scan(ctx, func(model.Order) bool { return true })
}

// FindByOwnerID yields orders whose owner id matches pattern, ignoring case.
func (s *Store) FindByOwnerID(ctx context.Context, pattern string) iter.Seq2[model.Order, error] {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return func(yield func(model.Order, error) bool) {
			yield(model.Order{}, fmt.Errorf("compile owner pattern: %w", err))
		}
	}
	return s.scan(ctx, func(o model.Order) bool { return re.MatchString(o.OwnerID) })
}

// GetByID returns a copy of the order or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrStorageUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	order = clone(order)
	return &order, nil
}

// Insert assigns id, version 0 and timestamps.
func (s *Store) Insert(ctx context.Context, order model.Order) (*model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrStorageUnavailable, err)
	}

	now := s.now()
	version := 0
	order.ID = uuid.New()
	order.Version = &version
	order.CreatedAt = now
	order.UpdatedAt = now
	order.ClearEnrichment()

	s.mu.Lock()
	s.orders[order.ID] = clone(order)
	s.mu.Unlock()

	return &order, nil
}

func (s *Store) scan(ctx context.Context, keep func(model.Order) bool) iter.Seq2[model.Order, error] {
	return func(yield func(model.Order, error) bool) {
		for _, order := range s.snapshot(keep) {
			if err := ctx.Err(); err != nil {
				yield(model.Order{}, fmt.Errorf("%w: %w", domainErrors.ErrStorageUnavailable, err))
				return
			}
			if !yield(order, nil) {
				return
			}
		}
	}
}

func (s *Store) snapshot(keep func(model.Order) bool) []model.Order {
	s.mu.RLock()
	orders := make([]model.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if keep(order) {
			orders = append(orders, clone(order))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(orders, func(a, b model.Order) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return orders
}

func clone(order model.Order) model.Order {
	order.LineItems = slices.Clone(order.LineItems)
	if order.Version != nil {
		version := *order.Version
		order.Version = &version
	}
	return order
}
