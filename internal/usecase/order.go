package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"

	"github.com/google/uuid"

	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/domain/repository"
)

// OwnerProvider resolves owners for enrichment. A caching or batching decorator can be
// layered in here without touching OrderUseCase.
type OwnerProvider interface {
	FetchOwner(ctx context.Context, ownerID string) (*model.Owner, error)
}

// OrderUseCase reads, enriches, validates and stores orders.
type OrderUseCase struct {
	orders    repository.OrderRepository
	owners    OwnerProvider
	validator *Validator
	today     func() model.Date
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, owners OwnerProvider) *OrderUseCase {
	return &OrderUseCase{
		orders:    orders,
		owners:    owners,
		validator: NewValidator(),
		today:     model.Today,
	}
}

// ListAll yields every order with its owner name, fetching the owner of each order just
// before it is yielded. The first failure is yielded and ends the sequence.
func (u *OrderUseCase) ListAll(ctx context.Context) iter.Seq2[model.Order, error] {
	return func(yield func(model.Order, error) bool) {
		for order, err := range u.orders.All(ctx) {
			if err != nil {
				yield(model.Order{}, err)
				return
			}
			enriched, err := u.enrich(ctx, order)
			if err != nil {
				yield(model.Order{}, err)
				return
			}
			if !yield(enriched, nil) {
				return
			}
		}
	}
}

// FindByID returns the enriched order; found is false when no order has this id.
func (u *OrderUseCase) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, bool, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	enriched, err := u.enrich(ctx, *order)
	if err != nil {
		return nil, false, err
	}
	return &enriched, true, nil
}

// FindByOwnerID resolves the owner once, then yields the orders whose owner id matches
// ownerID as a case-insensitive pattern. Nothing is read from the store if the owner
// lookup fails.
func (u *OrderUseCase) FindByOwnerID(ctx context.Context, ownerID string) iter.Seq2[model.Order, error] {
	return func(yield func(model.Order, error) bool) {
		owner, err := u.owners.FetchOwner(ctx, ownerID)
		if err != nil {
			yield(model.Order{}, fmt.Errorf("resolve owner %s: %w", ownerID, err))
			return
		}

		for order, err := range u.orders.FindByOwnerID(ctx, ownerPattern(ownerID)) {
			if err != nil {
				yield(model.Order{}, err)
				return
			}
			order.Enrich(*owner)
			if !yield(order, nil) {
				return
			}
		}
	}
}

// Create validates order and stores it. Constraint violations are returned as a
// ConstraintViolations result, not as an error.
func (u *OrderUseCase) Create(ctx context.Context, order model.Order) (CreateResult, error) {
	if order.Date.IsZero() {
		order.Date = u.today()
	}

	if violations := u.validator.Validate(order); len(violations) > 0 {
		return ConstraintViolations{Violations: violations}, nil
	}

	order.ID = uuid.Nil
	order.Version = nil
	order.ClearEnrichment()

	persisted, err := u.orders.Insert(ctx, order)
	if err != nil {
		return nil, err
	}
	return Created{Order: persisted}, nil
}

func (u *OrderUseCase) enrich(ctx context.Context, order model.Order) (model.Order, error) {
	owner, err := u.owners.FetchOwner(ctx, order.OwnerID)
	if err != nil {
		return model.Order{}, fmt.Errorf("enrich order %s: %w", order.ID, err)
	}
	order.Enrich(*owner)
	return order, nil
}

// ownerPattern keeps ownerID as a pattern when it compiles and quotes it otherwise.
func ownerPattern(ownerID string) string {
	if _, err := regexp.Compile(ownerID); err != nil {
		return regexp.QuoteMeta(ownerID)
	}
	return ownerID
}
