// Package pebble keeps orders as JSON documents in an embedded pebble database.
//
// Documents live under order/<created_at nanos>/<id> so that a prefix scan returns
// them in creation order. A secondary key id/<id> points at the document key.
package pebble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/domain/repository"
)

const (
	orderPrefix = "order/"
	orderUpper  = "order/~"
	idPrefix    = "id/"
)

var errClosed = errors.New("pebble store closed")

// Store is an order repository backed by pebble.
type Store struct {
	db     *pebble.DB
	logger *slog.Logger
	closed atomic.Bool
	now    func() time.Time
}

type document struct {
	ID        uuid.UUID        `json:"id"`
	Version   int              `json:"version"`
	Date      model.Date       `json:"date"`
	OwnerID   string           `json:"ownerId"`
	LineItems []model.LineItem `json:"lineItems"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Open opens or creates the database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", dir, err)
	}
	logger.Info("pebble order store opened", slog.String("dir", dir))
	return &Store{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close flushes and closes the database. Further calls fail with ErrStorageUnavailable.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// HealthCheck reports whether the database is open.
func (s *Store) HealthCheck(context.Context) error {
	if s.closed.Load() {
		return unavailable("health check", errClosed)
	}
	return nil
}

// Orders returns the store as an order repository.
func (s *Store) Orders() repository.OrderRepository {
	return s
}

// All yields every order in creation order.
func (s *Store) All(ctx context.Context) iter.Seq2[model.Order, error] {
	return s.scan(ctx, "list orders", func(model.Order) bool { return true })
}

// FindByOwnerID yields orders whose owner id matches pattern, ignoring case.
func (s *Store) FindByOwnerID(ctx context.Context, pattern string) iter.Seq2[model.Order, error] {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return func(yield func(model.Order, error) bool) {
			yield(model.Order{}, fmt.Errorf("compile owner pattern: %w", err))
		}
	}
	return s.scan(ctx, "find orders by owner", func(o model.Order) bool { return re.MatchString(o.OwnerID) })
}

// GetByID returns the order with id or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if err := s.usable(ctx); err != nil {
		return nil, unavailable("get order", err)
	}

	primary, err := s.get(idKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, unavailable("get order", err)
	}

	raw, err := s.get(primary)
	if err != nil {
		return nil, unavailable("get order", err)
	}
	order, err := decode(raw)
	if err != nil {
		return nil, unavailable("get order", err)
	}
	return &order, nil
}

// Insert assigns id, version 0 and timestamps, then writes the document and its index
// in one synced batch.
func (s *Store) Insert(ctx context.Context, order model.Order) (*model.Order, error) {
	if err := s.usable(ctx); err != nil {
		return nil, unavailable("insert order", err)
	}

	now := s.now()
	version := 0
	order.ID = uuid.New()
	order.Version = &version
	order.CreatedAt = now
	order.UpdatedAt = now

	raw, err := json.Marshal(document{
		ID:        order.ID,
		Version:   version,
		Date:      order.Date,
		OwnerID:   order.OwnerID,
		LineItems: order.LineItems,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}

	primary := orderKey(now, order.ID)
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(primary, raw, nil); err != nil {
		return nil, unavailable("insert order", err)
	}
	if err := batch.Set(idKey(order.ID), primary, nil); err != nil {
		return nil, unavailable("insert order", err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, unavailable("insert order", err)
	}
	return &order, nil
}

func (s *Store) scan(ctx context.Context, op string, keep func(model.Order) bool) iter.Seq2[model.Order, error] {
	return func(yield func(model.Order, error) bool) {
		if err := s.usable(ctx); err != nil {
			yield(model.Order{}, unavailable(op, err))
			return
		}

		it, err := s.db.NewIter(&pebble.IterOptions{
			LowerBound: []byte(orderPrefix),
			UpperBound: []byte(orderUpper),
		})
		if err != nil {
			yield(model.Order{}, unavailable(op, err))
			return
		}
		defer it.Close()

		for it.First(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				yield(model.Order{}, unavailable(op, err))
				return
			}
			order, err := decode(it.Value())
			if err != nil {
				yield(model.Order{}, unavailable(op, err))
				return
			}
			if !keep(order) {
				continue
			}
			if !yield(order, nil) {
				return
			}
		}
		if err := it.Error(); err != nil {
			yield(model.Order{}, unavailable(op, err))
		}
	}
}

func (s *Store) get(key []byte) ([]byte, error) {
	val, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

func (s *Store) usable(ctx context.Context) error {
	if s.closed.Load() {
		return errClosed
	}
	return ctx.Err()
}

func decode(raw []byte) (model.Order, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.Order{}, fmt.Errorf("decode order: %w", err)
	}
	version := doc.Version
	return model.Order{
		ID:        doc.ID,
		Version:   &version,
		Date:      doc.Date,
		OwnerID:   doc.OwnerID,
		LineItems: doc.LineItems,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func orderKey(createdAt time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", orderPrefix, createdAt.UnixNano(), id))
}

func idKey(id uuid.UUID) []byte {
	return []byte(idPrefix + id.String())
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domainErrors.ErrStorageUnavailable, op, err)
}
