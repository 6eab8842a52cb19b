package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/domain/repository"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

const orderColumns = `id, version, order_date, owner_id, line_items, created_at, updated_at`

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

// New creates storage with schema initialization. maxConns <= 0 keeps the pgx default.
func New(ctx context.Context, dsn string, maxConns int, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres order store ready", slog.Int("max_conns", int(cfg.MaxConns)))
	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// HealthCheck pings the database.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", domainErrors.ErrStorageUnavailable, err)
	}
	return nil
}

// Orders returns the order repository backed by this storage.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            version INTEGER NOT NULL DEFAULT 0,
            order_date DATE NOT NULL,
            owner_id TEXT NOT NULL,
            line_items JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_owner ON orders(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at, id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domainErrors.ErrStorageUnavailable, op, err)
}

// SQLSTATE invalid_regular_expression.
const pgInvalidRegularExpression = "2201B"

// --- OrderRepository implementation ---

func (r *orderRepository) All(ctx context.Context) iter.Seq2[model.Order, error] {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at, id`
	return r.storage.stream(ctx, "list orders", query)
}

// FindByOwnerID matches with ~*. Postgres regular expressions differ from RE2, so a
// pattern Postgres rejects before any row is read is retried as a literal.
func (r *orderRepository) FindByOwnerID(ctx context.Context, pattern string) iter.Seq2[model.Order, error] {
	const (
		op    = "find orders by owner"
		query = `SELECT ` + orderColumns + ` FROM orders WHERE owner_id ~* $1 ORDER BY created_at, id`
	)
	return func(yield func(model.Order, error) bool) {
		literal, yielded := false, false
		for order, err := range r.storage.stream(ctx, op, query, pattern) {
			if err != nil && !yielded && isInvalidRegex(err) {
				literal = true
				break
			}
			yielded = true
			if !yield(order, err) {
				return
			}
		}
		if !literal {
			return
		}

		r.storage.logger.DebugContext(ctx, "owner pattern rejected by postgres, matching literally", slog.String("pattern", pattern))
		for order, err := range r.storage.stream(ctx, op, query, regexp.QuoteMeta(pattern)) {
			if !yield(order, err) {
				return
			}
		}
	}
}

func isInvalidRegex(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidRegularExpression
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, unavailable("get order", err)
	}
	return &order, nil
}

func (r *orderRepository) Insert(ctx context.Context, order model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (id, version, order_date, owner_id, line_items)
                   VALUES ($1, 0, $2, $3, $4)
                   RETURNING version, created_at, updated_at`

	lineItems, err := json.Marshal(order.LineItems)
	if err != nil {
		return nil, fmt.Errorf("encode line items: %w", err)
	}

	order.ID = uuid.New()
	var version int
	err = r.storage.pool.QueryRow(ctx, query, order.ID, order.Date.Time(), order.OwnerID, lineItems).
		Scan(&version, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, unavailable("insert order", err)
	}
	order.Version = &version
	return &order, nil
}

// stream runs query and yields rows as they are read. Rows are closed when the
// consumer stops early.
func (s *Storage) stream(ctx context.Context, op, query string, args ...any) iter.Seq2[model.Order, error] {
	return func(yield func(model.Order, error) bool) {
		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			yield(model.Order{}, unavailable(op, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			order, err := scanOrder(rows)
			if err != nil {
				yield(model.Order{}, unavailable(op, err))
				return
			}
			if !yield(order, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Order{}, unavailable(op, err))
		}
	}
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		order     model.Order
		version   int
		date      time.Time
		lineItems []byte
	)
	if err := row.Scan(&order.ID, &version, &date, &order.OwnerID, &lineItems, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return model.Order{}, err
	}
	if err := json.Unmarshal(lineItems, &order.LineItems); err != nil {
		return model.Order{}, fmt.Errorf("decode line items: %w", err)
	}
	order.Version = &version
	order.Date = model.DateOf(date)
	return order, nil
}
