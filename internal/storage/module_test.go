package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/fx/fxtest"

	"github.com/HannahHaeusler/labor/internal/config"
	"github.com/HannahHaeusler/labor/internal/domain/repository"
	"github.com/HannahHaeusler/labor/internal/storage/memory"
	"github.com/HannahHaeusler/labor/internal/storage/pebble"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOpenSelectsDriver(t *testing.T) {
	mem, err := Open(context.Background(), &config.Config{StorageDriver: config.StorageDriverMemory}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := mem.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", mem)
	}

	peb, err := Open(context.Background(), &config.Config{StorageDriver: config.StorageDriverPebble, PebbleDir: t.TempDir()}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer peb.Close()
	if _, ok := peb.(*pebble.Store); !ok {
		t.Fatalf("expected pebble store, got %T", peb)
	}

	if _, err := Open(context.Background(), &config.Config{StorageDriver: "mongo"}, testLogger()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

type closingStore struct {
	*memory.Store
	closed bool
	err    error
}

func (s *closingStore) Close() error {
	s.closed = true
	return s.err
}

func TestRegisterLifecycleClosesStore(t *testing.T) {
	store := &closingStore{Store: memory.New()}
	lc := fxtest.NewLifecycle(t)
	registerLifecycle(lc, store, testLogger())

	lc.RequireStart()
	lc.RequireStop()
	if !store.closed {
		t.Fatal("expected store to be closed on stop")
	}
}

func TestRegisterLifecyclePropagatesCloseError(t *testing.T) {
	store := &closingStore{Store: memory.New(), err: errors.New("close")}
	lc := fxtest.NewLifecycle(t)
	registerLifecycle(lc, store, testLogger())

	if err := lc.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := lc.Stop(context.Background()); err == nil {
		t.Fatal("expected close error")
	}
}

func TestNewStoreProvidesRepository(t *testing.T) {
	store, err := newStore(storeParams{
		Ctx:    context.Background(),
		Config: &config.Config{StorageDriver: config.StorageDriverMemory},
		Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var _ repository.OrderRepository = store.Orders()
}
