package test

import (
	"context"
	"sync"

	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
)

// OwnerProviderStub resolves owners from a map and records every lookup.
type OwnerProviderStub struct {
	FetchFn func(context.Context, string) (*model.Owner, error)
	Names   map[string]string
	Err     error

	mu    sync.Mutex
	calls []string
}

// FetchOwner returns the configured owner, ErrOwnerNotFound for unknown ids or Err.
func (s *OwnerProviderStub) FetchOwner(ctx context.Context, ownerID string) (*model.Owner, error) {
	s.mu.Lock()
	s.calls = append(s.calls, ownerID)
	s.mu.Unlock()

	if s.FetchFn != nil {
		return s.FetchFn(ctx, ownerID)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	name, ok := s.Names[ownerID]
	if !ok {
		return nil, domainErrors.ErrOwnerNotFound
	}
	return &model.Owner{ID: ownerID, LastName: name}, nil
}

// Calls returns the owner ids requested so far.
func (s *OwnerProviderStub) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
