package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// MemoryStore is a Store without durable backing. Writes can be made to
// fail with SetFailure, which lets tests exercise storage error paths.
type MemoryStore struct {
	mu       sync.RWMutex
	users    []*models.User
	failWith error
	writes   int
}

func NewMemoryStore(users ...*models.User) *MemoryStore {
	return &MemoryStore{users: cloneAll(users)}
}

// SetFailure makes every following Load, Persist and Replace fail with err
// (wrapped in common.ErrStorage). A nil err clears the failure.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Writes reports how many successful Persist/Replace calls happened.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(ctx)
}

func (s *MemoryStore) All() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.users)
}

func (s *MemoryStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	s.writes++
	return nil
}

func (s *MemoryStore) Replace(ctx context.Context, users []*models.User) error {
	next := cloneAll(users)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	s.users = next
	s.writes++
	return nil
}

func (s *MemoryStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	if s.failWith != nil {
		return fmt.Errorf("%w: %w", common.ErrStorage, s.failWith)
	}
	return nil
}
