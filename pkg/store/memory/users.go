package memory

import (
	"context"
	"sync/atomic"

	"github.com/lborres/apothecary/core"
)

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := s.ids.New()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.Name]; exists {
		return core.ErrUserExists
	}

	u.ID = id
	u.CreatedAt = s.now().UTC()
	stored := *u
	s.users[u.Name] = &stored

	atomic.AddInt64(&s.writes, 1)
	return nil
}

func (s *Store) GetUserByName(ctx context.Context, name string) (*core.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddInt64(&s.reads, 1)
	u, ok := s.users[name]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	found := *u
	return &found, nil
}
