package memory

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/lborres/apothecary/core"
)

func (s *Store) CreatePotion(ctx context.Context, p *core.Potion) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := s.ids.New()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = id
	s.potions[id] = p.Clone()
	s.order = append(s.order, id)

	atomic.AddInt64(&s.writes, 1)
	return nil
}

func (s *Store) GetPotion(ctx context.Context, id string) (*core.Potion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddInt64(&s.reads, 1)
	p, ok := s.potions[id]
	if !ok {
		return nil, core.ErrPotionNotFound
	}
	return p.Clone(), nil
}

func (s *Store) ListPotions(ctx context.Context, filter core.PotionFilter) ([]*core.Potion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddInt64(&s.reads, 1)
	out := make([]*core.Potion, 0, len(s.order))
	for _, id := range s.order {
		if p := s.potions[id]; filter.Match(p) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *Store) ListPotionNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddInt64(&s.reads, 1)
	names := make([]string, 0, len(s.order))
	for _, id := range s.order {
		names = append(names, s.potions[id].Name)
	}
	return names, nil
}

func (s *Store) UpdatePotion(ctx context.Context, id string, fn func(*core.Potion) (*core.Potion, error)) (*core.Potion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.potions[id]
	if !ok {
		return nil, core.ErrPotionNotFound
	}
	updated, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	updated.ID = id
	s.potions[id] = updated.Clone()

	atomic.AddInt64(&s.writes, 1)
	return updated, nil
}

func (s *Store) DeletePotion(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.potions[id]; !ok {
		return core.ErrPotionNotFound
	}
	delete(s.potions, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}

	atomic.AddInt64(&s.deletes, 1)
	return nil
}
