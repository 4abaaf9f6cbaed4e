package memory

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/lborres/apothecary/core"
)

func (s *Store) CountPotions(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddInt64(&s.reads, 1)
	return int64(len(s.potions)), nil
}

func (s *Store) AverageScore(ctx context.Context) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddInt64(&s.reads, 1)
	if len(s.potions) == 0 {
		return nil, nil
	}
	var sum float64
	for _, p := range s.potions {
		sum += p.Score
	}
	avg := sum / float64(len(s.potions))
	return &avg, nil
}

func (s *Store) TotalPrice(ctx context.Context) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddInt64(&s.reads, 1)
	if len(s.potions) == 0 {
		return nil, nil
	}
	var total float64
	for _, p := range s.potions {
		total += p.Price
	}
	return &total, nil
}

func (s *Store) DistinctCategories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddInt64(&s.reads, 1)
	seen := make(map[string]struct{})
	for _, p := range s.potions {
		for _, c := range p.Categories {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) AverageScoreByVendor(ctx context.Context) ([]core.VendorScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddInt64(&s.reads, 1)
	type acc struct {
		sum   float64
		count int
	}
	byVendor := make(map[string]*acc)
	for _, p := range s.potions {
		a, ok := byVendor[p.VendorID]
		if !ok {
			a = &acc{}
			byVendor[p.VendorID] = a
		}
		a.sum += p.Score
		a.count++
	}

	out := make([]core.VendorScore, 0, len(byVendor))
	for vendorID, a := range byVendor {
		out = append(out, core.VendorScore{VendorID: vendorID, AverageScore: a.sum / float64(a.count)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VendorID < out[j].VendorID })
	return out, nil
}
