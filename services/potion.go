package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lborres/apothecary/core"
)

type PotionService struct {
	store  core.PotionStorage
	logger *slog.Logger
}

// Ensure PotionService implements PotionHandler
var _ core.PotionHandler = (*PotionService)(nil)

func NewPotionService(store core.PotionStorage, logger *slog.Logger) *PotionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PotionService{store: store, logger: logger}
}

func (s *PotionService) ListNames(ctx context.Context) ([]string, error) {
	names, err := s.store.ListPotionNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list potion names: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *PotionService) ListByVendor(ctx context.Context, vendorID string) ([]*core.Potion, error) {
	if vendorID == "" {
		return []*core.Potion{}, nil
	}
	return s.list(ctx, core.PotionFilter{VendorID: vendorID})
}

func (s *PotionService) ListAll(ctx context.Context) ([]*core.Potion, error) {
	return s.list(ctx, core.PotionFilter{})
}

func (s *PotionService) list(ctx context.Context, filter core.PotionFilter) ([]*core.Potion, error) {
	potions, err := s.store.ListPotions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list potions: %w", err)
	}
	if potions == nil {
		potions = []*core.Potion{}
	}
	return potions, nil
}

// Create validates doc as a complete potion and stores it.
func (s *PotionService) Create(ctx context.Context, doc core.Document) (*core.Potion, error) {
	potion, err := core.NewPotion(doc)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreatePotion(ctx, potion); err != nil {
		return nil, fmt.Errorf("failed to create potion: %w", err)
	}

	s.logger.InfoContext(ctx, "potion created", "potion_id", potion.ID, "vendor_id", potion.VendorID)
	return potion, nil
}

// Update merges doc onto the stored potion and stores the validated result.
func (s *PotionService) Update(ctx context.Context, id string, doc core.Document) (*core.Potion, error) {
	updated, err := s.store.UpdatePotion(ctx, id, func(current *core.Potion) (*core.Potion, error) {
		return current.Merge(doc)
	})
	if err != nil {
		if errors.Is(err, core.ErrPotionNotFound) || errors.Is(err, core.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update potion: %w", err)
	}

	s.logger.InfoContext(ctx, "potion updated", "potion_id", id)
	return updated, nil
}

func (s *PotionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeletePotion(ctx, id); err != nil {
		if errors.Is(err, core.ErrPotionNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete potion: %w", err)
	}

	s.logger.InfoContext(ctx, "potion deleted", "potion_id", id)
	return nil
}

// AverageScore is 0 for an empty catalog.
func (s *PotionService) AverageScore(ctx context.Context) (float64, error) {
	avg, err := s.store.AverageScore(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to compute average score: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// TotalPrice is 0 for an empty catalog.
func (s *PotionService) TotalPrice(ctx context.Context) (float64, error) {
	total, err := s.store.TotalPrice(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to compute total price: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (s *PotionService) TotalCount(ctx context.Context) (int64, error) {
	n, err := s.store.CountPotions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count potions: %w", err)
	}
	return n, nil
}

func (s *PotionService) DistinctCategories(ctx context.Context) ([]string, error) {
	categories, err := s.store.DistinctCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		return []string{}, nil
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *PotionService) AverageScoreByVendor(ctx context.Context) ([]core.VendorScore, error) {
	scores, err := s.store.AverageScoreByVendor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute vendor scores: %w", err)
	}
	if scores == nil {
		return []core.VendorScore{}, nil
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].VendorID < scores[j].VendorID })
	return scores, nil
}
