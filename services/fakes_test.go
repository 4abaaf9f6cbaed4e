package services

import (
	"context"
	"sync/atomic"

	"github.com/lborres/apothecary/core"
	"github.com/lborres/apothecary/pkg/crypto"
	"github.com/lborres/apothecary/pkg/store/memory"
)

// faultyStore wraps the in-memory store and lets tests inject failures
// into individual operations.
type faultyStore struct {
	*memory.Store

	createUserErr   error
	getUserErr      error
	createPotionErr error
	updatePotionErr error
	deletePotionErr error
	readErr         error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memory.New()}
}

func (f *faultyStore) CreateUser(ctx context.Context, u *core.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	return f.Store.CreateUser(ctx, u)
}

func (f *faultyStore) GetUserByName(ctx context.Context, name string) (*core.User, error) {
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	return f.Store.GetUserByName(ctx, name)
}

func (f *faultyStore) CreatePotion(ctx context.Context, p *core.Potion) error {
	if f.createPotionErr != nil {
		return f.createPotionErr
	}
	return f.Store.CreatePotion(ctx, p)
}

func (f *faultyStore) UpdatePotion(ctx context.Context, id string, fn func(*core.Potion) (*core.Potion, error)) (*core.Potion, error) {
	if f.updatePotionErr != nil {
		return nil, f.updatePotionErr
	}
	return f.Store.UpdatePotion(ctx, id, fn)
}

func (f *faultyStore) DeletePotion(ctx context.Context, id string) error {
	if f.deletePotionErr != nil {
		return f.deletePotionErr
	}
	return f.Store.DeletePotion(ctx, id)
}

func (f *faultyStore) ListPotions(ctx context.Context, filter core.PotionFilter) ([]*core.Potion, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Store.ListPotions(ctx, filter)
}

func (f *faultyStore) ListPotionNames(ctx context.Context) ([]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Store.ListPotionNames(ctx)
}

func (f *faultyStore) CountPotions(ctx context.Context) (int64, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.Store.CountPotions(ctx)
}

func (f *faultyStore) AverageScore(ctx context.Context) (*float64, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Store.AverageScore(ctx)
}

func (f *faultyStore) TotalPrice(ctx context.Context) (*float64, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Store.TotalPrice(ctx)
}

func (f *faultyStore) DistinctCategories(ctx context.Context) ([]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Store.DistinctCategories(ctx)
}

func (f *faultyStore) AverageScoreByVendor(ctx context.Context) ([]core.VendorScore, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Store.AverageScoreByVendor(ctx)
}

// countingHasher records how often each method runs.
type countingHasher struct {
	core.PasswordHandler
	hashes   int64
	verifies int64
}

func (c *countingHasher) Hash(password string) (string, error) {
	atomic.AddInt64(&c.hashes, 1)
	return c.PasswordHandler.Hash(password)
}

func (c *countingHasher) Verify(password, hash string) (bool, error) {
	atomic.AddInt64(&c.verifies, 1)
	return c.PasswordHandler.Verify(password, hash)
}

// fastHasher uses minimal argon2 costs so tests stay quick.
func fastHasher() *crypto.Argon2 {
	return &crypto.Argon2{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestSessionManager() *SessionManager {
	return NewSessionManager(core.DefaultSessionConfig(), crypto.NewJWTIssuer(testSecret))
}
