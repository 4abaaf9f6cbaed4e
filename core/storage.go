package core

import "context"

// UserStorage persists user records. Implementations must enforce name
// uniqueness atomically and report a duplicate as ErrUserExists.
type UserStorage interface {
	// CreateUser assigns ID and CreatedAt on success.
	CreateUser(ctx context.Context, u *User) error

	// GetUserByName returns ErrUserNotFound when no user has exactly that name.
	GetUserByName(ctx context.Context, name string) (*User, error)
}

// PotionStorage persists potion documents.
type PotionStorage interface {
	// CreatePotion assigns ID on success.
	CreatePotion(ctx context.Context, p *Potion) error

	// Query methods
	GetPotion(ctx context.Context, id string) (*Potion, error)
	ListPotions(ctx context.Context, filter PotionFilter) ([]*Potion, error)
	ListPotionNames(ctx context.Context) ([]string, error)

	// UpdatePotion loads the potion with id, passes a copy to fn and stores
	// what fn returns, all as one atomic step. An error from fn aborts the
	// write and is returned as is. ErrPotionNotFound if the id is gone.
	UpdatePotion(ctx context.Context, id string, fn func(*Potion) (*Potion, error)) (*Potion, error)

	// DeletePotion returns ErrPotionNotFound if nothing was removed.
	DeletePotion(ctx context.Context, id string) error

	// Aggregates. AverageScore and TotalPrice return nil on an empty collection.
	CountPotions(ctx context.Context) (int64, error)
	AverageScore(ctx context.Context) (*float64, error)
	TotalPrice(ctx context.Context) (*float64, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	AverageScoreByVendor(ctx context.Context) ([]VendorScore, error)
}

// Storage is everything the application needs from its store.
type Storage interface {
	UserStorage
	PotionStorage

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}
