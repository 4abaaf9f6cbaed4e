package core

import "context"

// ============================================
// CRYPTO PORTS
// ============================================

// PasswordHandler hashes passwords and verifies them against stored hashes.
type PasswordHandler interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenIssuer signs sessions into tokens and decodes them back.
type TokenIssuer interface {
	Issue(session *Session) (string, error)
	Parse(token string) (*Session, error)
}

// ============================================
// HANDLERS (for HTTP adapters)
// ============================================

// AuthHandler provides authentication operations for HTTP adapters.
type AuthHandler interface {
	Register(ctx context.Context, input CredentialsInput) (*User, error)
	Login(ctx context.Context, input CredentialsInput) (*SignInResult, error)
	Session(ctx context.Context, token string) (*Session, error)
}

// PotionHandler provides catalog and analytics operations for HTTP adapters.
type PotionHandler interface {
	ListNames(ctx context.Context) ([]string, error)
	ListByVendor(ctx context.Context, vendorID string) ([]*Potion, error)
	ListAll(ctx context.Context) ([]*Potion, error)
	Create(ctx context.Context, doc Document) (*Potion, error)
	Update(ctx context.Context, id string, doc Document) (*Potion, error)
	Delete(ctx context.Context, id string) error

	AverageScore(ctx context.Context) (float64, error)
	TotalPrice(ctx context.Context) (float64, error)
	TotalCount(ctx context.Context) (int64, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	AverageScoreByVendor(ctx context.Context) ([]VendorScore, error)
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(app *App) error
}
