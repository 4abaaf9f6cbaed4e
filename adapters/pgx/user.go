package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/lborres/apothecary/core"
)

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	id, err := a.ids.New()
	if err != nil {
		return oops.Code("USER_ID_FAILED").Wrap(err)
	}

	q := `INSERT INTO users (id, name, password_hash) VALUES ($1, $2, $3) RETURNING created_at`
	err = a.pool.QueryRow(ctx, q, id, user.Name, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrUserExists
		}
		return oops.Code("USER_CREATE_FAILED").With("name", user.Name).Wrap(err)
	}

	user.ID = id
	return nil
}

func (a *Adapter) GetUserByName(ctx context.Context, name string) (*core.User, error) {
	q := `SELECT id, name, password_hash, created_at FROM users WHERE name = $1`

	user := &core.User{}
	err := a.pool.QueryRow(ctx, q, name).Scan(&user.ID, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, oops.Code("USER_QUERY_FAILED").With("name", name).Wrap(err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
