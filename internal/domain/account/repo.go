package account

import "context"

// Repository stores accounts. Lookups return apperr NotFound for unknown
// ids or usernames; writes return apperr Conflict on a duplicate username.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Account, error)
}
