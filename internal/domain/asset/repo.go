package asset

import "context"

type Repository interface {
	Create(ctx context.Context, a *Asset) error
	GetByID(ctx context.Context, id int64) (*Asset, error)
	Update(ctx context.Context, a *Asset) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]*Asset, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}
