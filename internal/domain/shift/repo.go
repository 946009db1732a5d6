package shift

import "context"

type Repository interface {
	Create(ctx context.Context, s *Shift) error
	GetByID(ctx context.Context, id int64) (*Shift, error)
	Update(ctx context.Context, s *Shift) error
	Delete(ctx context.Context, id int64) error
	// List returns shifts newest first, restricted to date when it is not empty.
	List(ctx context.Context, date string) ([]*Shift, error)
}
