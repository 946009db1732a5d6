package patient

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	// Search matches query case-insensitively against full name, policy
	// number and phone. An empty query lists everything. Newest first.
	Search(ctx context.Context, query string) ([]*Patient, error)
	// AppendNote adds entry to the end of notes and moves last_visit
	// forward to visit when visit is later.
	AppendNote(ctx context.Context, id int64, entry string, visit *time.Time) error
	Count(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*Patient, error)
}
