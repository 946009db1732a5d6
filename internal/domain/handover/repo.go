package handover

import (
	"context"

	"github.com/clinicdesk/frontdesk/internal/domain/asset"
)

type Repository interface {
	Create(ctx context.Context, h *Handover) error
	GetByID(ctx context.Context, id int64) (*Handover, error)
	// Update rewrites the header fields only.
	Update(ctx context.Context, h *Handover) error
	// List returns handovers newest first without assets.
	List(ctx context.Context) ([]*Handover, error)
	// LinkAssets adds one link row per id, duplicates included.
	LinkAssets(ctx context.Context, handoverID int64, assetIDs []int64) error
	UnlinkAssets(ctx context.Context, handoverID int64) error
	// AssetsFor joins the linked assets of every given handover. Links to
	// deleted assets are dropped.
	AssetsFor(ctx context.Context, handoverIDs []int64) (map[int64][]*asset.Asset, error)
	// DeleteAll removes every link row and handover and reports the number
	// of handovers removed.
	DeleteAll(ctx context.Context) (int, error)
}

type LogRepository interface {
	CreateLog(ctx context.Context, e *LogEntry) error
	// ListLogs returns every log row newest first.
	ListLogs(ctx context.Context) ([]*LogRecord, error)
	CountLogs(ctx context.Context) (int, error)
	DeleteAllLogs(ctx context.Context) (int, error)
}
