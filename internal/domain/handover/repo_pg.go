package handover

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/frontdesk/internal/domain/asset"
	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
	"github.com/clinicdesk/frontdesk/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func NewLogRepoPG(pool *pgxpool.Pool) LogRepository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const handoverCols = `id, from_shift_id, to_shift_id, handover_notes, created_at`

func scanHandover(row pgx.Row) (*Handover, error) {
	var h Handover
	err := row.Scan(&h.ID, &h.FromShiftID, &h.ToShiftID, &h.HandoverNotes, &h.CreatedAt)
	return &h, err
}

func (r *repoPG) Create(ctx context.Context, h *Handover) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO shift_handovers (from_shift_id, to_shift_id, handover_notes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		h.FromShiftID, h.ToShiftID, h.HandoverNotes,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return apperr.Unexpected(err, "insert handover")
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Handover, error) {
	h, err := scanHandover(r.conn(ctx).QueryRow(ctx,
		`SELECT `+handoverCols+` FROM shift_handovers WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Handover not found")
	}
	if err != nil {
		return nil, apperr.Unexpected(err, "select handover %d", id)
	}
	return h, nil
}

func (r *repoPG) Update(ctx context.Context, h *Handover) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE shift_handovers SET from_shift_id=$2, to_shift_id=$3, handover_notes=$4
		WHERE id = $1`,
		h.ID, h.FromShiftID, h.ToShiftID, h.HandoverNotes)
	if err != nil {
		return apperr.Unexpected(err, "update handover %d", h.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Handover not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*Handover, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+handoverCols+` FROM shift_handovers ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, apperr.Unexpected(err, "list handovers")
	}
	defer rows.Close()

	var items []*Handover
	for rows.Next() {
		h, err := scanHandover(rows)
		if err != nil {
			return nil, apperr.Unexpected(err, "scan handover")
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err, "list handovers")
	}
	return items, nil
}

func (r *repoPG) LinkAssets(ctx context.Context, handoverID int64, assetIDs []int64) error {
	if len(assetIDs) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO handover_assets (handover_id, asset_id)
		SELECT $1, unnest($2::bigint[])`, handoverID, assetIDs)
	if err != nil {
		return apperr.Unexpected(err, "link assets to handover %d", handoverID)
	}
	return nil
}

func (r *repoPG) UnlinkAssets(ctx context.Context, handoverID int64) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM handover_assets WHERE handover_id = $1`, handoverID); err != nil {
		return apperr.Unexpected(err, "unlink assets from handover %d", handoverID)
	}
	return nil
}

func (r *repoPG) AssetsFor(ctx context.Context, handoverIDs []int64) (map[int64][]*asset.Asset, error) {
	out := make(map[int64][]*asset.Asset, len(handoverIDs))
	if len(handoverIDs) == 0 {
		return out, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT ha.handover_id, a.id, a.title, a.description, a.asset_type, a.status, a.created_at, a.updated_at
		FROM handover_assets ha
		JOIN assets a ON a.id = ha.asset_id
		WHERE ha.handover_id = ANY($1)
		ORDER BY ha.id`, handoverIDs)
	if err != nil {
		return nil, apperr.Unexpected(err, "list handover assets")
	}
	defer rows.Close()

	for rows.Next() {
		var hid int64
		var a asset.Asset
		if err := rows.Scan(&hid, &a.ID, &a.Title, &a.Description, &a.AssetType, &a.Status,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, apperr.Unexpected(err, "scan handover asset")
		}
		out[hid] = append(out[hid], &a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err, "list handover assets")
	}
	return out, nil
}

func (r *repoPG) DeleteAll(ctx context.Context) (int, error) {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM handover_assets`); err != nil {
		return 0, apperr.Unexpected(err, "delete handover assets")
	}
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM shift_handovers`)
	if err != nil {
		return 0, apperr.Unexpected(err, "delete handovers")
	}
	return int(tag.RowsAffected()), nil
}

// -- handover_logs --

func (r *repoPG) CreateLog(ctx context.Context, e *LogEntry) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO handover_logs (log_date, log_time, from_shift_user, from_shift_time,
			to_shift_user, to_shift_time, handover_notes, assets_info)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`,
		e.LogDate, e.LogTime, e.FromShiftUser, e.FromShiftTime, e.ToShiftUser, e.ToShiftTime,
		e.HandoverNotes, e.AssetsInfo,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return apperr.Unexpected(err, "insert handover log")
	}
	return nil
}

func (r *repoPG) ListLogs(ctx context.Context) ([]*LogRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, log_date, log_time, from_shift_user, from_shift_time, to_shift_user,
			to_shift_time, handover_notes, assets_info, created_at
		FROM handover_logs
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, apperr.Unexpected(err, "list handover logs")
	}
	defer rows.Close()

	var items []*LogRecord
	for rows.Next() {
		var l LogRecord
		if err := rows.Scan(&l.ID, &l.LogDate, &l.LogTime, &l.FromShiftUser, &l.FromShiftTime,
			&l.ToShiftUser, &l.ToShiftTime, &l.HandoverNotes, &l.AssetsInfo, &l.CreatedAt); err != nil {
			return nil, apperr.Unexpected(err, "scan handover log")
		}
		items = append(items, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err, "list handover logs")
	}
	return items, nil
}

func (r *repoPG) CountLogs(ctx context.Context) (int, error) {
	var n int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM handover_logs`).Scan(&n); err != nil {
		return 0, apperr.Unexpected(err, "count handover logs")
	}
	return n, nil
}

func (r *repoPG) DeleteAllLogs(ctx context.Context) (int, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM handover_logs`)
	if err != nil {
		return 0, apperr.Unexpected(err, "delete handover logs")
	}
	return int(tag.RowsAffected()), nil
}
