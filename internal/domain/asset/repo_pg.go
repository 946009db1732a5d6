package asset

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
	"github.com/clinicdesk/frontdesk/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const assetCols = `id, title, description, asset_type, status, created_at, updated_at`

func scanAsset(row pgx.Row) (*Asset, error) {
	var a Asset
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.AssetType, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Asset) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO assets (title, description, asset_type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		a.Title, a.Description, a.AssetType, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return apperr.Unexpected(err, "insert asset")
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Asset, error) {
	a, err := scanAsset(r.conn(ctx).QueryRow(ctx, `SELECT `+assetCols+` FROM assets WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Asset not found")
	}
	if err != nil {
		return nil, apperr.Unexpected(err, "select asset %d", id)
	}
	return a, nil
}

func (r *repoPG) Update(ctx context.Context, a *Asset) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE assets SET title=$2, description=$3, asset_type=$4, status=$5, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Title, a.Description, a.AssetType, a.Status,
	).Scan(&a.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Asset not found")
	}
	if err != nil {
		return apperr.Unexpected(err, "update asset %d", a.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return apperr.Unexpected(err, "delete asset %d", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Asset not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Asset, error) {
	var where []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.AssetType != "" {
		add("asset_type = $%d", f.AssetType)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Search != "" {
		add("strpos(lower(title), lower($%d)) > 0", f.Search)
	}

	sql := `SELECT ` + assetCols + ` FROM assets`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY id`

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Unexpected(err, "list assets")
	}
	defer rows.Close()

	var items []*Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, apperr.Unexpected(err, "scan asset")
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err, "list assets")
	}
	return items, nil
}

func (r *repoPG) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM assets WHERE status = $1`, status).Scan(&n)
	if err != nil {
		return 0, apperr.Unexpected(err, "count assets")
	}
	return n, nil
}
