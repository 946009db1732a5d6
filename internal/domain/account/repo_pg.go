package account

import (
	"context"

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

const accountCols = `id, username, hashed_password, name, position, phone, telegram_id, email,
	is_active, is_admin, created_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.HashedPassword, &a.Name, &a.Position,
		&a.Phone, &a.TelegramID, &a.Email, &a.IsActive, &a.IsAdmin, &a.CreatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Account) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (username, hashed_password, name, position, phone, telegram_id, email, is_active, is_admin)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`,
		a.Username, a.HashedPassword, a.Name, a.Position, a.Phone, a.TelegramID, a.Email,
		a.IsActive, a.IsAdmin).Scan(&a.ID, &a.CreatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("Username already registered")
	}
	if err != nil {
		return apperr.Unexpected(err, "insert user")
	}
	return nil
}

func (r *repoPG) get(ctx context.Context, where string, arg interface{}) (*Account, error) {
	a, err := scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM users WHERE `+where, arg))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Unexpected(err, "select user")
	}
	return a, nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Account, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *repoPG) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return r.get(ctx, `username = $1`, username)
}

func (r *repoPG) Update(ctx context.Context, a *Account) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET username=$2, hashed_password=$3, name=$4, position=$5, phone=$6,
			telegram_id=$7, email=$8, is_active=$9, is_admin=$10
		WHERE id = $1`,
		a.ID, a.Username, a.HashedPassword, a.Name, a.Position, a.Phone, a.TelegramID, a.Email,
		a.IsActive, a.IsAdmin)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("Username already registered")
	}
	if err != nil {
		return apperr.Unexpected(err, "update user %d", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperr.Unexpected(err, "delete user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*Account, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+accountCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, apperr.Unexpected(err, "list users")
	}
	defer rows.Close()

	var items []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, apperr.Unexpected(err, "scan user")
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err, "list users")
	}
	return items, nil
}
