package shift

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

const shiftCols = `id, date, start_time, end_time, shift_type, user_id, user_name, position,
	patient_id, patient_name, status, notes, created_at, updated_at`

func scanShift(row pgx.Row) (*Shift, error) {
	var s Shift
	err := row.Scan(&s.ID, &s.Date, &s.StartTime, &s.EndTime, &s.ShiftType, &s.UserID, &s.UserName,
		&s.Position, &s.PatientID, &s.PatientName, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Shift) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO shifts (date, start_time, end_time, shift_type, user_id, user_name, position,
			patient_id, patient_name, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at`,
		s.Date, s.StartTime, s.EndTime, s.ShiftType, s.UserID, s.UserName, s.Position,
		s.PatientID, s.PatientName, s.Status, s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return apperr.Unexpected(err, "insert shift")
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Shift, error) {
	s, err := scanShift(r.conn(ctx).QueryRow(ctx, `SELECT `+shiftCols+` FROM shifts WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Shift not found")
	}
	if err != nil {
		return nil, apperr.Unexpected(err, "select shift %d", id)
	}
	return s, nil
}

func (r *repoPG) Update(ctx context.Context, s *Shift) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE shifts SET date=$2, start_time=$3, end_time=$4, shift_type=$5, user_id=$6,
			user_name=$7, position=$8, patient_id=$9, patient_name=$10, status=$11, notes=$12,
			updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		s.ID, s.Date, s.StartTime, s.EndTime, s.ShiftType, s.UserID, s.UserName, s.Position,
		s.PatientID, s.PatientName, s.Status, s.Notes,
	).Scan(&s.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Shift not found")
	}
	if err != nil {
		return apperr.Unexpected(err, "update shift %d", s.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return apperr.Unexpected(err, "delete shift %d", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Shift not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, date string) ([]*Shift, error) {
	sql := `SELECT ` + shiftCols + ` FROM shifts`
	var args []interface{}
	if date != "" {
		sql += ` WHERE date = $1`
		args = append(args, date)
	}
	sql += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Unexpected(err, "list shifts")
	}
	defer rows.Close()

	var items []*Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, apperr.Unexpected(err, "scan shift")
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err, "list shifts")
	}
	return items, nil
}
