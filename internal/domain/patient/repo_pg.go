package patient

import (
	"context"
	"time"

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

const patientCols = `id, full_name, birth_date, gender, phone, email, address, policy_number,
	blood_type, allergies, chronic_conditions, medications, attending_physician, last_visit, notes,
	created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.BirthDate, &p.Gender, &p.Phone, &p.Email, &p.Address,
		&p.PolicyNumber, &p.BloodType, &p.Allergies, &p.ChronicConditions, &p.Medications,
		&p.AttendingPhysician, &p.LastVisit, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (full_name, birth_date, gender, phone, email, address, policy_number,
			blood_type, allergies, chronic_conditions, medications, attending_physician, last_visit, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at`,
		p.FullName, p.BirthDate, p.Gender, p.Phone, p.Email, p.Address, p.PolicyNumber,
		p.BloodType, p.Allergies, p.ChronicConditions, p.Medications, p.AttendingPhysician,
		p.LastVisit, p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return apperr.Unexpected(err, "insert patient")
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("Patient not found")
	}
	if err != nil {
		return nil, apperr.Unexpected(err, "select patient %d", id)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET full_name=$2, birth_date=$3, gender=$4, phone=$5, email=$6, address=$7,
			policy_number=$8, blood_type=$9, allergies=$10, chronic_conditions=$11, medications=$12,
			attending_physician=$13, last_visit=$14, notes=$15, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.FullName, p.BirthDate, p.Gender, p.Phone, p.Email, p.Address, p.PolicyNumber,
		p.BloodType, p.Allergies, p.ChronicConditions, p.Medications, p.AttendingPhysician,
		p.LastVisit, p.Notes,
	).Scan(&p.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("Patient not found")
	}
	if err != nil {
		return apperr.Unexpected(err, "update patient %d", p.ID)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return apperr.Unexpected(err, "delete patient %d", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Patient not found")
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, query string) ([]*Patient, error) {
	sql := `SELECT ` + patientCols + ` FROM patients`
	var args []interface{}
	if query != "" {
		sql += ` WHERE strpos(lower(full_name), lower($1)) > 0
			OR strpos(lower(COALESCE(policy_number, '')), lower($1)) > 0
			OR strpos(lower(COALESCE(phone, '')), lower($1)) > 0`
		args = append(args, query)
	}
	sql += ` ORDER BY created_at DESC, id DESC`
	return r.list(ctx, sql, args...)
}

func (r *repoPG) ListRecent(ctx context.Context, limit int) ([]*Patient, error) {
	return r.list(ctx, `SELECT `+patientCols+` FROM patients ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

func (r *repoPG) list(ctx context.Context, sql string, args ...interface{}) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Unexpected(err, "list patients")
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, apperr.Unexpected(err, "scan patient")
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err, "list patients")
	}
	return items, nil
}

func (r *repoPG) AppendNote(ctx context.Context, id int64, entry string, visit *time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			notes = CASE WHEN COALESCE(notes, '') = '' THEN $2 ELSE notes || E'\n' || $2 END,
			last_visit = CASE
				WHEN $3::timestamptz IS NOT NULL AND (last_visit IS NULL OR last_visit < $3::timestamptz)
				THEN $3::timestamptz ELSE last_visit END,
			updated_at = NOW()
		WHERE id = $1`, id, entry, visit)
	if err != nil {
		return apperr.Unexpected(err, "append note to patient %d", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Patient not found")
	}
	return nil
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n); err != nil {
		return 0, apperr.Unexpected(err, "count patients")
	}
	return n, nil
}
