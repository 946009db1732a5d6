package handover

import (
	"fmt"
	"time"

	"github.com/clinicdesk/frontdesk/internal/domain/asset"
)

// Handover maps to shift_handovers. Assets is filled at read time from
// handover_assets.
type Handover struct {
	ID            int64          `db:"id" json:"id"`
	FromShiftID   *int64         `db:"from_shift_id" json:"from_shift_id"`
	ToShiftID     *int64         `db:"to_shift_id" json:"to_shift_id"`
	HandoverNotes string         `db:"handover_notes" json:"handover_notes"`
	Assets        []*asset.Asset `json:"assets"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

type HandoverInput struct {
	FromShiftID   *int64  `json:"from_shift_id"`
	ToShiftID     *int64  `json:"to_shift_id"`
	HandoverNotes string  `json:"handover_notes"`
	AssetIDs      []int64 `json:"asset_ids"`
}

// LogEntry is the flattened snapshot written once per created handover.
// It is never updated afterwards.
type LogEntry struct {
	ID            int64     `db:"id" json:"id"`
	LogDate       string    `db:"log_date" json:"log_date"`
	LogTime       string    `db:"log_time" json:"log_time"`
	FromShiftUser string    `db:"from_shift_user" json:"from_shift_user"`
	FromShiftTime string    `db:"from_shift_time" json:"from_shift_time"`
	ToShiftUser   string    `db:"to_shift_user" json:"to_shift_user"`
	ToShiftTime   string    `db:"to_shift_time" json:"to_shift_time"`
	HandoverNotes string    `db:"handover_notes" json:"handover_notes"`
	AssetsInfo    string    `db:"assets_info" json:"assets_info"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// LogRecord is a handover_logs row as read back. Columns are nullable here
// so a damaged row can be skipped on export instead of failing the read.
type LogRecord struct {
	ID            int64
	LogDate       *string
	LogTime       *string
	FromShiftUser *string
	FromShiftTime *string
	ToShiftUser   *string
	ToShiftTime   *string
	HandoverNotes *string
	AssetsInfo    *string
	CreatedAt     time.Time
}

// ExportRow is one element of the export "data" array.
type ExportRow struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	FromShiftUser string `json:"from_shift_user"`
	FromShiftTime string `json:"from_shift_time"`
	ToShiftUser   string `json:"to_shift_user"`
	ToShiftTime   string `json:"to_shift_time"`
	HandoverNotes string `json:"handover_notes"`
	AssetsInfo    string `json:"assets_info"`
}

// exportRow converts r, failing on the first missing column.
func (r *LogRecord) exportRow() (ExportRow, error) {
	cols := []struct {
		name string
		v    *string
	}{
		{"log_date", r.LogDate},
		{"log_time", r.LogTime},
		{"from_shift_user", r.FromShiftUser},
		{"from_shift_time", r.FromShiftTime},
		{"to_shift_user", r.ToShiftUser},
		{"to_shift_time", r.ToShiftTime},
		{"handover_notes", r.HandoverNotes},
		{"assets_info", r.AssetsInfo},
	}
	for _, c := range cols {
		if c.v == nil {
			return ExportRow{}, fmt.Errorf("handover log %d: %s is null", r.ID, c.name)
		}
	}
	return ExportRow{
		ID:            r.ID,
		Date:          *r.LogDate,
		Time:          *r.LogTime,
		FromShiftUser: *r.FromShiftUser,
		FromShiftTime: *r.FromShiftTime,
		ToShiftUser:   *r.ToShiftUser,
		ToShiftTime:   *r.ToShiftTime,
		HandoverNotes: *r.HandoverNotes,
		AssetsInfo:    *r.AssetsInfo,
	}, nil
}

// ExportResult is the body of GET /api/handovers/export.
type ExportResult struct {
	Data    []ExportRow `json:"data"`
	Total   int         `json:"total"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
}

// ClearResult is the body of DELETE /api/handovers/clear.
type ClearResult struct {
	Message          string `json:"message"`
	DeletedHandovers int    `json:"deleted_handovers"`
	DeletedLogs      int    `json:"deleted_logs"`
	ArchiveKey       string `json:"archive_key,omitempty"`
}
