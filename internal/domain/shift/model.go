package shift

import "time"

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// Shift maps to the shifts table. UserName, Position and PatientName are
// copies taken when the shift was written.
type Shift struct {
	ID          int64     `db:"id" json:"id"`
	Date        string    `db:"date" json:"date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	ShiftType   string    `db:"shift_type" json:"shift_type"`
	UserID      int64     `db:"user_id" json:"user_id"`
	UserName    string    `db:"user_name" json:"user_name"`
	Position    string    `db:"position" json:"position"`
	PatientID   *int64    `db:"patient_id" json:"patient_id"`
	PatientName *string   `db:"patient_name" json:"patient_name"`
	Status      string    `db:"status" json:"status"`
	Notes       *string   `db:"notes" json:"notes"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ShiftInput is the body of create and update. A zero or absent
// patient_id means no patient.
type ShiftInput struct {
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	ShiftType string  `json:"shift_type"`
	UserID    int64   `json:"user_id"`
	PatientID *int64  `json:"patient_id"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}

func (in *ShiftInput) patientID() (int64, bool) {
	if in.PatientID == nil || *in.PatientID == 0 {
		return 0, false
	}
	return *in.PatientID, true
}

// BulkInput is the body of POST /api/shifts/bulk.
type BulkInput struct {
	Shifts []ShiftInput `json:"shifts"`
}
