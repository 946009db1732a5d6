// Package dashboard composes the front-desk summary from the patient,
// account, asset and shift services. It never writes.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/clinicdesk/frontdesk/internal/domain/account"
	"github.com/clinicdesk/frontdesk/internal/domain/patient"
	"github.com/clinicdesk/frontdesk/internal/domain/shift"
)

const (
	nextAppointmentsLimit = 5
	recentPatientsLimit   = 5

	// Month, day and hour may be written without a leading zero.
	shiftStartLayout = "2006-1-2 15:04"
)

type PatientReader interface {
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]*patient.Patient, error)
}

type AccountReader interface {
	List(ctx context.Context) ([]*account.Account, error)
}

type AssetCounter interface {
	CountActive(ctx context.Context) (int, error)
}

type ShiftReader interface {
	List(ctx context.Context, date string) ([]*shift.Shift, error)
}

// Summary is the body of GET /api/dashboard/summary.
type Summary struct {
	TotalPatients        int                `json:"total_patients"`
	TotalStaff           int                `json:"total_staff"`
	ActiveCases          int                `json:"active_cases"`
	UpcomingAppointments int                `json:"upcoming_appointments"`
	NextAppointments     []*shift.Shift     `json:"next_appointments"`
	RecentPatients       []*patient.Patient `json:"recent_patients"`
}

type Service struct {
	patients PatientReader
	accounts AccountReader
	assets   AssetCounter
	shifts   ShiftReader
	loc      *time.Location
	now      func() time.Time
}

// NewService builds the aggregator. Shift dates and start times are read
// as wall-clock values in loc; a nil loc means UTC.
func NewService(patients PatientReader, accounts AccountReader, assets AssetCounter, shifts ShiftReader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		patients: patients,
		accounts: accounts,
		assets:   assets,
		shifts:   shifts,
		loc:      loc,
		now:      time.Now,
	}
}

type upcoming struct {
	shift *shift.Shift
	start time.Time
}

// Summary counts patients, staff and active assets, and lists the next
// appointments and the newest patients. Shifts whose date and start time do
// not parse are left out of the upcoming figures.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	totalPatients, err := s.patients.Count(ctx)
	if err != nil {
		return nil, err
	}
	staff, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.assets.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := s.shifts.List(ctx, "")
	if err != nil {
		return nil, err
	}
	recent, err := s.patients.Recent(ctx, recentPatientsLimit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var ahead []upcoming
	for _, sh := range shifts {
		start, err := time.ParseInLocation(shiftStartLayout, sh.Date+" "+sh.StartTime, s.loc)
		if err != nil {
			continue
		}
		if !start.Before(now) {
			ahead = append(ahead, upcoming{shift: sh, start: start})
		}
	}
	sort.SliceStable(ahead, func(i, j int) bool { return ahead[i].start.Before(ahead[j].start) })

	next := make([]*shift.Shift, 0, nextAppointmentsLimit)
	for i := 0; i < len(ahead) && i < nextAppointmentsLimit; i++ {
		next = append(next, ahead[i].shift)
	}
	if recent == nil {
		recent = []*patient.Patient{}
	}

	return &Summary{
		TotalPatients:        totalPatients,
		TotalStaff:           len(staff),
		ActiveCases:          active,
		UpcomingAppointments: len(ahead),
		NextAppointments:     next,
		RecentPatients:       recent,
	}, nil
}
