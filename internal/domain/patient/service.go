package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
)

type Service struct {
	repo Repository
	loc  *time.Location
}

// NewService builds the patient ledger. Dates without an offset are read
// as wall-clock time in loc.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc}
}

// Layouts accepted by ParseOptionalDateTime after the date-only form.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// ParseOptionalDateTime reads "YYYY-MM-DD" or an ISO 8601 timestamp.
// Empty or unparseable input yields nil.
func ParseOptionalDateTime(value string, loc *time.Location) *time.Time {
	if value == "" {
		return nil
	}
	if len(value) == 10 {
		t, err := time.ParseInLocation("2006-01-02", value, loc)
		if err != nil {
			return nil
		}
		return &t
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t
		}
	}
	return nil
}

// FormatVisitNote renders the history line appended for a shift.
func FormatVisitNote(author, date, startTime, endTime string) string {
	return fmt.Sprintf("[%s %s-%s] Visit recorded by %s", date, startTime, endTime, author)
}

func (s *Service) Create(ctx context.Context, in PatientInput) (*Patient, error) {
	if in.FullName == nil || strings.TrimSpace(*in.FullName) == "" {
		return nil, apperr.Validation("full_name is required")
	}
	p := &Patient{}
	in.apply(p)
	if in.LastVisit != nil {
		p.LastVisit = ParseOptionalDateTime(*in.LastVisit, s.loc)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the supplied fields over the stored record.
func (s *Service) Update(ctx context.Context, id int64, in PatientInput) (*Patient, error) {
	if in.FullName != nil && strings.TrimSpace(*in.FullName) == "" {
		return nil, apperr.Validation("full_name must not be empty")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if in.LastVisit != nil {
		p.LastVisit = ParseOptionalDateTime(*in.LastVisit, s.loc)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, query string) ([]*Patient, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query))
}

// AppendVisitNote records a shift in the patient's notes and advances
// last_visit to the shift start when that is later than the stored value.
func (s *Service) AppendVisitNote(ctx context.Context, id int64, author, date, startTime, endTime string) error {
	entry := FormatVisitNote(author, date, startTime, endTime)
	var visit *time.Time
	if t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+startTime, s.loc); err == nil {
		visit = &t
	}
	return s.repo.AppendNote(ctx, id, entry, visit)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]*Patient, error) {
	return s.repo.ListRecent(ctx, limit)
}
