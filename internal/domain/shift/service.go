package shift

import (
	"context"
	"strings"

	"github.com/clinicdesk/frontdesk/internal/domain/account"
	"github.com/clinicdesk/frontdesk/internal/domain/patient"
	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
	"github.com/clinicdesk/frontdesk/internal/platform/db"
)

// AccountReader resolves the staff member a shift belongs to.
type AccountReader interface {
	Get(ctx context.Context, id int64) (*account.Account, error)
}

// PatientLedger resolves the linked patient and records visits on it.
type PatientLedger interface {
	Get(ctx context.Context, id int64) (*patient.Patient, error)
	AppendVisitNote(ctx context.Context, id int64, author, date, startTime, endTime string) error
}

type Service struct {
	repo     Repository
	accounts AccountReader
	patients PatientLedger
	tx       db.Transactor
}

func NewService(repo Repository, accounts AccountReader, patients PatientLedger, tx db.Transactor) *Service {
	return &Service{repo: repo, accounts: accounts, patients: patients, tx: tx}
}

func validateInput(in *ShiftInput) error {
	switch {
	case strings.TrimSpace(in.Date) == "":
		return apperr.Validation("date is required")
	case strings.TrimSpace(in.StartTime) == "":
		return apperr.Validation("start_time is required")
	case strings.TrimSpace(in.EndTime) == "":
		return apperr.Validation("end_time is required")
	case strings.TrimSpace(in.ShiftType) == "":
		return apperr.Validation("shift_type is required")
	}
	if in.Status != nil && !validStatuses[*in.Status] {
		return apperr.Validation("invalid status: %s", *in.Status)
	}
	return nil
}

func newShift(in *ShiftInput, a *account.Account) *Shift {
	s := &Shift{
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		ShiftType: in.ShiftType,
		UserID:    a.ID,
		UserName:  a.Name,
		Position:  a.Position,
		Status:    StatusScheduled,
		Notes:     in.Notes,
	}
	if in.Status != nil {
		s.Status = *in.Status
	}
	return s
}

func linkPatient(sh *Shift, p *patient.Patient) {
	if p == nil {
		sh.PatientID = nil
		sh.PatientName = nil
		return
	}
	id, name := p.ID, p.FullName
	sh.PatientID = &id
	sh.PatientName = &name
}

// Create stores one shift with the account and patient names copied onto
// it and appends a visit line to the patient's notes, in one transaction.
func (s *Service) Create(ctx context.Context, in ShiftInput) (*Shift, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	var created *Shift
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.accounts.Get(ctx, in.UserID)
		if err != nil {
			return err
		}
		var p *patient.Patient
		if pid, ok := in.patientID(); ok {
			if p, err = s.patients.Get(ctx, pid); err != nil {
				return err
			}
		}

		sh := newShift(&in, a)
		linkPatient(sh, p)
		if err := s.repo.Create(ctx, sh); err != nil {
			return err
		}
		if p != nil {
			if err := s.patients.AppendVisitNote(ctx, p.ID, a.Name, sh.Date, sh.StartTime, sh.EndTime); err != nil {
				return err
			}
		}
		created = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateBatch stores every input or none. Unlike Create it leaves patient
// notes alone.
func (s *Service) CreateBatch(ctx context.Context, inputs []ShiftInput) ([]*Shift, error) {
	for i := range inputs {
		if err := validateInput(&inputs[i]); err != nil {
			return nil, err
		}
	}
	created := make([]*Shift, 0, len(inputs))
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i := range inputs {
			in := &inputs[i]
			a, err := s.accounts.Get(ctx, in.UserID)
			if apperr.IsNotFound(err) {
				return apperr.NotFound("User with id %d not found", in.UserID)
			}
			if err != nil {
				return err
			}
			var p *patient.Patient
			if pid, ok := in.patientID(); ok {
				p, err = s.patients.Get(ctx, pid)
				if apperr.IsNotFound(err) {
					return apperr.NotFound("Patient with id %d not found", pid)
				}
				if err != nil {
					return err
				}
			}

			sh := newShift(in, a)
			linkPatient(sh, p)
			if err := s.repo.Create(ctx, sh); err != nil {
				return err
			}
			created = append(created, sh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Shift, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, date string) ([]*Shift, error) {
	return s.repo.List(ctx, strings.TrimSpace(date))
}

// Update replaces every field of the shift and refreshes the patient name.
// UserName and Position keep the values copied when the shift was created.
func (s *Service) Update(ctx context.Context, id int64, in ShiftInput) (*Shift, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var p *patient.Patient
	if pid, ok := in.patientID(); ok {
		if p, err = s.patients.Get(ctx, pid); err != nil {
			return nil, err
		}
	}

	sh.Date = in.Date
	sh.StartTime = in.StartTime
	sh.EndTime = in.EndTime
	sh.ShiftType = in.ShiftType
	sh.UserID = in.UserID
	sh.Notes = in.Notes
	if in.Status != nil {
		sh.Status = *in.Status
	}
	linkPatient(sh, p)

	if err := s.repo.Update(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
