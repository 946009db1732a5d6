package main

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clinicdesk/frontdesk/internal/domain/account"
	"github.com/clinicdesk/frontdesk/internal/domain/patient"
	"github.com/clinicdesk/frontdesk/internal/domain/shift"
	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
)

// In-memory repositories for driving the full HTTP chain without Postgres.

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memAccounts struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*account.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{items: map[int64]*account.Account{}}
}

func (m *memAccounts) Create(_ context.Context, a *account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.items {
		if other.Username == a.Username {
			return apperr.Conflict("Username already registered")
		}
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) GetByUsername(_ context.Context, username string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.items {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (m *memAccounts) Update(_ context.Context, a *account.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.ID]; !ok {
		return apperr.NotFound("User not found")
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *memAccounts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("User not found")
	}
	delete(m.items, id)
	return nil
}

func (m *memAccounts) List(_ context.Context) ([]*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*account.Account, 0, len(m.items))
	for _, a := range m.items {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memPatients struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*patient.Patient
}

func newMemPatients() *memPatients {
	return &memPatients{items: map[int64]*patient.Patient{}}
}

func (m *memPatients) Create(_ context.Context, p *patient.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPatients) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Patient not found")
	}
	cp := *p
	return &cp, nil
}

func (m *memPatients) Update(_ context.Context, p *patient.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return apperr.NotFound("Patient not found")
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPatients) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("Patient not found")
	}
	delete(m.items, id)
	return nil
}

func (m *memPatients) newestFirst() []*patient.Patient {
	out := make([]*patient.Patient, 0, len(m.items))
	for _, p := range m.items {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memPatients) Search(_ context.Context, query string) ([]*patient.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []*patient.Patient
	for _, p := range m.newestFirst() {
		if q == "" || strings.Contains(strings.ToLower(p.FullName), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPatients) AppendNote(_ context.Context, id int64, entry string, visit *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return apperr.NotFound("Patient not found")
	}
	notes := entry
	if p.Notes != nil && *p.Notes != "" {
		notes = *p.Notes + "\n" + entry
	}
	p.Notes = &notes
	if visit != nil && (p.LastVisit == nil || p.LastVisit.Before(*visit)) {
		v := *visit
		p.LastVisit = &v
	}
	return nil
}

func (m *memPatients) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *memPatients) ListRecent(_ context.Context, limit int) ([]*patient.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.newestFirst()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memShifts struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*shift.Shift
}

func newMemShifts() *memShifts {
	return &memShifts{items: map[int64]*shift.Shift{}}
}

func (m *memShifts) Create(_ context.Context, s *shift.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *memShifts) GetByID(_ context.Context, id int64) (*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Shift not found")
	}
	cp := *s
	return &cp, nil
}

func (m *memShifts) Update(_ context.Context, s *shift.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[s.ID]; !ok {
		return apperr.NotFound("Shift not found")
	}
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *memShifts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("Shift not found")
	}
	delete(m.items, id)
	return nil
}

func (m *memShifts) List(_ context.Context, date string) ([]*shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*shift.Shift
	for _, s := range m.items {
		if date == "" || s.Date == date {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
