package asset

import (
	"context"
	"strings"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validate(a *Asset) error {
	if strings.TrimSpace(a.Title) == "" {
		return apperr.Validation("title is required")
	}
	if !validTypes[a.AssetType] {
		return apperr.Validation("invalid asset_type: %s", a.AssetType)
	}
	if !validStatuses[a.Status] {
		return apperr.Validation("invalid status: %s", a.Status)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in AssetInput) (*Asset, error) {
	a := &Asset{
		Title:       in.Title,
		Description: in.Description,
		AssetType:   in.AssetType,
		Status:      in.Status,
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	if err := validate(a); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Asset, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Asset, error) {
	f.Search = strings.TrimSpace(f.Search)
	return s.repo.List(ctx, f)
}

// Update applies the non-nil fields of patch.
func (s *Service) Update(ctx context.Context, id int64, patch AssetPatch) (*Asset, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.AssetType != nil {
		a.AssetType = *patch.AssetType
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if err := validate(a); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// CountActive is the number of assets in the Active status.
func (s *Service) CountActive(ctx context.Context) (int, error) {
	return s.repo.CountByStatus(ctx, StatusActive)
}
