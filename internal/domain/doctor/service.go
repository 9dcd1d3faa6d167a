package doctor

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/domain/directory"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/pkg/pagination"
)

type Service struct {
	repo Repository
	dir  directory.Resolver
}

func NewService(repo Repository, dir directory.Resolver) *Service {
	return &Service{repo: repo, dir: dir}
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) ([]*Doctor, int, error) {
	return s.repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("doctor not found")
	}
	return d, err
}

func (s *Service) Me(ctx context.Context, caller *auth.Caller) (*Doctor, error) {
	id, err := directory.OwnDoctorID(ctx, s.dir, caller)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) UpdateMe(ctx context.Context, caller *auth.Caller, req UpdateRequest) (*Doctor, error) {
	d, err := s.Me(ctx, caller)
	if err != nil {
		return nil, err
	}
	if req.Specialization != nil {
		d.Specialization = strings.TrimSpace(*req.Specialization)
	}
	if req.Department != nil {
		d.Department = req.Department
	}
	if req.YearsOfExperience != nil {
		d.YearsOfExperience = req.YearsOfExperience
	}
	if req.ConsultationFee != nil {
		d.ConsultationFee = req.ConsultationFee
	}
	if req.Bio != nil {
		d.Bio = req.Bio
	}
	if req.IsAvailable != nil {
		d.IsAvailable = *req.IsAvailable
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) MyPatients(ctx context.Context, caller *auth.Caller, p pagination.Params) ([]PatientSummary, int, error) {
	id, err := directory.OwnDoctorID(ctx, s.dir, caller)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.Patients(ctx, id, p)
}
