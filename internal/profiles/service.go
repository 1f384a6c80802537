package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/internal/actions"
	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
)

// UpsertInput carries the user-editable profile fields.
type UpsertInput struct {
	Skills       string
	Availability string
}

// ProfileView is a volunteer profile with counters folded from the ledger.
// Hours and event counts are never stored on the profile row.
type ProfileView struct {
	models.VolunteerProfile
	Stats actions.UserStats
}

// Service exposes volunteer profile operations.
type Service interface {
	Upsert(ctx context.Context, userID uuid.UUID, input UpsertInput) (*ProfileView, error)
	Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
}

// ServiceParams groups profile service dependencies.
type ServiceParams struct {
	Repo    Repository
	Actions actions.Service
}

type service struct {
	repo    Repository
	actions actions.Service
}

// NewService builds the profile service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profiles repo is required")
	}
	if params.Actions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actions service is required")
	}
	return &service{repo: params.Repo, actions: params.Actions}, nil
}

func (s *service) Upsert(ctx context.Context, userID uuid.UUID, input UpsertInput) (*ProfileView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	profile := models.VolunteerProfile{
		UserID:       userID,
		Skills:       input.Skills,
		Availability: input.Availability,
	}
	if err := s.repo.Upsert(ctx, &profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert volunteer profile")
	}
	return s.Get(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No profile yet; counters still come from the ledger.
			profile = &models.VolunteerProfile{UserID: userID}
		} else {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load volunteer profile")
		}
	}
	stats, err := s.actions.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{VolunteerProfile: *profile, Stats: stats}, nil
}
