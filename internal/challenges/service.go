package challenges

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/internal/actions"
	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
	"github.com/ceijey/greenguardian-backend/pkg/outbox"
	"github.com/ceijey/greenguardian-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput carries the organizer-supplied challenge fields.
type CreateInput struct {
	Title         string
	Description   string
	Category      enums.ChallengeCategory
	StartDate     *time.Time
	EndDate       *time.Time
	TargetActions int
	BadgeName     string
	BadgeIcon     string
}

// ChallengeView is a challenge with its derived lifecycle status and
// participant count attached.
type ChallengeView struct {
	models.Challenge
	Status       enums.ChallengeStatus
	Participants int64
}

// ProgressView reports one participant's standing inside a challenge.
type ProgressView struct {
	ChallengeID   uuid.UUID
	UserID        uuid.UUID
	CompletedActs int64
	TargetActions int
	BadgeEarned   bool
}

// Service exposes challenge lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*ChallengeView, error)
	List(ctx context.Context, now time.Time) ([]ChallengeView, error)
	Get(ctx context.Context, id uuid.UUID, now time.Time) (*ChallengeView, error)
	Join(ctx context.Context, actor Actor, challengeID uuid.UUID, now time.Time) (bool, error)
	Joined(ctx context.Context, userID uuid.UUID, now time.Time) ([]ChallengeView, error)
	Progress(ctx context.Context, challengeID, userID uuid.UUID) (*ProgressView, error)
}

// Actor is the authenticated caller of a challenge operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// ServiceParams groups challenge service dependencies.
type ServiceParams struct {
	Repo    Repository
	Actions actions.Service
	Tx      txRunner
	Outbox  outboxPublisher
}

type service struct {
	repo    Repository
	actions actions.Service
	tx      txRunner
	outbox  outboxPublisher
}

// NewService builds the challenge service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "challenges repo is required")
	}
	if params.Actions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actions service is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox publisher is required")
	}
	return &service{
		repo:    params.Repo,
		actions: params.Actions,
		tx:      params.Tx,
		outbox:  params.Outbox,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*ChallengeView, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.Role.CanOrganize() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only organizers can create challenges")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid challenge category %q", input.Category))
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	if input.TargetActions < 1 {
		input.TargetActions = 1
	}

	row := models.Challenge{
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Category:      input.Category,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		TargetActions: input.TargetActions,
		BadgeName:     input.BadgeName,
		BadgeIcon:     input.BadgeIcon,
		CreatedBy:     actor.UserID,
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create challenge")
	}
	return &ChallengeView{
		Challenge: row,
		Status:    Status(time.Now(), row.StartDate, row.EndDate),
	}, nil
}

func (s *service) List(ctx context.Context, now time.Time) ([]ChallengeView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list challenges")
	}
	views := make([]ChallengeView, 0, len(rows))
	for _, row := range rows {
		count, err := s.repo.CountParticipants(ctx, row.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count challenge participants")
		}
		views = append(views, ChallengeView{
			Challenge:    row,
			Status:       Status(now, row.StartDate, row.EndDate),
			Participants: count,
		})
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, now time.Time) (*ChallengeView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "challenge id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "challenge not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge")
	}
	count, err := s.repo.CountParticipants(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count challenge participants")
	}
	return &ChallengeView{
		Challenge:    *row,
		Status:       Status(now, row.StartDate, row.EndDate),
		Participants: count,
	}, nil
}

// Join enrolls the actor into the challenge. Joining twice is a no-op that
// reports false. Completed challenges reject new members.
func (s *service) Join(ctx context.Context, actor Actor, challengeID uuid.UUID, now time.Time) (bool, error) {
	if actor.UserID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if challengeID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "challenge id is required")
	}

	challenge, err := s.repo.FindByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "challenge not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge")
	}
	if Status(now, challenge.StartDate, challenge.EndDate) == enums.ChallengeCompleted {
		return false, pkgerrors.New(pkgerrors.CodeStateConflict, "challenge has ended")
	}

	joined := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inserted, err := repo.AddParticipant(ctx, challengeID, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add challenge participant")
		}
		if !inserted {
			return nil
		}
		joined = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventChallengeJoined,
			AggregateType: enums.AggregateChallenge,
			AggregateID:   challengeID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.ChallengeJoinedEvent{
				ChallengeID:    challengeID,
				ChallengeTitle: challenge.Title,
				Category:       challenge.Category,
				UserID:         actor.UserID,
				JoinedAt:       now,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return false, err
	}
	return joined, nil
}

func (s *service) Joined(ctx context.Context, userID uuid.UUID, now time.Time) ([]ChallengeView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListJoinedByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list joined challenges")
	}
	views := make([]ChallengeView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ChallengeView{
			Challenge: row,
			Status:    Status(now, row.StartDate, row.EndDate),
		})
	}
	return views, nil
}

// Progress folds the ledger for one participant. The badge is earned once
// completed actions reach the target.
func (s *service) Progress(ctx context.Context, challengeID, userID uuid.UUID) (*ProgressView, error) {
	if challengeID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "challenge id and user id are required")
	}
	challenge, err := s.repo.FindByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "challenge not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge")
	}
	completed, err := s.actions.ChallengeProgress(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	return &ProgressView{
		ChallengeID:   challengeID,
		UserID:        userID,
		CompletedActs: completed,
		TargetActions: challenge.TargetActions,
		BadgeEarned:   completed >= int64(challenge.TargetActions),
	}, nil
}
