package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/internal/actions"
	"github.com/ceijey/greenguardian-backend/internal/crosslink"
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

// challengeLookup is the slice of the challenges repository the join
// transaction needs for reward attribution.
type challengeLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error)
	ListJoinedByUser(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error)
	List(ctx context.Context) ([]models.Challenge, error)
}

// CreateInput carries the organizer-supplied event fields.
type CreateInput struct {
	Title         string
	Description   string
	Type          enums.EventType
	Location      string
	EventDate     time.Time
	DurationHours float64
	MaxVolunteers int
}

// EventView is an event with its volunteer count attached.
type EventView struct {
	models.VolunteerEvent
	Volunteers int64
}

// JoinResult reports what one join attempt changed. A repeat join reports
// Joined=false and awards nothing.
type JoinResult struct {
	Joined            bool
	RewardPoints      int
	MatchedChallenges int
}

// Actor is the authenticated caller of an event operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service exposes volunteer event lifecycle and cross-link operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*EventView, error)
	List(ctx context.Context, upcomingOnly bool, now time.Time) ([]EventView, error)
	Get(ctx context.Context, id uuid.UUID) (*EventView, error)
	Join(ctx context.Context, actor Actor, eventID uuid.UUID, now time.Time) (*JoinResult, error)
	Leave(ctx context.Context, actor Actor, eventID uuid.UUID, now time.Time) error
	Joined(ctx context.Context, userID uuid.UUID) ([]models.VolunteerEvent, error)
	RelatedChallenges(ctx context.Context, eventID uuid.UUID, now time.Time) ([]models.Challenge, error)
	RelatedEvents(ctx context.Context, challengeID uuid.UUID, now time.Time) ([]models.VolunteerEvent, error)
}

// ServiceParams groups event service dependencies.
type ServiceParams struct {
	Repo       Repository
	Challenges challengeLookup
	Actions    actions.Service
	Tx         txRunner
	Outbox     outboxPublisher
}

type service struct {
	repo       Repository
	challenges challengeLookup
	actions    actions.Service
	tx         txRunner
	outbox     outboxPublisher
}

// NewService builds the volunteer event service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "events repo is required")
	}
	if params.Challenges == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "challenge lookup is required")
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
		repo:       params.Repo,
		challenges: params.Challenges,
		actions:    params.Actions,
		tx:         params.Tx,
		outbox:     params.Outbox,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*EventView, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.Role.CanOrganize() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only organizers can create events")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid event type %q", input.Type))
	}
	if input.EventDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event date is required")
	}
	if input.MaxVolunteers < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max volunteers must not be negative")
	}
	if input.DurationHours <= 0 {
		input.DurationHours = 2
	}

	row := models.VolunteerEvent{
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Type:          input.Type,
		Location:      input.Location,
		EventDate:     input.EventDate,
		DurationHours: input.DurationHours,
		MaxVolunteers: input.MaxVolunteers,
		CreatedBy:     actor.UserID,
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create volunteer event")
	}
	return &EventView{VolunteerEvent: row}, nil
}

func (s *service) List(ctx context.Context, upcomingOnly bool, now time.Time) ([]EventView, error) {
	var from *time.Time
	if upcomingOnly {
		from = &now
	}
	rows, err := s.repo.List(ctx, from)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list volunteer events")
	}
	views := make([]EventView, 0, len(rows))
	for _, row := range rows {
		count, err := s.repo.CountVolunteers(ctx, row.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count volunteers")
		}
		views = append(views, EventView{VolunteerEvent: row, Volunteers: count})
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EventView, error) {
	event, err := s.loadEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountVolunteers(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count volunteers")
	}
	return &EventView{VolunteerEvent: *event, Volunteers: count}, nil
}

// Join enrolls the actor as a volunteer and attributes rewards, all in one
// transaction. A repeat join inserts nothing, awards nothing and emits
// nothing. Reward policy: one 50-point challenge reward per active joined
// challenge the event's type maps to, dedupe-keyed on the (user, challenge,
// event) triple, plus a single 10-point join action no matter how many
// challenges matched.
func (s *service) Join(ctx context.Context, actor Actor, eventID uuid.UUID, now time.Time) (*JoinResult, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	joined, err := s.challenges.ListJoinedByUser(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list joined challenges")
	}
	matched := crosslink.RelatedChallenges(*event, joined, now)

	result := JoinResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Concurrent joins at the capacity boundary serialize on the row
		// lock; the later transaction counts the earlier one's insert.
		if event.MaxVolunteers > 0 {
			if _, err := repo.LockByID(ctx, eventID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock event row")
			}
		}

		inserted, err := repo.AddVolunteer(ctx, eventID, actor.UserID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add volunteer")
		}
		if !inserted {
			return nil
		}

		if event.MaxVolunteers > 0 {
			count, err := repo.CountVolunteers(ctx, eventID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count volunteers")
			}
			if count > int64(event.MaxVolunteers) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "event is full")
			}
		}

		if err := repo.EnsureProfile(ctx, actor.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure volunteer profile")
		}

		for _, challenge := range matched {
			challengeID := challenge.ID
			applied, err := s.actions.Apply(ctx, tx, actions.Award{
				UserID:      actor.UserID,
				Type:        enums.ActionChallengeReward,
				ChallengeID: &challengeID,
				EventID:     &eventID,
				DedupeKey:   actions.ChallengeRewardKey(actor.UserID, challengeID, eventID),
			})
			if err != nil {
				return err
			}
			if applied {
				result.RewardPoints += enums.ActionChallengeReward.DefaultPoints()
				result.MatchedChallenges++
			}
		}

		applied, err := s.actions.Apply(ctx, tx, actions.Award{
			UserID:    actor.UserID,
			Type:      enums.ActionEventJoined,
			EventID:   &eventID,
			DedupeKey: actions.EventJoinedKey(actor.UserID, eventID),
		})
		if err != nil {
			return err
		}
		if applied {
			result.RewardPoints += enums.ActionEventJoined.DefaultPoints()
		}

		result.Joined = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventVolunteerJoined,
			AggregateType: enums.AggregateVolunteerEvent,
			AggregateID:   eventID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.VolunteerJoinedEvent{
				EventID:       eventID,
				EventTitle:    event.Title,
				EventType:     event.Type,
				UserID:        actor.UserID,
				JoinedAt:      now,
				RewardPoints:  result.RewardPoints,
				MatchedBadges: result.MatchedChallenges,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Leave removes the volunteer row. Reward actions stay in the ledger.
func (s *service) Leave(ctx context.Context, actor Actor, eventID uuid.UUID, now time.Time) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		removed, err := repo.RemoveVolunteer(ctx, eventID, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove volunteer")
		}
		if !removed {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventVolunteerLeft,
			AggregateType: enums.AggregateVolunteerEvent,
			AggregateID:   eventID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.VolunteerLeftEvent{
				EventID:    eventID,
				EventTitle: event.Title,
				UserID:     actor.UserID,
				LeftAt:     now,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
}

func (s *service) Joined(ctx context.Context, userID uuid.UUID) ([]models.VolunteerEvent, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListJoinedByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list joined events")
	}
	return rows, nil
}

// RelatedChallenges resolves the active challenges the event's type advances.
func (s *service) RelatedChallenges(ctx context.Context, eventID uuid.UUID, now time.Time) ([]models.Challenge, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.challenges.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list challenges")
	}
	return crosslink.RelatedChallenges(*event, candidates, now), nil
}

// RelatedEvents resolves the upcoming events whose type advances the challenge.
func (s *service) RelatedEvents(ctx context.Context, challengeID uuid.UUID, now time.Time) ([]models.VolunteerEvent, error) {
	if challengeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "challenge id is required")
	}
	challenge, err := s.challenges.FindByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "challenge not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge")
	}
	candidates, err := s.repo.List(ctx, &now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	return crosslink.RelatedEvents(*challenge, candidates), nil
}

func (s *service) loadEvent(ctx context.Context, eventID uuid.UUID) (*models.VolunteerEvent, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load volunteer event")
	}
	return event, nil
}
