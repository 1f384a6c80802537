package swaps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/internal/actions"
	dbpkg "github.com/ceijey/greenguardian-backend/pkg/db"
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

// CreateItemInput carries the owner-supplied listing fields.
type CreateItemInput struct {
	Title       string
	Description string
	Category    string
	Condition   enums.ItemCondition
}

// Service drives the per-pair swap state machine. The single row per
// (item, requester) advances in place; Accept, Decline and Complete are
// conditional updates, so concurrent transitions serialize on the row's
// current status instead of last-write-wins.
type Service interface {
	CreateItem(ctx context.Context, ownerID uuid.UUID, input CreateItemInput) (*models.SwapItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.SwapItem, error)
	ListAvailableItems(ctx context.Context, limit int) ([]models.SwapItem, error)

	Request(ctx context.Context, itemID, requesterID uuid.UUID) (*models.SwapRequest, error)
	Accept(ctx context.Context, ownerID, itemID, requesterID uuid.UUID) error
	Decline(ctx context.Context, ownerID, itemID, requesterID uuid.UUID) error
	CancelRequest(ctx context.Context, itemID, requesterID uuid.UUID) error
	Complete(ctx context.Context, ownerID, itemID, requesterID uuid.UUID) (*models.CompletedSwap, error)

	ListRequestsForItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]models.SwapRequest, error)
	ListMyRequests(ctx context.Context, requesterID uuid.UUID) ([]models.SwapRequest, error)
	ListCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompletedSwap, error)
}

// ServiceParams groups swap service dependencies.
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

// NewService builds the swap service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "swaps repo is required")
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

func (s *service) CreateItem(ctx context.Context, ownerID uuid.UUID, input CreateItemInput) (*models.SwapItem, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid item condition %q", input.Condition))
	}

	item := models.SwapItem{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		Condition:   input.Condition,
		IsAvailable: true,
	}
	if err := s.repo.CreateItem(ctx, &item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create swap item")
	}
	return &item, nil
}

func (s *service) GetItem(ctx context.Context, itemID uuid.UUID) (*models.SwapItem, error) {
	return s.loadItem(ctx, itemID)
}

func (s *service) ListAvailableItems(ctx context.Context, limit int) ([]models.SwapItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.repo.ListAvailableItems(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list swap items")
	}
	return rows, nil
}

// Request moves the (item, requester) pair to pending. A declined or
// cancelled pair may request again; a live pair is rejected.
func (s *service) Request(ctx context.Context, itemID, requesterID uuid.UUID) (*models.SwapRequest, error) {
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot request your own item")
	}
	if !item.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item is no longer available")
	}

	existing, err := s.repo.FindRequest(ctx, itemID, requesterID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load swap request")
	}
	if existing != nil && existing.Status.IsLive() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("request already %s", existing.Status))
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpsertPendingRequest(ctx, itemID, requesterID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert swap request")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSwapRequested,
			AggregateType: enums.AggregateSwapItem,
			AggregateID:   itemID,
			Actor:         &outbox.ActorRef{UserID: requesterID},
			Data: payloads.SwapRequestedEvent{
				ItemID:      itemID,
				ItemTitle:   item.Title,
				OwnerID:     item.OwnerID,
				RequesterID: requesterID,
				RequestedAt: now,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	row, err := s.repo.FindRequest(ctx, itemID, requesterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload swap request")
	}
	return row, nil
}

// Accept advances pending to accepted under the owner's authority. The
// conditional update is the arbiter: if the row left pending between read and
// write, zero rows match and the caller gets a state conflict.
func (s *service) Accept(ctx context.Context, ownerID, itemID, requesterID uuid.UUID) error {
	return s.decide(ctx, ownerID, itemID, requesterID, enums.SwapRequestAccepted, enums.EventSwapAccepted)
}

// Decline advances pending to declined under the owner's authority.
func (s *service) Decline(ctx context.Context, ownerID, itemID, requesterID uuid.UUID) error {
	return s.decide(ctx, ownerID, itemID, requesterID, enums.SwapRequestDeclined, enums.EventSwapDeclined)
}

func (s *service) decide(ctx context.Context, ownerID, itemID, requesterID uuid.UUID, to enums.SwapRequestStatus, eventType enums.OutboxEventType) error {
	if ownerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the item owner can respond to requests")
	}

	now := time.Now().UTC()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		moved, err := repo.TransitionRequest(ctx, itemID, requesterID, enums.SwapRequestPending, to, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition swap request")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request is not pending")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateSwapItem,
			AggregateID:   itemID,
			Actor:         &outbox.ActorRef{UserID: ownerID},
			Data: payloads.SwapDecisionEvent{
				ItemID:      itemID,
				ItemTitle:   item.Title,
				OwnerID:     ownerID,
				RequesterID: requesterID,
				Status:      to,
				DecidedAt:   now,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
}

// CancelRequest withdraws the requester's own pending or accepted request.
// Cancelling an already-terminal row is a no-op success.
func (s *service) CancelRequest(ctx context.Context, itemID, requesterID uuid.UUID) error {
	if requesterID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	_, err := s.repo.CancelRequest(ctx, itemID, requesterID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel swap request")
	}
	return nil
}

// Complete closes the swap in one transaction: CAS accepted → completed, take
// the item off the market, write the single audit row, award both parties and
// emit the completion event. Repeating Complete fails the CAS.
func (s *service) Complete(ctx context.Context, ownerID, itemID, requesterID uuid.UUID) (*models.CompletedSwap, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the item owner can complete a swap")
	}

	now := time.Now().UTC()
	record := models.CompletedSwap{
		ItemID:       itemID,
		OwnerID:      ownerID,
		RequesterID:  requesterID,
		ItemTitle:    item.Title,
		ItemCategory: item.Category,
		CompletedAt:  now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		moved, err := repo.TransitionRequest(ctx, itemID, requesterID, enums.SwapRequestAccepted, enums.SwapRequestCompleted, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition swap request")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request is not accepted")
		}

		flipped, err := repo.MarkItemSwapped(ctx, itemID, requesterID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark item swapped")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item is no longer available")
		}

		if err := repo.InsertCompletedSwap(ctx, &record); err != nil {
			if dbpkg.IsUniqueViolation(err, "completed_swaps_item_id_key") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "swap already completed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record completed swap")
		}

		for _, party := range []uuid.UUID{ownerID, requesterID} {
			if _, err := s.actions.Apply(ctx, tx, actions.Award{
				UserID:    party,
				Type:      enums.ActionSwapCompleted,
				DedupeKey: actions.SwapCompletedKey(party, itemID),
			}); err != nil {
				return err
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSwapCompleted,
			AggregateType: enums.AggregateSwapItem,
			AggregateID:   itemID,
			Actor:         &outbox.ActorRef{UserID: ownerID},
			Data: payloads.SwapCompletedEvent{
				ItemID:       itemID,
				ItemTitle:    item.Title,
				ItemCategory: item.Category,
				OwnerID:      ownerID,
				RequesterID:  requesterID,
				CompletedAt:  now,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *service) ListRequestsForItem(ctx context.Context, ownerID, itemID uuid.UUID) ([]models.SwapRequest, error) {
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the item owner can view requests")
	}
	rows, err := s.repo.ListRequestsForItem(ctx, itemID, []enums.SwapRequestStatus{
		enums.SwapRequestPending, enums.SwapRequestAccepted,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list item requests")
	}
	return rows, nil
}

func (s *service) ListMyRequests(ctx context.Context, requesterID uuid.UUID) ([]models.SwapRequest, error) {
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListRequestsByUser(ctx, requesterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list own requests")
	}
	return rows, nil
}

func (s *service) ListCompleted(ctx context.Context, userID uuid.UUID, limit int) ([]models.CompletedSwap, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.repo.ListCompletedByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list completed swaps")
	}
	return rows, nil
}

func (s *service) loadItem(ctx context.Context, itemID uuid.UUID) (*models.SwapItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load swap item")
	}
	return item, nil
}
