package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
	"github.com/ceijey/greenguardian-backend/pkg/outbox"
	"github.com/ceijey/greenguardian-backend/pkg/outbox/payloads"
)

const consumerName = "notifications-worker"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// eventLookup resolves the organizer of a volunteer event for fan-out.
type eventLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error)
}

// Consumer turns domain events into notification rows while honoring Redis
// idempotency. Fan-out policy: swap.requested notifies the owner,
// swap.accepted and swap.declined notify the requester, swap.completed
// notifies both parties, event.joined notifies the organizer.
type Consumer struct {
	repo    Repository
	events  eventLookup
	manager idempotencyChecker
	logg    *logger.Logger
}

// NewConsumer builds the notification fan-out consumer.
func NewConsumer(repo Repository, events eventLookup, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repo required")
	}
	if events == nil {
		return nil, fmt.Errorf("event lookup required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{repo: repo, events: events, manager: manager, logg: logg}, nil
}

// Process fans one outbox envelope out into notification rows.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if envelope.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	rows, err := c.buildRows(ctx, eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to build notification rows", err)
		return err
	}
	if len(rows) == 0 {
		c.logg.Info(logCtx, "event not handled by notifications consumer")
		return nil
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	if err := c.repo.InsertBatch(ctx, rows); err != nil {
		c.logg.Error(logCtx, "failed to insert notifications", err)
		_ = c.manager.Delete(ctx, consumerName, eventID)
		return err
	}

	c.logg.Info(logCtx, "notifications written")
	return nil
}

func (c *Consumer) buildRows(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) ([]models.Notification, error) {
	switch eventType {
	case enums.EventSwapRequested:
		var payload payloads.SwapRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		link := "/swap/items/" + payload.ItemID.String()
		return []models.Notification{{
			UserID:  payload.OwnerID,
			Type:    enums.NotificationTypeSwapRequested,
			Title:   "New swap request",
			Message: fmt.Sprintf("Someone requested your item %q", payload.ItemTitle),
			Link:    &link,
		}}, nil

	case enums.EventSwapAccepted, enums.EventSwapDeclined:
		var payload payloads.SwapDecisionEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		notifType := enums.NotificationTypeSwapAccepted
		verb := "accepted"
		if eventType == enums.EventSwapDeclined {
			notifType = enums.NotificationTypeSwapDeclined
			verb = "declined"
		}
		link := "/swap/items/" + payload.ItemID.String()
		return []models.Notification{{
			UserID:  payload.RequesterID,
			Type:    notifType,
			Title:   "Swap request " + verb,
			Message: fmt.Sprintf("Your request for %q was %s", payload.ItemTitle, verb),
			Link:    &link,
		}}, nil

	case enums.EventSwapCompleted:
		var payload payloads.SwapCompletedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		link := "/swap/completed"
		message := fmt.Sprintf("Swap of %q is complete", payload.ItemTitle)
		return []models.Notification{
			{
				UserID:  payload.OwnerID,
				Type:    enums.NotificationTypeSwapCompleted,
				Title:   "Swap completed",
				Message: message,
				Link:    &link,
			},
			{
				UserID:  payload.RequesterID,
				Type:    enums.NotificationTypeSwapCompleted,
				Title:   "Swap completed",
				Message: message,
				Link:    &link,
			},
		}, nil

	case enums.EventVolunteerJoined:
		var payload payloads.VolunteerJoinedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		event, err := c.events.FindByID(ctx, payload.EventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// The event was deleted before delivery; nothing to notify.
				return nil, nil
			}
			return nil, fmt.Errorf("load event %s: %w", payload.EventID, err)
		}
		if event.CreatedBy == payload.UserID {
			// Organizers joining their own event do not notify themselves.
			return nil, nil
		}
		link := "/events/" + payload.EventID.String()
		return []models.Notification{{
			UserID:  event.CreatedBy,
			Type:    enums.NotificationTypeEventJoined,
			Title:   "New volunteer",
			Message: fmt.Sprintf("A volunteer joined %q", payload.EventTitle),
			Link:    &link,
		}}, nil

	default:
		return nil, nil
	}
}
