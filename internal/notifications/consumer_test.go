package notifications

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
	"github.com/ceijey/greenguardian-backend/pkg/outbox"
	"github.com/ceijey/greenguardian-backend/pkg/outbox/payloads"
)

type consumerRepo struct {
	stubNotificationsRepo
	batches [][]models.Notification
}

func (r *consumerRepo) InsertBatch(ctx context.Context, notifications []models.Notification) error {
	r.batches = append(r.batches, notifications)
	return nil
}

type fakeEventLookup struct {
	event *models.VolunteerEvent
}

func (f *fakeEventLookup) FindByID(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
	return f.event, nil
}

type fakeIdempotency struct {
	processed map[uuid.UUID]bool
	deleted   []uuid.UUID
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{processed: make(map[uuid.UUID]bool)}
}

func (f *fakeIdempotency) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	if f.processed[eventID] {
		return true, nil
	}
	f.processed[eventID] = true
	return false, nil
}

func (f *fakeIdempotency) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	f.deleted = append(f.deleted, eventID)
	delete(f.processed, eventID)
	return nil
}

func mustConsumer(t *testing.T, repo Repository, events eventLookup, manager idempotencyChecker) *Consumer {
	t.Helper()
	consumer, err := NewConsumer(repo, events, manager, logger.New(logger.Options{
		ServiceName: "notifications-test",
		Level:       logger.ParseLevel("debug"),
		Output:      io.Discard,
	}))
	if err != nil {
		t.Fatalf("failed to build consumer: %v", err)
	}
	return consumer
}

func buildEnvelope(t *testing.T, eventID uuid.UUID, payload any) outbox.PayloadEnvelope {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

func TestProcessSwapRequestedNotifiesOwner(t *testing.T) {
	repo := &consumerRepo{}
	ownerID := uuid.New()
	consumer := mustConsumer(t, repo, &fakeEventLookup{}, newFakeIdempotency())

	envelope := buildEnvelope(t, uuid.New(), payloads.SwapRequestedEvent{
		ItemID:      uuid.New(),
		ItemTitle:   "Rain barrel",
		OwnerID:     ownerID,
		RequesterID: uuid.New(),
		RequestedAt: time.Now(),
	})
	if err := consumer.Process(context.Background(), enums.EventSwapRequested, envelope); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(repo.batches) != 1 || len(repo.batches[0]) != 1 {
		t.Fatalf("expected one notification, got %+v", repo.batches)
	}
	row := repo.batches[0][0]
	if row.UserID != ownerID || row.Type != enums.NotificationTypeSwapRequested {
		t.Fatalf("unexpected notification %+v", row)
	}
}

func TestProcessSwapCompletedNotifiesBothParties(t *testing.T) {
	repo := &consumerRepo{}
	ownerID := uuid.New()
	requesterID := uuid.New()
	consumer := mustConsumer(t, repo, &fakeEventLookup{}, newFakeIdempotency())

	envelope := buildEnvelope(t, uuid.New(), payloads.SwapCompletedEvent{
		ItemID:      uuid.New(),
		ItemTitle:   "Rain barrel",
		OwnerID:     ownerID,
		RequesterID: requesterID,
		CompletedAt: time.Now(),
	})
	if err := consumer.Process(context.Background(), enums.EventSwapCompleted, envelope); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(repo.batches) != 1 || len(repo.batches[0]) != 2 {
		t.Fatalf("expected two notifications, got %+v", repo.batches)
	}
	recipients := map[uuid.UUID]bool{}
	for _, row := range repo.batches[0] {
		recipients[row.UserID] = true
	}
	if !recipients[ownerID] || !recipients[requesterID] {
		t.Fatalf("both parties should be notified, got %v", recipients)
	}
}

func TestProcessVolunteerJoinedNotifiesOrganizer(t *testing.T) {
	organizerID := uuid.New()
	eventID := uuid.New()
	repo := &consumerRepo{}
	lookup := &fakeEventLookup{event: &models.VolunteerEvent{ID: eventID, CreatedBy: organizerID}}
	consumer := mustConsumer(t, repo, lookup, newFakeIdempotency())

	envelope := buildEnvelope(t, uuid.New(), payloads.VolunteerJoinedEvent{
		EventID:    eventID,
		EventTitle: "Beach cleanup",
		UserID:     uuid.New(),
		JoinedAt:   time.Now(),
	})
	if err := consumer.Process(context.Background(), enums.EventVolunteerJoined, envelope); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(repo.batches) != 1 || repo.batches[0][0].UserID != organizerID {
		t.Fatalf("expected organizer notified, got %+v", repo.batches)
	}
}

func TestProcessDuplicateEventWritesOnce(t *testing.T) {
	repo := &consumerRepo{}
	manager := newFakeIdempotency()
	consumer := mustConsumer(t, repo, &fakeEventLookup{}, manager)

	eventID := uuid.New()
	envelope := buildEnvelope(t, eventID, payloads.SwapRequestedEvent{
		ItemID:  uuid.New(),
		OwnerID: uuid.New(),
	})
	for i := 0; i < 2; i++ {
		if err := consumer.Process(context.Background(), enums.EventSwapRequested, envelope); err != nil {
			t.Fatalf("Process #%d: %v", i+1, err)
		}
	}
	if len(repo.batches) != 1 {
		t.Fatalf("duplicate delivery must write once, got %d batches", len(repo.batches))
	}
}

func TestProcessUnhandledEventIsSkipped(t *testing.T) {
	repo := &consumerRepo{}
	manager := newFakeIdempotency()
	consumer := mustConsumer(t, repo, &fakeEventLookup{}, manager)

	eventID := uuid.New()
	envelope := buildEnvelope(t, eventID, payloads.ChallengeJoinedEvent{ChallengeID: uuid.New()})
	if err := consumer.Process(context.Background(), enums.EventChallengeJoined, envelope); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(repo.batches) != 0 {
		t.Fatal("unhandled events must not write rows")
	}
	if manager.processed[eventID] {
		t.Fatal("unhandled events must not consume idempotency slots")
	}
}
