package events

import (
	"context"
	"testing"
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

type stubEventsRepo struct {
	createFn          func(ctx context.Context, event *models.VolunteerEvent) error
	findByIDFn        func(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error)
	listFn            func(ctx context.Context, from *time.Time) ([]models.VolunteerEvent, error)
	addVolunteerFn    func(ctx context.Context, eventID, userID uuid.UUID, at time.Time) (bool, error)
	removeVolunteerFn func(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	countFn           func(ctx context.Context, eventID uuid.UUID) (int64, error)
	lockFn            func(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error)
	ops               []string
	listVolunteersFn  func(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
	listJoinedFn      func(ctx context.Context, userID uuid.UUID) ([]models.VolunteerEvent, error)
	profiles          []uuid.UUID
}

func (s *stubEventsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubEventsRepo) Create(ctx context.Context, event *models.VolunteerEvent) error {
	return s.createFn(ctx, event)
}

func (s *stubEventsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubEventsRepo) List(ctx context.Context, from *time.Time) ([]models.VolunteerEvent, error) {
	return s.listFn(ctx, from)
}

func (s *stubEventsRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
	s.ops = append(s.ops, "lock")
	if s.lockFn != nil {
		return s.lockFn(ctx, id)
	}
	return s.findByIDFn(ctx, id)
}

func (s *stubEventsRepo) AddVolunteer(ctx context.Context, eventID, userID uuid.UUID, at time.Time) (bool, error) {
	s.ops = append(s.ops, "insert")
	return s.addVolunteerFn(ctx, eventID, userID, at)
}

func (s *stubEventsRepo) RemoveVolunteer(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return s.removeVolunteerFn(ctx, eventID, userID)
}

func (s *stubEventsRepo) CountVolunteers(ctx context.Context, eventID uuid.UUID) (int64, error) {
	s.ops = append(s.ops, "count")
	return s.countFn(ctx, eventID)
}

func (s *stubEventsRepo) ListVolunteerIDs(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	return s.listVolunteersFn(ctx, eventID)
}

func (s *stubEventsRepo) ListJoinedByUser(ctx context.Context, userID uuid.UUID) ([]models.VolunteerEvent, error) {
	return s.listJoinedFn(ctx, userID)
}

func (s *stubEventsRepo) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	s.profiles = append(s.profiles, userID)
	return nil
}

type stubChallengeLookup struct {
	joined []models.Challenge
	all    []models.Challenge
	byID   *models.Challenge
}

func (s *stubChallengeLookup) FindByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	if s.byID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byID, nil
}

func (s *stubChallengeLookup) ListJoinedByUser(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error) {
	return s.joined, nil
}

func (s *stubChallengeLookup) List(ctx context.Context) ([]models.Challenge, error) {
	return s.all, nil
}

type stubActionsService struct {
	awards  []actions.Award
	applied map[string]bool
}

func (s *stubActionsService) Apply(ctx context.Context, tx *gorm.DB, award actions.Award) (bool, error) {
	if s.applied == nil {
		s.applied = make(map[string]bool)
	}
	if s.applied[award.DedupeKey] {
		return false, nil
	}
	s.applied[award.DedupeKey] = true
	s.awards = append(s.awards, award)
	return true, nil
}

func (s *stubActionsService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.Action, error) {
	return nil, nil
}

func (s *stubActionsService) UserStats(ctx context.Context, userID uuid.UUID) (actions.UserStats, error) {
	return actions.UserStats{}, nil
}

func (s *stubActionsService) ChallengeProgress(ctx context.Context, challengeID, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubActionsService) CommunityStats(ctx context.Context) (actions.CommunityStats, error) {
	return actions.CommunityStats{}, nil
}

func (s *stubActionsService) Leaderboard(ctx context.Context, limit int) ([]actions.LeaderboardEntry, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository, lookup challengeLookup, acts actions.Service, pub outboxPublisher) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:       repo,
		Challenges: lookup,
		Actions:    acts,
		Tx:         stubTxRunner{},
		Outbox:     pub,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func cleanupEvent(eventID uuid.UUID) *models.VolunteerEvent {
	return &models.VolunteerEvent{
		ID:            eventID,
		Title:         "Beach cleanup",
		Type:          enums.EventTypeCleanup,
		EventDate:     time.Date(2026, 9, 5, 9, 0, 0, 0, time.UTC),
		DurationHours: 3,
		MaxVolunteers: 10,
	}
}

func activeChallenge(category enums.ChallengeCategory) models.Challenge {
	return models.Challenge{ID: uuid.New(), Title: string(category), Category: category}
}

func TestJoinAwardsMatchedChallengesAndSingleJoinAction(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	eventID := uuid.New()
	userID := uuid.New()

	recycling := activeChallenge(enums.CategoryRecycling)
	plastic := activeChallenge(enums.CategoryPlasticReduction)
	conservation := activeChallenge(enums.CategoryConservation) // not mapped from cleanup

	repo := &stubEventsRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
			return cleanupEvent(eventID), nil
		},
		addVolunteerFn: func(ctx context.Context, eid, uid uuid.UUID, at time.Time) (bool, error) {
			return true, nil
		},
		countFn: func(ctx context.Context, eid uuid.UUID) (int64, error) {
			return 3, nil
		},
	}
	lookup := &stubChallengeLookup{joined: []models.Challenge{recycling, plastic, conservation}}
	acts := &stubActionsService{}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, lookup, acts, pub)

	result, err := svc.Join(context.Background(), Actor{UserID: userID, Role: enums.UserRoleMember}, eventID, now)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !result.Joined {
		t.Fatal("expected join to report true")
	}
	if result.MatchedChallenges != 2 {
		t.Fatalf("expected 2 matched challenges, got %d", result.MatchedChallenges)
	}
	// Two 50-point challenge rewards plus one 10-point join action.
	if result.RewardPoints != 110 {
		t.Fatalf("expected 110 reward points, got %d", result.RewardPoints)
	}

	var rewards, joins int
	for _, award := range acts.awards {
		switch award.Type {
		case enums.ActionChallengeReward:
			rewards++
			if award.EventID == nil || *award.EventID != eventID {
				t.Fatalf("challenge reward missing event attribution: %+v", award)
			}
		case enums.ActionEventJoined:
			joins++
		default:
			t.Fatalf("unexpected award type %s", award.Type)
		}
	}
	if rewards != 2 || joins != 1 {
		t.Fatalf("expected 2 rewards and 1 join action, got %d and %d", rewards, joins)
	}
	if len(repo.profiles) != 1 || repo.profiles[0] != userID {
		t.Fatalf("expected profile upsert for joiner, got %v", repo.profiles)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventVolunteerJoined {
		t.Fatalf("expected one event.joined, got %+v", pub.events)
	}
	payload, ok := pub.events[0].Data.(payloads.VolunteerJoinedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", pub.events[0].Data)
	}
	if payload.RewardPoints != 110 || payload.MatchedBadges != 2 {
		t.Fatalf("payload attribution mismatch: %+v", payload)
	}
}

func TestJoinRepeatIsNoOp(t *testing.T) {
	now := time.Now().UTC()
	eventID := uuid.New()
	repo := &stubEventsRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
			return cleanupEvent(eventID), nil
		},
		addVolunteerFn: func(ctx context.Context, eid, uid uuid.UUID, at time.Time) (bool, error) {
			return false, nil
		},
	}
	lookup := &stubChallengeLookup{joined: []models.Challenge{activeChallenge(enums.CategoryRecycling)}}
	acts := &stubActionsService{}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, lookup, acts, pub)

	result, err := svc.Join(context.Background(), Actor{UserID: uuid.New()}, eventID, now)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if result.Joined {
		t.Fatal("repeat join must report false")
	}
	if len(acts.awards) != 0 {
		t.Fatalf("repeat join must award nothing, got %d awards", len(acts.awards))
	}
	if len(pub.events) != 0 {
		t.Fatal("repeat join must not emit")
	}
}

func TestJoinRejectsFullEvent(t *testing.T) {
	now := time.Now().UTC()
	eventID := uuid.New()
	repo := &stubEventsRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
			event := cleanupEvent(eventID)
			event.MaxVolunteers = 2
			return event, nil
		},
		addVolunteerFn: func(ctx context.Context, eid, uid uuid.UUID, at time.Time) (bool, error) {
			return true, nil
		},
		countFn: func(ctx context.Context, eid uuid.UUID) (int64, error) {
			return 3, nil
		},
	}
	lookup := &stubChallengeLookup{}
	acts := &stubActionsService{}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, lookup, acts, pub)

	_, err := svc.Join(context.Background(), Actor{UserID: uuid.New()}, eventID, now)
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(acts.awards) != 0 || len(pub.events) != 0 {
		t.Fatal("full event must not award or emit")
	}
}

func TestJoinLocksEventBeforeCapacityCheck(t *testing.T) {
	now := time.Now().UTC()
	eventID := uuid.New()
	repo := &stubEventsRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
			return cleanupEvent(eventID), nil
		},
		addVolunteerFn: func(ctx context.Context, eid, uid uuid.UUID, at time.Time) (bool, error) {
			return true, nil
		},
		countFn: func(ctx context.Context, eid uuid.UUID) (int64, error) {
			return 4, nil
		},
	}
	svc := newTestService(t, repo, &stubChallengeLookup{}, &stubActionsService{}, &stubOutboxPublisher{})

	if _, err := svc.Join(context.Background(), Actor{UserID: uuid.New()}, eventID, now); err != nil {
		t.Fatalf("Join: %v", err)
	}
	// The row lock must precede the insert so two joins at the boundary
	// serialize and the second one counts the first one's row.
	want := []string{"lock", "insert", "count"}
	if len(repo.ops) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, repo.ops)
	}
	for i, op := range want {
		if repo.ops[i] != op {
			t.Fatalf("expected ops %v, got %v", want, repo.ops)
		}
	}
}

func TestJoinSkipsLockWhenUnbounded(t *testing.T) {
	now := time.Now().UTC()
	eventID := uuid.New()
	repo := &stubEventsRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
			event := cleanupEvent(eventID)
			event.MaxVolunteers = 0
			return event, nil
		},
		addVolunteerFn: func(ctx context.Context, eid, uid uuid.UUID, at time.Time) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(t, repo, &stubChallengeLookup{}, &stubActionsService{}, &stubOutboxPublisher{})

	if _, err := svc.Join(context.Background(), Actor{UserID: uuid.New()}, eventID, now); err != nil {
		t.Fatalf("Join: %v", err)
	}
	for _, op := range repo.ops {
		if op == "lock" || op == "count" {
			t.Fatalf("unbounded events need no lock or count, got ops %v", repo.ops)
		}
	}
}

func TestLeaveEmitsOnlyWhenRemoved(t *testing.T) {
	now := time.Now().UTC()
	eventID := uuid.New()
	removed := true
	repo := &stubEventsRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
			return cleanupEvent(eventID), nil
		},
		removeVolunteerFn: func(ctx context.Context, eid, uid uuid.UUID) (bool, error) {
			return removed, nil
		},
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, &stubChallengeLookup{}, &stubActionsService{}, pub)
	actor := Actor{UserID: uuid.New()}

	if err := svc.Leave(context.Background(), actor, eventID, now); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventVolunteerLeft {
		t.Fatalf("expected one event.left, got %+v", pub.events)
	}

	removed = false
	if err := svc.Leave(context.Background(), actor, eventID, now); err != nil {
		t.Fatalf("repeat Leave: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatal("leaving twice must not emit twice")
	}
}

func TestRelatedChallengesUsesResolver(t *testing.T) {
	now := time.Now().UTC()
	eventID := uuid.New()
	repo := &stubEventsRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.VolunteerEvent, error) {
			return cleanupEvent(eventID), nil
		},
	}
	lookup := &stubChallengeLookup{all: []models.Challenge{
		activeChallenge(enums.CategoryRecycling),
		activeChallenge(enums.CategoryEnergy),
	}}
	svc := newTestService(t, repo, lookup, &stubActionsService{}, &stubOutboxPublisher{})

	related, err := svc.RelatedChallenges(context.Background(), eventID, now)
	if err != nil {
		t.Fatalf("RelatedChallenges: %v", err)
	}
	if len(related) != 1 || related[0].Category != enums.CategoryRecycling {
		t.Fatalf("expected only the recycling challenge, got %+v", related)
	}
}

func TestRelatedEventsFiltersByType(t *testing.T) {
	now := time.Now().UTC()
	cleanup := *cleanupEvent(uuid.New())
	workshop := models.VolunteerEvent{ID: uuid.New(), Title: "Solar workshop", Type: enums.EventTypeWorkshop}
	repo := &stubEventsRepo{
		listFn: func(ctx context.Context, from *time.Time) ([]models.VolunteerEvent, error) {
			if from == nil {
				t.Fatal("expected upcoming-only listing")
			}
			return []models.VolunteerEvent{cleanup, workshop}, nil
		},
	}
	recycling := activeChallenge(enums.CategoryRecycling)
	lookup := &stubChallengeLookup{byID: &recycling}
	svc := newTestService(t, repo, lookup, &stubActionsService{}, &stubOutboxPublisher{})

	related, err := svc.RelatedEvents(context.Background(), recycling.ID, now)
	if err != nil {
		t.Fatalf("RelatedEvents: %v", err)
	}
	if len(related) != 1 || related[0].ID != cleanup.ID {
		t.Fatalf("expected only the cleanup event, got %+v", related)
	}

	missing := newTestService(t, repo, &stubChallengeLookup{}, &stubActionsService{}, &stubOutboxPublisher{})
	_, err = missing.RelatedEvents(context.Background(), uuid.New(), now)
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := &stubEventsRepo{}
	svc := newTestService(t, repo, &stubChallengeLookup{}, &stubActionsService{}, &stubOutboxPublisher{})
	organizer := Actor{UserID: uuid.New(), Role: enums.UserRoleOrganizer}

	_, err := svc.Create(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleMember}, CreateInput{
		Title: "Cleanup", Type: enums.EventTypeCleanup, EventDate: time.Now(),
	})
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for member, got %v", err)
	}

	_, err = svc.Create(context.Background(), organizer, CreateInput{
		Title: "Cleanup", Type: enums.EventType("parade"), EventDate: time.Now(),
	})
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
}
