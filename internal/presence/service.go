package presence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
)

const (
	// OnlineHorizon is the heartbeat age below which a user counts as online.
	OnlineHorizon = 60 * time.Second
	// OfflineHorizon is the heartbeat age at which a user counts as offline;
	// the prune job drops fields past it.
	OfflineHorizon = 300 * time.Second
)

// presenceStore is the slice of the Redis client presence needs.
type presenceStore interface {
	SetPresence(ctx context.Context, userID string, at time.Time) error
	GetPresence(ctx context.Context, userID string) (time.Time, error)
	AllPresence(ctx context.Context) (map[string]time.Time, error)
	RemovePresence(ctx context.Context, userIDs ...string) error
}

// Entry is one user's derived presence.
type Entry struct {
	UserID   uuid.UUID            `json:"user_id"`
	Status   enums.PresenceStatus `json:"status"`
	LastSeen time.Time            `json:"last_seen"`
}

// Service tracks ephemeral user presence in a single Redis hash. Status is
// derived from heartbeat age at read time and never stored.
type Service interface {
	Heartbeat(ctx context.Context, userID uuid.UUID) error
	SetOffline(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, now time.Time) ([]Entry, error)
	Prune(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	store presenceStore
}

// NewService builds the presence service.
func NewService(store presenceStore) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "presence store is required")
	}
	return &service{store: store}, nil
}

// StatusAt derives a presence status from the heartbeat age at now. Exactly
// 60 seconds old is away; exactly 300 seconds old is offline.
func StatusAt(now, lastSeen time.Time) enums.PresenceStatus {
	age := now.Sub(lastSeen)
	switch {
	case age < OnlineHorizon:
		return enums.PresenceOnline
	case age < OfflineHorizon:
		return enums.PresenceAway
	default:
		return enums.PresenceOffline
	}
}

func (s *service) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.store.SetPresence(ctx, userID.String(), time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record heartbeat")
	}
	return nil
}

// SetOffline drops the user's heartbeat field. Missing fields are fine; the
// call is best-effort on logout.
func (s *service) SetOffline(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.store.RemovePresence(ctx, userID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear presence")
	}
	return nil
}

func (s *service) List(ctx context.Context, now time.Time) ([]Entry, error) {
	fields, err := s.store.AllPresence(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read presence hash")
	}
	entries := make([]Entry, 0, len(fields))
	for field, lastSeen := range fields {
		userID, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			UserID:   userID,
			Status:   StatusAt(now, lastSeen),
			LastSeen: lastSeen,
		})
	}
	return entries, nil
}

// Prune removes hash fields past the offline horizon so the hash stays
// bounded. Returns how many fields were dropped.
func (s *service) Prune(ctx context.Context, now time.Time) (int, error) {
	fields, err := s.store.AllPresence(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read presence hash")
	}
	stale := make([]string, 0)
	for field, lastSeen := range fields {
		if now.Sub(lastSeen) >= OfflineHorizon {
			stale = append(stale, field)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := s.store.RemovePresence(ctx, stale...); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune presence fields")
	}
	return len(stale), nil
}
