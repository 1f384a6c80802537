package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
	"github.com/ceijey/greenguardian-backend/pkg/pagination"
)

type stubNotificationsRepo struct {
	listFn          func(ctx context.Context, userID uuid.UUID, unreadOnly bool, cursor *pagination.Cursor, limit int) ([]models.Notification, error)
	markReadFn      func(ctx context.Context, userID, notificationID uuid.UUID, at time.Time) (bool, error)
	markAllReadFn   func(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	insertFn        func(ctx context.Context, notification *models.Notification) error
	insertBatchFn   func(ctx context.Context, notifications []models.Notification) error
	deleteOlderFn   func(ctx context.Context, cutoff time.Time) (int64, error)
	insertAnnFn     func(ctx context.Context, announcement *models.Announcement) error
	listActiveAnnFn func(ctx context.Context, now time.Time) ([]models.Announcement, error)
	deleteAnnFn     func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (s *stubNotificationsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubNotificationsRepo) Insert(ctx context.Context, notification *models.Notification) error {
	return s.insertFn(ctx, notification)
}

func (s *stubNotificationsRepo) InsertBatch(ctx context.Context, notifications []models.Notification) error {
	return s.insertBatchFn(ctx, notifications)
}

func (s *stubNotificationsRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, cursor *pagination.Cursor, limit int) ([]models.Notification, error) {
	return s.listFn(ctx, userID, unreadOnly, cursor, limit)
}

func (s *stubNotificationsRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, at time.Time) (bool, error) {
	return s.markReadFn(ctx, userID, notificationID, at)
}

func (s *stubNotificationsRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	return s.markAllReadFn(ctx, userID, at)
}

func (s *stubNotificationsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteOlderFn(ctx, cutoff)
}

func (s *stubNotificationsRepo) InsertAnnouncement(ctx context.Context, announcement *models.Announcement) error {
	return s.insertAnnFn(ctx, announcement)
}

func (s *stubNotificationsRepo) ListActiveAnnouncements(ctx context.Context, now time.Time) ([]models.Announcement, error) {
	return s.listActiveAnnFn(ctx, now)
}

func (s *stubNotificationsRepo) DeleteExpiredAnnouncements(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteAnnFn(ctx, cutoff)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func notificationRows(n int, base time.Time) []models.Notification {
	rows := make([]models.Notification, n)
	for i := range rows {
		rows[i] = models.Notification{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Type:      enums.NotificationTypeSwapRequested,
			Title:     "New swap request",
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return rows
}

func TestListPaginatesWithCursor(t *testing.T) {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	rows := notificationRows(4, base)
	repo := &stubNotificationsRepo{
		listFn: func(ctx context.Context, userID uuid.UUID, unreadOnly bool, cursor *pagination.Cursor, limit int) ([]models.Notification, error) {
			if limit != 4 {
				t.Fatalf("expected buffered limit 4, got %d", limit)
			}
			return rows, nil
		},
	}
	svc := newTestService(t, repo)

	page, err := svc.List(context.Background(), uuid.New(), false, pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}
	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if cursor.ID != page.Items[2].ID {
		t.Fatal("cursor should point at the last returned row")
	}
}

func TestListLastPageHasNoCursor(t *testing.T) {
	repo := &stubNotificationsRepo{
		listFn: func(ctx context.Context, userID uuid.UUID, unreadOnly bool, cursor *pagination.Cursor, limit int) ([]models.Notification, error) {
			return notificationRows(2, time.Now()), nil
		},
	}
	svc := newTestService(t, repo)

	page, err := svc.List(context.Background(), uuid.New(), true, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.NextCursor != "" {
		t.Fatal("short page must not carry a cursor")
	}
}

func TestMarkReadNotFound(t *testing.T) {
	repo := &stubNotificationsRepo{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, at time.Time) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	repo := &stubNotificationsRepo{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
			return 7, nil
		},
	}
	svc := newTestService(t, repo)

	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
}

func TestCreateAnnouncementOrganizerOnly(t *testing.T) {
	repo := &stubNotificationsRepo{
		insertAnnFn: func(ctx context.Context, announcement *models.Announcement) error {
			return nil
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.CreateAnnouncement(context.Background(), uuid.New(), enums.UserRoleMember, AnnouncementInput{
		Title: "Earth Day", Message: "Join us",
	})
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for member, got %v", err)
	}

	ann, err := svc.CreateAnnouncement(context.Background(), uuid.New(), enums.UserRoleOrganizer, AnnouncementInput{
		Title: "Earth Day", Message: "Join us",
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement: %v", err)
	}
	if ann.StartsAt.IsZero() {
		t.Fatal("expected start defaulted to now")
	}
}

func TestCreateAnnouncementRejectsInvertedWindow(t *testing.T) {
	svc := newTestService(t, &stubNotificationsRepo{})
	starts := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	expires := starts.Add(-time.Hour)

	_, err := svc.CreateAnnouncement(context.Background(), uuid.New(), enums.UserRoleAdmin, AnnouncementInput{
		Title: "Earth Day", Message: "Join us", StartsAt: starts, ExpiresAt: &expires,
	})
	if te := pkgerrors.As(err); te == nil || te.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCleanupUsesRetentionWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	var gotCutoff time.Time
	repo := &stubNotificationsRepo{
		deleteOlderFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 12, nil
		},
	}
	svc := newTestService(t, repo)

	count, err := svc.Cleanup(context.Background(), now)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected 12 deleted, got %d", count)
	}
	if !gotCutoff.Equal(now.Add(-RetentionWindow)) {
		t.Fatalf("unexpected cutoff %s", gotCutoff)
	}
}
