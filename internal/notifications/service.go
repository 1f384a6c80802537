package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
	"github.com/ceijey/greenguardian-backend/pkg/pagination"
)

// RetentionWindow is how long notification rows are kept before the cleanup
// job deletes them.
const RetentionWindow = 90 * 24 * time.Hour

// Page is one cursor page of notifications.
type Page struct {
	Items      []models.Notification
	NextCursor string
}

// AnnouncementInput carries the organizer-supplied announcement fields.
type AnnouncementInput struct {
	Title     string
	Message   string
	StartsAt  time.Time
	ExpiresAt *time.Time
}

// Service exposes the user-facing notification surface. Rows are written by
// the event consumer; this service only reads and marks them.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params pagination.Params) (*Page, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Cleanup(ctx context.Context, now time.Time) (int64, error)

	CreateAnnouncement(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input AnnouncementInput) (*models.Announcement, error)
	ListAnnouncements(ctx context.Context, now time.Time) ([]models.Announcement, error)
	ExpireAnnouncements(ctx context.Context, now time.Time) (int64, error)
}

// ServiceParams groups notification service dependencies.
type ServiceParams struct {
	Repo Repository
}

type service struct {
	repo Repository
}

// NewService builds the notification service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifications repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params pagination.Params) (*Page, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByUser(ctx, userID, unreadOnly, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	page := &Page{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id is required")
	}
	marked, err := s.repo.MarkRead(ctx, userID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !marked {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	count, err := s.repo.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return count, nil
}

// Cleanup deletes notifications past the retention window.
func (s *service) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.DeleteOlderThan(ctx, now.Add(-RetentionWindow))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete old notifications")
	}
	return count, nil
}

func (s *service) CreateAnnouncement(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input AnnouncementInput) (*models.Announcement, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !role.CanOrganize() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only organizers can post announcements")
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Message) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and message are required")
	}
	startsAt := input.StartsAt
	if startsAt.IsZero() {
		startsAt = time.Now().UTC()
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(startsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be after the start")
	}

	row := models.Announcement{
		Title:     strings.TrimSpace(input.Title),
		Message:   strings.TrimSpace(input.Message),
		CreatedBy: actorID,
		StartsAt:  startsAt,
		ExpiresAt: input.ExpiresAt,
	}
	if err := s.repo.InsertAnnouncement(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create announcement")
	}
	return &row, nil
}

func (s *service) ListAnnouncements(ctx context.Context, now time.Time) ([]models.Announcement, error) {
	rows, err := s.repo.ListActiveAnnouncements(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list announcements")
	}
	return rows, nil
}

// ExpireAnnouncements deletes announcements whose window has closed.
func (s *service) ExpireAnnouncements(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.DeleteExpiredAnnouncements(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire announcements")
	}
	return count, nil
}
