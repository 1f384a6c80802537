package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ceijey/greenguardian-backend/pkg/logger"
)

type announcementExpirer interface {
	ExpireAnnouncements(ctx context.Context, now time.Time) (int64, error)
}

type AnnouncementExpiryJobParams struct {
	Logger        *logger.Logger
	Notifications announcementExpirer
}

func NewAnnouncementExpiryJob(params AnnouncementExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	return &announcementExpiryJob{
		logg:          params.Logger,
		notifications: params.Notifications,
		now:           time.Now,
	}, nil
}

type announcementExpiryJob struct {
	logg          *logger.Logger
	notifications announcementExpirer
	now           func() time.Time
}

func (j *announcementExpiryJob) Name() string { return "announcement-expiry" }

func (j *announcementExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	deleted, err := j.notifications.ExpireAnnouncements(ctx, now)
	if err != nil {
		return fmt.Errorf("announcement expiry: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":        now,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "announcement expiry complete")
	return nil
}
