package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/logger"
)

type fakeCleaner struct {
	lastNow time.Time
	deleted int64
	err     error
	calls   int
}

func (f *fakeCleaner) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	f.calls++
	f.lastNow = now
	return f.deleted, f.err
}

func (f *fakeCleaner) ExpireAnnouncements(ctx context.Context, now time.Time) (int64, error) {
	f.calls++
	f.lastNow = now
	return f.deleted, f.err
}

type fakePruner struct {
	lastNow time.Time
	removed int
	err     error
}

func (f *fakePruner) Prune(ctx context.Context, now time.Time) (int, error) {
	f.lastNow = now
	return f.removed, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestNotificationCleanupJobPassesNow(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	cleaner := &fakeCleaner{deleted: 42}
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:        testLogger(),
		Notifications: cleaner,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	job := jobIface.(*notificationCleanupJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !cleaner.lastNow.Equal(now) || cleaner.calls != 1 {
		t.Fatalf("cleanup called with %s (%d calls)", cleaner.lastNow, cleaner.calls)
	}
}

func TestNotificationCleanupJobPropagatesErrors(t *testing.T) {
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:        testLogger(),
		Notifications: &fakeCleaner{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnnouncementExpiryJob(t *testing.T) {
	now := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	expirer := &fakeCleaner{deleted: 3}
	jobIface, err := NewAnnouncementExpiryJob(AnnouncementExpiryJobParams{
		Logger:        testLogger(),
		Notifications: expirer,
	})
	if err != nil {
		t.Fatalf("NewAnnouncementExpiryJob: %v", err)
	}
	job := jobIface.(*announcementExpiryJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !expirer.lastNow.Equal(now) {
		t.Fatalf("expiry called with %s", expirer.lastNow)
	}
}

func TestPresencePruneJob(t *testing.T) {
	now := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	pruner := &fakePruner{removed: 7}
	jobIface, err := NewPresencePruneJob(PresencePruneJobParams{
		Logger:   testLogger(),
		Presence: pruner,
	})
	if err != nil {
		t.Fatalf("NewPresencePruneJob: %v", err)
	}
	job := jobIface.(*presencePruneJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !pruner.lastNow.Equal(now) {
		t.Fatalf("prune called with %s", pruner.lastNow)
	}

	pruner.err = errors.New("redis down")
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeOutboxRetentionRepo struct {
	lastCutoff      time.Time
	lastMinAttempts int
	deleted         int64
	err             error
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error) {
	f.lastCutoff = cutoff
	f.lastMinAttempts = minAttemptCount
	return f.deleted, f.err
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func TestOutboxRetentionJobComputesCutoff(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{deleted: 9}
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		DB:         fakeTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job := jobIface.(*outboxRetentionJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantCutoff := now.Add(-outboxRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(wantCutoff) {
		t.Fatalf("cutoff %s, want %s", repo.lastCutoff, wantCutoff)
	}
	if repo.lastMinAttempts != outboxMinAttempts {
		t.Fatalf("min attempts %d, want %d", repo.lastMinAttempts, outboxMinAttempts)
	}
}
