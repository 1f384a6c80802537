package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ceijey/greenguardian-backend/pkg/logger"
)

type presencePruner interface {
	Prune(ctx context.Context, now time.Time) (int, error)
}

type PresencePruneJobParams struct {
	Logger   *logger.Logger
	Presence presencePruner
}

func NewPresencePruneJob(params PresencePruneJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Presence == nil {
		return nil, fmt.Errorf("presence service required")
	}
	return &presencePruneJob{
		logg:     params.Logger,
		presence: params.Presence,
		now:      time.Now,
	}, nil
}

type presencePruneJob struct {
	logg     *logger.Logger
	presence presencePruner
	now      func() time.Time
}

func (j *presencePruneJob) Name() string { return "presence-prune" }

func (j *presencePruneJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	removed, err := j.presence.Prune(ctx, now)
	if err != nil {
		return fmt.Errorf("presence prune: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":          now,
		"fields_removed": removed,
	})
	j.logg.Info(logCtx, "presence prune complete")
	return nil
}
