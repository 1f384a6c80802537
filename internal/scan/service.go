package scan

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/internal/actions"
	"github.com/ceijey/greenguardian-backend/pkg/classify"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
)

const (
	// MinInterval is the per-user floor between scans.
	MinInterval = 3 * time.Second
	// MaxImageBytes caps the base64 payload length so oversized bodies are
	// rejected here instead of being buffered and forwarded downstream.
	MaxImageBytes = 8 << 20
)

// classifier is the slice of the classify client the proxy needs.
type classifier interface {
	Classify(ctx context.Context, req classify.Request) (*classify.Result, error)
}

// rateLimiter is the slice of the Redis client used for scan throttling.
type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ScanResult is a classification outcome plus the ledger award it produced.
type ScanResult struct {
	ScanID         string           `json:"scan_id"`
	Classification *classify.Result `json:"classification"`
	PointsAwarded  int              `json:"points_awarded"`
}

// Service proxies waste images to the classifier and awards scan points.
type Service interface {
	Scan(ctx context.Context, userID uuid.UUID, imageBase64 string) (*ScanResult, error)
}

// ServiceParams groups scan service dependencies.
type ServiceParams struct {
	Classifier classifier
	Limiter    rateLimiter
	Actions    actions.Service
	Tx         txRunner
}

type service struct {
	classifier classifier
	limiter    rateLimiter
	actions    actions.Service
	tx         txRunner
}

// NewService builds the scan proxy service.
func NewService(params ServiceParams) (Service, error) {
	if params.Classifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "classifier is required")
	}
	if params.Limiter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate limiter is required")
	}
	if params.Actions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actions service is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	return &service{
		classifier: params.Classifier,
		limiter:    params.Limiter,
		actions:    params.Actions,
		tx:         params.Tx,
	}, nil
}

// Scan classifies one image. At most one scan per user per three seconds;
// each successful scan earns one idempotent waste_scanned award keyed by the
// generated scan ID.
func (s *service) Scan(ctx context.Context, userID uuid.UUID, imageBase64 string) (*ScanResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if strings.TrimSpace(imageBase64) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}
	if len(imageBase64) > MaxImageBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the maximum size")
	}

	allowed, _, err := s.limiter.FixedWindowAllow(ctx, "scan:"+userID.String(), 1, MinInterval)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan rate limit")
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "scanning too fast, slow down")
	}

	result, err := s.classifier.Classify(ctx, classify.Request{ImageBase64: imageBase64})
	if err != nil {
		return nil, err
	}

	scanID := uuid.NewString()
	points := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := s.actions.Apply(ctx, tx, actions.Award{
			UserID:    userID,
			Type:      enums.ActionWasteScanned,
			DedupeKey: actions.WasteScannedKey(userID, scanID),
		})
		if err != nil {
			return err
		}
		if applied {
			points = enums.ActionWasteScanned.DefaultPoints()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ScanResult{
		ScanID:         scanID,
		Classification: result,
		PointsAwarded:  points,
	}, nil
}
