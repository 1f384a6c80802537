package community

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
	"github.com/ceijey/greenguardian-backend/pkg/geocode"
	"github.com/ceijey/greenguardian-backend/pkg/pagination"
	"github.com/ceijey/greenguardian-backend/pkg/types"
)

const maxMessageLength = 2000

// geocoder is the slice of the reverse-geocoding client hotspots need.
type geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*geocode.Place, error)
}

// MessagePage is one cursor page of community messages.
type MessagePage struct {
	Items      []models.CommunityMessage
	NextCursor string
}

// HotspotInput carries a reported pollution site.
type HotspotInput struct {
	Name        string
	Description string
	Lat         float64
	Lng         float64
	Severity    int
}

// Service exposes the community board and read-only reference collections.
type Service interface {
	PostMessage(ctx context.Context, userID uuid.UUID, body string) (*models.CommunityMessage, error)
	ListMessages(ctx context.Context, params pagination.Params) (*MessagePage, error)

	ListLocalProjects(ctx context.Context) ([]models.LocalProject, error)
	ReportHotspot(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input HotspotInput) (*models.PollutionHotspot, error)
	ListHotspots(ctx context.Context) ([]models.PollutionHotspot, error)
	ListCollectionSchedules(ctx context.Context, area string) ([]models.CollectionSchedule, error)
}

// ServiceParams groups community service dependencies.
type ServiceParams struct {
	Repo     Repository
	Geocoder geocoder
}

type service struct {
	repo     Repository
	geocoder geocoder
}

// NewService builds the community service. The geocoder is optional;
// hotspots fall back to raw coordinates without one.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "community repo is required")
	}
	return &service{repo: params.Repo, geocoder: params.Geocoder}, nil
}

func (s *service) PostMessage(ctx context.Context, userID uuid.UUID, body string) (*models.CommunityMessage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	if len(body) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("message exceeds %d characters", maxMessageLength))
	}

	row := models.CommunityMessage{UserID: userID, Body: body}
	if err := s.repo.InsertMessage(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post community message")
	}
	return &row, nil
}

func (s *service) ListMessages(ctx context.Context, params pagination.Params) (*MessagePage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListMessages(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list community messages")
	}

	page := &MessagePage{Items: rows}
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

func (s *service) ListLocalProjects(ctx context.Context) ([]models.LocalProject, error) {
	rows, err := s.repo.ListLocalProjects(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list local projects")
	}
	return rows, nil
}

// ReportHotspot records a pollution site. The locality comes from reverse
// geocoding; when the geocoder is down or absent the raw coordinates stand
// in so the report is never lost.
func (s *service) ReportHotspot(ctx context.Context, actorID uuid.UUID, role enums.UserRole, input HotspotInput) (*models.PollutionHotspot, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !role.CanOrganize() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only organizers can report hotspots")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}
	if input.Severity < 1 || input.Severity > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "severity must be between 1 and 5")
	}

	locality := fmt.Sprintf("%.4f, %.4f", input.Lat, input.Lng)
	if s.geocoder != nil {
		geoCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if place, err := s.geocoder.ReverseGeocode(geoCtx, input.Lat, input.Lng); err == nil {
			locality = place.Locality
		}
	}

	row := models.PollutionHotspot{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Point:       types.GeographyPoint{Lat: input.Lat, Lng: input.Lng},
		Locality:    locality,
		Severity:    input.Severity,
	}
	if err := s.repo.InsertHotspot(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "report hotspot")
	}
	return &row, nil
}

func (s *service) ListHotspots(ctx context.Context) ([]models.PollutionHotspot, error) {
	rows, err := s.repo.ListHotspots(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list hotspots")
	}
	return rows, nil
}

func (s *service) ListCollectionSchedules(ctx context.Context, area string) ([]models.CollectionSchedule, error) {
	rows, err := s.repo.ListCollectionSchedules(ctx, strings.TrimSpace(area))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list collection schedules")
	}
	return rows, nil
}
