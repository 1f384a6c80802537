package community

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
	"github.com/ceijey/greenguardian-backend/pkg/geocode"
	"github.com/ceijey/greenguardian-backend/pkg/pagination"
)

type stubCommunityRepo struct {
	messages []models.CommunityMessage
	hotspots []models.PollutionHotspot
	listFn   func(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CommunityMessage, error)
}

func (s *stubCommunityRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCommunityRepo) InsertMessage(ctx context.Context, message *models.CommunityMessage) error {
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, *message)
	return nil
}

func (s *stubCommunityRepo) ListMessages(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CommunityMessage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, cursor, limit)
	}
	return s.messages, nil
}

func (s *stubCommunityRepo) ListLocalProjects(ctx context.Context) ([]models.LocalProject, error) {
	return nil, nil
}

func (s *stubCommunityRepo) InsertHotspot(ctx context.Context, hotspot *models.PollutionHotspot) error {
	s.hotspots = append(s.hotspots, *hotspot)
	return nil
}

func (s *stubCommunityRepo) ListHotspots(ctx context.Context) ([]models.PollutionHotspot, error) {
	return s.hotspots, nil
}

func (s *stubCommunityRepo) ListCollectionSchedules(ctx context.Context, area string) ([]models.CollectionSchedule, error) {
	return nil, nil
}

type stubGeocoder struct {
	place *geocode.Place
	err   error
}

func (s *stubGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*geocode.Place, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.place, nil
}

func TestPostMessageValidation(t *testing.T) {
	repo := &stubCommunityRepo{}
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.PostMessage(context.Background(), uuid.New(), "   "); err == nil {
		t.Fatal("blank body should fail")
	}
	long := strings.Repeat("x", maxMessageLength+1)
	if _, err := svc.PostMessage(context.Background(), uuid.New(), long); err == nil {
		t.Fatal("oversized body should fail")
	}

	msg, err := svc.PostMessage(context.Background(), uuid.New(), "  Anyone joining the river cleanup?  ")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if msg.Body != "Anyone joining the river cleanup?" {
		t.Fatalf("expected trimmed body, got %q", msg.Body)
	}
}

func TestListMessagesPaginates(t *testing.T) {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	rows := make([]models.CommunityMessage, 3)
	for i := range rows {
		rows[i] = models.CommunityMessage{ID: uuid.New(), CreatedAt: base.Add(-time.Duration(i) * time.Minute)}
	}
	repo := &stubCommunityRepo{
		listFn: func(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CommunityMessage, error) {
			return rows, nil
		},
	}
	svc, _ := NewService(ServiceParams{Repo: repo})

	page, err := svc.ListMessages(context.Background(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(page.Items) != 2 || page.NextCursor == "" {
		t.Fatalf("expected trimmed page with cursor, got %d items cursor=%q", len(page.Items), page.NextCursor)
	}
}

func TestReportHotspotUsesGeocoder(t *testing.T) {
	repo := &stubCommunityRepo{}
	svc, _ := NewService(ServiceParams{
		Repo:     repo,
		Geocoder: &stubGeocoder{place: &geocode.Place{Locality: "Valenzuela"}},
	})

	spot, err := svc.ReportHotspot(context.Background(), uuid.New(), enums.UserRoleOrganizer, HotspotInput{
		Name: "Creek dump site", Lat: 14.7, Lng: 120.98, Severity: 4,
	})
	if err != nil {
		t.Fatalf("ReportHotspot: %v", err)
	}
	if spot.Locality != "Valenzuela" {
		t.Fatalf("expected geocoded locality, got %q", spot.Locality)
	}
}

func TestReportHotspotFallsBackToCoordinates(t *testing.T) {
	repo := &stubCommunityRepo{}
	svc, _ := NewService(ServiceParams{
		Repo:     repo,
		Geocoder: &stubGeocoder{err: pkgerrors.New(pkgerrors.CodeDependency, "geocoder down")},
	})

	spot, err := svc.ReportHotspot(context.Background(), uuid.New(), enums.UserRoleAdmin, HotspotInput{
		Name: "Creek dump site", Lat: 14.7, Lng: 120.98, Severity: 2,
	})
	if err != nil {
		t.Fatalf("ReportHotspot: %v", err)
	}
	if spot.Locality != "14.7000, 120.9800" {
		t.Fatalf("expected coordinate fallback, got %q", spot.Locality)
	}
}

func TestReportHotspotValidation(t *testing.T) {
	svc, _ := NewService(ServiceParams{Repo: &stubCommunityRepo{}})
	organizer := uuid.New()

	cases := []struct {
		name  string
		role  enums.UserRole
		input HotspotInput
		code  pkgerrors.Code
	}{
		{"member forbidden", enums.UserRoleMember, HotspotInput{Name: "x", Severity: 1}, pkgerrors.CodeForbidden},
		{"bad latitude", enums.UserRoleOrganizer, HotspotInput{Name: "x", Lat: 91, Severity: 1}, pkgerrors.CodeValidation},
		{"bad severity", enums.UserRoleOrganizer, HotspotInput{Name: "x", Severity: 6}, pkgerrors.CodeValidation},
		{"blank name", enums.UserRoleOrganizer, HotspotInput{Name: " ", Severity: 3}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReportHotspot(context.Background(), organizer, tc.role, tc.input)
			if te := pkgerrors.As(err); te == nil || te.Code() != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}
