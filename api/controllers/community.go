package controllers

import (
	"net/http"

	"github.com/ceijey/greenguardian-backend/api/responses"
	"github.com/ceijey/greenguardian-backend/api/validators"
	"github.com/ceijey/greenguardian-backend/internal/community"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
	"github.com/ceijey/greenguardian-backend/pkg/pagination"
	"github.com/ceijey/greenguardian-backend/pkg/types"
)

type postMessageRequest struct {
	Body string `json:"body" validate:"required,max=1000"`
}

// CommunityMessagePost appends a message to the community board.
func CommunityMessagePost(svc community.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body postMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message, err := svc.PostMessage(r.Context(), userID, body.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

func CommunityMessageList(svc community.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListMessages(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.CursorPage{
			Items:      page.Items,
			NextCursor: page.NextCursor,
		})
	}
}

func LocalProjectList(svc community.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := svc.ListLocalProjects(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, projects)
	}
}

type reportHotspotRequest struct {
	Name        string  `json:"name" validate:"required,max=140"`
	Description string  `json:"description" validate:"max=2000"`
	Lat         float64 `json:"lat" validate:"min=-90,max=90"`
	Lng         float64 `json:"lng" validate:"min=-180,max=180"`
	Severity    int     `json:"severity" validate:"required,min=1,max=5"`
}

// HotspotReport records a pollution hotspot. Organizer only.
func HotspotReport(svc community.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body reportHotspotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		hotspot, err := svc.ReportHotspot(r.Context(), userID, role, community.HotspotInput{
			Name:        body.Name,
			Description: body.Description,
			Lat:         body.Lat,
			Lng:         body.Lng,
			Severity:    body.Severity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, hotspot)
	}
}

func HotspotList(svc community.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hotspots, err := svc.ListHotspots(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, hotspots)
	}
}

func CollectionScheduleList(svc community.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		area := validators.SanitizeString(r.URL.Query().Get("area"), 120)
		schedules, err := svc.ListCollectionSchedules(r.Context(), area)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, schedules)
	}
}
