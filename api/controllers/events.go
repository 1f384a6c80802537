package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ceijey/greenguardian-backend/api/responses"
	"github.com/ceijey/greenguardian-backend/api/validators"
	"github.com/ceijey/greenguardian-backend/internal/events"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
)

type createEventRequest struct {
	Title         string    `json:"title" validate:"required,max=140"`
	Description   string    `json:"description" validate:"max=2000"`
	Type          string    `json:"type" validate:"required"`
	Location      string    `json:"location" validate:"required,max=200"`
	EventDate     time.Time `json:"event_date" validate:"required"`
	DurationHours int       `json:"duration_hours" validate:"min=1,max=24"`
	MaxVolunteers int       `json:"max_volunteers" validate:"min=0,max=10000"`
}

// EventCreate schedules a volunteer event. Organizer only.
func EventCreate(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createEventRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), events.Actor{UserID: userID, Role: role}, events.CreateInput{
			Title:         body.Title,
			Description:   body.Description,
			Type:          enums.EventType(body.Type),
			Location:      body.Location,
			EventDate:     body.EventDate,
			DurationHours: body.DurationHours,
			MaxVolunteers: body.MaxVolunteers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func EventList(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upcomingOnly, err := validators.ParseQueryBool(r, "upcoming", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.List(r.Context(), upcomingOnly, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

func EventDetail(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, chi.URLParam(r, "eventId"), "event id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// EventJoin signs the caller up as a volunteer. The response carries the
// challenges the signup counted toward.
func EventJoin(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, chi.URLParam(r, "eventId"), "event id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Join(r.Context(), events.Actor{UserID: userID, Role: role}, id, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func EventLeave(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, chi.URLParam(r, "eventId"), "event id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Leave(r.Context(), events.Actor{UserID: userID, Role: role}, id, time.Now().UTC()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "left"})
	}
}

func EventJoined(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.Joined(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// EventRelatedChallenges lists active challenges the event's type maps onto.
func EventRelatedChallenges(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, chi.URLParam(r, "eventId"), "event id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		related, err := svc.RelatedChallenges(r.Context(), id, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, related)
	}
}
