package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ceijey/greenguardian-backend/api/responses"
	"github.com/ceijey/greenguardian-backend/api/validators"
	"github.com/ceijey/greenguardian-backend/internal/challenges"
	"github.com/ceijey/greenguardian-backend/internal/events"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
)

type createChallengeRequest struct {
	Title         string     `json:"title" validate:"required,max=140"`
	Description   string     `json:"description" validate:"max=2000"`
	Category      string     `json:"category" validate:"required"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	TargetActions int        `json:"target_actions" validate:"min=0,max=10000"`
	BadgeName     string     `json:"badge_name" validate:"max=80"`
	BadgeIcon     string     `json:"badge_icon" validate:"max=80"`
}

// ChallengeCreate opens a new challenge. Organizer only.
func ChallengeCreate(svc challenges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createChallengeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), challenges.Actor{UserID: userID, Role: role}, challenges.CreateInput{
			Title:         body.Title,
			Description:   body.Description,
			Category:      enums.ChallengeCategory(body.Category),
			StartDate:     body.StartDate,
			EndDate:       body.EndDate,
			TargetActions: body.TargetActions,
			BadgeName:     body.BadgeName,
			BadgeIcon:     body.BadgeIcon,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func ChallengeList(svc challenges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.List(r.Context(), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

func ChallengeDetail(svc challenges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, chi.URLParam(r, "challengeId"), "challenge id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), id, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ChallengeJoin enrolls the caller. Joining twice is a no-op.
func ChallengeJoin(svc challenges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, chi.URLParam(r, "challengeId"), "challenge id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		joined, err := svc.Join(r.Context(), challenges.Actor{UserID: userID, Role: role}, id, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"joined": joined})
	}
}

func ChallengeJoined(svc challenges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.Joined(r.Context(), userID, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// ChallengeProgress reports the caller's ledger progress toward the badge.
func ChallengeProgress(svc challenges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, chi.URLParam(r, "challengeId"), "challenge id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		progress, err := svc.Progress(r.Context(), id, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, progress)
	}
}

// ChallengeRelatedEvents lists upcoming events whose type advances the challenge.
func ChallengeRelatedEvents(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, chi.URLParam(r, "challengeId"), "challenge id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		related, err := svc.RelatedEvents(r.Context(), id, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, related)
	}
}
