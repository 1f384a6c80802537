package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/api/responses"
	"github.com/ceijey/greenguardian-backend/api/validators"
	"github.com/ceijey/greenguardian-backend/internal/swaps"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
)

type createSwapItemRequest struct {
	Title       string `json:"title" validate:"required,max=140"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"required,max=60"`
	Condition   string `json:"condition" validate:"required"`
}

// SwapItemCreate publishes a new item listing owned by the caller.
func SwapItemCreate(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createSwapItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), userID, swaps.CreateItemInput{
			Title:       body.Title,
			Description: body.Description,
			Category:    body.Category,
			Condition:   enums.ItemCondition(body.Condition),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func SwapItemList(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListAvailableItems(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func SwapItemDetail(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathUUID(r, chi.URLParam(r, "itemId"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// SwapRequestCreate opens (or revives) the caller's request for an item.
func SwapRequestCreate(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, chi.URLParam(r, "itemId"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		request, err := svc.Request(r.Context(), itemID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// SwapRequestCancel withdraws the caller's own live request. Idempotent.
func SwapRequestCancel(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, chi.URLParam(r, "itemId"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.CancelRequest(r.Context(), itemID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// SwapRequestList returns live requests for an item the caller owns.
func SwapRequestList(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, chi.URLParam(r, "itemId"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requests, err := svc.ListRequestsForItem(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, requests)
	}
}

type swapDecision func(svc swaps.Service, r *http.Request) error

func swapDecisionHandler(svc swaps.Service, logg *logger.Logger, decide swapDecision, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := decide(svc, r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": status})
	}
}

func swapPair(r *http.Request) (ownerID, itemID, requesterID uuid.UUID, err error) {
	owner, _, err := requestActor(r)
	if err != nil {
		return
	}
	item, err := pathUUID(r, chi.URLParam(r, "itemId"), "item id")
	if err != nil {
		return
	}
	requester, err := pathUUID(r, chi.URLParam(r, "userId"), "requester id")
	if err != nil {
		return
	}
	return owner, item, requester, nil
}

// SwapRequestAccept marks the pending request accepted. Owner only.
func SwapRequestAccept(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return swapDecisionHandler(svc, logg, func(svc swaps.Service, r *http.Request) error {
		owner, item, requester, err := swapPair(r)
		if err != nil {
			return err
		}
		return svc.Accept(r.Context(), owner, item, requester)
	}, "accepted")
}

// SwapRequestDecline marks the pending request declined. Owner only.
func SwapRequestDecline(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return swapDecisionHandler(svc, logg, func(svc swaps.Service, r *http.Request) error {
		owner, item, requester, err := swapPair(r)
		if err != nil {
			return err
		}
		return svc.Decline(r.Context(), owner, item, requester)
	}, "declined")
}

// SwapComplete settles an accepted request and awards both parties.
func SwapComplete(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, item, requester, err := swapPair(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		completed, err := svc.Complete(r.Context(), owner, item, requester)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, completed)
	}
}

func SwapMyRequests(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requests, err := svc.ListMyRequests(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, requests)
	}
}

func SwapCompletedList(svc swaps.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		completed, err := svc.ListCompleted(r.Context(), userID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, completed)
	}
}
