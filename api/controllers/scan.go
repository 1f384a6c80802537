package controllers

import (
	"net/http"

	"github.com/ceijey/greenguardian-backend/api/responses"
	"github.com/ceijey/greenguardian-backend/api/validators"
	"github.com/ceijey/greenguardian-backend/internal/scan"
	"github.com/ceijey/greenguardian-backend/pkg/logger"
)

type scanRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

// ScanClassify classifies a waste photo and awards a ledger action when the
// item is recyclable. Rate limited per user inside the service.
func ScanClassify(svc scan.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body scanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Scan(r.Context(), userID, body.ImageBase64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
