package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ceijey/greenguardian-backend/api/middleware"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
	pkgerrors "github.com/ceijey/greenguardian-backend/pkg/errors"
)

// requestActor resolves the authenticated user and role from the request
// context seeded by the auth middleware.
func requestActor(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, enums.UserRole(middleware.RoleFromContext(r.Context())), nil
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(r *http.Request, value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return id, nil
}
