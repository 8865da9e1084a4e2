package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/api/middleware"
	"github.com/pati-platform/pati-backend/internal/products"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
)

// actorUserID extracts the authenticated user id seeded by the auth middleware.
func actorUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func actorRole(r *http.Request) enums.UserRole {
	return enums.UserRole(middleware.RoleFromContext(r.Context()))
}

// catalogActor assembles the product-service actor from the request context.
func catalogActor(r *http.Request) (products.Actor, error) {
	userID, err := actorUserID(r)
	if err != nil {
		return products.Actor{}, err
	}
	actor := products.Actor{UserID: userID, Role: actorRole(r)}
	if raw := middleware.StoreIDFromContext(r.Context()); raw != "" {
		storeID, err := uuid.Parse(raw)
		if err != nil {
			return products.Actor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
		}
		actor.StoreID = &storeID
	}
	return actor, nil
}

// actorStoreID extracts the store bound to the authenticated staff account.
func actorStoreID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.StoreIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no store bound to account")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}
	return id, nil
}

func parseIDParam(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id")
	}
	return id, nil
}
