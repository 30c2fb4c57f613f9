package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/poojakit/poojakit-backend/api/middleware"
	"github.com/poojakit/poojakit-backend/api/responses"
	"github.com/poojakit/poojakit-backend/api/validators"
	"github.com/poojakit/poojakit-backend/internal/auth"
	"github.com/poojakit/poojakit-backend/internal/orders"
	"github.com/poojakit/poojakit-backend/pkg/logger"
)

// PlaceOrder accepts checkout submissions. The endpoint is public: a valid
// session (cookie, bearer header, or the legacy userToken body field) attaches
// the order to the account, anything else places it as a guest.
func PlaceOrder(svc orders.Service, verifier auth.SessionVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orders.PlaceOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteOrderError(r.Context(), logg, w, err)
			return
		}

		userID := resolveUserID(r, req.UserToken, verifier)

		placed, err := svc.Place(r.Context(), req, userID)
		if err != nil {
			responses.WriteOrderError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, placed)
	}
}

// TrackOrder serves the public tracking lookup. Ids match case-insensitively.
func TrackOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.Track(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, order)
	}
}

// resolveUserID resolves the optional order owner. Invalid or expired tokens
// degrade to a guest order rather than failing the checkout.
func resolveUserID(r *http.Request, bodyToken string, verifier auth.SessionVerifier) *uuid.UUID {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		token = bodyToken
	}
	if token == "" || verifier == nil {
		return nil
	}
	identity := verifier.Verify(r.Context(), token)
	if identity == nil {
		return nil
	}
	id := identity.UserID
	return &id
}
