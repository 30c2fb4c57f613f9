package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/poojakit/poojakit-backend/api/responses"
	"github.com/poojakit/poojakit-backend/api/validators"
	"github.com/poojakit/poojakit-backend/internal/orders"
	"github.com/poojakit/poojakit-backend/pkg/logger"
)

// ListOrders serves every order, newest first, for the admin dashboard.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, all)
	}
}

// UpdateOrderStatus applies an admin status change to a single order.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orders.UpdateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w)
	}
}

// ExportOrders serves the full order list as a JSON file download.
func ExportOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="orders.json"`)
		responses.WriteJSON(w, http.StatusOK, all)
	}
}
