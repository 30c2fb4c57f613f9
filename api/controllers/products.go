package controllers

import (
	"net/http"

	"github.com/poojakit/poojakit-backend/api/responses"
	"github.com/poojakit/poojakit-backend/internal/catalog"
	"github.com/poojakit/poojakit-backend/pkg/logger"
)

// ListProducts serves the public catalog as a flat array.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, products)
	}
}
