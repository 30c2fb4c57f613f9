package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/poojakit/poojakit-backend/pkg/errors"
	"github.com/poojakit/poojakit-backend/pkg/logger"
)

// WriteJSON emits a payload verbatim. The storefront keeps the original flat
// wire contract ({user}, {ok:true,id}, bare arrays) rather than wrapping
// responses in an envelope.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

// WriteOK emits the canonical {"ok":true} acknowledgement.
func WriteOK(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// WriteError maps a service error to its HTTP status and the flat
// {"error":"<code>"} body. Unexpected errors become internal_error and are
// logged with their full chain; the public body never leaks details.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	meta := resolveError(ctx, logg, err)
	WriteJSON(w, meta.HTTPStatus, map[string]string{"error": meta.PublicMessage})
}

// WriteOrderError is WriteError with the {"ok":false,"error":"<code>"} body
// the order placement endpoint has always returned.
func WriteOrderError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	meta := resolveError(ctx, logg, err)
	WriteJSON(w, meta.HTTPStatus, map[string]any{"ok": false, "error": meta.PublicMessage})
}

func resolveError(ctx context.Context, logg *logger.Logger, err error) pkgerrors.Metadata {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	if logg != nil {
		fields := map[string]any{
			"error_code":  string(typed.Code()),
			"error_chain": pkgerrors.Chain(err),
		}
		logg.Error(logg.WithFields(ctx, fields), "request.error", err)
	}

	return pkgerrors.MetadataFor(typed.Code())
}
