package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/poojakit/poojakit-backend/api/responses"
	"github.com/poojakit/poojakit-backend/pkg/db"
	"github.com/poojakit/poojakit-backend/pkg/logger"
)

const readyCheckTimeout = 2 * time.Second

// Liveness reports that the process is up.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

// Readiness pings each dependency and reports 503 if any is unreachable. Nil
// pingers (e.g. redis when it is not configured) are skipped.
func Readiness(logg *logger.Logger, deps map[string]db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		overall := "ready"
		status := http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				overall = "degraded"
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "dependency", name), "readiness check failed", err)
				}
				continue
			}
			checks[name] = "up"
		}

		responses.WriteJSON(w, status, map[string]any{
			"status": overall,
			"checks": checks,
		})
	}
}
