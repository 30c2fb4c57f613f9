package controllers

import (
	"net/http"

	"github.com/poojakit/poojakit-backend/api/middleware"
	"github.com/poojakit/poojakit-backend/api/responses"
	"github.com/poojakit/poojakit-backend/api/validators"
	"github.com/poojakit/poojakit-backend/internal/auth"
	"github.com/poojakit/poojakit-backend/internal/users"
	"github.com/poojakit/poojakit-backend/pkg/config"
	"github.com/poojakit/poojakit-backend/pkg/logger"
)

// AuthControllerParams bundles what the auth endpoints need.
type AuthControllerParams struct {
	Service auth.Service
	JWTCfg  config.JWTConfig
	// SecureCookies marks session cookies Secure; enabled in prod where the
	// storefront is always served over TLS.
	SecureCookies bool
	Logger        *logger.Logger
}

type authUserResponse struct {
	User *users.UserDTO `json:"user"`
}

// Signup registers a new account and opens a session in one step.
func Signup(params AuthControllerParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.SignupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), params.Logger, w, err)
			return
		}

		result, err := params.Service.Signup(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), params.Logger, w, err)
			return
		}

		setSessionCookie(w, params, result.Token)
		responses.WriteJSON(w, http.StatusOK, authUserResponse{User: result.User})
	}
}

// Login verifies credentials and opens a session.
func Login(params AuthControllerParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), params.Logger, w, err)
			return
		}

		result, err := params.Service.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), params.Logger, w, err)
			return
		}

		setSessionCookie(w, params, result.Token)
		responses.WriteJSON(w, http.StatusOK, authUserResponse{User: result.User})
	}
}

// Logout clears the session cookie. It succeeds whether or not a session
// existed.
func Logout(params AuthControllerParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   params.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		responses.WriteOK(w)
	}
}

func setSessionCookie(w http.ResponseWriter, params AuthControllerParams, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(params.JWTCfg.TTL().Seconds()),
		HttpOnly: true,
		Secure:   params.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
