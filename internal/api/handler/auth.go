package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/optiretina/portal/internal/api/middleware"
	"github.com/optiretina/portal/internal/api/response"
	"github.com/optiretina/portal/internal/api/validation"
	"github.com/optiretina/portal/internal/auth"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler handles the login, logout, and session endpoints.
type AuthHandler struct {
	service      *auth.Service
	tokens       *auth.TokenManager
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *auth.Service, tokens *auth.TokenManager, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		tokens:       tokens,
		cookieSecure: cookieSecure,
	}
}

// Login handles POST /auth/login. On success it mints a signed session token
// and sets it as the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	session, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", requestID)
			return
		}
		if errors.Is(err, auth.ErrStoreUnavailable) {
			slog.Error("login failed: user store unavailable", "error", err, "requestId", requestID)
			response.Err(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "The sign-in service is temporarily unavailable", requestID)
			return
		}
		slog.Error("login failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Sign-in failed", requestID)
		return
	}

	token, err := h.tokens.Issue(session)
	if err != nil {
		slog.Error("failed to issue session token", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Sign-in failed", requestID)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("user signed in", "email", session.Email, "requestId", requestID)
	response.Success(w, http.StatusOK, session, requestID)
}

// Logout handles POST /auth/logout by expiring the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response.Success(w, http.StatusOK, map[string]bool{"signedOut": true}, requestID)
}

// Me handles GET /auth/me, returning the session derived from the cookie.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	session := middleware.GetSession(r.Context())
	if session == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
		return
	}

	response.Success(w, http.StatusOK, session, requestID)
}
