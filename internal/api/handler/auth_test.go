package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/optiretina/portal/internal/api/handler"
	"github.com/optiretina/portal/internal/api/middleware"
	"github.com/optiretina/portal/internal/auth"
)

// fakeUserRepo is an in-memory UserRepository keyed by email. A non-nil err
// simulates a store outage.
type fakeUserRepo struct {
	users map[string]*auth.User
	err   error
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

func newAuthHandler(t *testing.T, repo auth.UserRepository, demoLogin bool) (*handler.AuthHandler, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	svc := auth.NewService(repo, demoLogin)
	return handler.NewAuthHandler(svc, tokens, false), tokens
}

func seedUser(t *testing.T, email, password string) *fakeUserRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &fakeUserRepo{users: map[string]*auth.User{
		email: {ID: "42", Name: "Dr. Vance", Email: email, Password: string(hash)},
	}}
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestLogin_Success(t *testing.T) {
	h, tokens := newAuthHandler(t, seedUser(t, "doc@hospital.com", "s3cret"), false)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email": "doc@hospital.com", "password": "s3cret"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "doc@hospital.com", data["email"])
	assert.Equal(t, "Dr. Vance", data["name"])

	cookie := sessionCookie(w)
	require.NotNil(t, cookie, "login should set the session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)

	session, err := tokens.Parse(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "doc@hospital.com", session.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h, _ := newAuthHandler(t, seedUser(t, "doc@hospital.com", "s3cret"), false)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email": "doc@hospital.com", "password": "wrong"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(w))

	env := parseEnvelope(t, w)
	apiErr := env["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr["code"])
	assert.Equal(t, "Invalid credentials", apiErr["message"])
}

func TestLogin_StoreUnavailable(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeUserRepo{err: errors.New("connection refused")}, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email": "doc@hospital.com", "password": "s3cret"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	env := parseEnvelope(t, w)
	apiErr := env["error"].(map[string]interface{})
	assert.Equal(t, "STORE_UNAVAILABLE", apiErr["code"])
}

func TestLogin_DemoFallbackDuringOutage(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeUserRepo{err: errors.New("connection refused")}, true)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email": "admin@optiretina.com", "password": "password"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessionCookie(w))

	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "Dr. Admin", data["name"])
}

func TestLogin_InvalidJSON(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeUserRepo{}, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	apiErr := env["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_JSON", apiErr["code"])
}

func TestLogin_MissingFields(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeUserRepo{}, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email": ""}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	apiErr := env["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", apiErr["code"])
	assert.NotNil(t, apiErr["details"])
}

func TestLogout_ClearsCookie(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeUserRepo{}, false)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestMe_ReturnsSession(t *testing.T) {
	h, tokens := newAuthHandler(t, &fakeUserRepo{}, false)

	wrapped := middleware.Session(tokens)(http.HandlerFunc(h.Me))

	tok, err := tokens.Issue(&auth.Session{UserID: "42", Name: "Dr. Vance", Email: "doc@hospital.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: tok})
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "42", data["id"])
	assert.Equal(t, "doc@hospital.com", data["email"])
}
