package middleware

import (
	"context"
	"net/http"

	"github.com/optiretina/portal/internal/api/response"
	"github.com/optiretina/portal/internal/auth"
)

const sessionKey contextKey = "session"

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "token"

// Session is middleware for JSON API routes. It re-derives the identity from
// the signed cookie on every request and stores it in the request context;
// missing or invalid tokens return 401.
func Session(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := sessionFromCookie(r, tokens)
			if !ok {
				requestID := GetRequestID(r.Context())
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PageSession is the HTML-route counterpart of Session: unauthenticated
// requests are redirected to the login page instead of receiving JSON.
func PageSession(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := sessionFromCookie(r, tokens)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromCookie(r *http.Request, tokens *auth.TokenManager) (*auth.Session, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	session, err := tokens.Parse(cookie.Value)
	if err != nil {
		return nil, false
	}
	return session, true
}

// GetSession retrieves the authenticated Session from the request context.
func GetSession(ctx context.Context) *auth.Session {
	if s, ok := ctx.Value(sessionKey).(*auth.Session); ok {
		return s
	}
	return nil
}
