package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the email/password pair does not
// match any user record. No further detail is exposed to callers.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrStoreUnavailable is returned when the remote user store cannot be
// queried. Kept distinct from ErrInvalidCredentials so callers can tell an
// infrastructure failure from a bad login.
var ErrStoreUnavailable = errors.New("user store unavailable")

// Fixed demo login from the original deployment. Only honored when the
// service is constructed with demoLogin enabled; see DESIGN.md.
const (
	demoEmail    = "admin@optiretina.com"
	demoPassword = "password"
	demoUserID   = "1"
	demoUserName = "Dr. Admin"
)

// Service provides credential verification against the remote user store.
type Service struct {
	users     UserRepository
	demoLogin bool
}

// NewService creates a new auth Service. demoLogin enables the hardcoded
// demo fallback credential; it must stay off outside demo installs.
func NewService(users UserRepository, demoLogin bool) *Service {
	return &Service{users: users, demoLogin: demoLogin}
}

// Authenticate verifies an email/password pair and returns the resulting
// Session. A store failure surfaces as ErrStoreUnavailable; any credential
// mismatch surfaces as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return s.fallbackOr(email, password, ErrInvalidCredentials)
		}
		slog.Error("user store query failed", "error", err)
		return s.fallbackOr(email, password, fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	if !verifyPassword(u.Password, password) {
		return s.fallbackOr(email, password, ErrInvalidCredentials)
	}

	return &Session{UserID: u.ID, Name: u.Name, Email: u.Email}, nil
}

// fallbackOr checks the demo fallback credential before failing with the
// given error. The fallback applies to every failed lookup, including store
// outages, which is the escape-hatch semantics of the original demo.
func (s *Service) fallbackOr(email, password string, failure error) (*Session, error) {
	if s.demoLogin && email == demoEmail && password == demoPassword {
		slog.Warn("demo fallback credential used", "email", email)
		return &Session{UserID: demoUserID, Name: demoUserName, Email: demoEmail}, nil
	}
	return nil, failure
}

// verifyPassword compares a stored credential against the supplied password.
// Stored values are expected to be bcrypt hashes; the hosted demo table still
// holds cleartext rows, which are compared in constant time and flagged.
func verifyPassword(stored, supplied string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	// Cleartext row. Unfit for anything but the demo dataset.
	slog.Warn("user record holds a cleartext password; demo data only")
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
