package client

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Resettable is a user-scoped cache that the session clears on logout.
type Resettable interface {
	Reset()
}

// Session owns the authentication state: the current user profile, the
// bearer token, and the loading/error flags around auth operations.
//
// The token is the source of truth for authentication: IsAuthenticated is a
// function of token presence alone, since a token can exist while the
// profile is still being fetched. Logout cascades Reset() to every
// dependent cache so a second user on the same process never sees the
// first user's data.
type Session struct {
	mu         sync.Mutex
	api        *Client
	creds      *CredentialStore
	dependents []Resettable
	epoch      uint64

	user    *UserProfile
	token   string
	loading bool
	err     string
}

// NewSession builds the session manager, rehydrates any persisted token,
// and wires itself in as the API client's token source.
func NewSession(api *Client, creds *CredentialStore, dependents ...Resettable) *Session {
	s := &Session{api: api, creds: creds, dependents: dependents}
	if creds != nil {
		token, err := creds.Load()
		if err != nil {
			log.Printf("failed to load stored token: %v", err)
		}
		s.token = token
	}
	api.SetTokenSource(s.Token)
	return s
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) User() *UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) UserName() string {
	if u := s.User(); u != nil {
		return u.Name
	}
	return ""
}

func (s *Session) IsAuthenticated() bool { return s.Token() != "" }

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Login authenticates and, on success, installs the returned token and
// profile and persists the token. On failure the previous token and user
// are left untouched; the failure message lands in Err.
func (s *Session) Login(ctx context.Context, email, password string) bool {
	s.mu.Lock()
	start := s.epoch
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	payload, err := s.api.login(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.epoch != start {
		return false
	}
	if err != nil {
		s.err = failureMessage(err, "Login failed")
		return false
	}
	s.install(payload)
	return true
}

// Register creates an account and signs in. The display name is split on
// whitespace: first field is the first name, the rest joins into the last
// name (empty when the name has a single field).
func (s *Session) Register(ctx context.Context, name, email, password string) bool {
	firstName, lastName := splitDisplayName(name)

	s.mu.Lock()
	start := s.epoch
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	payload, err := s.api.register(ctx, email, password, name, firstName, lastName)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.epoch != start {
		return false
	}
	if err != nil {
		s.err = failureMessage(err, "Registration failed")
		return false
	}
	s.install(payload)
	return true
}

// FetchProfile refreshes the user profile for the held token. A failure is
// treated as an invalid or expired token, not a transient error: the
// session logs out and the cascade clears dependent caches.
func (s *Session) FetchProfile(ctx context.Context) {
	s.validate(ctx)
}

// ValidateSession checks the held token against the server. Meant to run
// once at startup so a token invalidated server-side (secret rotation,
// disabled account) is caught before the first feature screen fails.
func (s *Session) ValidateSession(ctx context.Context) bool {
	return s.validate(ctx)
}

func (s *Session) validate(ctx context.Context) bool {
	s.mu.Lock()
	token := s.token
	if token == "" {
		s.mu.Unlock()
		return false
	}
	start := s.epoch
	s.loading = true
	s.mu.Unlock()

	// An already-expired token cannot pass the server check; skip the
	// round trip and log out locally.
	if tokenExpired(token) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loading = false
		if s.epoch == start {
			s.logoutLocked()
		}
		return false
	}

	user, err := s.api.profile(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.epoch != start {
		return false
	}
	if err != nil {
		s.logoutLocked()
		return false
	}
	u := toUserProfile(*user)
	s.user = &u
	return true
}

// Logout clears the session synchronously: user, token, the persisted
// credential, and every dependent cache.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked()
}

func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

func (s *Session) install(payload *authPayload) {
	u := toUserProfile(payload.User)
	s.user = &u
	s.token = payload.Tokens.AccessToken
	if s.creds != nil {
		if err := s.creds.Save(s.token); err != nil {
			log.Printf("failed to persist token: %v", err)
		}
	}
}

func (s *Session) logoutLocked() {
	s.user = nil
	s.token = ""
	s.epoch++
	if s.creds != nil {
		if err := s.creds.Clear(); err != nil {
			log.Printf("failed to clear stored token: %v", err)
		}
	}
	for _, d := range s.dependents {
		d.Reset()
	}
}

func splitDisplayName(name string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func failureMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// tokenExpired peeks at the unverified exp claim. Unparseable tokens
// return false so the server stays the authority on validity.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
