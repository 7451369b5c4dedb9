package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, authData("tok-123"))
	})
	env := newTestEnv(t, mux)

	ok := env.session.Login(context.Background(), "ada@example.com", "hunter22")

	require.True(t, ok)
	assert.True(t, env.session.IsAuthenticated())
	assert.Equal(t, "tok-123", env.session.Token())
	assert.Equal(t, "Ada Lovelace", env.session.UserName())
	assert.False(t, env.session.Loading())
	assert.Empty(t, env.session.Err())

	// the token must survive a process restart
	stored, err := env.creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", stored)
}

func TestLoginFailureKeepsExistingSession(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeData(w, http.StatusOK, authData("tok-first"))
			return
		}
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	})
	env := newTestEnv(t, mux)

	require.True(t, env.session.Login(context.Background(), "ada@example.com", "right"))

	ok := env.session.Login(context.Background(), "ada@example.com", "wrong")

	assert.False(t, ok)
	assert.Equal(t, "Invalid email or password", env.session.Err())
	// a failed attempt must not clobber the session that was already valid
	assert.Equal(t, "tok-first", env.session.Token())
	assert.NotNil(t, env.session.User())
}

func TestLoginNetworkFailureUsesFallbackMessage(t *testing.T) {
	env := newTestEnv(t, http.NewServeMux())
	env.server.Close()

	ok := env.session.Login(context.Background(), "ada@example.com", "pw")

	assert.False(t, ok)
	assert.Equal(t, "Login failed", env.session.Err())
}

func TestRegisterSplitsDisplayName(t *testing.T) {
	tests := []struct {
		name      string
		display   string
		wantFirst string
		wantLast  string
	}{
		{"first and last", "Ada Lovelace", "Ada", "Lovelace"},
		{"three parts", "Ada King Lovelace", "Ada", "King Lovelace"},
		{"single name", "Ada", "Ada", ""},
		{"padded", "  Ada   Lovelace  ", "Ada", "Lovelace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				FirstName string `json:"first_name"`
				LastName  string `json:"last_name"`
			}
			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				writeData(w, http.StatusCreated, authData("tok-reg"))
			})
			env := newTestEnv(t, mux)

			require.True(t, env.session.Register(context.Background(), tt.display, "ada@example.com", "hunter22"))
			assert.Equal(t, tt.wantFirst, got.FirstName)
			assert.Equal(t, tt.wantLast, got.LastName)
		})
	}
}

func TestLogoutCascadesToDependentCaches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, authData("tok-123"))
	})
	mux.HandleFunc("GET /api/v1/medications", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{
			"medications": []any{medData(1, "warfarin")},
			"count":       1,
		})
	})
	mux.HandleFunc("GET /api/v1/interactions/drug/{name}", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{
			"interactions": []any{interactionData("INT-1", "warfarin", "Leafy greens", "high")},
		})
	})
	mux.HandleFunc("GET /api/v1/history", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{
			"history": []any{map[string]any{
				"id": 7, "food_name": "Kale", "had_interaction": true,
				"interaction_count": 1, "max_severity": "high",
				"medications_checked": []string{"warfarin"},
				"created_at":          time.Now().UTC().Format(time.RFC3339),
			}},
		})
	})
	env := newTestEnv(t, mux)
	ctx := context.Background()

	require.True(t, env.session.Login(ctx, "ada@example.com", "pw"))
	env.registry.FetchMedications(ctx)
	env.history.FetchHistory(ctx, false)
	require.Equal(t, 1, env.registry.Count())
	require.Len(t, env.registry.Interactions(), 1)
	require.Equal(t, 1, env.history.TotalChecks())

	env.session.Logout()

	assert.False(t, env.session.IsAuthenticated())
	assert.Nil(t, env.session.User())
	assert.Empty(t, env.registry.Medications())
	assert.Empty(t, env.registry.SearchResults())
	assert.Empty(t, env.registry.Interactions())
	assert.Empty(t, env.history.Entries())
	assert.False(t, env.history.HasFetched())

	stored, err := env.creds.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestFetchProfileWithoutTokenIsNoop(t *testing.T) {
	var calls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeData(w, http.StatusOK, map[string]any{"user": testUser()})
	})
	env := newTestEnv(t, mux)

	env.session.FetchProfile(context.Background())

	assert.Equal(t, int64(0), calls.Load())
}

func TestFetchProfileFailureLogsOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, authData("tok-123"))
	})
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
	})
	env := newTestEnv(t, mux)
	ctx := context.Background()

	require.True(t, env.session.Login(ctx, "ada@example.com", "pw"))

	// a token present but rejected is an expired session, not a retryable
	// error: fail closed
	env.session.FetchProfile(ctx)

	assert.False(t, env.session.IsAuthenticated())
	assert.Nil(t, env.session.User())
}

func TestValidateSessionValidToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-stored", r.Header.Get("Authorization"))
		writeData(w, http.StatusOK, map[string]any{"user": testUser()})
	})
	env := newTestEnv(t, mux)
	require.NoError(t, env.creds.Save("tok-stored"))

	// simulate process restart: a fresh session rehydrates from the store
	session := NewSession(env.api, env.creds, env.registry, env.history)

	assert.True(t, session.ValidateSession(context.Background()))
	assert.Equal(t, "Ada Lovelace", session.UserName())
}

func TestValidateSessionWithoutToken(t *testing.T) {
	env := newTestEnv(t, http.NewServeMux())
	assert.False(t, env.session.ValidateSession(context.Background()))
}

func TestValidateSessionExpiredTokenSkipsNetwork(t *testing.T) {
	var calls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeData(w, http.StatusOK, map[string]any{"user": testUser()})
	})
	env := newTestEnv(t, mux)
	require.NoError(t, env.creds.Save(signedToken(t, -time.Hour)))

	session := NewSession(env.api, env.creds, env.registry, env.history)

	assert.False(t, session.ValidateSession(context.Background()))
	assert.Equal(t, int64(0), calls.Load(), "an already-expired token needs no round trip")
	assert.False(t, session.IsAuthenticated())
}

func TestValidateSessionRotatedSecret(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
	})
	env := newTestEnv(t, mux)
	require.NoError(t, env.creds.Save(signedToken(t, time.Hour)))

	session := NewSession(env.api, env.creds, env.registry, env.history)

	// the token parses fine locally but the server no longer accepts it
	assert.False(t, session.ValidateSession(context.Background()))
	assert.False(t, session.IsAuthenticated())

	stored, err := env.creds.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestClearError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	})
	env := newTestEnv(t, mux)

	env.session.Login(context.Background(), "ada@example.com", "wrong")
	require.NotEmpty(t, env.session.Err())

	env.session.ClearError()
	assert.Empty(t, env.session.Err())
}
