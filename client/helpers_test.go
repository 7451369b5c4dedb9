package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// writeData emits the server's success envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": data,
		"meta": map[string]any{"request_id": "test"},
	})
}

// writeError emits the server's error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
		"meta":  map[string]any{"request_id": "test"},
	})
}

type testEnv struct {
	server   *httptest.Server
	api      *Client
	creds    *CredentialStore
	session  *Session
	registry *MedicationRegistry
	history  *HistoryCache
}

// newTestEnv wires a full client stack against a stub backend, with the
// credential file parked in a temp dir.
func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds, err := NewCredentialStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, err)

	api := New(server.URL)
	registry := NewMedicationRegistry(api)
	history := NewHistoryCache(api)
	session := NewSession(api, creds, registry, history)

	return &testEnv{
		server:   server,
		api:      api,
		creds:    creds,
		session:  session,
		registry: registry,
		history:  history,
	}
}

func testUser() map[string]any {
	return map[string]any{
		"id":         1,
		"email":      "ada@example.com",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"name":       "Ada Lovelace",
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
}

func authData(token string) map[string]any {
	return map[string]any{
		"user":   testUser(),
		"tokens": map[string]any{"access_token": token},
	}
}

func medData(id int, drug string) map[string]any {
	return map[string]any{
		"id":         id,
		"drug_name":  drug,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
}

func interactionData(id, drug, food, severity string) map[string]any {
	return map[string]any{
		"id":             id,
		"drug_name":      drug,
		"food_name":      food,
		"food_category":  "test",
		"severity":       severity,
		"effect":         "effect",
		"recommendation": "avoid",
	}
}

// signedToken mints an HS256 token whose exp lies at the given offset.
func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ada@example.com",
		"exp":   time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
