package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/gripinvest/internal/app"
	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/models"
)

const testSecret = "test-jwt-secret"

// newTestServer wires a full app on the in-memory backend with the book
// valuation model and no text generator, so responses are deterministic.
func newTestServer(t *testing.T) (*Server, *app.App) {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "memory"
	cfg.Clients.Gemini.APIKey = ""
	cfg.Auth.JWTSecret = testSecret
	cfg.Valuation.Model = "book"
	cfg.Valuation.Seed = 1

	a, err := app.New(cfg, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return NewServer(a), a
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func userToken(t *testing.T, userID string) string {
	return signToken(t, jwt.MapClaims{"sub": userID, "role": models.RoleUser})
}

func adminToken(t *testing.T, userID string) string {
	return signToken(t, jwt.MapClaims{"sub": userID, "role": "ADMIN"})
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

// do sends a request through the full middleware stack.
func do(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, jsonBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}

// productByName finds a seeded product through the API.
func productByName(t *testing.T, srv *Server, token, name string) models.Product {
	t.Helper()
	rec := do(t, srv, http.MethodGet, "/api/products", token, nil)
	requireStatus(t, rec, http.StatusOK)
	for _, p := range decode[[]models.Product](t, rec) {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not found", name)
	return models.Product{}
}
