package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// recordingAudit captures entries passed to Record.
type recordingAudit struct {
	mu      sync.Mutex
	entries []models.TransactionLog
}

func (a *recordingAudit) Record(_ context.Context, entry *models.TransactionLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, *entry)
}

func (a *recordingAudit) GetTransactionLogs(context.Context, string) (*models.TransactionLogReport, error) {
	return &models.TransactionLogReport{}, nil
}

func (a *recordingAudit) all() []models.TransactionLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.TransactionLog(nil), a.entries...)
}

func testStack(handler http.Handler, audit *recordingAudit) http.Handler {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = testSecret
	return applyMiddleware(handler, common.NewSilentLogger(), cfg, audit)
}

func TestUserFromClaims(t *testing.T) {
	tests := []struct {
		name     string
		claims   jwt.MapClaims
		wantID   string
		wantRole string
		wantOK   bool
	}{
		{"sub claim", jwt.MapClaims{"sub": "u1", "role": "user"}, "u1", "user", true},
		{"legacy userId claim", jwt.MapClaims{"userId": "u2", "role": "ADMIN"}, "u2", "admin", true},
		{"missing role defaults to user", jwt.MapClaims{"sub": "u3"}, "u3", "user", true},
		{"no identity", jwt.MapClaims{"role": "admin"}, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, ok := userFromClaims(tt.claims)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantID, uc.UserID)
				assert.Equal(t, tt.wantRole, uc.Role)
			}
		})
	}
}

func TestBearerToken_PopulatesUserContext(t *testing.T) {
	var got *common.UserContext
	handler := testStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = common.UserContextFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}), &recordingAudit{})

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "admin-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "admin-1", got.UserID)
	assert.True(t, got.IsAdmin())
}

func TestBearerToken_RejectsBadTokens(t *testing.T) {
	expired := signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()})

	wrongKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
	forged, err := wrongKey.SignedString([]byte("someone-else"))
	require.NoError(t, err)

	noSubject := signToken(t, jwt.MapClaims{"role": "admin"})

	for name, token := range map[string]string{
		"garbage":    "not-a-jwt",
		"expired":    expired,
		"forged":     forged,
		"no subject": noSubject,
	} {
		t.Run(name, func(t *testing.T) {
			called := false
			handler := testStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}), &recordingAudit{})

			req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid token")
		})
	}
}

func TestRequireUser_MissingToken(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/portfolio", "", nil)

	requireStatus(t, rec, http.StatusUnauthorized)
	assert.Equal(t, "Authentication token required", decode[ErrorResponse](t, rec).Error)
}

func TestCorrelationID(t *testing.T) {
	var fromCtx string
	handler := testStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = common.CorrelationIDFromContext(r.Context())
	}), &recordingAudit{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Correlation-ID"))
	assert.Equal(t, "req-123", fromCtx)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Len(t, rec.Header().Get("X-Correlation-ID"), 8)
}

func TestRecovery(t *testing.T) {
	handler := testStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), &recordingAudit{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolio", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	audit := &recordingAudit{}
	handler := testStack(http.NotFoundHandler(), audit)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/products", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, audit.all())
}

func TestAudit_RecordsRequests(t *testing.T) {
	audit := &recordingAudit{}
	handler := testStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/investments" {
			WriteErrorWithCode(w, http.StatusBadRequest, "Investment amount is less than the minimum of 1000", "invalid_amount")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	}), audit)

	token := userToken(t, "user-7")
	for _, path := range []string{"/api/investments", "/api/portfolio?x=1", "/api/health"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := audit.all()
	require.Len(t, entries, 2)

	assert.Equal(t, "user-7", entries[0].UserID)
	assert.Equal(t, http.MethodPost, entries[0].Method)
	assert.Equal(t, "/api/investments", entries[0].Endpoint)
	assert.Equal(t, http.StatusBadRequest, entries[0].StatusCode)
	assert.Equal(t, "Investment amount is less than the minimum of 1000", entries[0].ErrorMessage)

	assert.Equal(t, "/api/portfolio?x=1", entries[1].Endpoint)
	assert.Equal(t, http.StatusOK, entries[1].StatusCode)
	assert.Empty(t, entries[1].ErrorMessage)
}

func TestAudit_RecordsRejectedTokenWithoutUser(t *testing.T) {
	audit := &recordingAudit{}
	handler := testStack(http.NotFoundHandler(), audit)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	req.Header.Set("Authorization", "Bearer nope")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].UserID)
	assert.Equal(t, http.StatusUnauthorized, entries[0].StatusCode)
	assert.Equal(t, "Invalid token", entries[0].ErrorMessage)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "bad", errorMessage([]byte(`{"error":"bad","code":"invalid_input"}`)))
	assert.Equal(t, "legacy", errorMessage([]byte(`{"message":"legacy"}`)))
	assert.Equal(t, "plain text", errorMessage([]byte("plain text\n")))
	assert.Empty(t, errorMessage(nil))
}
