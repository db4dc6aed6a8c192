package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// maxCapturedBody bounds how much of an error response the audit trail keeps.
const maxCapturedBody = 4 << 10

// responseWriter wraps http.ResponseWriter to capture status code, bytes
// written and, for error responses, the start of the body.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	errorBody    bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode >= 400 && rw.errorBody.Len() < maxCapturedBody {
		rest := maxCapturedBody - rw.errorBody.Len()
		if len(b) < rest {
			rest = len(b)
		}
		rw.errorBody.Write(b[:rest])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// wrapResponseWriter reuses an outer capture when one is already installed.
func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// recoveryMiddleware catches panics and returns 500.
func recoveryMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("panic", fmt.Sprintf("%v", rec)).
						Str("path", r.URL.Path).
						Msg("Panic recovered in HTTP handler")
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware adds CORS headers for the web client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Correlation-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// correlationIDMiddleware extracts or generates a correlation ID.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corrID := r.Header.Get("X-Request-ID")
		if corrID == "" {
			corrID = r.Header.Get("X-Correlation-ID")
		}
		if corrID == "" {
			corrID = uuid.New().String()[:8]
		}
		w.Header().Set("X-Correlation-ID", corrID)
		next.ServeHTTP(w, r.WithContext(common.WithCorrelationID(r.Context(), corrID)))
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrapResponseWriter(w)

			next.ServeHTTP(rw, r)

			dur := time.Since(start)
			corrID := w.Header().Get("X-Correlation-ID")

			event := logger.Trace()
			if rw.statusCode >= 500 {
				event = logger.Error()
			} else if rw.statusCode >= 400 {
				event = logger.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", rw.statusCode).
				Int("bytes", rw.bytesWritten).
				Dur("duration", dur).
				Str("correlation_id", corrID).
				Msg("HTTP request")
		})
	}
}

// validateJWT parses an HMAC-signed token and returns its claims.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// userFromClaims reads the caller identity. Tokens carry the id as "sub" or,
// for tokens issued by the legacy auth service, "userId".
func userFromClaims(claims jwt.MapClaims) (*common.UserContext, bool) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		sub, _ = claims["userId"].(string)
	}
	if sub == "" {
		return nil, false
	}
	role, _ := claims["role"].(string)
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = models.RoleUser
	}
	return &common.UserContext{UserID: sub, Role: role}, true
}

// bearerTokenMiddleware validates an Authorization: Bearer header when present
// and populates UserContext from the token claims. Requests without the header
// pass through; protected routes reject them in requireUser.
func bearerTokenMiddleware(config *common.Config) func(http.Handler) http.Handler {
	secret := []byte(config.Auth.JWTSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			_, claims, err := validateJWT(tokenString, secret)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			uc, ok := userFromClaims(claims)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			if subject := auditSubjectFromContext(r.Context()); subject != nil {
				subject.userID = uc.UserID
			}
			next.ServeHTTP(w, r.WithContext(common.WithUserContext(r.Context(), uc)))
		})
	}
}

// auditSubject carries the caller identity back out to the audit middleware,
// which runs outside token validation so rejected tokens are recorded too.
type auditSubject struct {
	userID string
}

type auditSubjectKey struct{}

func auditSubjectFromContext(ctx context.Context) *auditSubject {
	subject, _ := ctx.Value(auditSubjectKey{}).(*auditSubject)
	return subject
}

// auditMiddleware records one transaction log entry per API request. The
// entry is written after the response so it carries the final status.
func auditMiddleware(recorder interfaces.TransactionLogService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if recorder == nil || !isAudited(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			subject := &auditSubject{}
			rw := wrapResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), auditSubjectKey{}, subject)))

			entry := &models.TransactionLog{
				UserID:     subject.userID,
				Method:     r.Method,
				Endpoint:   r.URL.RequestURI(),
				StatusCode: rw.statusCode,
			}
			if entry.IsError() {
				entry.ErrorMessage = errorMessage(rw.errorBody.Bytes())
			}
			recorder.Record(context.WithoutCancel(r.Context()), entry)
		})
	}
}

func isAudited(path string) bool {
	if !strings.HasPrefix(path, "/api/") {
		return false
	}
	switch path {
	case "/api/health", "/api/version":
		return false
	}
	return true
}

// errorMessage extracts the message from an error body, falling back to the raw text.
func errorMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return string(body)
}

// requireUser adapts a handler that needs an authenticated caller.
func (s *Server) requireUser(h func(http.ResponseWriter, *http.Request, *common.UserContext)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uc := common.UserContextFromContext(r.Context())
		if uc == nil || uc.UserID == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			WriteError(w, http.StatusUnauthorized, "Authentication token required")
			return
		}
		h(w, r, uc)
	}
}

// requireAdmin writes 403 and returns false unless the caller is an administrator.
func requireAdmin(w http.ResponseWriter, uc *common.UserContext) bool {
	if !uc.IsAdmin() {
		WriteError(w, http.StatusForbidden, "Forbidden: Admin access required")
		return false
	}
	return true
}

// applyMiddleware wraps a handler with the middleware stack.
func applyMiddleware(handler http.Handler, logger *common.Logger, config *common.Config, recorder interfaces.TransactionLogService) http.Handler {
	// Apply in reverse order (last applied = first executed)
	handler = bearerTokenMiddleware(config)(handler)
	handler = auditMiddleware(recorder)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = correlationIDMiddleware(handler)
	handler = corsMiddleware(handler)
	handler = recoveryMiddleware(logger)(handler)
	return handler
}
