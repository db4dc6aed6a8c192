package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse acknowledges requests that return no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// StatusForKind maps a domain error kind to its HTTP status.
func StatusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.ErrorKindNotFound:
		return http.StatusNotFound
	case models.ErrorKindInvalidAmount, models.ErrorKindInvalidInput:
		return http.StatusBadRequest
	case models.ErrorKindInvalidState, models.ErrorKindWindowExpired:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err as a response. Domain errors keep their message
// and carry their kind as the code; anything else is logged and hidden.
func WriteServiceError(w http.ResponseWriter, logger *common.Logger, err error) {
	if kind := models.ErrorKindOf(err); kind != "" {
		WriteErrorWithCode(w, StatusForKind(kind), err.Error(), string(kind))
		return
	}
	logger.Error().Err(err).Msg("Request failed")
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// validator is implemented by request DTOs.
type validator interface {
	Validate() error
}

// DecodeJSON reads and decodes JSON from the request body into v, then runs
// v.Validate when v implements it.
// Returns false and writes a 400 error if decoding or validation fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), string(models.ErrorKindInvalidInput))
			return false
		}
	}
	return true
}

// PathParam extracts a path parameter from the URL path.
// For a pattern like /api/investments/{id}/cancel, calling
// PathParam(r, "/api/investments/", "/cancel") extracts the {id} part.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	// No suffix, return up to the next /
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
