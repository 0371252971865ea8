package respond

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error kinds are machine-readable rejection reasons clients can branch on.
const (
	KindUnauthenticated      = "unauthenticated"
	KindTokenExpired         = "token_expired"
	KindTokenInvalid         = "token_invalid"
	KindStaleAccount         = "stale_account"
	KindForbidden            = "forbidden"
	KindSubscriptionRequired = "subscription_required"
	KindAccountDisabled      = "account_disabled"
	KindInvalidCredentials   = "invalid_credentials"
	KindValidation           = "validation_failed"
	KindBadRequest           = "bad_request"
	KindNotFound             = "not_found"
	KindConflict             = "conflict"
	KindRateLimited          = "rate_limited"
	KindInternal             = "internal_error"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	write(w, r, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes a rejection carrying a machine-readable kind.
func Error(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	write(w, r, status, Envelope{Code: status, Error: kind, Message: message})
}

// Internal writes the generic 500 response. Details belong in the logs only.
func Internal(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusInternalServerError, KindInternal, "internal server error")
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}

func write(w http.ResponseWriter, r *http.Request, status int, payload Envelope) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}
