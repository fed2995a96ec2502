package httpx

import (
	"errors"
	"net/http"

	"github.com/receiptly/dashboard/internal/upstream"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps domain and upstream errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, upstream.ErrNoConnectivity):
		Problem(w, http.StatusServiceUnavailable, "Upstream Unreachable", "the receipts API could not be reached")
	case errors.Is(err, upstream.ErrRateLimited):
		Problem(w, http.StatusTooManyRequests, "Rate Limited", "the receipts API is throttling requests")
	case errors.Is(err, upstream.ErrUnauthorized):
		Problem(w, http.StatusBadGateway, "Upstream Rejected Credentials", "")
	case errors.Is(err, upstream.ErrServer):
		Problem(w, http.StatusBadGateway, "Upstream Error", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
