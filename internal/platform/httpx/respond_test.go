package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/receiptly/dashboard/internal/upstream"
)

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: order is required", ErrValidation), http.StatusUnprocessableEntity},
		{"no connectivity", upstream.ErrNoConnectivity, http.StatusServiceUnavailable},
		{"rate limited", upstream.ErrRateLimited, http.StatusTooManyRequests},
		{"exhausted rate limit", fmt.Errorf("still rate limited after 3 retries: %w", errors.Join(upstream.ErrServer, upstream.ErrRateLimited)), http.StatusTooManyRequests},
		{"unauthorized", upstream.ErrUnauthorized, http.StatusBadGateway},
		{"server", upstream.ErrServer, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			var detail ProblemDetail
			if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
				t.Fatalf("decode problem: %v", err)
			}
			if detail.Status != tc.want {
				t.Fatalf("problem status = %d, want %d", detail.Status, tc.want)
			}
		})
	}
}
