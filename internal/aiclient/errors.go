package aiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/overmind-app/overmind/internal/apperr"
)

// httpError is a non-2xx answer from a provider API.
type httpError struct {
	provider   string
	statusCode int
	body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.provider, e.statusCode, e.body)
}

// classify maps transport failures onto the AI_5xxx error family:
// deadline → 504, connection refused / DNS → 503, bad upstream answer → 500.
func classify(provider string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Service(http.StatusGatewayTimeout, apperr.CodeAIServiceTimeout,
			"AI service timeout", map[string]any{"provider": provider})
	}

	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return apperr.Service(http.StatusInternalServerError, apperr.CodeAIServiceError,
			"AI service error", map[string]any{
				"provider":    provider,
				"status_code": httpErr.statusCode,
			})
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return apperr.Service(http.StatusServiceUnavailable, apperr.CodeAIServiceUnavailable,
			"AI service unavailable", map[string]any{"provider": provider})
	}

	return apperr.Service(http.StatusInternalServerError, apperr.CodeAIServiceError,
		"AI service error", map[string]any{"provider": provider})
}
