package chatstream

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/overmind-app/overmind/internal/aiclient"
	"github.com/overmind-app/overmind/internal/apperr"
)

// MockGateway implements chatstream.Gateway.
type MockGateway struct {
	mock.Mock
	chunks []string
}

func (m *MockGateway) Stream(ctx context.Context, provider string, req aiclient.Request, emit func(chunk string) error) error {
	args := m.Called(ctx, provider, req)
	if err := args.Error(0); err != nil {
		return err
	}
	for _, chunk := range m.chunks {
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return nil
}

func TestChatStreamHandler_RelaysChunks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gateway := &MockGateway{chunks: []string{"안녕", "하세요!"}}
	gateway.On("Stream", mock.Anything, "claude", mock.Anything).Return(nil)

	handler := New(logger, gateway)
	req := httptest.NewRequest(http.MethodPost, "/ai/api/req/stream",
		strings.NewReader(`{"provider":"claude","prompt":"인사해줘"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "data: 안녕\n\n")
	assert.Contains(t, body, "data: 하세요!\n\n")
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))
}

func TestChatStreamHandler_MultilineChunkStaysOneEvent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gateway := &MockGateway{chunks: []string{"첫째 줄\n둘째 줄"}}
	gateway.On("Stream", mock.Anything, "openai", mock.Anything).Return(nil)

	handler := New(logger, gateway)
	req := httptest.NewRequest(http.MethodPost, "/ai/api/req/stream",
		strings.NewReader(`{"provider":"openai","prompt":"hi"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// Both lines belong to the same event: data: lines back to back, one
	// blank line after the last.
	assert.Contains(t, w.Body.String(), "data: 첫째 줄\ndata: 둘째 줄\n\n")
}

func TestChatStreamHandler_UpstreamFailureRidesStream(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gateway := &MockGateway{}
	gateway.On("Stream", mock.Anything, "claude", mock.Anything).Return(
		apperr.Service(http.StatusGatewayTimeout, apperr.CodeAIServiceTimeout, "AI service timeout", nil))

	handler := New(logger, gateway)
	req := httptest.NewRequest(http.MethodPost, "/ai/api/req/stream",
		strings.NewReader(`{"provider":"claude","prompt":"hi"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// Headers are already committed, so the status stays 200 and the
	// failure arrives as a stream frame instead.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "data: [ERROR] AI_5001\n\n")
	assert.NotContains(t, w.Body.String(), "[DONE]")
}

func TestChatStreamHandler_InvalidProvider(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(logger, &MockGateway{})
	req := httptest.NewRequest(http.MethodPost, "/ai/api/req/stream",
		strings.NewReader(`{"provider":"mistral","prompt":"hi"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported value")
}
