package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/richardjr822/food-findr/internal/infrastructure/monitoring"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
	appErrors "github.com/richardjr822/food-findr/pkg/errors"
)

// stubGenerationService returns a scripted result or error
type stubGenerationService struct {
	result  *inbound.TurnResult
	err     error
	lastCmd inbound.GenerateTurnCommand
}

func (s *stubGenerationService) GenerateTurn(ctx context.Context, cmd inbound.GenerateTurnCommand) (*inbound.TurnResult, error) {
	s.lastCmd = cmd
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testMetrics(t *testing.T) *monitoring.MetricsCollector {
	return monitoring.NewMetricsCollectorWith(prometheus.NewRegistry(), zaptest.NewLogger(t))
}

func authenticatedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), "user_id", "user-1")
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	var envelope APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestGenerateTurnHandler(t *testing.T) {
	t.Run("SuccessfulGeneration_ShouldReturnEnvelope", func(t *testing.T) {
		stub := &stubGenerationService{result: &inbound.TurnResult{
			Outcome: inbound.OutcomeGenerated,
			ModelMessage: &inbound.MessageDTO{
				ID:   "m2",
				Role: "model",
				RecipeSnapshot: &inbound.RecipeSnapshotDTO{
					Title: "Chicken Adobo",
				},
			},
		}}
		h := NewGenerationAPIHandlers(stub, testMetrics(t), zaptest.NewLogger(t))

		rec := httptest.NewRecorder()
		h.GenerateTurn(rec, authenticatedRequest("POST", "/api/v1/generate",
			`{"thread_id": "t1", "text": "adobo recipe", "diet": ["keto"]}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		assert.True(t, envelope.Success)
		assert.Equal(t, "Recipe generated successfully", envelope.Message)

		// The owner comes from the token, never the body
		assert.Equal(t, "user-1", stub.lastCmd.OwnerID)
		assert.Equal(t, "t1", stub.lastCmd.ThreadID)
		assert.Equal(t, []string{"keto"}, stub.lastCmd.Diet)
	})

	t.Run("TerminalOutcome_ShouldStillBe200", func(t *testing.T) {
		stub := &stubGenerationService{result: &inbound.TurnResult{
			Outcome: inbound.OutcomeScopeRejected,
			Reason:  "request mentions react",
		}}
		h := NewGenerationAPIHandlers(stub, testMetrics(t), zaptest.NewLogger(t))

		rec := httptest.NewRecorder()
		h.GenerateTurn(rec, authenticatedRequest("POST", "/api/v1/generate",
			`{"text": "fix my react app"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec)
		assert.True(t, envelope.Success)
		assert.Equal(t, "No recipe was generated", envelope.Message)
	})

	t.Run("ParseError_ShouldBe502", func(t *testing.T) {
		stub := &stubGenerationService{err: appErrors.NewParseError(errors.New("no json"))}
		h := NewGenerationAPIHandlers(stub, testMetrics(t), zaptest.NewLogger(t))

		rec := httptest.NewRecorder()
		h.GenerateTurn(rec, authenticatedRequest("POST", "/api/v1/generate",
			`{"text": "adobo recipe"}`))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		envelope := decodeEnvelope(t, rec)
		assert.False(t, envelope.Success)
		assert.NotEmpty(t, envelope.Error)
	})

	t.Run("Unauthenticated_ShouldBe401", func(t *testing.T) {
		h := NewGenerationAPIHandlers(&stubGenerationService{}, testMetrics(t), zaptest.NewLogger(t))

		req := httptest.NewRequest("POST", "/api/v1/generate", strings.NewReader(`{"text": "x"}`))
		rec := httptest.NewRecorder()
		h.GenerateTurn(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("InvalidJSON_ShouldBe400", func(t *testing.T) {
		h := NewGenerationAPIHandlers(&stubGenerationService{}, testMetrics(t), zaptest.NewLogger(t))

		rec := httptest.NewRecorder()
		h.GenerateTurn(rec, authenticatedRequest("POST", "/api/v1/generate", `{broken`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("OversizedText_ShouldFailValidation", func(t *testing.T) {
		h := NewGenerationAPIHandlers(&stubGenerationService{}, testMetrics(t), zaptest.NewLogger(t))

		body, err := json.Marshal(map[string]string{"text": strings.Repeat("x", 3000)})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		h.GenerateTurn(rec, authenticatedRequest("POST", "/api/v1/generate", string(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
