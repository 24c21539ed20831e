package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/richardjr822/food-findr/internal/infrastructure/http/middleware"
	"github.com/richardjr822/food-findr/internal/infrastructure/monitoring"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
)

// GenerationAPIHandlers handles recipe generation requests
type GenerationAPIHandlers struct {
	generation inbound.GenerationService
	metrics    *monitoring.MetricsCollector
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewGenerationAPIHandlers creates a new generation API handlers instance
func NewGenerationAPIHandlers(
	generation inbound.GenerationService,
	metrics *monitoring.MetricsCollector,
	logger *zap.Logger,
) *GenerationAPIHandlers {
	return &GenerationAPIHandlers{
		generation: generation,
		metrics:    metrics,
		validate:   validator.New(),
		logger:     logger,
	}
}

// GenerateTurnRequest represents a generation turn request
type GenerateTurnRequest struct {
	ThreadID string                 `json:"thread_id" validate:"omitempty,max=64"`
	Text     string                 `json:"text" validate:"max=2000"`
	MealType string                 `json:"meal_type" validate:"omitempty,max=50"`
	Diet     []string               `json:"diet" validate:"omitempty,dive,max=50"`
	History  []inbound.HistoryEntry `json:"history" validate:"omitempty,dive"`
}

// GenerateTurn handles POST /api/v1/generate
func (h *GenerationAPIHandlers) GenerateTurn(w http.ResponseWriter, r *http.Request) {
	userID, exists := middleware.GetUserIDFromContext(r.Context())
	if !exists {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req GenerateTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	h.logger.Info("generation turn request",
		zap.String("user_id", userID),
		zap.String("thread_id", req.ThreadID),
	)

	result, err := h.generation.GenerateTurn(r.Context(), inbound.GenerateTurnCommand{
		OwnerID:  userID,
		ThreadID: req.ThreadID,
		UserText: req.Text,
		MealType: req.MealType,
		Diet:     req.Diet,
		History:  req.History,
	})
	if err != nil {
		h.metrics.RecordGenerationTurn("error")
		writeAppError(w, h.logger, err)
		return
	}

	h.metrics.RecordGenerationTurn(string(result.Outcome))

	message := "Recipe generated successfully"
	if result.Outcome != inbound.OutcomeGenerated {
		message = "No recipe was generated"
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
		Message: message,
	})
}
