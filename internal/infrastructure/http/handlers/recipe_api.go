package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/richardjr822/food-findr/internal/infrastructure/http/middleware"
	"github.com/richardjr822/food-findr/internal/infrastructure/monitoring"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
)

// RecipeAPIHandlers handles saved recipe requests
type RecipeAPIHandlers struct {
	recipes  inbound.RecipeService
	metrics  *monitoring.MetricsCollector
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRecipeAPIHandlers creates a new recipe API handlers instance
func NewRecipeAPIHandlers(
	recipes inbound.RecipeService,
	metrics *monitoring.MetricsCollector,
	logger *zap.Logger,
) *RecipeAPIHandlers {
	return &RecipeAPIHandlers{
		recipes:  recipes,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger,
	}
}

// SaveRecipeRequest represents a recipe materialization request
type SaveRecipeRequest struct {
	ThreadID  string `json:"thread_id" validate:"required,max=64"`
	MessageID string `json:"message_id" validate:"required,max=64"`

	// Optional overrides applied over the message snapshot
	Title        *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	Image        *string  `json:"image,omitempty"`
	TimeMinutes  *int     `json:"time_minutes,omitempty" validate:"omitempty,min=0"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
}

// UnsaveRecipeRequest represents an unsave request
type UnsaveRecipeRequest struct {
	ThreadID  string `json:"thread_id" validate:"required,max=64"`
	MessageID string `json:"message_id" validate:"required,max=64"`
}

// SaveRecipe handles POST /api/v1/recipes/save
func (h *RecipeAPIHandlers) SaveRecipe(w http.ResponseWriter, r *http.Request) {
	userID, exists := middleware.GetUserIDFromContext(r.Context())
	if !exists {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req SaveRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	saved, err := h.recipes.SaveFromMessage(r.Context(), inbound.SaveRecipeCommand{
		OwnerID:      userID,
		ThreadID:     req.ThreadID,
		MessageID:    req.MessageID,
		Title:        req.Title,
		Image:        req.Image,
		TimeMinutes:  req.TimeMinutes,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
	})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	h.metrics.RecordRecipeSaved()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    saved,
		Message: "Recipe saved successfully",
	})
}

// UnsaveRecipe handles POST /api/v1/recipes/unsave
func (h *RecipeAPIHandlers) UnsaveRecipe(w http.ResponseWriter, r *http.Request) {
	userID, exists := middleware.GetUserIDFromContext(r.Context())
	if !exists {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req UnsaveRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.recipes.Unsave(r.Context(), userID, req.ThreadID, req.MessageID); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Recipe unsaved successfully",
	})
}

// ListSavedRecipes handles GET /api/v1/recipes
func (h *RecipeAPIHandlers) ListSavedRecipes(w http.ResponseWriter, r *http.Request) {
	userID, exists := middleware.GetUserIDFromContext(r.Context())
	if !exists {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	list, err := h.recipes.ListSaved(r.Context(), userID, inbound.RecipeListQuery{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
	})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    list,
		Message: "Saved recipes retrieved successfully",
	})
}

// DeleteSavedRecipe handles DELETE /api/v1/recipes/{recipeID}
func (h *RecipeAPIHandlers) DeleteSavedRecipe(w http.ResponseWriter, r *http.Request) {
	userID, exists := middleware.GetUserIDFromContext(r.Context())
	if !exists {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.recipes.DeleteSaved(r.Context(), userID, chi.URLParam(r, "recipeID")); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	h.metrics.RecordRecipeDeleted()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Recipe deleted successfully",
	})
}
