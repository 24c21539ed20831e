package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/richardjr822/food-findr/internal/infrastructure/http/middleware"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
)

// ThreadAPIHandlers handles conversation thread requests
type ThreadAPIHandlers struct {
	conversations inbound.ConversationService
	logger        *zap.Logger
}

// NewThreadAPIHandlers creates a new thread API handlers instance
func NewThreadAPIHandlers(conversations inbound.ConversationService, logger *zap.Logger) *ThreadAPIHandlers {
	return &ThreadAPIHandlers{
		conversations: conversations,
		logger:        logger,
	}
}

// ReplaceThreadRequest represents a bulk thread sync request
type ReplaceThreadRequest struct {
	Messages []inbound.MessageDTO `json:"messages"`
}

// ListThreads handles GET /api/v1/threads
func (h *ThreadAPIHandlers) ListThreads(w http.ResponseWriter, r *http.Request) {
	userID, exists := middleware.GetUserIDFromContext(r.Context())
	if !exists {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	list, err := h.conversations.ListThreads(r.Context(), userID, inbound.ThreadListQuery{
		Page:        queryInt(r, "page", 1),
		PageSize:    queryInt(r, "page_size", 20),
		SuccessOnly: queryBool(r, "success_only"),
	})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    list,
		Message: "Threads retrieved successfully",
	})
}

// GetThread handles GET /api/v1/threads/{threadID}
func (h *ThreadAPIHandlers) GetThread(w http.ResponseWriter, r *http.Request) {
	userID, exists := middleware.GetUserIDFromContext(r.Context())
	if !exists {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	thread, err := h.conversations.GetThread(r.Context(), userID, chi.URLParam(r, "threadID"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    thread,
		Message: "Thread retrieved successfully",
	})
}

// ReplaceThread handles PUT /api/v1/threads/{threadID}/messages
func (h *ThreadAPIHandlers) ReplaceThread(w http.ResponseWriter, r *http.Request) {
	userID, exists := middleware.GetUserIDFromContext(r.Context())
	if !exists {
		writeErrorJSON(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req ReplaceThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	thread, err := h.conversations.ReplaceThread(r.Context(), userID, chi.URLParam(r, "threadID"), req.Messages)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    thread,
		Message: "Thread saved successfully",
	})
}
