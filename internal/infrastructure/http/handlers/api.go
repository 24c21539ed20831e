// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	appErrors "github.com/richardjr822/food-findr/pkg/errors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing left to do but drop it
		return
	}
}

// writeErrorJSON writes an error envelope with the given status
func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   message,
	})
}

// writeAppError maps an application error onto its HTTP status and envelope.
// Terminal pipeline outcomes carry a 200 status by design; everything else is
// a failure envelope.
func writeAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr, ok := err.(*appErrors.AppError)
	if !ok {
		logger.Error("unhandled error", zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("code", string(appErr.Code)),
			zap.Error(appErr),
		)
	}

	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   appErr.Message,
		Message: appErr.Details,
	})
}

// queryInt parses an integer query parameter, falling back on absence
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// queryBool parses a boolean query parameter
func queryBool(r *http.Request, name string) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return false
	}
	return value
}
