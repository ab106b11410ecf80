// Package httputil writes JSON responses for the HTTP handlers.
package httputil

import (
	"bytes"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"unifiedchat-backend/internal/models"
)

// RespondJSON encodes payload before writing the header, so an encoding failure still
// produces a well-formed 500 instead of a truncated body.
func RespondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		zap.L().Error("failed to encode JSON response", zap.Error(err))
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(models.ErrorResponse{Error: "Failed to encode response"})
		statusCode = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// RespondError writes a JSON error response with the given status code and message.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
