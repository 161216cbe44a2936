package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request id, then
// returned to the client as the coded message from core.MapError.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheetorders/internal/core"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	RunID   string `json:"run_id,omitempty"`
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrRunInProgress):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrSheetNotConfigured), errors.Is(err, core.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and writes the user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	writeError(w, r, err, statusCode, "")
}

// respondRunError reports a failed or rejected run.
func (s *Server) respondRunError(w http.ResponseWriter, r *http.Request, result *core.RunResult, err error) {
	status := statusFor(err)
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}

	runID := ""
	if result != nil {
		runID = result.RunID
	}
	writeError(w, r, err, status, runID)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, statusCode int, runID string) {
	userMsg := core.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
		RunID:   runID,
	})
}
