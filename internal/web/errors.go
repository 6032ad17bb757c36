package web

// errors.go turns errors into JSON responses.
//
// The technical error is logged with the request id; the client receives the
// coded user message from core.NewUserError. Known client errors log at warn.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/csv2cypher/internal/core"
	"github.com/JonMunkholm/csv2cypher/internal/handler"
	"github.com/JonMunkholm/csv2cypher/internal/logging"
	"github.com/JonMunkholm/csv2cypher/internal/tabular"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var errNoFile = errors.New("no file provided")

// respondError logs err and writes its user message with a status derived
// from the error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	ue := core.NewUserError(err)

	log := logging.FromContext(r.Context())
	level := slog.LevelError
	if core.IsUserFacing(err) && status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	log.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", ue.Technical.Error(),
		"code", ue.User.Code,
	)

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	writeJSONStatus(w, status, ErrorResponse{
		Error:   ue.Error(),
		Message: ue.User.Message,
		Action:  ue.User.Action,
		Code:    ue.User.Code,
	})
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errNoFile), errors.Is(err, errInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, handler.ErrTooManyConversions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, core.ErrMissingFields),
		errors.Is(err, core.ErrDuplicateName),
		errors.Is(err, tabular.ErrNoHeader):
		return http.StatusUnprocessableEntity
	}

	var te *core.TranslationError
	if errors.As(err, &te) {
		// Remaining conversion failures are unreadable input.
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
