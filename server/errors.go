package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aalemi-dev/kafka-gateway/apperr"
)

var (
	errNotFound         = apperr.NotFound("not_found", "Resource not found")
	errMethodNotAllowed = apperr.New(apperr.KindBadRequest, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
)

// errorBody is the JSON rendering of every failed request.
type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err. Errors that are not *apperr.Error are logged and
// hidden behind a 500 "unknown" response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	appErr, ok := apperr.As(err)
	switch {
	case ok:
	case errors.Is(err, context.DeadlineExceeded):
		appErr = apperr.GatewayTimeout("timeout", "Request timed out").WithCause(err)
	default:
		s.logError(ctx, "Unhandled request error", err, r)
		appErr = apperr.Internal("unknown", "Internal server error").WithCause(err)
	}

	if appErr.Status >= http.StatusInternalServerError && ok {
		s.logError(ctx, "Request failed", appErr, r)
	}
	if appErr.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="kafka-gateway"`)
	}
	writeJSON(w, appErr.Status, errorBody{Error: appErr.Code, Description: appErr.Message})
}

func (s *Server) logError(ctx context.Context, msg string, err error, r *http.Request) {
	if s.logger == nil {
		return
	}
	s.logger.ErrorWithContext(ctx, msg, err, map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
	})
}
