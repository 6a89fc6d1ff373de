package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps service errors onto HTTP statuses and stable codes.
func StatusFor(err error) (int, string) {
	var qe *dashboard.QueryError
	switch {
	case errors.As(err, &qe):
		switch qe.Kind {
		case dashboard.KindServer:
			return http.StatusBadGateway, "upstream_error"
		case dashboard.KindNoResponse:
			return http.StatusGatewayTimeout, "upstream_timeout"
		default:
			return http.StatusUnprocessableEntity, "invalid_input"
		}
	case errors.Is(err, dashboard.ErrWidgetNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, dashboard.ErrRefreshInProgress):
		return http.StatusConflict, "refresh_in_progress"
	case errors.Is(err, errBadFilter):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, dashboard.ErrValidation),
		errors.Is(err, dashboard.ErrInvalidChartType),
		errors.Is(err, dashboard.ErrJoinPathMissing):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, dashboard.ErrMissingReporting):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// Describe returns the status, code and client-facing message for err.
// Unclassified errors get a generic message.
func Describe(err error) (int, string, string) {
	status, code := StatusFor(err)
	message := err.Error()
	var qe *dashboard.QueryError
	if errors.As(err, &qe) {
		message = qe.UserMessage()
	}
	if status == http.StatusInternalServerError {
		message = "An unexpected error occurred"
	}
	return status, code, message
}

func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := Describe(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), "dashboard request failed", "error", err, "status", status, "path", r.URL.Path)
	} else {
		h.Logger.WarnContext(r.Context(), "dashboard request rejected", "error", err, "status", status, "path", r.URL.Path)
	}
	h.writeError(w, r, status, code, message)
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeJSON(w, r, status, ErrorResponse{Code: code, Message: message})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.ErrorContext(r.Context(), "failed to encode response", "error", err, "status", status)
	}
}
