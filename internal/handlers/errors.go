package handlers

import (
	"errors"
	"net/http"

	"github.com/Werneck0live/pipeline-crm/internal/models"
	"github.com/Werneck0live/pipeline-crm/internal/utils"
)

// HTTPStatus maps the model error taxonomy to a response status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs once and renders {"error": ...}. Conflicts also carry the
// stored revision so the caller can reload. Internal errors hide details.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, event string, err error) {
	code := HTTPStatus(err)
	attrs := []any{"method", r.Method, "path", r.URL.Path, "status", code, "err", err}
	if code >= 500 {
		h.logger().Error(event, attrs...)
	} else {
		h.logger().Warn(event, attrs...)
	}

	body := map[string]any{"error": err.Error()}
	var ce *models.ConflictError
	if errors.As(err, &ce) {
		body["currentRevision"] = ce.CurrentRevision
		body["expectedRevision"] = ce.ExpectedRevision
	}
	if code == http.StatusInternalServerError {
		body["error"] = "internal error"
	}
	utils.WriteJSON(w, code, body)
}
