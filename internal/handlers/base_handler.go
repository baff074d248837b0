package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/coursemarket/backend/internal/apperrors"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondAppError translates a service error to an HTTP response.
// Validation errors carry the offending field so the UI can attach the
// message to the right input; everything untyped renders as a plain 500.
func (h *BaseHandler) RespondAppError(w http.ResponseWriter, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindUnauthorized:
		h.RespondError(w, http.StatusUnauthorized, err.Error())
	case apperrors.KindForbidden:
		h.RespondError(w, http.StatusForbidden, err.Error())
	case apperrors.KindNotFound:
		h.RespondError(w, http.StatusNotFound, err.Error())
	case apperrors.KindConflict:
		h.RespondError(w, http.StatusConflict, err.Error())
	case apperrors.KindValidation:
		h.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
			"field": apperrors.FieldOf(err),
		})
	case apperrors.KindExternal:
		h.Logger.Error("external collaborator failed", zap.Error(err))
		h.RespondError(w, http.StatusBadGateway, "payment could not be processed, please try again")
	default:
		h.Logger.Error("unhandled service error", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
