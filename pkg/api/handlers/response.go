package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flightblender/coordination-engine/pkg/blendererrors"
)

// writeJSON writes v as a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func healthyResponse(data any) map[string]any {
	return map[string]any{"status": "healthy", "data": data}
}

func unhealthyResponse(reason string) map[string]any {
	return map[string]any{"status": "unhealthy", "reason": reason}
}

func unhealthyResponseWithData(data any) map[string]any {
	return map[string]any{"status": "unhealthy", "data": data}
}

type errorBody struct {
	Error string `json:"error"`
}

func BadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: message})
}

func NotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: message})
}

func Conflict(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusConflict, errorBody{Error: message})
}

func Unauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: message})
}

func Forbidden(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusForbidden, errorBody{Error: message})
}

func InternalServerError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: message})
}

// writeError maps a blendererrors.CoordinationError to its HTTP status code.
// Unrecognized errors are treated as internal errors.
func writeError(w http.ResponseWriter, err error) {
	var coordErr *blendererrors.CoordinationError
	if !errors.As(err, &coordErr) {
		InternalServerError(w, err.Error())
		return
	}

	switch coordErr.Code {
	case blendererrors.ErrNotFound:
		NotFound(w, coordErr.Message)
	case blendererrors.ErrAlreadyExists, blendererrors.ErrConflict, blendererrors.ErrDSSRejected:
		Conflict(w, coordErr.Message)
	case blendererrors.ErrInvalidArgument, blendererrors.ErrInvalidTransition:
		BadRequest(w, coordErr.Message)
	case blendererrors.ErrAuthRequired:
		Unauthorized(w, coordErr.Message)
	case blendererrors.ErrPermissionDenied:
		Forbidden(w, coordErr.Message)
	default:
		InternalServerError(w, coordErr.Message)
	}
}
