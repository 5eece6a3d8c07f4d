package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"league-app-go/internal/domain/shared"
	"league-app-go/pkg/logger"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message)
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, payload)
}

func DecodeJSON(r *http.Request, dst interface{}) error {
	return decodeJSON(r, dst)
}

// WriteServiceError maps an error kind to its status and logs it at the level
// the kind deserves. op is the "area.operation" prefix of the log message.
func WriteServiceError(w http.ResponseWriter, log logger.Logger, op string, err error, args ...any) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		log.BusinessError(op+": not found", err, args...)
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrInvalidArgument):
		log.BusinessError(op+": invalid argument", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		log.BusinessError(op+": forbidden", err, args...)
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, shared.ErrConflict):
		log.BusinessError(op+": conflict", err, args...)
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		log.BusinessError(op+": invalid state", err, args...)
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, shared.ErrUnsupportedChangeType):
		log.Critical(op+": unsupported change type", append([]any{"error", err}, args...)...)
		writeError(w, http.StatusInternalServerError, "unsupported_change_type", err.Error())
	default:
		log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// PathID returns the named URL parameter, or writes a 400 when it is not a
// valid entity id.
func PathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if err := shared.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return "", false
	}
	return id, true
}

// WriteInvalidJSON reports a body that could not be decoded.
func WriteInvalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
}

func WriteUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func ParseIntParam(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid int")
	}
	return parsed, nil
}

// Page reads limit and offset query parameters. Limit defaults to 50 and is capped at 200.
func Page(r *http.Request) (int, int, error) {
	limit, err := ParseIntParam(r.URL.Query().Get("limit"), 50)
	if err != nil {
		return 0, 0, fmt.Errorf("limit: %w", err)
	}
	if limit == 0 || limit > 200 {
		limit = 200
	}
	offset, err := ParseIntParam(r.URL.Query().Get("offset"), 0)
	if err != nil {
		return 0, 0, fmt.Errorf("offset: %w", err)
	}
	return limit, offset, nil
}

type ListResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
