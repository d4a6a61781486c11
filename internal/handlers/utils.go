package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shelternet/apiserver/internal/auth"
	"github.com/shelternet/apiserver/internal/services"
	"github.com/shelternet/apiserver/internal/store"
)

type contextKey string

const contextAuthKey contextKey = "authctx"

// ErrorResponse is the JSON shape of every error reply. Fields and Args
// are present only for validation failures.
type ErrorResponse struct {
	Error  string         `json:"error"`
	Fields []string       `json:"fields,omitempty"`
	Args   map[string]any `json:"args,omitempty"`
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func authContext(ctx context.Context) auth.Context {
	if actx, ok := ctx.Value(contextAuthKey).(auth.Context); ok {
		return actx
	}
	return auth.Context{}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps the service error kinds onto status codes:
// validation 400, authentication 401, permission 403, not found 404.
// Anything else is a 500 with the fallback message.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  validationErr.Error(),
			Fields: validationErr.Fields,
			Args:   validationErr.Args,
		})
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s", param)
	}
	return id, nil
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = 1
	limit = 20

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("invalid page")
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, errors.New("invalid limit")
		}
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit, (page - 1) * limit, nil
}
