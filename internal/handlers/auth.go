package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shelternet/apiserver/internal/auth"
	"github.com/shelternet/apiserver/internal/services"
	"github.com/shelternet/apiserver/types"
)

// AuthHandler provides account and session endpoints.
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService) {
	handler := NewAuthHandler(userService)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/me", handler.Me)
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/email", handler.UpdateEmail)
	})
}

// ResolveAuthContext resolves the request credential into an auth context
// before dispatch. The Authorization header value is passed to the
// resolver verbatim; there is no "Bearer" prefix handling. A missing
// header means an anonymous request, but a header that fails verification
// rejects the request outright, even on routes that never consult the
// identity.
func ResolveAuthContext(resolver *auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actx, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					writeError(w, http.StatusUnauthorized, err.Error())
					return
				}
				writeError(w, http.StatusInternalServerError, "failed to resolve credentials")
				return
			}

			ctx := context.WithValue(r.Context(), contextAuthKey, actx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.Create(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err, "failed to authenticate")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(authContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetUser returns a user by id.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateEmail replaces a user's email address. The caller must be
// authenticated.
func (h *AuthHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireUser(authContext(r.Context())); err != nil {
		writeServiceError(w, err, "unauthorized")
		return
	}

	id, err := parseID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.UpdateEmail(r.Context(), id, req.Email)
	if err != nil {
		writeServiceError(w, err, "failed to update email")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateEmailRequest struct {
	Email string `json:"email"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}
