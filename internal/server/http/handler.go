package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/server/auth"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const maxBodyBytes = 1 << 20

// userService is the subset of services.UserService the REST surface needs.
type userService interface {
	Register(ctx context.Context, in models.CreateUserInput) (*models.AuthResult, error)
	Create(ctx context.Context, in models.CreateUserInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Me(ctx context.Context, caller auth.Identity) (*models.User, error)
	List(ctx context.Context, page, limit int) (*models.UserList, error)
	Update(ctx context.Context, caller auth.Identity, id string, p users.Patch) (*models.User, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
}

// pinger reports database reachability for the readiness probe.
type pinger interface {
	PingContext(ctx context.Context) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updateRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type readyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Handler serves the /api/v1 routes.
type Handler struct {
	users   userService
	db      pinger
	version string
	logger  logging.Logger
}

func NewHandler(us userService, db pinger, version string, l logging.Logger) *Handler {
	return &Handler{users: us, db: db, version: version, logger: l}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return badRequest(err)
	}
	return nil
}

func badRequest(err error) error {
	return &requestError{cause: err}
}

// requestError marks an undecodable body or query as a validation failure.
type requestError struct{ cause error }

func (e *requestError) Error() string { return "invalid request: " + e.cause.Error() }

func (e *requestError) Is(target error) bool { return target == common.ErrValidation }

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn(r.Context(), "readiness check failed", "error", err)
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, readyResponse{Status: "not ready", Database: "disconnected"})
		return
	}
	render.JSON(w, r, readyResponse{Status: "ready", Database: "connected"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.CreateUserInput
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, res)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.users.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, res)
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(err)
	}
	return n, nil
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	list, err := h.users.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, list)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.CreateUserInput
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	u, err := h.users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, u.Public())
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	u, err := h.users.Me(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, u.Public())
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, u.Public())
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in updateRequest
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, _ := auth.IdentityFromContext(r.Context())
	u, err := h.users.Update(r.Context(), id, chi.URLParam(r, "id"), users.Patch{
		Email: in.Email, Username: in.Username, FullName: in.FullName, IsActive: in.IsActive,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, u.Public())
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	if err := h.users.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	render.NoContent(w, r)
}
