package api

import (
	"database/sql"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/erazemk/donations/internal/auth"
	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Email          string `json:"email" validate:"required,email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Password       string `json:"password"`
	Role           string `json:"role" validate:"omitempty,oneof=admin user"`
	OrganizationID *int64 `json:"organizationId" validate:"omitempty,gt=0"`
}

// List handles GET /users/v1. With ?email= it returns the matching active
// user or 404.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		user, err := store.GetUserByEmail(r.Context(), h.DB, email)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if user == nil {
			jsonError(w, r, http.StatusNotFound, "user not found")
			return
		}
		jsonResponse(w, r, http.StatusOK, user)
		return
	}

	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, r, http.StatusOK, users)
}

// Create handles POST /users/v1. Users without a password are donors or
// agency contacts who never log in.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = model.RoleUser
	}

	var hash string
	if req.Password != "" {
		if err := model.ValidatePassword(req.Password); err != nil {
			jsonError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		var err error
		if hash, err = auth.HashPassword(req.Password); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	if req.OrganizationID != nil {
		org, err := store.GetOrganization(r.Context(), h.DB, *req.OrganizationID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if org == nil {
			jsonError(w, r, http.StatusBadRequest, "organization does not exist")
			return
		}
	}

	existing, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if existing != nil {
		jsonError(w, r, http.StatusConflict, "a user with this email already exists")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Email, req.FirstName, req.LastName, hash, req.Role, req.OrganizationID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Int64("new_user_id", user.ID).Str("role", user.Role).Msg("user created")
	jsonResponse(w, r, http.StatusCreated, user)
}
