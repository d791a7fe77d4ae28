package api

import (
	"database/sql"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/erazemk/donations/internal/auth"
	"github.com/erazemk/donations/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB     *sql.DB
	Tokens *auth.Tokens
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login handles POST /auth/v1/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		zerolog.Ctx(r.Context()).Warn().Str("email", req.Email).Msg("login failed")
		jsonError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, _, err := h.Tokens.Issue(user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Int64("login_user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	jsonResponse(w, r, http.StatusOK, loginResponse{Token: token, Role: user.Role})
}

// Logout handles POST /auth/v1/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeServiceError(w, r, err)
		return
	}

	jsonResponse(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}
