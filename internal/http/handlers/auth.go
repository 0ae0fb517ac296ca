package handlers

import (
	"net/http"
	"time"

	"nexus/internal/domain"
	"nexus/internal/middleware"
)

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"required,oneof=investor startup"`
	DisplayName string `json:"display_name" validate:"omitempty,max=120"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required"`
}

type profileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=120"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userDTO   `json:"user"`
}

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !a.decode(w, r, &req) {
		return
	}
	role, err := domain.ParseUserRole(req.Role)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ident, err := a.Identity.Register(r.Context(), req.Email, req.Password, role, req.DisplayName)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, userDTO{
		ID:          ident.UserID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		Role:        string(ident.Role),
	})
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}
	token, sess, err := a.Identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User: userDTO{
			ID:          sess.UserID,
			Email:       sess.Email,
			DisplayName: sess.DisplayName,
			Role:        string(sess.Role),
		},
	})
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Identity.Logout(r.Context(), middleware.BearerToken(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PasswordReset always answers 202 for a well formed request so callers
// cannot probe which emails are registered.
func (a *App) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Identity.ResetPassword(r.Context(), req.Email); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	u, err := a.Users.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserDTO(u))
}

func (a *App) UpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req profileRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Users.UpdateUserProfile(r.Context(), sess.UserID, req.DisplayName); err != nil {
		a.fail(w, r, err)
		return
	}
	u, err := a.Users.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserDTO(u))
}
