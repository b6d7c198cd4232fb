package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/auth"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
)

type Authenticator interface {
	Login(ctx context.Context, login, password string) (*auth.Session, error)
	Register(ctx context.Context, name, email, password string) (*auth.Session, error)
	UpdateProfile(ctx context.Context, user domain.User, upd auth.ProfileUpdate) (*auth.Session, error)
}

type AuthHandler struct {
	auth    Authenticator
	timeout time.Duration
}

func NewAuthHandler(a Authenticator, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:    a,
		timeout: timeout,
	}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponseDTO struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type ProfileResponseDTO struct {
	User domain.User `json:"user"`
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	h.signIn(w, r, sess, http.StatusOK, "Welcome back, "+sess.User.Name+"!")
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	h.signIn(w, r, sess, http.StatusCreated, "Account created successfully!")
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := getSession(r.Context())
	if err := s.SignOut(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	s.Toaster.Notify(notify.KindInfo, "Logged out")
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ProfileResponseDTO{User: *getUser(r.Context())})
}

// PUT /api/v1/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req auth.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.auth.UpdateProfile(ctx, *getUser(r.Context()), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	h.signIn(w, r, sess, http.StatusOK, "Profile updated")
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, sess *auth.Session, status int, greeting string) {
	s := getSession(r.Context())
	if err := s.SignIn(r.Context(), sess.User, sess.Token); err != nil {
		handleError(w, r, err)
		return
	}
	s.Toaster.Notify(notify.KindSuccess, greeting)
	respondJSON(w, status, AuthResponseDTO{
		User:      sess.User,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	})
}
