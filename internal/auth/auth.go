package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidToken    = errors.New("invalid token")
)

// AdminUserID identifies the configured administrator, who has no record in
// the user directory.
const AdminUserID = "admin-1"

const DefaultTokenTTL = 7 * 24 * time.Hour

// UserDirectory is the remote user store.
type UserDirectory interface {
	FindUsersByEmail(ctx context.Context, email string) ([]domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) (*domain.User, error)
}

type Config struct {
	Secret   []byte
	TokenTTL time.Duration
	// AdminLogins may sign in as administrator with the password matching
	// AdminPasswordHash (bcrypt). An empty hash disables admin sign-in.
	AdminLogins       []string
	AdminPasswordHash string
	AdminName         string
}

// Session is a signed-in user plus the token that proves it.
type Session struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type Service struct {
	users UserDirectory
	cfg   Config
	now   func() time.Time
}

func NewService(users UserDirectory, cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.AdminName == "" {
		cfg.AdminName = "Store Admin"
	}
	return &Service{users: users, cfg: cfg, now: time.Now}, nil
}

// Login checks the configured administrator first, then the user directory.
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: login and password are required", ErrInvalidInput)
	}

	if s.isAdmin(login, password) {
		return s.Issue(domain.User{
			ID:     AdminUserID,
			Name:   s.cfg.AdminName,
			Email:  login,
			Role:   domain.RoleAdmin,
			Avatar: AvatarURL(s.cfg.AdminName),
		})
	}

	users, err := s.users.FindUsersByEmail(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}

	user := users[0]
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return nil, ErrInvalidPassword
	}
	return s.Issue(user)
}

// Register creates a regular user. The role is always user, whatever the
// caller asked for.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}

	existing, err := s.users.FindUsersByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if len(existing) > 0 || slices.Contains(s.cfg.AdminLogins, email) {
		return nil, ErrUserExists
	}

	created, err := s.users.CreateUser(ctx, domain.User{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleUser,
		Avatar:   AvatarURL(name),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	created.Role = domain.RoleUser
	return s.Issue(*created)
}

// ProfileUpdate carries the editable profile fields; empty fields keep
// their current value.
type ProfileUpdate struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Avatar string `json:"avatar"`
}

func (p ProfileUpdate) fields() map[string]any {
	fields := make(map[string]any)
	if v := strings.TrimSpace(p.Name); v != "" {
		fields["name"] = v
	}
	if v := strings.TrimSpace(p.Email); v != "" {
		fields["email"] = v
	}
	if v := strings.TrimSpace(p.Phone); v != "" {
		fields["phone"] = v
	}
	if v := strings.TrimSpace(p.Avatar); v != "" {
		fields["avatar"] = v
	}
	return fields
}

// UpdateProfile saves the changes remotely, merges them into user and
// reissues the session. The administrator only exists locally, so its
// changes are never sent.
func (s *Service) UpdateProfile(ctx context.Context, user domain.User, upd ProfileUpdate) (*Session, error) {
	fields := upd.fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	if user.ID != AdminUserID {
		if _, err := s.users.UpdateUser(ctx, user.ID, fields); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	if v, ok := fields["name"].(string); ok {
		user.Name = v
	}
	if v, ok := fields["email"].(string); ok {
		user.Email = v
	}
	if v, ok := fields["phone"].(string); ok {
		user.Phone = v
	}
	if v, ok := fields["avatar"].(string); ok {
		user.Avatar = v
	}
	return s.Issue(user)
}

func (s *Service) isAdmin(login, password string) bool {
	if s.cfg.AdminPasswordHash == "" || !slices.Contains(s.cfg.AdminLogins, login) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
}

// AvatarURL is the generated avatar used when a user has none.
func AvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=0D8ABC&color=fff"
}
