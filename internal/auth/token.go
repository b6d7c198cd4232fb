package auth

import (
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	Avatar string      `json:"avatar,omitempty"`
	Phone  string      `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a session for u. The password never enters the token.
func (s *Service) Issue(u domain.User) (*Session, error) {
	u.Password = ""
	if u.Role != domain.RoleAdmin {
		u.Role = domain.RoleUser
	}

	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	c := claims{
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
		Phone:  u.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{User: u, Token: token, ExpiresAt: expires}, nil
}

// ParseToken validates the signature and expiry and returns the user the
// token was issued for.
func (s *Service) ParseToken(token string) (*domain.User, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &domain.User{
		ID:     c.Subject,
		Name:   c.Name,
		Email:  c.Email,
		Role:   c.Role,
		Avatar: c.Avatar,
		Phone:  c.Phone,
	}, nil
}
