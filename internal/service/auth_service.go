package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stratton-prime/certexam-backend/internal/config"
	"github.com/stratton-prime/certexam-backend/internal/exam"
	"github.com/stratton-prime/certexam-backend/internal/model"
)

// TokenType distinguishes examinee vs admin tokens.
type TokenType string

const (
	TokenTypeExaminee TokenType = "examinee"
	TokenTypeAdmin    TokenType = "admin"
)

// Claims carries the identity the host portal vouches for. Examinee tokens
// also carry the report routing fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType      TokenType `json:"token_type"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	HierarchicalID string    `json:"hierarchical_id,omitempty"`
	ManagerName    string    `json:"manager_name,omitempty"`
	ManagerEmail   string    `json:"manager_email,omitempty"`
}

// Examinee converts examinee claims into the engine's identity.
func (c *Claims) Examinee() model.Examinee {
	return model.Examinee{
		Email:          exam.NormalizeIdentity(c.Email),
		FullName:       c.FullName,
		HierarchicalID: c.HierarchicalID,
		ManagerName:    c.ManagerName,
		ManagerEmail:   c.ManagerEmail,
	}
}

// AuthService signs and verifies the HS256 tokens shared with the host portal.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// IssueExamineeToken signs a token for one examinee.
func (s *AuthService) IssueExamineeToken(e model.Examinee) (string, error) {
	if exam.NormalizeIdentity(e.Email) == "" {
		return "", errors.New("examinee email is required")
	}
	return s.sign(Claims{
		TokenType:      TokenTypeExaminee,
		Email:          exam.NormalizeIdentity(e.Email),
		FullName:       e.FullName,
		HierarchicalID: e.HierarchicalID,
		ManagerName:    e.ManagerName,
		ManagerEmail:   e.ManagerEmail,
	}, e.Email)
}

// IssueAdminToken signs a token for the results dashboard.
func (s *AuthService) IssueAdminToken(email string) (string, error) {
	return s.sign(Claims{TokenType: TokenTypeAdmin, Email: exam.NormalizeIdentity(email)}, email)
}

func (s *AuthService) sign(claims Claims, subject string) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   exam.NormalizeIdentity(subject),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Email == "" {
		return nil, errors.New("token has no email")
	}

	return claims, nil
}
