package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stratton-prime/certexam-backend/internal/response"
	"github.com/stratton-prime/certexam-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

// RequireExamineeJWT validates an examinee JWT from the Authorization header.
func RequireExamineeJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, service.TokenTypeExaminee, response.ErrExamineeAccessOnly, headerToken)
}

// RequireAdminJWT validates an admin JWT from the Authorization header.
func RequireAdminJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, service.TokenTypeAdmin, response.ErrAdminAccessOnly, headerToken)
}

// RequireExamineeWSAuth validates an examinee JWT from the query param ?token=...
// Browsers cannot set headers on WebSocket upgrade requests.
func RequireExamineeWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, service.TokenTypeExaminee, response.ErrExamineeAccessOnly, queryToken)
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

var errNoToken = errors.New("token required")

func requireToken(
	authService *service.AuthService,
	want service.TokenType,
	wrongType response.ErrCode,
	extract func(*gin.Context) (string, error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := extract(c)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if claims.TokenType != want {
			response.AbortFail(c, http.StatusForbidden, wrongType)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

func headerToken(c *gin.Context) (string, error) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
		return parts[1], nil
	}
	return "", errNoToken
}

func queryToken(c *gin.Context) (string, error) {
	if tok := c.Query("token"); tok != "" {
		return tok, nil
	}
	return "", errNoToken
}
