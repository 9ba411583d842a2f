package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/handler/httperr"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const ctxCallerKey = "caller"

var errMissingToken = errs.New("access token required")

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, errMissingToken, "Access token required", nil)
			return
		}

		caller, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, httperr.CodeUnauthenticated, err, "Invalid or expired token", nil)
			return
		}

		c.Set(ctxCallerKey, caller)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and never aborts.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		if caller, err := m.tokenValidator.ValidateToken(token); err == nil {
			c.Set(ctxCallerKey, caller)
		}
		c.Next()
	}
}

func GetCaller(c *gin.Context) (party.Identity, bool) {
	v, exists := c.Get(ctxCallerKey)
	if !exists {
		return party.Identity{}, false
	}
	caller, ok := v.(party.Identity)
	return caller, ok && !caller.IsZero()
}
