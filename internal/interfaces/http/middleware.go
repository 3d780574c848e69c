package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mbet-dev/fund-tracker/internal/application/service"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
)

const (
	principalKey   = "principal"
	bearerTokenKey = "bearerToken"
)

// authMiddleware resolves the bearer token to a principal and aborts
// unauthenticated requests.
func authMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		principal, err := authService.GetSession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired session",
			})
			return
		}

		c.Set(principalKey, principal)
		c.Set(bearerTokenKey, token)
		c.Next()
	}
}

// requireAdmin aborts requests whose principal is not an administrator.
// It must run after authMiddleware.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFrom(c)
		if principal == nil || !principal.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "administrator access required",
			})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func principalFrom(c *gin.Context) *entity.Principal {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, ok := value.(*entity.Principal)
	if !ok {
		return nil
	}
	return principal
}

func bearerTokenFrom(c *gin.Context) string {
	value, ok := c.Get(bearerTokenKey)
	if !ok {
		return ""
	}
	token, _ := value.(string)
	return token
}
