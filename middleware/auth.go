package middleware

import (
	"net/http"
	"strings"

	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userId"

type TokenParser interface {
	ParseToken(raw string) (uint, error)
}

// RequireAuth resolves the bearer token to a tenant id. Handlers read it back with
// CurrentUserID and never look at credentials themselves.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			utils.AbortJSONError(c, http.StatusUnauthorized, utils.KindUnauthorized, "Authentication required")
			return
		}

		userID, err := tokens.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			utils.AbortJSONError(c, http.StatusUnauthorized, utils.KindUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// SetUserID is used by tests and internal callers that already resolved the tenant.
func SetUserID(c *gin.Context, id uint) {
	c.Set(userIDKey, id)
}
