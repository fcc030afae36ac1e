package middleware

import (
	"net/http"

	"opsdash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a panic into an INTERNAL response. The panic value is logged and
// never sent to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				zerolog.Ctx(c.Request.Context()).Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				utils.AbortJSONError(c, http.StatusInternalServerError, utils.KindInternal, "Internal server error")
			}
		}()
		c.Next()
	}
}
