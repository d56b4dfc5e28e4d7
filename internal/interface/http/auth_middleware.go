package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminTokenHeader = "X-Admin-Token"

// adminMiddleware guards operator endpoints with a static token. An empty
// token leaves them open, which is meant for local development only.
func adminMiddleware(token string) gin.HandlerFunc {
	token = strings.TrimSpace(token)
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		provided := c.GetHeader(adminTokenHeader)
		if provided == "" {
			if bearer, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
				provided = strings.TrimSpace(bearer)
			}
		}
		if provided == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing admin token", nil))
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			abortWithError(c, NewHTTPError(http.StatusForbidden, "forbidden", "invalid admin token", nil))
			return
		}
		c.Next()
	}
}
