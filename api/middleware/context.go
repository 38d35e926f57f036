package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caseflowhq/mailroom/internal/utils"
)

// CustomContextMiddleware propagates the firm and acting user from request
// headers into the request context. The firm header is mandatory; every
// endpoint under /v1 is firm-scoped.
func CustomContextMiddleware(appSource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		firmID := c.GetHeader("X-FIRM-ID")
		if firmID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "X-FIRM-ID header is required"})
			c.Abort()
			return
		}

		ctx := utils.WithCustomContext(c.Request.Context(), &utils.CustomContext{
			AppSource: appSource,
			Tenant:    firmID,
			UserId:    c.GetHeader("X-USER-ID"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
