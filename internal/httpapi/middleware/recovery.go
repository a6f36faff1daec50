package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/mycollege/chatbot-engine/pkg/zlog"
)

// Recovery turns a handler panic into the fixed internal-error body. Clients
// never see a stack trace.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				zlog.Errorf("panic recovered on %s %s: %v\n%s",
					c.Request.Method, c.Request.URL.Path, rec, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"response": "Sorry, I couldn't process your request due to an internal error.",
				})
			}
		}()
		c.Next()
	}
}
