package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"docarchive/internal/shared/server/respond"
	"docarchive/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope and logs the stack with
// the document being handled, if any.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			documentID, _ := c.Get("documentId")
			telemetry.Error("http.panic", map[string]any{
				"request_id":  RequestIDFromContext(c),
				"error":       fmt.Sprint(rec),
				"stack":       string(debug.Stack()),
				"method":      c.Request.Method,
				"route":       c.FullPath(),
				"document_id": documentID,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
			c.Abort()
		}()
		c.Next()
	}
}
