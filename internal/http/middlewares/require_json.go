package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kumarshivu12/advanced-todo/internal/http/response"
)

// RequireJSON rejects write requests whose body is not JSON. Bodyless posts
// such as logout pass through.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength == 0 {
				break
			}
			ct := c.GetHeader("Content-Type")
			// allow "application/json; charset=utf-8"
			if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				response.Abort(c, response.UnsupportedMediaType("Content-Type must be application/json"))
				return
			}
		}
		c.Next()
	}
}
