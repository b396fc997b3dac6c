package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/video-summarizer/internal/infra/config"
)

const corsMaxAge = "600"

// corsMiddleware answers preflights and echoes the caller's origin when it is allowed.
// Unknown origins get no Access-Control-Allow-Origin header so browsers block the response.
func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		headers := c.Writer.Header()
		headers.Add("Vary", "Origin")
		if origin, ok := allowedOrigin(c.GetHeader("Origin"), cfg.AllowedOrigins); ok {
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			headers.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			headers.Set("Access-Control-Max-Age", corsMaxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func allowedOrigin(origin string, allowed []string) (string, bool) {
	if len(allowed) == 0 {
		return "*", true
	}
	for _, candidate := range allowed {
		switch {
		case candidate == "*":
			return "*", true
		case origin != "" && strings.EqualFold(candidate, origin):
			return origin, true
		}
	}
	return "", false
}
