package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/widgetkit/util"
)

const defaultMaxBodySize = 1 << 20

// BodySizeLimit caps request bodies at maxSize, e.g. "1MB" or "512KB".
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	limit := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
