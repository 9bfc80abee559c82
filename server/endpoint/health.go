package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/widgetkit/component"
)

// HealthChecker reports the health of registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Health reports the aggregate status of the service. Any unhealthy
// component makes it 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := component.StatusHealthy
		var components []component.Health
		if checker != nil {
			components = checker(c.Request.Context())
		}
		for _, h := range components {
			if h.Status == component.StatusUnhealthy {
				status = component.StatusUnhealthy
				break
			}
			if h.Status == component.StatusDegraded {
				status = component.StatusDegraded
			}
		}

		code := http.StatusOK
		if status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": components,
		})
	}
}
