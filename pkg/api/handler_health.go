package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/promptopt/pkg/database"
	"github.com/codeready-toolchain/promptopt/pkg/version"
)

// Healthz handles GET /healthz, reporting database connectivity, pool
// status, and the build version.
func (s *Server) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := database.Health(ctx, s.db)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": status,
			"error":    err.Error(),
		})
		return
	}

	// A degraded pool (exhausted connections) still serves traffic, so it
	// reports 200 with its real status rather than 503.
	c.JSON(http.StatusOK, gin.H{
		"status":   status.Status,
		"database": status,
		"version":  version.Full(),
	})
}
