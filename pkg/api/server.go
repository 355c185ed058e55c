// Package api is the thin HTTP service shell over the optimizer, per §6's
// "any transport binding is a thin adapter". It exposes /optimize,
// /feedback, and /healthz.
package api

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/promptopt/pkg/catalog/pattern"
	"github.com/codeready-toolchain/promptopt/pkg/config"
	"github.com/codeready-toolchain/promptopt/pkg/optimizer"
)

// Server wires the pipeline orchestrator and pattern catalog into a Gin
// router.
type Server struct {
	optimizer      *optimizer.Optimizer
	patterns       pattern.Store
	db             *sql.DB
	defaults       config.Defaults
	requestTimeout time.Duration
}

// NewServer builds a Server. requestTimeout bounds each /optimize call via
// the orchestrator's cancellation checks (§5); zero falls back to
// defaults.RequestTimeout, and no deadline is set only when both are zero.
func NewServer(opt *optimizer.Optimizer, patterns pattern.Store, db *sql.DB, defaults config.Defaults, requestTimeout time.Duration) *Server {
	return &Server{optimizer: opt, patterns: patterns, db: db, defaults: defaults, requestTimeout: requestTimeout}
}

// Router builds the Gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.GET("/healthz", s.Healthz)
	router.POST("/optimize", s.Optimize)
	router.POST("/feedback", s.Feedback)
	return router
}
