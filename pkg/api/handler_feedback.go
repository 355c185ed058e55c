package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/promptopt/pkg/catalog/pattern"
	"github.com/codeready-toolchain/promptopt/pkg/optimizer"
)

// Feedback handles POST /feedback, recording one human decision against a
// pattern's applied or deferred rewrite, per §3's Feedback decision and
// §4.8's calibration update.
func (s *Server) Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &optimizer.InvalidRequestError{Field: "body", Reason: err.Error()})
		return
	}

	decision := pattern.Decision(req.Decision)
	switch decision {
	case pattern.DecisionAccept, pattern.DecisionReject, pattern.DecisionModify:
	default:
		writeError(c, &optimizer.InvalidRequestError{Field: "decision", Reason: "must be one of accept, reject, modify"})
		return
	}

	err := s.patterns.RecordFeedback(c.Request.Context(), pattern.Feedback{
		PatternID:       req.PatternID,
		SessionID:       req.SessionID,
		OriginalText:    req.OriginalText,
		OptimizedText:   req.OptimizedText,
		Decision:        decision,
		UserAlternative: req.UserAlternative,
		ContextBefore:   req.ContextBefore,
		ContextAfter:    req.ContextAfter,
	})
	if err != nil {
		writeError(c, &optimizer.ConfigurationError{Reason: "failed to record feedback", Err: err})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
