package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/promptopt/pkg/optimizer"
)

// writeError maps a pipeline error to §6's wire error taxonomy: a stable
// kind string, a human-readable message, and an HTTP status.
func writeError(c *gin.Context, err error) {
	kind, status := classify(err)
	c.JSON(status, errorResponse{Kind: kind, Message: err.Error()})
}

func classify(err error) (string, int) {
	var unknownTokenizer *optimizer.UnknownTokenizerError
	var invalidRequest *optimizer.InvalidRequestError
	var configErr *optimizer.ConfigurationError

	switch {
	case errors.As(err, &unknownTokenizer):
		return "UnknownTokenizer", http.StatusBadRequest
	case errors.As(err, &invalidRequest):
		return "InvalidRequest", http.StatusBadRequest
	case errors.As(err, &configErr):
		return "ConfigurationError", http.StatusInternalServerError
	case errors.Is(err, optimizer.ErrCancelled):
		return "Cancelled", http.StatusRequestTimeout
	case errors.Is(err, optimizer.ErrTimeout):
		return "Timeout", http.StatusGatewayTimeout
	default:
		return "InternalError", http.StatusInternalServerError
	}
}
