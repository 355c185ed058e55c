package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/promptopt/pkg/catalog/concept"
	"github.com/codeready-toolchain/promptopt/pkg/optimizer"
	"github.com/codeready-toolchain/promptopt/pkg/protect"
)

// callbackClient delivers the webhook variant's best-effort callback POST.
var callbackClient = &http.Client{Timeout: 5 * time.Second}

// Optimize handles POST /optimize, §6's synchronous request/response and
// its webhook variant.
func (s *Server) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &optimizer.InvalidRequestError{Field: "body", Reason: err.Error()})
		return
	}

	ctx := c.Request.Context()
	timeout := s.requestTimeout
	if timeout == 0 {
		timeout = s.defaults.RequestTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tokenizerID := req.TokenizerID
	if tokenizerID == "" {
		tokenizerID = s.defaults.TokenizerID
	}
	selectionPolicy := req.SelectionPolicy
	if selectionPolicy == "" {
		selectionPolicy = string(s.defaults.SelectionPolicy)
	}
	protectionPolicy := req.ProtectionPolicy
	if protectionPolicy == "" {
		protectionPolicy = string(s.defaults.ProtectionPolicy)
	}
	directiveFormat := req.DirectiveFormat
	if directiveFormat == "" {
		directiveFormat = string(s.defaults.DirectiveFormat)
	}
	conceptTier := req.ConceptTier
	if conceptTier == "" {
		conceptTier = string(s.defaults.ConceptTier)
	}
	confidenceThreshold := req.ConfidenceThreshold
	if confidenceThreshold == 0 {
		confidenceThreshold = s.defaults.ConfidenceThreshold
	}

	result, err := s.optimizer.Optimize(ctx, optimizer.Request{
		Prompt:              req.Prompt,
		TokenizerID:         tokenizerID,
		OutputLanguage:      req.OutputLanguage,
		ConfidenceThreshold: confidenceThreshold,
		Aggressive:          req.Aggressive,
		SelectionPolicy:     optimizer.SelectionPolicy(selectionPolicy),
		ProtectionPolicy:    protect.Policy(protectionPolicy),
		DirectiveFormat:     optimizer.DirectiveFormat(directiveFormat),
		ConceptTier:         concept.Tier(conceptTier),
		CallbackURL:         req.CallbackURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response := toResponse(result)
	c.JSON(http.StatusOK, response)

	if req.CallbackURL != "" {
		go deliverCallback(req.CallbackURL, response)
	}
}

func deliverCallback(url string, response OptimizeResponse) {
	body, err := json.Marshal(response)
	if err != nil {
		slog.Warn("failed to marshal callback body", "url", url, "error", err)
		return
	}

	resp, err := callbackClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Warn("callback delivery failed", "url", url, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		slog.Warn("callback endpoint returned non-2xx", "url", url, "status", resp.StatusCode)
	}
}
