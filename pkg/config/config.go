// Package config loads the service shell's request-default configuration
// from the environment, in the style of pkg/database's own env loader.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/codeready-toolchain/promptopt/pkg/catalog/concept"
	"github.com/codeready-toolchain/promptopt/pkg/optimizer"
	"github.com/codeready-toolchain/promptopt/pkg/protect"
)

// Defaults holds the §6 request-option defaults applied when a caller
// omits them, plus the shell's own operational knobs.
type Defaults struct {
	TokenizerID         string
	ConfidenceThreshold float64
	Aggressive          bool
	SelectionPolicy     optimizer.SelectionPolicy
	ProtectionPolicy    protect.Policy
	DirectiveFormat     optimizer.DirectiveFormat
	ConceptTier         concept.Tier
	RequestTimeout      time.Duration
}

// LoadDefaultsFromEnv reads OPTIMIZER_* environment variables, falling
// back to §6's documented defaults.
func LoadDefaultsFromEnv() (Defaults, error) {
	threshold, err := parseFloat(getEnvOrDefault("OPTIMIZER_CONFIDENCE_THRESHOLD", "0.85"))
	if err != nil {
		return Defaults{}, fmt.Errorf("invalid OPTIMIZER_CONFIDENCE_THRESHOLD: %w", err)
	}
	if threshold < 0 || threshold > 1 {
		return Defaults{}, fmt.Errorf("OPTIMIZER_CONFIDENCE_THRESHOLD must be within [0,1], got %v", threshold)
	}

	aggressive, err := strconv.ParseBool(getEnvOrDefault("OPTIMIZER_AGGRESSIVE", "false"))
	if err != nil {
		return Defaults{}, fmt.Errorf("invalid OPTIMIZER_AGGRESSIVE: %w", err)
	}

	requestTimeout, err := time.ParseDuration(getEnvOrDefault("OPTIMIZER_REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return Defaults{}, fmt.Errorf("invalid OPTIMIZER_REQUEST_TIMEOUT: %w", err)
	}

	return Defaults{
		TokenizerID:         getEnvOrDefault("OPTIMIZER_TOKENIZER_ID", "simple"),
		ConfidenceThreshold: threshold,
		Aggressive:          aggressive,
		SelectionPolicy:     optimizer.SelectionPolicy(getEnvOrDefault("OPTIMIZER_SELECTION_POLICY", string(optimizer.SelectionMinTokens))),
		ProtectionPolicy:    protect.Policy(getEnvOrDefault("OPTIMIZER_PROTECTION_POLICY", string(protect.PolicyConservative))),
		DirectiveFormat:     optimizer.DirectiveFormat(getEnvOrDefault("OPTIMIZER_DIRECTIVE_FORMAT", string(optimizer.DirectiveNone))),
		ConceptTier:         concept.Tier(getEnvOrDefault("OPTIMIZER_CONCEPT_TIER", string(concept.TierNormalized))),
		RequestTimeout:      requestTimeout,
	}, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
