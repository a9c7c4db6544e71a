// Package config loads EngineConfig from environment variables and
// optional .env/YAML files, following the teacher's pattern of reading
// os.Getenv directly in main rather than through a generic config
// framework (see cmd/bud/main.go's BUD_SERVICE/DEBUG reads).
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// PrecisionMode selects a C6 preset.
type PrecisionMode string

const (
	PrecisionDefault    PrecisionMode = ""
	PrecisionStrict     PrecisionMode = "strict"
	PrecisionPermissive PrecisionMode = "permissive"
)

// EngineConfig is the environment-derived configuration consumed by the
// pipeline orchestrator (C16) and its stages, per spec section 6.
type EngineConfig struct {
	EntityFilterEnabled bool
	EntityMinConfidence float64
	EntityMinLength     int
	PrecisionMode       PrecisionMode
	RelationMinConfidence float64
	DeduplicationEnabled  bool

	// LLM enrichment fields are carried for interface completeness only;
	// the core never constructs or calls an LLM collaborator itself.
	LLMEnabled bool
	LLMModel   string
	LLMHost    string
}

// LoadDotEnv loads a .env file if present, matching cmd/bud/main.go's use
// of godotenv.Load. Missing files are not an error.
func LoadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// Load builds an EngineConfig from the current environment, applying the
// defaults spec section 6 specifies.
func Load() EngineConfig {
	cfg := EngineConfig{
		EntityFilterEnabled:   true,
		EntityMinConfidence:   0.7,
		EntityMinLength:       1,
		PrecisionMode:         PrecisionDefault,
		RelationMinConfidence: 0.65,
		DeduplicationEnabled:  true,
	}

	if v := os.Getenv("ENTITY_FILTER_ENABLED"); v != "" {
		cfg.EntityFilterEnabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ARES_ENTITY_FILTER"); v == "off" || v == "0" {
		cfg.EntityFilterEnabled = false
	}
	if v := os.Getenv("ENTITY_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.EntityMinConfidence = f
		}
	}
	if v := os.Getenv("ENTITY_MIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EntityMinLength = n
		}
	}
	switch strings.ToLower(os.Getenv("ARES_PRECISION_MODE")) {
	case "strict":
		cfg.PrecisionMode = PrecisionStrict
	case "permissive":
		cfg.PrecisionMode = PrecisionPermissive
	}
	if v := os.Getenv("ARES_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RelationMinConfidence = f
		}
	}
	if v := os.Getenv("DEDUPLICATION_ENABLED"); v != "" {
		cfg.DeduplicationEnabled = !strings.EqualFold(v, "false")
	}
	cfg.LLMEnabled = strings.EqualFold(os.Getenv("ARES_LLM_ENABLED"), "true")
	cfg.LLMModel = os.Getenv("ARES_LLM_MODEL")
	cfg.LLMHost = os.Getenv("ARES_LLM_HOST")

	return cfg
}
