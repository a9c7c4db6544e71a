package config

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/mrfishcar/ares/internal/schema"
)

// patternFile is the on-disk YAML shape for an optional caller-supplied
// pattern library (spec section 3's "Pattern" type) and blocked-token
// list (C6's "Blocked-token list from config").
type patternFile struct {
	Patterns []struct {
		ID         string   `yaml:"id"`
		Type       string   `yaml:"type"`
		Template   string   `yaml:"template"`
		Regex      string   `yaml:"regex"`
		Confidence float64  `yaml:"confidence"`
		Examples   []string `yaml:"examples"`
	} `yaml:"patterns"`
	BlockedTokens []string `yaml:"blocked_tokens"`
}

// LoadPatternLibrary reads a YAML pattern-library file from path. A
// missing file yields an empty, non-error result so the library remains
// fully optional per spec section 3.
func LoadPatternLibrary(path string) ([]*schema.Pattern, []string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, nil, err
	}

	patterns := make([]*schema.Pattern, 0, len(pf.Patterns))
	for _, p := range pf.Patterns {
		if _, err := regexp.Compile(p.Regex); err != nil {
			continue // invalid regex is skipped, not fatal (declined, not thrown)
		}
		patterns = append(patterns, &schema.Pattern{
			ID:         p.ID,
			Type:       schema.EntityType(p.Type),
			Template:   p.Template,
			Regex:      p.Regex,
			Confidence: p.Confidence,
			Examples:   p.Examples,
		})
	}

	return patterns, pf.BlockedTokens, nil
}
