// Package entityfilter implements C6, the entity quality filter: the
// pipeline's first precision layer. It generalizes the teacher's
// postProcessEntityList noise/blocklist pass (internal/extract/deep.go)
// from a one-shot LLM-output cleanup into a tiered, configurable defense
// that every extracted entity candidate must pass before C5 profiling
// sees it.
package entityfilter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mrfishcar/ares/internal/config"
	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

// Features carries the signals the tiered filter needs beyond the raw
// entity: whether any mention had NER backing, whether the entity ever
// occurred outside sentence-initial position, and a token count for its
// canonical form.
type Features struct {
	Confidence        float64
	HasNERSupport     bool
	IsSentenceInitial bool
	OccursNonInitial  bool
	TokenCount        int
}

// Candidate is one entity awaiting the quality filter, paired with its
// extraction features.
type Candidate struct {
	Entity   *model.Entity
	Features Features
}

// Result is the filter's outcome: the surviving entities (each with its
// tier assigned) plus per-reason rejection counters for diagnostics.
type Result struct {
	Accepted []*model.Entity
	Reasons  map[string]int
}

func (r *Result) reject(reason string) {
	if r.Reasons == nil {
		r.Reasons = map[string]int{}
	}
	r.Reasons[reason]++
}

var (
	dateSignalRe  = regexp.MustCompile(`(?i)\d|january|february|march|april|may|june|july|august|september|october|november|december|monday|tuesday|wednesday|thursday|friday|saturday|sunday|spring|summer|autumn|fall|winter|century|decade|year|one|two|three|four|five|six|seven|eight|nine|ten`)
	fourDigitYear = regexp.MustCompile(`^\d{4}$`)
	allCapsRe     = regexp.MustCompile(`^[A-Z]{2,}$`)
	demonymRe     = regexp.MustCompile(`(?i)(an|ian|ese|ish|i)$`)
	verbLikeRe    = regexp.MustCompile(`(?i)(ing|ed)$`)
)

// Filter runs the full C6 pipeline over candidates: the two-first-names
// split first, then for each candidate the absolute rejections, the
// type-specific lexical sanity rules and the binary rules (confidence
// floor, generic and role words, DATE signal, strict-mode extras); every
// survivor is then assigned a tier. There is no separate tiered-only
// mode: when the filter is enabled the binary rules always apply. Spans
// belonging to rejected entities must be pruned by the caller, since
// spans are not modeled in this package.
func Filter(cfg config.EngineConfig, candidates []Candidate, blockedTokens []string) Result {
	var res Result
	if !cfg.EntityFilterEnabled {
		for _, c := range candidates {
			res.Accepted = append(res.Accepted, c.Entity)
		}
		return res
	}

	blocked := make(map[string]bool, len(blockedTokens))
	for _, t := range blockedTokens {
		blocked[strings.ToLower(t)] = true
	}

	for _, c := range expandTwoFirstNames(candidates) {
		if reason, ok := absoluteReject(c, blocked); ok {
			res.reject(reason)
			continue
		}
		if reason, ok := typeSpecificReject(c); ok {
			res.reject(reason)
			continue
		}
		if reason, ok := binaryReject(cfg, c); ok {
			res.reject(reason)
			continue
		}
		c.Entity.Tier = assignTier(c)
		res.Accepted = append(res.Accepted, c.Entity)
	}
	return res
}

// absoluteReject applies the rejections that hold regardless of mode:
// empty, too short, all-digit (except DATE), global stopword, pronoun,
// <70% alphabetic (except DATE), blocked tokens, and the proper-noun
// capitalization rule.
func absoluteReject(c Candidate, blocked map[string]bool) (string, bool) {
	name := strings.TrimSpace(c.Entity.Canonical)
	if name == "" {
		return "empty", true
	}
	if len(name) < 2 {
		return "too-short", true
	}
	lower := strings.ToLower(name)
	if blocked[lower] {
		return "blocked-token", true
	}
	if lexicon.IsStopWord(name) {
		return "stopword", true
	}
	if lexicon.IsPronoun(name) {
		return "pronoun", true
	}
	if c.Entity.Type != schema.Date && isAllDigit(name) {
		return "all-digit", true
	}
	if c.Entity.Type != schema.Date && alphabeticRatio(name) < 0.70 {
		return "low-alphabetic-ratio", true
	}
	if schema.ProperNounTypes[c.Entity.Type] && !beginsProper(name) {
		return "not-capitalized", true
	}
	return "", false
}

func isAllDigit(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != ' ' && r != ',' {
			return false
		}
	}
	return true
}

func alphabeticRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	alpha := 0
	total := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(alpha) / float64(total)
}

func beginsProper(name string) bool {
	if lexicon.HonorificOf(name) != "" {
		return true
	}
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// binaryReject applies the default mode's additional rules: confidence
// floor, generic-noun rejection, role-based name rejection, DATE
// numeral/keyword requirement, and strict-mode's tightened floor.
func binaryReject(cfg config.EngineConfig, c Candidate) (string, bool) {
	floor := cfg.EntityMinConfidence
	if cfg.PrecisionMode == config.PrecisionStrict {
		floor = 0.75
	}
	if c.Features.Confidence < floor {
		return "below-confidence-floor", true
	}

	lower := strings.ToLower(strings.TrimSpace(c.Entity.Canonical))
	if lexicon.GenericNouns[lower] {
		return "generic-noun", true
	}
	if isRoleName(lower) {
		return "role-based-name", true
	}
	if c.Entity.Type == schema.Date {
		if !fourDigitYear.MatchString(c.Entity.Canonical) && !dateSignalRe.MatchString(c.Entity.Canonical) {
			return "date-missing-signal", true
		}
	}

	if cfg.PrecisionMode == config.PrecisionStrict {
		fields := strings.Fields(c.Entity.Canonical)
		if len(fields) == 1 && schema.ProperNounTypes[c.Entity.Type] && len(fields[0]) < 3 {
			return "strict-short-single-word", true
		}
		if allCapsRe.MatchString(c.Entity.Canonical) && !lexicon.Honorifics[lower] {
			return "strict-unknown-all-caps", true
		}
	}

	return "", false
}

// isRoleName rejects standalone or lightly-modified role words like
// "messenger", "stranger", "young man".
func isRoleName(lower string) bool {
	if lexicon.GenericNouns[lower] {
		return true
	}
	fields := strings.Fields(lower)
	if len(fields) == 2 && lexicon.PersonAdjectiveStoplist[fields[0]] && lexicon.GenericNouns[fields[1]] {
		return true
	}
	return false
}

// typeSpecificReject invokes the per-type lexical sanity rules of spec
// 4.4's "Type-specific lexical sanity" block.
func typeSpecificReject(c Candidate) (string, bool) {
	switch c.Entity.Type {
	case schema.Person:
		return personSanity(c)
	case schema.Race:
		return raceSanity(c)
	case schema.Species:
		return speciesSanity(c)
	case schema.Item, schema.Object:
		return itemObjectSanity(c)
	}
	return "", false
}

func personSanity(c Candidate) (string, bool) {
	fields := strings.Fields(c.Entity.Canonical)
	if len(fields) > 1 || lexicon.HonorificOf(c.Entity.Canonical) != "" || c.Features.HasNERSupport {
		if len(fields) == 1 && lexicon.PersonHeadBlocklist[strings.ToLower(fields[0])] {
			return "person-head-blocklist", true
		}
		return "", false
	}
	// Single token, no title, no NER support.
	if lexicon.PersonHeadBlocklist[strings.ToLower(c.Entity.Canonical)] {
		return "person-head-blocklist", true
	}
	if c.Features.IsSentenceInitial && !c.Features.OccursNonInitial {
		return "person-sentence-initial-only", true
	}
	return "", false
}

func raceSanity(c Candidate) (string, bool) {
	lower := strings.ToLower(c.Entity.Canonical)
	if lexicon.RaceBlocklist[lower] {
		return "race-blocklist", true
	}
	if demonymRe.MatchString(c.Entity.Canonical) {
		return "", false
	}
	if verbLikeRe.MatchString(c.Entity.Canonical) {
		return "race-gerund", true
	}
	if lexicon.GenericNouns[lower] {
		return "race-generic-noun", true
	}
	return "", false
}

func speciesSanity(c Candidate) (string, bool) {
	if verbLikeRe.MatchString(c.Entity.Canonical) && strings.HasSuffix(strings.ToLower(c.Entity.Canonical), "ing") {
		return "species-verb-like", true
	}
	return "", false
}

func itemObjectSanity(c Candidate) (string, bool) {
	lower := strings.ToLower(c.Entity.Canonical)
	if lexicon.IsPronoun(lower) {
		return "item-pronoun", true
	}
	fields := strings.Fields(lower)
	functionWordHeavy := 0
	for _, f := range fields {
		if lexicon.IsStopWord(f) {
			functionWordHeavy++
		}
	}
	if len(fields) <= 3 && len(fields) > 0 && functionWordHeavy*2 >= len(fields) {
		return "item-function-word-heavy", true
	}
	if len(fields) > 0 && verbLikeRe.MatchString(fields[0]) {
		return "item-verb-led", true
	}
	return "", false
}

// assignTier classifies a survivor into Tier A/B/C per spec 4.4's
// feature weighting, after absolute and type-specific rejections.
func assignTier(c Candidate) schema.Tier {
	score := c.Features.Confidence
	if c.Features.HasNERSupport {
		score += 0.1
	}
	if c.Features.OccursNonInitial {
		score += 0.05
	}
	if c.Features.TokenCount > 1 {
		score += 0.05
	}
	switch {
	case score >= 0.70:
		return schema.TierA
	case score >= 0.50:
		return schema.TierB
	default:
		return schema.TierC
	}
}

var twoTokenSplitSurnameSuffix = regexp.MustCompile(`(?i)(son|sen|ez|ski|sky|ton|ham|ford|worth|ley|field|wood|man)$`)

// expandTwoFirstNames implements spec 4.4's "two-first-names split": a
// PERSON canonical of exactly two capitalized tokens whose second token
// is a curated given name (lexicon.CommonNameGender) and does not look
// like a surname is split into two PERSON candidates with
// deterministic IDs derived from their canonicals.
func expandTwoFirstNames(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Entity.Type != schema.Person {
			out = append(out, c)
			continue
		}
		fields := strings.Fields(c.Entity.Canonical)
		if len(fields) != 2 || !beginsProper(fields[0]) || !beginsProper(fields[1]) {
			out = append(out, c)
			continue
		}
		if _, given := lexicon.CommonNameGender[strings.ToLower(fields[1])]; !given || twoTokenSplitSurnameSuffix.MatchString(fields[1]) {
			out = append(out, c)
			continue
		}
		first := *c.Entity
		first.ID = "person:" + strings.ToLower(fields[0])
		first.Canonical = fields[0]
		first.Aliases = nil

		second := *c.Entity
		second.ID = "person:" + strings.ToLower(fields[1])
		second.Canonical = fields[1]
		second.Aliases = nil

		out = append(out, Candidate{Entity: &first, Features: c.Features})
		out = append(out, Candidate{Entity: &second, Features: c.Features})
	}
	return out
}
