// Package profile implements C5, the entity profiler: incremental
// accumulation of descriptors, titles, roles, and attributes per entity,
// plus the weighted similarity score C4's alias resolver and sense
// discriminator consult.
package profile

import (
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/model"
)

var appositiveRe = regexp.MustCompile(`(?i),\s*(?:an?\s+)?([a-z][a-z -]{1,30}?)\s+(wizard|king|queen|scientist|merchant|knight|witch|doctor|teacher|professor|captain|general|president|detective|warrior|sorcerer|priest|soldier|sailor|student)\b`)
var titleVariantRe = regexp.MustCompile(`(?i)\bthe\s+(grey|gray|white|wise|bold|brave|elder|younger|great|terrible|good|wicked)\b`)

// Update folds one (entity, containing sentence) mention into prof,
// following spec section 4.5's five update rules plus mention bookkeeping.
func Update(prof *model.Profile, docID, entityCanonical, sentence string) {
	// Appositive descriptor: "Entity, a DESCRIPTOR ROLE"
	if m := appositiveRe.FindStringSubmatch(sentence); m != nil {
		descriptor := strings.ToLower(strings.TrimSpace(m[1]))
		role := strings.ToLower(m[2])
		if descriptor != "" {
			prof.Descriptors[descriptor] = true
		}
		prof.Roles[role] = true
	}

	// Role indicators within 50 characters of the entity name.
	if idx := strings.Index(sentence, entityCanonical); idx >= 0 {
		lo := idx - 50
		if lo < 0 {
			lo = 0
		}
		hi := idx + len(entityCanonical) + 50
		if hi > len(sentence) {
			hi = len(sentence)
		}
		window := strings.ToLower(sentence[lo:hi])
		for role := range lexicon.RoleWords {
			if strings.Contains(window, role) {
				prof.Roles[role] = true
			}
		}
		for _, attr := range lexicon.AttributeKeywords {
			if strings.Contains(window, attr) {
				if v := valueNear(window, attr); v != "" {
					prof.AddAttr(attr, v)
				}
			}
		}
	}

	// Title variants: "X the Grey"
	if m := titleVariantRe.FindStringSubmatch(sentence); m != nil {
		prof.Titles["the "+strings.ToLower(m[1])] = true
	}

	prof.AddContext(sentence)
	prof.RecordMention(docID)
}

// valueNear returns a crude value token following attr in window, used to
// populate the attribute value-set (spec 4.5's "with their value-sets").
func valueNear(window, attr string) string {
	idx := strings.Index(window, attr)
	if idx < 0 {
		return ""
	}
	rest := strings.Fields(window[idx+len(attr):])
	if len(rest) == 0 {
		return ""
	}
	return strings.Trim(rest[0], ".,;:")
}

// Similarity computes the weighted profile-similarity score C4's alias
// resolver consults (spec 4.12: 0.5 context word-overlap, 0.3 descriptor
// Jaccard, 0.2 title Jaccard).
func Similarity(a, b *model.Profile) float64 {
	if a == nil || b == nil {
		return 0
	}
	wordOverlap := weightedOverlap(contextWords(a), contextWords(b))
	descJaccard := jaccard(a.Descriptors, b.Descriptors)
	titleJaccard := jaccard(a.Titles, b.Titles)

	weights := []float64{0.5, 0.3, 0.2}
	values := []float64{wordOverlap, descJaccard, titleJaccard}
	return floats.Dot(weights, values)
}

func contextWords(p *model.Profile) map[string]bool {
	words := make(map[string]bool)
	for _, c := range p.Contexts {
		for _, w := range strings.Fields(strings.ToLower(c)) {
			w = strings.Trim(w, ".,;:!?\"'()")
			if w != "" && !lexicon.IsStopWord(w) {
				words[w] = true
			}
		}
	}
	return words
}

func weightedOverlap(a, b map[string]bool) float64 {
	return jaccard(a, b)
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
