package relextract

import (
	"strconv"
	"strings"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/parseradapter"
	"github.com/mrfishcar/ares/internal/schema"
)

const depWindowRadius = 1000

// verbPredicate maps a verb surface form to the predicate it signals
// when it sits directly between two entity mentions, the POS-path
// analogue of narrativePatterns' surface-verb catalog. Parser.Token
// carries no reliable lemma (internal/parseradapter derives Lemma from
// the underlying parser's NER label, not morphological analysis), so
// this is keyed on inflected forms actually seen in prose.
var verbPredicate = map[string]schema.Predicate{
	"married":   schema.MarriedTo,
	"marries":   schema.MarriedTo,
	"ruled":     schema.Rules,
	"rules":     schema.Rules,
	"founded":   schema.Founded,
	"founds":    schema.Founded,
	"taught":    schema.TeachesAt,
	"teaches":   schema.TeachesAt,
	"fought":    schema.Fought,
	"fights":    schema.Fought,
	"traveled":  schema.TravelledTo,
	"travelled": schema.TravelledTo,
	"travels":   schema.TravelledTo,
	"journeyed": schema.TravelledTo,
	"built":     schema.Built,
	"builds":    schema.Built,
	"authored":  schema.Authored,
	"wrote":     schema.Authored,
	"writes":    schema.Authored,
	"met":       schema.Met,
	"meets":     schema.Met,
	"owns":      schema.Owns,
	"owned":     schema.Owns,
}

// runDependencyPath builds a ±1000-char window around each segment,
// re-parses it, and reads (subject, verb, object) tuples off the POS
// tag sequence between same-window entity mentions, per spec 4.8's
// dependency-path extractor. Each candidate is remapped to the merged
// entity map and checked against passes_guard before being kept.
func runDependencyPath(in Input, idx *spanIndex, b *relationBuilder) []*model.Relation {
	if in.Parser == nil {
		return nil
	}

	var out []*model.Relation
	seenWindow := map[string]bool{}

	for _, seg := range in.Segments {
		winStart := seg.Start - depWindowRadius
		if winStart < 0 {
			winStart = 0
		}
		winEnd := seg.End + depWindowRadius
		if winEnd > len(in.Text) {
			winEnd = len(in.Text)
		}
		winKey := intKey(winStart, winEnd)
		if seenWindow[winKey] {
			continue
		}
		seenWindow[winKey] = true

		window := in.Text[winStart:winEnd]
		parsed, err := in.Parser.Parse(window)
		if err != nil {
			continue
		}

		entitiesInWindow := idx.entitiesInRange(winStart, winEnd)
		if len(entitiesInWindow) < 2 {
			continue
		}

		for i := 0; i < len(entitiesInWindow); i++ {
			subj := entitiesInWindow[i]
			for j := i + 1; j < len(entitiesInWindow); j++ {
				obj := entitiesInWindow[j]
				if subj.Entity.ID == obj.Entity.ID {
					continue
				}
				verbTok, ok := findVerbBetween(parsed.Tokens, subj.End-winStart, obj.Start-winStart)
				if !ok {
					continue
				}
				pred, ok := verbPredicate[strings.ToLower(verbTok.Text)]
				if !ok {
					continue
				}
				sentIdx := sentenceIndexAt(in.Sentences, subj.Start)
				if r := b.newRelation(subj.Entity.ID, pred, obj.Entity.ID, subj.Start, obj.End, sentIdx, 0.6, "dep"); r != nil {
					out = append(out, r)
				}
			}
		}
	}

	return out
}

// findVerbBetween returns the first verb-tagged token (Penn tag
// prefix "VB") whose span lies within [lo, hi] window-local offsets.
// The caller pairs every two entities in the window, so other entity
// mentions or sentence breaks between lo and hi are not checked.
func findVerbBetween(tokens []parseradapter.Token, lo, hi int) (parseradapter.Token, bool) {
	if lo >= hi {
		return parseradapter.Token{}, false
	}
	for _, t := range tokens {
		if t.Start < lo || t.End > hi {
			continue
		}
		if strings.HasPrefix(t.POS, "VB") {
			return t, true
		}
	}
	return parseradapter.Token{}, false
}

func intKey(a, b int) string {
	return strconv.Itoa(a) + ":" + strconv.Itoa(b)
}
