// Package deictic implements C10: rewriting the deictic adverb "there"
// to the most recent compatible PLACE/ORG/HOUSE mention, producing the
// processedText C12's relation extractors consume. Grounded on the
// teacher's coordination-style single-pass regex rewrite idiom already
// established in internal/coref, generalized to a text-rewriting stage.
package deictic

import (
	"regexp"
	"sort"

	"github.com/mrfishcar/ares/internal/schema"
)

var thereRe = regexp.MustCompile(`(?i)\bthere\b`)

// EntityMention is the subset of a known entity mention deictic.Resolve
// needs: its type and character offsets in the text being rewritten.
type EntityMention struct {
	Canonical string
	Type      schema.EntityType
	Start     int
	End       int
}

var deicticCompatibleTypes = map[schema.EntityType]bool{
	schema.Place: true, schema.Org: true, schema.House: true,
}

// Rewrite finds every occurrence of "there" in text and replaces it with
// "in <CanonicalName>" using the nearest preceding PLACE/ORG/HOUSE
// mention. Replacements are applied in reverse text order so earlier
// offsets are unaffected by the length changes of later ones.
func Rewrite(text string, entities []EntityMention) string {
	sorted := append([]EntityMention(nil), entities...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	matches := thereRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	result := text
	for i := len(matches) - 1; i >= 0; i-- {
		start, end := matches[i][0], matches[i][1]
		ref := nearestPreceding(sorted, start)
		if ref == nil {
			continue
		}
		result = result[:start] + "in " + ref.Canonical + result[end:]
	}
	return result
}

// Shift records a length change introduced by Rewrite at a given
// original-text offset, so callers holding other offsets into the same
// original text (entity spans, NER spans) can remap them.
type Shift struct {
	At    int
	Delta int
}

// Shifts computes the same replacements Rewrite would make and returns
// their position/length-delta pairs in ascending original-offset order,
// without mutating text.
func Shifts(text string, entities []EntityMention) []Shift {
	sorted := append([]EntityMention(nil), entities...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var shifts []Shift
	for _, m := range thereRe.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		ref := nearestPreceding(sorted, start)
		if ref == nil {
			continue
		}
		newLen := len("in " + ref.Canonical)
		shifts = append(shifts, Shift{At: start, Delta: newLen - (end - start)})
	}
	return shifts
}

// RemapOffset adjusts an offset from the original text into its position
// in the rewritten text, given shifts computed by Shifts.
func RemapOffset(shifts []Shift, offset int) int {
	delta := 0
	for _, s := range shifts {
		if s.At < offset {
			delta += s.Delta
		}
	}
	return offset + delta
}

func nearestPreceding(sorted []EntityMention, before int) *EntityMention {
	var best *EntityMention
	for i := range sorted {
		e := sorted[i]
		if !deicticCompatibleTypes[e.Type] {
			continue
		}
		if e.End > before {
			continue
		}
		if best == nil || e.End > best.End {
			c := e
			best = &c
		}
	}
	return best
}
