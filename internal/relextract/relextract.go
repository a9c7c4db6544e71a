// Package relextract implements C12, relation extraction: a
// dependency-path extractor and a narrative-pattern extractor, merged
// into a single relation list. Grounded on the teacher's
// internal/extract/deep.go two-pass entity-then-relationship prompt
// structure, translated from an LLM prompt into deterministic
// POS-path and regex templates per spec.md's "does not require a
// neural model" scope.
package relextract

import (
	"fmt"
	"sort"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/parseradapter"
	"github.com/mrfishcar/ares/internal/schema"
)

// Metadata tallies what each extractor contributed and what the guard
// table rejected.
type Metadata struct {
	DependencyPath int
	Narrative      int
	GuardRejected  int
}

// Input is C12's typed input: the processed text, its sentence table,
// and the merged entity map with its span index (including any virtual
// spans C9 coreference synthesized).
type Input struct {
	DocID     string
	Text      string
	Sentences []parseradapter.Sentence
	Segments  []parseradapter.Segment
	Entities  []*model.Entity
	Spans     []model.Span
	Parser    parseradapter.Parser
}

// Output is C12's typed output.
type Output struct {
	Relations []*model.Relation
	Metadata  Metadata
}

// spanIndex maps character offsets back to the entity occupying them,
// the "entity map" spec 4.8 says relation arguments remap through.
type spanIndex struct {
	spans    []model.Span
	byID     map[string]*model.Entity
}

func buildSpanIndex(in Input) *spanIndex {
	byID := make(map[string]*model.Entity, len(in.Entities))
	for _, e := range in.Entities {
		byID[e.ID] = e
	}
	sorted := append([]model.Span(nil), in.Spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return &spanIndex{spans: sorted, byID: byID}
}

// entityAt returns the entity whose span contains [start,end), or nil.
func (idx *spanIndex) entityAt(start, end int) *model.Entity {
	for _, sp := range idx.spans {
		if sp.Start <= start && sp.End >= end {
			return idx.byID[sp.EntityID]
		}
	}
	return nil
}

// entitiesInRange returns every entity whose span falls within
// [lo, hi), in document order, deduplicated by entity id.
func (idx *spanIndex) entitiesInRange(lo, hi int) []spanEntity {
	seen := map[string]bool{}
	var out []spanEntity
	for _, sp := range idx.spans {
		if sp.Start < lo || sp.End > hi {
			continue
		}
		e := idx.byID[sp.EntityID]
		if e == nil || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, spanEntity{Entity: e, Start: sp.Start, End: sp.End})
	}
	return out
}

type spanEntity struct {
	Entity *model.Entity
	Start  int
	End    int
}

// relationBuilder accumulates relations from both extractors, applying
// the guard table and assigning sequential ids.
type relationBuilder struct {
	in      Input
	idx     *spanIndex
	counter int
	meta    Metadata
}

// newRelation validates (pred, subj, obj) against the guard table and,
// if it passes, returns the built relation. Extractors call this rather
// than constructing *model.Relation directly so every relation is
// guard-checked the same way regardless of origin.
func (b *relationBuilder) newRelation(subjID string, pred schema.Predicate, objID string, start, end int, sentIdx int, confidence float64, extractor string) *model.Relation {
	if subjID == "" || objID == "" || subjID == objID {
		return nil
	}
	subj := b.idx.byID[subjID]
	obj := b.idx.byID[objID]
	if subj == nil || obj == nil {
		return nil
	}
	if !schema.PassesGuard(pred, subj.Type, obj.Type) {
		b.meta.GuardRejected++
		return nil
	}
	if extractor == "dep" {
		b.meta.DependencyPath++
	} else {
		b.meta.Narrative++
	}
	b.counter++
	return &model.Relation{
		ID:         fmt.Sprintf("rel-%d", b.counter),
		Subj:       subjID,
		Pred:       pred,
		Obj:        objID,
		Confidence: confidence,
		Extractor:  extractor,
		Evidence: []model.Evidence{{
			DocID:         b.in.DocID,
			SentenceIndex: sentIdx,
			SpanStart:     start,
			SpanEnd:       end,
			SpanText:      safeSlice(b.in.Text, start, end),
			Source:        model.SourceRule,
		}},
	}
}

// Extract runs both extractors over in and merges their relations.
func Extract(in Input) Output {
	idx := buildSpanIndex(in)
	b := &relationBuilder{in: in, idx: idx}

	var relations []*model.Relation
	for _, r := range runNarrativePatterns(in, idx, b) {
		relations = append(relations, r)
	}
	for _, r := range runDependencyPath(in, idx, b) {
		relations = append(relations, r)
	}

	return Output{Relations: relations, Metadata: b.meta}
}

func sentenceIndexAt(sentences []parseradapter.Sentence, offset int) int {
	for i, s := range sentences {
		if offset >= s.Start && offset < s.End {
			return i
		}
	}
	if len(sentences) == 0 {
		return 0
	}
	return len(sentences) - 1
}

func safeSlice(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}
	return text[start:end]
}
