// Package dedup implements C8, the relation deduplicator (spec 4.11,
// "Precision Layer 3"): relations sharing a (subj, pred, obj) key are
// merged, keeping the highest-confidence relation's other fields and
// unioning evidence and qualifiers. Grounded on the teacher's
// AddEntity upsert idiom (internal/graph/entities.go's
// `ON CONFLICT ... DO UPDATE SET salience = MAX(...)`), translated
// from a SQL upsert into an in-memory keyed merge.
package dedup

import "github.com/mrfishcar/ares/internal/model"

// Metadata reports group statistics, per spec 4.11's closing sentence.
type Metadata struct {
	GroupCount   int // number of keys with >= 2 relations merged
	AvgGroupSize float64
	MaxGroupSize int
}

// Output is C8's typed output.
type Output struct {
	Relations []*model.Relation
	Metadata  Metadata
}

// Dedupe merges relations sharing a (subj, pred, obj) key.
func Dedupe(relations []*model.Relation) Output {
	groups := map[string][]*model.Relation{}
	var order []string
	for _, r := range relations {
		k := r.Key()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	var out []*model.Relation
	mergedGroups := 0
	sumSize := 0
	maxSize := 0
	for _, k := range order {
		g := groups[k]
		if len(g) >= 2 {
			mergedGroups++
			sumSize += len(g)
			if len(g) > maxSize {
				maxSize = len(g)
			}
		}
		out = append(out, mergeGroup(g))
	}

	avg := 0.0
	if mergedGroups > 0 {
		avg = float64(sumSize) / float64(mergedGroups)
	}

	return Output{Relations: out, Metadata: Metadata{
		GroupCount:   mergedGroups,
		AvgGroupSize: avg,
		MaxGroupSize: maxSize,
	}}
}

// mergeGroup keeps the maximal-confidence relation's scalar fields,
// unioning evidence and qualifiers across the whole group.
func mergeGroup(g []*model.Relation) *model.Relation {
	if len(g) == 1 {
		return g[0]
	}
	best := g[0]
	for _, r := range g[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	merged := *best
	merged.Evidence = unionEvidence(g)
	merged.Qualifiers = unionQualifiers(g)
	return &merged
}

type evidenceKey struct {
	docID   string
	sentIdx int
	start   int
	end     int
}

// unionEvidence combines every relation's evidence, deduplicated on
// (doc_id, sentence_index, span.start, span.end).
func unionEvidence(g []*model.Relation) []model.Evidence {
	seen := map[evidenceKey]bool{}
	var out []model.Evidence
	for _, r := range g {
		for _, ev := range r.Evidence {
			k := evidenceKey{ev.DocID, ev.SentenceIndex, ev.SpanStart, ev.SpanEnd}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, ev)
		}
	}
	return out
}

// unionQualifiers combines non-empty Time/Place/Source fields across
// the group, first non-empty value wins per field.
func unionQualifiers(g []*model.Relation) *model.Qualifiers {
	var q model.Qualifiers
	any := false
	for _, r := range g {
		if r.Qualifiers == nil {
			continue
		}
		if q.Time == "" && r.Qualifiers.Time != "" {
			q.Time = r.Qualifiers.Time
			any = true
		}
		if q.Place == "" && r.Qualifiers.Place != "" {
			q.Place = r.Qualifiers.Place
			any = true
		}
		if q.Source == "" && r.Qualifiers.Source != "" {
			q.Source = r.Qualifiers.Source
			any = true
		}
	}
	if !any {
		return nil
	}
	return &q
}
