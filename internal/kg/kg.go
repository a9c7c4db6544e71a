// Package kg implements C14, the knowledge-graph finalizer: a
// post-merge hygiene pass (heading-name drop, event-ish retagging,
// race-noise drop, junk-singleton drop, fragment filter), followed by
// density-dependent pruning and a fiction-entities side output.
// Grounded on the teacher's blocklist-driven hygiene pass
// (noiseEntities/productNoise in internal/extract/deep.go), extended
// with the named heuristics spec.md calls for.
package kg

import (
	"regexp"
	"strings"

	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

// Metadata tallies what each hygiene stage removed or changed.
type Metadata struct {
	HeadingDropped   int
	EventRetagged    int
	RaceDropped      int
	JunkDropped      int
	FragmentDropped  int
	DensityPruned    int
	RelationsPruned  int
}

// Input is C14's typed input.
type Input struct {
	Entities  []*model.Entity
	Spans     []model.Span
	Relations []*model.Relation
}

// Output is C14's typed output.
type Output struct {
	Entities        []*model.Entity
	Spans           []model.Span
	Relations       []*model.Relation
	FictionEntities []*model.Entity
	Metadata        Metadata
}

// Finalize runs the full C14 hygiene and pruning pass.
func Finalize(in Input) Output {
	var meta Metadata
	mentions := countMentions(in.Spans)

	entities := append([]*model.Entity(nil), in.Entities...)
	entities = dropHeadingNames(entities, &meta)
	retagEventish(entities, &meta)
	entities = dropRaceNoise(entities, mentions, &meta)
	entities = dropJunkPersons(entities, mentions, &meta)
	entities = dropFragments(entities, &meta)
	entities = densityPrune(entities, in.Relations, mentions, &meta)

	fiction := extractFiction(entities)

	kept := make(map[string]bool, len(entities))
	for _, e := range entities {
		kept[e.ID] = true
	}
	spans := filterSpans(in.Spans, kept)
	relations := pruneRelations(in.Relations, kept, &meta)

	return Output{
		Entities:        entities,
		Spans:           spans,
		Relations:       relations,
		FictionEntities: fiction,
		Metadata:        meta,
	}
}

func countMentions(spans []model.Span) map[string]int {
	counts := make(map[string]int, len(spans))
	for _, sp := range spans {
		counts[sp.EntityID]++
	}
	return counts
}

var headingRe = regexp.MustCompile(`(?i)^(Chapter|Prologue|Epilogue)\s+(\d+|[IVXLCDMivxlcdm]+|[A-Za-z]+)$`)

// dropHeadingNames removes canonicals matching a chapter/prologue/
// epilogue heading pattern, regardless of entity type.
func dropHeadingNames(entities []*model.Entity, meta *Metadata) []*model.Entity {
	var out []*model.Entity
	for _, e := range entities {
		if headingRe.MatchString(strings.TrimSpace(e.Canonical)) {
			meta.HeadingDropped++
			continue
		}
		out = append(out, e)
	}
	return out
}

// retagEventish relabels PERSON canonicals starting with "the" and
// containing an event word (spec 4.13) to EVENT, in place.
func retagEventish(entities []*model.Entity, meta *Metadata) {
	for _, e := range entities {
		if e.Type != schema.Person {
			continue
		}
		lower := strings.ToLower(e.Canonical)
		if !strings.HasPrefix(lower, "the ") {
			continue
		}
		for word := range lexicon.EventWords {
			if strings.Contains(lower, word) {
				e.Type = schema.Event
				meta.EventRetagged++
				break
			}
		}
	}
}

// dropRaceNoise hard-drops RACE canonicals on the blocklist, and drops
// any other RACE entity absent from the whitelist, lacking a
// race-keyword, with at most 2 mentions.
func dropRaceNoise(entities []*model.Entity, mentions map[string]int, meta *Metadata) []*model.Entity {
	var out []*model.Entity
	for _, e := range entities {
		if e.Type != schema.Race {
			out = append(out, e)
			continue
		}
		lower := strings.ToLower(e.Canonical)
		if lexicon.RaceBlocklist[lower] {
			meta.RaceDropped++
			continue
		}
		if lexicon.RaceWhitelist[lower] {
			out = append(out, e)
			continue
		}
		if containsAny(lower, lexicon.RaceKeywords) {
			out = append(out, e)
			continue
		}
		if mentions[e.ID] <= 2 {
			meta.RaceDropped++
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// dropJunkPersons hard-drops always-junk PERSON canonicals, and drops
// the softer junk list only when the entity was mentioned exactly once.
func dropJunkPersons(entities []*model.Entity, mentions map[string]int, meta *Metadata) []*model.Entity {
	var out []*model.Entity
	for _, e := range entities {
		if e.Type != schema.Person {
			out = append(out, e)
			continue
		}
		lower := strings.ToLower(e.Canonical)
		if lexicon.JunkPersonSingletons[lower] {
			meta.JunkDropped++
			continue
		}
		if lexicon.JunkPersonSoftList[lower] && mentions[e.ID] == 1 {
			meta.JunkDropped++
			continue
		}
		out = append(out, e)
	}
	return out
}

// dropFragments removes single-word entities whose token appears
// inside another entity's multi-word canonical.
func dropFragments(entities []*model.Entity, meta *Metadata) []*model.Entity {
	multiWordTokens := map[string]bool{}
	for _, e := range entities {
		words := strings.Fields(e.Canonical)
		if len(words) <= 1 {
			continue
		}
		for _, w := range words {
			multiWordTokens[strings.ToLower(w)] = true
		}
	}

	var out []*model.Entity
	for _, e := range entities {
		words := strings.Fields(e.Canonical)
		if len(words) == 1 && multiWordTokens[strings.ToLower(words[0])] {
			meta.FragmentDropped++
			continue
		}
		out = append(out, e)
	}
	return out
}

// densityPrune keeps only relation-bearing or frequently-mentioned
// entities once the document is dense enough (spec 4.13's
// density-dependent pruning); lighter documents keep everything.
func densityPrune(entities []*model.Entity, relations []*model.Relation, mentions map[string]int, meta *Metadata) []*model.Entity {
	if len(entities) <= 12 || len(relations) < len(entities) {
		return entities
	}

	inRelation := map[string]bool{}
	for _, r := range relations {
		inRelation[r.Subj] = true
		inRelation[r.Obj] = true
	}

	var out []*model.Entity
	for _, e := range entities {
		if inRelation[e.ID] || mentions[e.ID] >= 3 {
			out = append(out, e)
			continue
		}
		meta.DensityPruned++
	}
	return out
}

// extractFiction collects entities whose type is a fiction-entity type
// into a side output, without removing them from the main list.
func extractFiction(entities []*model.Entity) []*model.Entity {
	var out []*model.Entity
	for _, e := range entities {
		if lexicon.FictionEntityTypes[string(e.Type)] {
			out = append(out, e)
		}
	}
	return out
}

func filterSpans(spans []model.Span, kept map[string]bool) []model.Span {
	var out []model.Span
	for _, sp := range spans {
		if kept[sp.EntityID] {
			out = append(out, sp)
		}
	}
	return out
}

// pruneRelations drops relations referencing an entity no longer
// present, per spec 4.13's closing sentence.
func pruneRelations(relations []*model.Relation, kept map[string]bool, meta *Metadata) []*model.Relation {
	var out []*model.Relation
	for _, r := range relations {
		if !kept[r.Subj] || !kept[r.Obj] {
			meta.RelationsPruned++
			continue
		}
		out = append(out, r)
	}
	return out
}
