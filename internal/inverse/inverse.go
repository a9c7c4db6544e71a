// Package inverse implements C13, the inverse generator: for every
// surviving relation whose predicate has a mirror in schema.INVERSE,
// emit a second relation with subject and object swapped and the
// predicate replaced. Grounded on the teacher's PredicateToEdgeType
// table-driven mapping style (internal/graph/types.go), reused here
// over schema.INVERSE instead of a graph edge-type table.
package inverse

import (
	"fmt"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

// Metadata tallies how many mirrors were generated.
type Metadata struct {
	Generated int
}

// Output is C13's typed output: the original relations followed by
// their generated mirrors, in the order the originals were seen.
type Output struct {
	Relations []*model.Relation
	Metadata  Metadata
}

// Generate appends a mirror relation for every relation in relations
// whose predicate appears in schema.INVERSE. All fields besides
// subject, object, and predicate are preserved verbatim; symmetric
// predicates mirror to the same predicate.
func Generate(docID string, relations []*model.Relation) Output {
	out := append([]*model.Relation(nil), relations...)
	meta := Metadata{}
	counter := 0

	for _, r := range relations {
		inv, ok := schema.INVERSE[r.Pred]
		if !ok {
			continue
		}
		counter++
		mirror := &model.Relation{
			ID:         fmt.Sprintf("%s-inv-%d", docID, counter),
			Subj:       r.Obj,
			Pred:       inv,
			Obj:        r.Subj,
			Confidence: r.Confidence,
			Evidence:   r.Evidence,
			Qualifiers: r.Qualifiers,
			Extractor:  r.Extractor,
		}
		out = append(out, mirror)
		meta.Generated++
	}

	return Output{Relations: out, Metadata: meta}
}
