package entityextract

import (
	"fmt"
	"strings"

	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

// rawMention is one candidate mention surfaced by NER, a built-in
// pattern, or a pattern-library pattern, before the merge policy folds
// it into the entity map.
type rawMention struct {
	Text       string
	Type       schema.EntityType
	Start      int
	End        int
	Confidence float64
	Source     string
}

// mergeState accumulates the entity map and spans as mentions are
// folded in, per spec 4.3's merge policy.
type mergeState struct {
	entities  map[string]*model.Entity // type::lower(canonical) -> entity
	byID      map[string]*model.Entity
	order     []*model.Entity
	spans     []model.Span
	metadata  Metadata
	idCounter int
}

func newMergeState() *mergeState {
	return &mergeState{
		entities: map[string]*model.Entity{},
		byID:     map[string]*model.Entity{},
	}
}

func mergeKey(t schema.EntityType, canonical string) string {
	return string(t) + "::" + strings.ToLower(canonical)
}

func isDescriptor(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "the ")
}

func isProperNoun(name string) bool {
	for _, r := range name {
		return r >= 'A' && r <= 'Z'
	}
	return false
}

// merge folds m into state, applying spec 4.3's merging policy: exact
// (type, lowercase canonical) match reuses the entity id; PERSON
// word-subset mentions merge (honorific mismatch blocks it); longer
// forms win as canonical; proper nouns are preferred over descriptor
// placeholders.
func (s *mergeState) merge(m rawMention) {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		s.metadata.Rejected++
		return
	}

	key := mergeKey(m.Type, text)
	if e, ok := s.entities[key]; ok {
		s.recordSpan(e.ID, m)
		s.metadata.Durable++
		return
	}

	if m.Type == schema.Person {
		if e := s.findPersonSubsetMatch(text); e != nil {
			s.absorbPerson(e, text, m)
			return
		}
	}

	if e := s.findDescriptorToReplace(m.Type, text); e != nil {
		s.promoteOverDescriptor(e, text, m)
		return
	}

	e := s.newEntity(m.Type, text)
	s.recordSpan(e.ID, m)
	s.metadata.ContextOnly++
}

func (s *mergeState) newEntity(t schema.EntityType, canonical string) *model.Entity {
	s.idCounter++
	e := &model.Entity{
		ID:        fmt.Sprintf("%s-%d", strings.ToLower(string(t)), s.idCounter),
		Type:      t,
		Canonical: canonical,
	}
	s.entities[mergeKey(t, canonical)] = e
	s.byID[e.ID] = e
	s.order = append(s.order, e)
	return e
}

func (s *mergeState) recordSpan(entityID string, m rawMention) {
	s.spans = append(s.spans, model.Span{EntityID: entityID, Start: m.Start, End: m.End})
}

// findPersonSubsetMatch looks for an existing PERSON entity whose
// canonical is a word-subset of text (or vice versa), honoring the
// honorific-mismatch block.
func (s *mergeState) findPersonSubsetMatch(text string) *model.Entity {
	for _, e := range s.order {
		if e.Type != schema.Person {
			continue
		}
		if !wordSubset(text, e.Canonical) && !wordSubset(e.Canonical, text) {
			continue
		}
		hNew := lexicon.HonorificOf(text)
		hOld := lexicon.HonorificOf(e.Canonical)
		if hNew != "" && hOld != "" && hNew != hOld {
			continue
		}
		return e
	}
	return nil
}

func wordSubset(shorter, longer string) bool {
	sw := strings.Fields(strings.ToLower(shorter))
	lw := strings.Fields(strings.ToLower(longer))
	if len(sw) == 0 || len(sw) >= len(lw) {
		return false
	}
	set := make(map[string]bool, len(lw))
	for _, w := range lw {
		set[w] = true
	}
	for _, w := range sw {
		if !set[w] {
			return false
		}
	}
	return true
}

// absorbPerson merges an incoming PERSON mention into an existing
// entity found via the word-subset rule, preferring the longer name as
// canonical and recording the shorter as an alias.
func (s *mergeState) absorbPerson(e *model.Entity, text string, m rawMention) {
	old := e.Canonical
	if len(text) > len(old) {
		delete(s.entities, mergeKey(e.Type, old))
		e.AddAlias(old)
		e.Canonical = text
		s.entities[mergeKey(e.Type, text)] = e
	} else if !strings.EqualFold(text, old) {
		e.AddAlias(text)
	}
	s.recordSpan(e.ID, m)
	s.metadata.Durable++
}

// findDescriptorToReplace looks for an existing entity of the same type
// whose canonical is a "the X" descriptor, so a proper-noun mention can
// take over as canonical (spec 4.3's closing sentence).
func (s *mergeState) findDescriptorToReplace(t schema.EntityType, text string) *model.Entity {
	if !isProperNoun(text) {
		return nil
	}
	for _, e := range s.order {
		if e.Type == t && isDescriptor(e.Canonical) {
			return e
		}
	}
	return nil
}

func (s *mergeState) promoteOverDescriptor(e *model.Entity, text string, m rawMention) {
	old := e.Canonical
	delete(s.entities, mergeKey(e.Type, old))
	e.AddAlias(old)
	e.Canonical = text
	s.entities[mergeKey(e.Type, text)] = e
	s.recordSpan(e.ID, m)
	s.metadata.Durable++
}

func trimLeadingNonAlpha(s string) string {
	for i, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			return s[i:]
		}
	}
	return ""
}
