// Package model holds the ARES data model: entities, spans, relations,
// evidence, and entity profiles, as defined in spec section 3. It has no
// behavior of its own beyond small invariant-preserving helpers; the
// pipeline stages in sibling packages operate on these types.
package model

import "github.com/mrfishcar/ares/internal/schema"

// Entity is a unit of referential identity extracted from a document.
type Entity struct {
	ID        string
	Type      schema.EntityType
	Canonical string
	Aliases   []string
	Attrs     map[string]any
	Tier      schema.Tier

	// Populated by the identity subsystem (C4); zero values mean "unset".
	EID int64
	AID int64
	SP  []int
}

// HasAlias reports whether alias already appears in e.Aliases or equals
// e.Canonical, case-insensitively.
func (e *Entity) HasAlias(alias string) bool {
	if eqFold(alias, e.Canonical) {
		return true
	}
	for _, a := range e.Aliases {
		if eqFold(a, alias) {
			return true
		}
	}
	return false
}

// AddAlias appends alias to e.Aliases if not already present.
func (e *Entity) AddAlias(alias string) {
	if alias == "" || e.HasAlias(alias) {
		return
	}
	e.Aliases = append(e.Aliases, alias)
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Span is a mention occurrence: (entity, start, end) in character offsets
// of the normalized text.
type Span struct {
	EntityID string
	Start    int
	End      int
	// Virtual marks spans synthesized from coreference links (C9) rather
	// than literal NER/pattern mentions.
	Virtual bool
	Method  string // coref method that produced a virtual span, if any
}

// EvidenceSource classifies where a piece of evidence originated.
type EvidenceSource string

const (
	SourceRaw  EvidenceSource = "RAW"
	SourceRule EvidenceSource = "RULE"
	SourceLLM  EvidenceSource = "LLM_HINT"
)

// Evidence anchors a relation to a specific sentence span in the processed
// text.
type Evidence struct {
	DocID          string
	SentenceIndex  int
	SpanStart      int
	SpanEnd        int
	SpanText       string
	Source         EvidenceSource
}

// Qualifiers are optional time/place/source annotations on a relation.
type Qualifiers struct {
	Time   string
	Place  string
	Source string
}

// Relation is a typed edge between two entities.
type Relation struct {
	ID         string
	Subj       string
	Pred       schema.Predicate
	Obj        string
	Confidence float64
	Evidence   []Evidence
	Qualifiers *Qualifiers
	Extractor  string // "dep", "regex", "narrative-<verb>", ...
}

// Key returns the (subj, pred, obj) triple used by C8 deduplication.
func (r *Relation) Key() string {
	return r.Subj + "::" + string(r.Pred) + "::" + r.Obj
}

// Profile is the incrementally accumulated record of an entity's
// descriptors, titles, roles, attributes, and context, per spec section 3.
type Profile struct {
	EntityID     string
	Descriptors  map[string]bool
	Titles       map[string]bool
	Roles        map[string]bool
	Attrs        map[string][]string // attribute name -> value set
	Contexts     []string            // capped at 20, oldest dropped first
	MentionCount int
	FirstSeen    string
	LastSeen     string
	Confidence   float64
}

const maxContextSentences = 20

// NewProfile returns an empty profile for entityID.
func NewProfile(entityID string) *Profile {
	return &Profile{
		EntityID:    entityID,
		Descriptors: map[string]bool{},
		Titles:      map[string]bool{},
		Roles:       map[string]bool{},
		Attrs:       map[string][]string{},
	}
}

// AddContext appends a context sentence, dropping the oldest once the cap
// is exceeded.
func (p *Profile) AddContext(sentence string) {
	p.Contexts = append(p.Contexts, sentence)
	if len(p.Contexts) > maxContextSentences {
		p.Contexts = p.Contexts[len(p.Contexts)-maxContextSentences:]
	}
}

// RecordMention increments the mention count, recomputes confidence, and
// updates LastSeen. docID becomes FirstSeen if this is the first mention.
func (p *Profile) RecordMention(docID string) {
	if p.MentionCount == 0 {
		p.FirstSeen = docID
	}
	p.MentionCount++
	p.LastSeen = docID
	p.Confidence = confidenceForMentions(p.MentionCount)
}

func confidenceForMentions(mentions int) float64 {
	c := 0.5 + 0.05*float64(mentions)
	if c > 0.95 {
		return 0.95
	}
	return c
}

// AddAttr records value under attribute name, deduplicated.
func (p *Profile) AddAttr(name, value string) {
	for _, v := range p.Attrs[name] {
		if v == value {
			return
		}
	}
	p.Attrs[name] = append(p.Attrs[name], value)
}

// Merge folds other into p (used when C4 unifies two entities).
func (p *Profile) Merge(other *Profile) {
	if other == nil {
		return
	}
	for d := range other.Descriptors {
		p.Descriptors[d] = true
	}
	for t := range other.Titles {
		p.Titles[t] = true
	}
	for r := range other.Roles {
		p.Roles[r] = true
	}
	for name, vals := range other.Attrs {
		for _, v := range vals {
			p.AddAttr(name, v)
		}
	}
	for _, c := range other.Contexts {
		p.AddContext(c)
	}
	p.MentionCount += other.MentionCount
	if p.Confidence < other.Confidence {
		p.Confidence = other.Confidence
	}
	p.Confidence = confidenceForMentions(p.MentionCount)
	if p.FirstSeen == "" {
		p.FirstSeen = other.FirstSeen
	}
	p.LastSeen = other.LastSeen
}
