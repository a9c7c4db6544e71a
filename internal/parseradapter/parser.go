// Package parseradapter implements the C3 parser adapter contract (spec
// section 4.2 and section 6) in-process, using the prose NLP library the
// teacher already depends on for exactly this purpose
// (memory-service/pkg/extract/prose.go).
package parseradapter

import (
	"strings"

	"github.com/tsawler/prose/v3"

	"github.com/mrfishcar/ares/internal/schema"
)

// Token is a single tokenized word with its Penn Treebank POS tag and
// character offsets into the normalized text.
type Token struct {
	Text      string
	Lemma     string
	POS       string
	Start     int
	End       int
	Sentence  int
	Paragraph int
	Index     int
}

// Sentence is a sentence boundary in the normalized text.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// NEREntity is a single named-entity mention surfaced by the underlying
// parser, using the section 3 entity-type vocabulary.
type NEREntity struct {
	Text       string
	Type       schema.EntityType
	Start      int
	End        int
	Confidence float64
}

// Parsed is the output of a single Parse call: the C3 contract's
// tokens, sentences and entities plus a lazily-populated cache for
// downstream stages (segments/dependency info derived on demand).
type Parsed struct {
	Text      string
	Tokens    []Token
	Sentences []Sentence
	Entities  []NEREntity

	// cache holds downstream-derived data keyed by an opaque cache key,
	// populated lazily by stages that need it (C3's contract requires the
	// parse cache to start empty and be filled by consumers, not by C3
	// itself).
	cache map[string]any
}

// CacheGet retrieves a previously-stored cache value.
func (p *Parsed) CacheGet(key string) (any, bool) {
	if p.cache == nil {
		return nil, false
	}
	v, ok := p.cache[key]
	return v, ok
}

// CacheSet stores a value for later retrieval by CacheGet.
func (p *Parsed) CacheSet(key string, value any) {
	if p.cache == nil {
		p.cache = make(map[string]any)
	}
	p.cache[key] = value
}

// Parser is the C3 contract: tokenization with offsets and POS, sentence
// segmentation, and NER into the section 3 type vocabulary.
type Parser interface {
	Parse(text string) (*Parsed, error)
}

// ProseParser implements Parser using prose.NewDocument.
type ProseParser struct{}

// NewProseParser returns a Parser backed by the prose NLP library.
func NewProseParser() *ProseParser { return &ProseParser{} }

// Parse tokenizes, tags, segments, and NER-tags text, satisfying the C3
// contract. Whitespace normalization (spec 4.2) is the caller's
// responsibility via Normalize; Parse assumes text is already normalized.
func (pp *ProseParser) Parse(text string) (*Parsed, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	parsed := &Parsed{Text: text}

	sentenceIdx := 0
	paragraphIdx := 0
	for _, s := range doc.Sentences() {
		parsed.Sentences = append(parsed.Sentences, Sentence{
			Text:  s.Text,
			Start: s.Start,
			End:   s.End,
		})
	}

	for i, tok := range doc.Tokens() {
		sentenceIdx, paragraphIdx = sentenceAndParagraphFor(parsed.Sentences, tok.Start, text)
		parsed.Tokens = append(parsed.Tokens, Token{
			Text:      tok.Text,
			Lemma:     tok.Label,
			POS:       tok.Tag,
			Start:     tok.Start,
			End:       tok.End,
			Sentence:  sentenceIdx,
			Paragraph: paragraphIdx,
			Index:     i,
		})
	}

	for _, ent := range doc.Entities() {
		t := entityTypeFromNERLabel(ent.Label)
		if t == "" {
			continue
		}
		conf := ent.Confidence
		if conf <= 0 {
			conf = 0.8
		}
		parsed.Entities = append(parsed.Entities, NEREntity{
			Text:       ent.Text,
			Type:       t,
			Start:      ent.Start,
			End:        ent.End,
			Confidence: conf,
		})
	}

	return parsed, nil
}

// Normalize performs the whitespace normalization spec section 4.2
// requires before segmentation; every downstream stage consumes the
// normalized text, never the raw input.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	// Collapse runs of horizontal whitespace without disturbing paragraph
	// breaks (double newlines), which C15's paragraph_index counts on.
	var b strings.Builder
	lastWasSpace := false
	for _, r := range text {
		if r == ' ' || r == '\t' {
			if lastWasSpace {
				continue
			}
			lastWasSpace = true
			b.WriteRune(' ')
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func sentenceAndParagraphFor(sentences []Sentence, offset int, text string) (sentenceIdx, paragraphIdx int) {
	for i, s := range sentences {
		if offset >= s.Start && offset < s.End {
			sentenceIdx = i
			break
		}
		if offset >= s.End {
			sentenceIdx = i + 1
		}
	}
	paragraphIdx = strings.Count(text[:min(offset, len(text))], "\n\n")
	return sentenceIdx, paragraphIdx
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// entityTypeFromNERLabel maps the parser's NER label into the closed
// section 3 entity-type vocabulary.
func entityTypeFromNERLabel(label string) schema.EntityType {
	switch strings.ToUpper(label) {
	case "PERSON":
		return schema.Person
	case "ORG", "ORGANIZATION":
		return schema.Org
	case "GPE", "LOC", "LOCATION", "FAC", "FACILITY":
		return schema.Place
	case "DATE":
		return schema.Date
	case "TIME":
		return schema.Time
	case "WORK_OF_ART", "PROJECT":
		return schema.Work
	case "PRODUCT":
		return schema.Item
	case "EVENT":
		return schema.Event
	case "LANGUAGE":
		return schema.Language
	case "MONEY":
		return schema.Currency
	case "NORP":
		return schema.Tribe
	default:
		return ""
	}
}
