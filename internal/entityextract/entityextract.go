// Package entityextract implements C11, entity extraction: per-segment
// windowed NER, a fixed built-in regex pattern catalog, optional
// caller-supplied pattern-library patterns, and a synthetic-benchmark
// fast path. Grounded on the teacher's FastExtractor
// (internal/extract/fast.go): a map of entity type to compiled regex
// patterns plus a capitalized-word heuristic, generalized here into a
// windowed, type-constrained merge policy over an NER-backed parser.
package entityextract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/parseradapter"
	"github.com/mrfishcar/ares/internal/schema"
)

const windowRadius = 200

// Metadata tallies how mentions were disposed of during extraction.
type Metadata struct {
	ClassifierRejected int
	ContextOnly        int
	Durable            int
	Rejected           int
}

// Input is C11's typed input.
type Input struct {
	DocID          string
	Text           string // normalized text
	Sentences      []parseradapter.Sentence
	Segments       []parseradapter.Segment
	NEREntities    []parseradapter.NEREntity
	Parser         parseradapter.Parser
	PatternLibrary []*schema.Pattern
}

// Output is C11's typed output.
type Output struct {
	Entities  []*model.Entity
	Spans     []model.Span
	EntityMap map[string]*model.Entity
	Metadata  Metadata
}

var fastPathSentenceRe = regexp.MustCompile(`^Person\w+ worked with Person\w+\.$`)

// Extract runs the full C11 stage.
func Extract(in Input) Output {
	if out, ok := fastPath(in); ok {
		return out
	}

	state := newMergeState()

	for _, m := range windowedNERMentions(in) {
		state.merge(m)
	}
	for _, m := range runBuiltinPatterns(in.Text) {
		state.merge(m)
	}
	for _, m := range runPatternLibrary(in.Text, in.PatternLibrary) {
		state.merge(m)
	}

	return Output{
		Entities:  state.order,
		Spans:     state.spans,
		EntityMap: state.entities,
		Metadata:  state.metadata,
	}
}

// fastPath short-circuits the stage for the synthetic load-test benchmark
// form: every sentence matches "PersonX_Y worked with PersonZ_W.". It
// must stay bit-exactly disabled for any text that does not match every
// sentence, per spec 4.3.
func fastPath(in Input) (Output, bool) {
	if len(in.Sentences) == 0 {
		return Output{}, false
	}
	for _, s := range in.Sentences {
		if !fastPathSentenceRe.MatchString(strings.TrimSpace(s.Text)) {
			return Output{}, false
		}
	}

	state := newMergeState()
	twoNamesRe := regexp.MustCompile(`^(Person\w+) worked with (Person\w+)\.$`)
	for _, s := range in.Sentences {
		m := twoNamesRe.FindStringSubmatch(strings.TrimSpace(s.Text))
		if m == nil {
			continue
		}
		off := strings.Index(s.Text, m[1])
		aStart := s.Start + maxInt(off, 0)
		state.merge(rawMention{Text: m[1], Type: schema.Person, Start: aStart, End: aStart + len(m[1]), Confidence: 0.9, Source: "fast-path"})
		bOff := strings.LastIndex(s.Text, m[2])
		bStart := s.Start + maxInt(bOff, 0)
		state.merge(rawMention{Text: m[2], Type: schema.Person, Start: bStart, End: bStart + len(m[2]), Confidence: 0.9, Source: "fast-path"})
	}

	return Output{
		Entities:  state.order,
		Spans:     state.spans,
		EntityMap: state.entities,
		Metadata:  state.metadata,
	}, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// windowedNERMentions builds a ±200-char window around each segment,
// parses it, and projects resulting mentions back to absolute offsets,
// trimmed to the segment bounds with leading non-alphabetic characters
// stripped.
func windowedNERMentions(in Input) []rawMention {
	if in.Parser == nil {
		return projectWholeDocumentEntities(in)
	}

	var out []rawMention
	seen := map[string]bool{}
	for _, seg := range in.Segments {
		winStart := seg.Start - windowRadius
		if winStart < 0 {
			winStart = 0
		}
		winEnd := seg.End + windowRadius
		if winEnd > len(in.Text) {
			winEnd = len(in.Text)
		}
		window := in.Text[winStart:winEnd]

		parsed, err := in.Parser.Parse(window)
		if err != nil {
			continue
		}
		for _, ent := range parsed.Entities {
			absStart := winStart + ent.Start
			absEnd := winStart + ent.End
			if absStart < seg.Start || absEnd > seg.End {
				continue
			}
			text := stripLeadingNonAlpha(in.Text[absStart:absEnd])
			if text == "" {
				continue
			}
			newStart := absEnd - len(text)
			dedupeKey := strings.ToLower(text) + "|" + string(ent.Type) + "|" + strconv.Itoa(newStart)
			if seen[dedupeKey] {
				continue
			}
			seen[dedupeKey] = true
			out = append(out, rawMention{
				Text: text, Type: ent.Type, Start: newStart, End: absEnd,
				Confidence: ent.Confidence, Source: "ner",
			})
		}
	}
	return out
}

// projectWholeDocumentEntities is the degraded path used when the
// caller already ran the parser once over the whole document (in.NEREntities)
// rather than supplying a live Parser for per-window re-parsing.
func projectWholeDocumentEntities(in Input) []rawMention {
	var out []rawMention
	for _, ent := range in.NEREntities {
		text := stripLeadingNonAlpha(ent.Text)
		if text == "" {
			continue
		}
		newStart := ent.End - len(text)
		out = append(out, rawMention{
			Text: text, Type: ent.Type, Start: newStart, End: ent.End,
			Confidence: ent.Confidence, Source: "ner",
		})
	}
	return out
}

func stripLeadingNonAlpha(s string) string {
	return trimLeadingNonAlpha(s)
}
