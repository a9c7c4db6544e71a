// Package coref implements C9, the deterministic coreference resolver:
// five link strategies plus a well-known-nickname table, combined and
// deduplicated. Its cascade-of-regex-families shape is grounded on the
// teacher's filter.ClassifyDialogueAct (memory-service/pkg/filter/
// dialogueact.go): ordered pattern families, first match wins, compiled
// once.
package coref

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/parseradapter"
	"github.com/mrfishcar/ares/internal/schema"
)

// Mention is a span in the processed text the resolver must try to
// attach an entity to: a pronoun, a demonstrative, a title phrase, or a
// nominal back-reference.
type Mention struct {
	Text        string
	Start       int
	End         int
	SentenceIdx int
}

// EntityMention is one known, already-resolved entity occurrence in the
// processed text, supplied by the caller so link strategies can find the
// nearest preceding candidate of a compatible type.
type EntityMention struct {
	EntityID     string
	Type         schema.EntityType
	Canonical    string
	Start        int
	End          int
	SentenceIdx  int
	ParagraphIdx int
}

// Link is one resolved coreference edge.
type Link struct {
	MentionStart int
	MentionEnd   int
	EntityID     string
	Confidence   float64
	Method       string
}

// Quote is one attributed direct-speech span.
type Quote struct {
	Start           int
	End             int
	SpeakerEntityID string
	Confidence      float64
}

// Result is C9's full output: links, virtual spans synthesized from
// every link so C12 can treat resolved mentions as entity mentions, and
// the attributed quote list.
type Result struct {
	Links        []Link
	VirtualSpans []parseradapter.Segment // reused as a lightweight (start,end) carrier
	Quotes       []Quote
}

var quoteRe = regexp.MustCompile(`"([^"]{1,400})"`)
var pronounRe = regexp.MustCompile(`(?i)\b(he|him|his|she|her|hers|it|its|they|them|their|theirs)\b`)
var coordinationRe = regexp.MustCompile(`(?i)\b([A-Z][a-zA-Z']+)\s+and\s+([A-Z][a-zA-Z']+)\s+(\w+ed|\w+s)\b`)

// learnedGenderPatterns extract additional name->gender facts from
// context, per spec 4.6 strategy 1's "learned from context" clause.
var learnedGenderPatterns = []struct {
	re     *regexp.Regexp
	gender lexicon.Gender
}{
	{regexp.MustCompile(`(?i)their son,?\s+([A-Z][a-zA-Z']+)`), lexicon.Male},
	{regexp.MustCompile(`(?i)their daughter,?\s+([A-Z][a-zA-Z']+)`), lexicon.Female},
	{regexp.MustCompile(`(?i)\bhusband\s+([A-Z][a-zA-Z']+)`), lexicon.Male},
	{regexp.MustCompile(`(?i)\bwife\s+([A-Z][a-zA-Z']+)`), lexicon.Female},
	{regexp.MustCompile(`(?i)\bbrother\s+([A-Z][a-zA-Z']+)`), lexicon.Male},
	{regexp.MustCompile(`(?i)\bsister\s+([A-Z][a-zA-Z']+)`), lexicon.Female},
}

// Resolve runs all five strategies plus nicknames over text, against the
// known entity mentions and paragraph segments, and returns the
// deduplicated result.
func Resolve(text string, sentences []parseradapter.Sentence, segments []parseradapter.Segment, entities []EntityMention) Result {
	learned := learnGenders(text)

	var links []Link
	links = append(links, resolvePronouns(text, sentences, segments, entities, learned)...)
	links = append(links, resolveTitleBackLinks(text, entities)...)
	links = append(links, resolveNominalBackLinks(text, entities)...)
	links = append(links, resolveNicknames(text, entities)...)

	quotes := attributeQuotes(text, entities)
	links = append(links, coordinationLinks(text, entities)...)

	deduped := dedupeLinks(links)

	var virtual []parseradapter.Segment
	for _, l := range deduped {
		virtual = append(virtual, parseradapter.Segment{Start: l.MentionStart, End: l.MentionEnd})
	}

	return Result{Links: deduped, VirtualSpans: virtual, Quotes: quotes}
}

// dedupeLinks keeps, for each (start, end, entity_id), only the
// highest-confidence link, per spec 4.6's closing sentence.
func dedupeLinks(links []Link) []Link {
	type key struct {
		start, end int
		eid        string
	}
	best := map[key]Link{}
	for _, l := range links {
		k := key{l.MentionStart, l.MentionEnd, l.EntityID}
		if existing, ok := best[k]; !ok || l.Confidence > existing.Confidence {
			best[k] = l
		}
	}
	out := make([]Link, 0, len(best))
	for _, l := range best {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MentionStart < out[j].MentionStart })
	return out
}

// learnGenders scans text for the context patterns spec 4.6 names and
// returns a lowercase-name -> gender map supplementing the curated list.
func learnGenders(text string) map[string]lexicon.Gender {
	learned := map[string]lexicon.Gender{}
	for _, p := range learnedGenderPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if len(m) >= 2 {
				learned[strings.ToLower(m[1])] = p.gender
			}
		}
	}
	return learned
}

func genderOf(name string, learned map[string]lexicon.Gender) lexicon.Gender {
	lower := strings.ToLower(name)
	if g, ok := learned[lower]; ok {
		return g
	}
	if g, ok := lexicon.CommonNameGender[lower]; ok {
		return g
	}
	return lexicon.Unknown
}

// paragraphForSentence maps a sentence index to its paragraph index via
// the segment table C3 builds.
func paragraphForSentence(segments []parseradapter.Segment, sentIdx int) int {
	for _, s := range segments {
		if sentIdx >= s.SentenceStart && sentIdx < s.SentenceEnd {
			return s.ParagraphIdx
		}
	}
	if len(segments) > 0 {
		return segments[len(segments)-1].ParagraphIdx
	}
	return 0
}
