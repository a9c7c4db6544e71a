package coref

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/schema"
)

var theTitleRe = regexp.MustCompile(`(?i)\bthe\s+([a-z][a-z-]{1,30})\b`)
var collectiveRe = regexp.MustCompile(`(?i)\bthe\s+(couple|pair|trio)\b`)

var titleKeywordType = buildTitleKeywordType()

func buildTitleKeywordType() map[string]schema.EntityType {
	m := map[string]schema.EntityType{}
	for _, w := range lexicon.TitlesAndNominals["PERSON"] {
		m[w] = schema.Person
	}
	for _, w := range lexicon.TitlesAndNominals["ORG"] {
		m[w] = schema.Org
	}
	for _, w := range lexicon.TitlesAndNominals["PLACE"] {
		m[w] = schema.Place
	}
	return m
}

// resolveTitleBackLinks implements spec 4.6 strategy 2: "the king", "the
// company", "the city" style back-references to the nearest preceding
// entity of the inferred type.
func resolveTitleBackLinks(text string, entities []EntityMention) []Link {
	sorted := sortedByStart(entities)
	var links []Link
	for _, m := range theTitleRe.FindAllStringSubmatchIndex(text, -1) {
		fullStart, fullEnd := m[0], m[1]
		kwStart, kwEnd := m[2], m[3]
		keyword := strings.ToLower(text[kwStart:kwEnd])
		expected, ok := titleKeywordType[keyword]
		if !ok {
			continue
		}
		cand := nearestPrecedingOfType(sorted, fullStart, expected)
		if cand == nil {
			continue
		}
		confidence := titleConfidence(text, keyword, *cand, expected, fullStart)
		links = append(links, Link{
			MentionStart: fullStart,
			MentionEnd:   fullEnd,
			EntityID:     cand.EntityID,
			Confidence:   confidence,
			Method:       "title-backlink",
		})
	}
	return links
}

func titleConfidence(text, keyword string, cand EntityMention, expected schema.EntityType, mentionStart int) float64 {
	if strings.Contains(strings.ToLower(cand.Canonical), keyword) {
		return 0.90
	}
	lo := mentionStart - 200
	if lo < 0 {
		lo = 0
	}
	hi := mentionStart + 200
	if hi > len(text) {
		hi = len(text)
	}
	window := strings.ToLower(text[lo:hi])
	for _, syn := range lexicon.TitlesAndNominals[string(expected)] {
		if strings.Contains(window, syn) {
			return 0.80
		}
	}
	if expected == schema.Org || expected == schema.Place {
		return 0.70
	}
	return 0.65
}

// resolveNominalBackLinks implements the collective-reference half of
// spec 4.6 strategy 3: "the couple", "the pair", "the trio" link to the
// last 2-3 PERSON entities seen in the same paragraph. The single-
// referent half of strategy 3 ("the wizard") is subsumed by
// resolveTitleBackLinks's descriptor-window scoring, since both
// ultimately resolve a nominal phrase to the nearest compatible
// preceding entity via the same TitlesAndNominals index.
func resolveNominalBackLinks(text string, entities []EntityMention) []Link {
	sorted := sortedByStart(entities)
	var links []Link
	for _, m := range collectiveRe.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		paraIdx := paragraphForOffset(sorted, start)
		persons := personsInParagraphBefore(sorted, paraIdx, start)
		n := 3
		if len(persons) < n {
			n = len(persons)
		}
		for i := len(persons) - n; i < len(persons); i++ {
			if i < 0 {
				continue
			}
			links = append(links, Link{
				MentionStart: start,
				MentionEnd:   end,
				EntityID:     persons[i].EntityID,
				Confidence:   0.70,
				Method:       "nominal-collective",
			})
		}
	}
	return links
}

func paragraphForOffset(sorted []EntityMention, offset int) int {
	para := 0
	for _, e := range sorted {
		if e.Start > offset {
			break
		}
		para = e.ParagraphIdx
	}
	return para
}

func personsInParagraphBefore(sorted []EntityMention, paraIdx, before int) []EntityMention {
	var out []EntityMention
	for _, e := range sorted {
		if e.Type != schema.Person || e.ParagraphIdx != paraIdx || e.End > before {
			continue
		}
		out = append(out, e)
	}
	return out
}

// attributeQuotes implements spec 4.6 strategy 4: a quoted span followed
// by (or preceded by) a speech verb is attached to the nearest PERSON
// entity within 30 characters of the verb.
func attributeQuotes(text string, entities []EntityMention) []Quote {
	sorted := sortedByStart(entities)
	var quotes []Quote
	for _, m := range quoteRe.FindAllStringSubmatchIndex(text, -1) {
		qStart, qEnd := m[0], m[1]
		verbPos, found := findNearbySpeechVerb(text, qEnd, 40)
		if !found {
			verbPos, found = findNearbySpeechVerbBefore(text, qStart, 40)
		}
		if !found {
			continue
		}
		cand := nearestWithinDistance(sorted, verbPos, schema.Person, 30)
		if cand == nil {
			continue
		}
		quotes = append(quotes, Quote{Start: qStart, End: qEnd, SpeakerEntityID: cand.EntityID, Confidence: 0.75})
	}
	return quotes
}

func findNearbySpeechVerb(text string, from, maxDist int) (int, bool) {
	hi := from + maxDist
	if hi > len(text) {
		hi = len(text)
	}
	window := strings.ToLower(text[from:hi])
	for verb := range lexicon.SpeechVerbs {
		if idx := strings.Index(window, verb); idx >= 0 {
			return from + idx, true
		}
	}
	return 0, false
}

func findNearbySpeechVerbBefore(text string, upto, maxDist int) (int, bool) {
	lo := upto - maxDist
	if lo < 0 {
		lo = 0
	}
	window := strings.ToLower(text[lo:upto])
	best := -1
	for verb := range lexicon.SpeechVerbs {
		if idx := strings.LastIndex(window, verb); idx >= 0 {
			pos := lo + idx
			if pos > best {
				best = pos
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// coordinationLinks implements spec 4.6 strategy 5: "X and Y verb" where
// both X and Y match known PERSON entities emits a link for each so
// downstream relation extraction can fan out.
func coordinationLinks(text string, entities []EntityMention) []Link {
	var links []Link
	for _, m := range coordinationRe.FindAllStringSubmatchIndex(text, -1) {
		fullStart, fullEnd := m[0], m[1]
		xStart, xEnd := m[2], m[3]
		yStart, yEnd := m[4], m[5]
		x := text[xStart:xEnd]
		y := text[yStart:yEnd]
		xEnt := findPersonByCanonical(entities, x)
		yEnt := findPersonByCanonical(entities, y)
		if xEnt == nil || yEnt == nil {
			continue
		}
		links = append(links,
			Link{MentionStart: fullStart, MentionEnd: fullEnd, EntityID: xEnt.EntityID, Confidence: 0.70, Method: "coordination"},
			Link{MentionStart: fullStart, MentionEnd: fullEnd, EntityID: yEnt.EntityID, Confidence: 0.70, Method: "coordination"},
		)
	}
	return links
}

func findPersonByCanonical(entities []EntityMention, name string) *EntityMention {
	for i := range entities {
		if entities[i].Type == schema.Person && strings.EqualFold(entities[i].Canonical, name) {
			return &entities[i]
		}
	}
	return nil
}

// resolveNicknames implements spec 4.6 strategy 6: the curated
// well-known-nickname table. A nickname only links when its mapped
// canonical name matches an entity the pipeline actually surfaced;
// otherwise there is no real EID to merge onto and the nickname is left
// unlinked.
func resolveNicknames(text string, entities []EntityMention) []Link {
	var links []Link
	lower := strings.ToLower(text)
	for nickname, canonical := range lexicon.WellKnownAliases {
		ent := findEntityByCanonical(entities, canonical)
		if ent == nil {
			continue
		}
		idx := 0
		for {
			pos := strings.Index(lower[idx:], nickname)
			if pos < 0 {
				break
			}
			start := idx + pos
			end := start + len(nickname)
			links = append(links, Link{
				MentionStart: start,
				MentionEnd:   end,
				EntityID:     ent.EntityID,
				Confidence:   0.95,
				Method:       "well-known-nickname",
			})
			idx = end
		}
	}
	return links
}

// findEntityByCanonical returns the known entity whose canonical name
// matches name, case-insensitively.
func findEntityByCanonical(entities []EntityMention, name string) *EntityMention {
	for i := range entities {
		if strings.EqualFold(entities[i].Canonical, name) {
			return &entities[i]
		}
	}
	return nil
}

func sortedByStart(entities []EntityMention) []EntityMention {
	out := append([]EntityMention(nil), entities...)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func nearestPrecedingOfType(sorted []EntityMention, before int, t schema.EntityType) *EntityMention {
	var best *EntityMention
	for i := range sorted {
		e := sorted[i]
		if e.Type != t {
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

func nearestWithinDistance(sorted []EntityMention, pos int, t schema.EntityType, maxDist int) *EntityMention {
	var best *EntityMention
	bestDist := maxDist + 1
	for i := range sorted {
		e := sorted[i]
		if e.Type != t {
			continue
		}
		var dist int
		if e.End <= pos {
			dist = pos - e.End
		} else if e.Start >= pos {
			dist = e.Start - pos
		} else {
			dist = 0
		}
		if dist <= maxDist && dist < bestDist {
			bestDist = dist
			c := e
			best = &c
		}
	}
	return best
}
