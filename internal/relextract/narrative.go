package relextract

import (
	"regexp"
	"strings"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

// narrativePattern is one entry in the fixed surface-verb catalog spec
// 4.8 describes: a regex with a subject capture group and an object
// capture group, mapped to a predicate.
type narrativePattern struct {
	re         *regexp.Regexp
	pred       schema.Predicate
	subj       int
	obj        int
	confid     float64
	dualParent bool // group 2 is a second parent alongside group 1, group 3 is the child
}

// narrativePatterns is the fixed catalog of regex templates keyed on
// surface verbs, per spec 4.8. Grounded on the teacher's
// internal/extract/deep.go relationship-verb prompt list, translated
// into standalone regexes.
var narrativePatterns = []narrativePattern{
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+married\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.MarriedTo, subj: 1, obj: 2, confid: 0.85},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+ruled\s+(?:over\s+)?([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.Rules, subj: 1, obj: 2, confid: 0.75},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+founded\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.Founded, subj: 1, obj: 2, confid: 0.8},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+taught\s+(?:at\s+)?([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.TeachesAt, subj: 1, obj: 2, confid: 0.65},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+fought\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.Fought, subj: 1, obj: 2, confid: 0.7},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+(?:travell?ed|journeyed)\s+to\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.TravelledTo, subj: 1, obj: 2, confid: 0.75},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+built\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.Built, subj: 1, obj: 2, confid: 0.7},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+(?:authored|wrote)\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.Authored, subj: 1, obj: 2, confid: 0.7},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+spoke\s+to\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.SpokeTo, subj: 1, obj: 2, confid: 0.65},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+met\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.Met, subj: 1, obj: 2, confid: 0.65},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+(?:lived|lives)\s+in\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.LivesIn, subj: 1, obj: 2, confid: 0.7},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+was\s+born\s+in\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.BornIn, subj: 1, obj: 2, confid: 0.75},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+died\s+in\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.DiesIn, subj: 1, obj: 2, confid: 0.75},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+(?:was|is)\s+(?:a\s+)?member\s+of\s+(?:the\s+)?([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.MemberOf, subj: 1, obj: 2, confid: 0.7},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+owns?\s+(?:the\s+)?([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.Owns, subj: 1, obj: 2, confid: 0.6},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+(?:is|was)\s+friends\s+with\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.FriendsWith, subj: 1, obj: 2, confid: 0.7},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+(?:is|was)\s+(?:an\s+)?enem(?:y|ies)\s+(?:of|with)\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.EnemyOf, subj: 1, obj: 2, confid: 0.7},
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+(?:is|was)\s+(?:an\s+)?ally\s+of\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\b`), pred: schema.AllyOf, subj: 1, obj: 2, confid: 0.7},
	// dual-parent family pattern: "X and Y had a son Z" makes both X and
	// Y parents of Z. Collective phrases ("the couple had a son", "their
	// children included") are handled by resolveCollectiveFamily.
	{re: regexp.MustCompile(`\b([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+and\s+([A-Z][a-zA-Z']+(?:\s[A-Z][a-zA-Z']+)?)\s+had\s+(?:a\s+)?(?:son|daughter|child)\s+([A-Z][a-zA-Z']+)\b`), pred: schema.ParentOf, subj: 1, obj: 3, confid: 0.75, dualParent: true},
}

// runNarrativePatterns applies narrativePatterns over the whole
// document and resolves captured name text back to merged entity ids
// via idx, per spec 4.8.
func runNarrativePatterns(in Input, idx *spanIndex, b *relationBuilder) []*model.Relation {
	var out []*model.Relation
	for _, p := range narrativePatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(in.Text, -1) {
			subjStart, subjEnd := m[2*p.subj], m[2*p.subj+1]
			objStart, objEnd := m[2*p.obj], m[2*p.obj+1]

			subjEnt := idx.entityAt(subjStart, subjEnd)
			objEnt := idx.entityAt(objStart, objEnd)
			if subjEnt == nil || objEnt == nil {
				continue
			}
			sentIdx := sentenceIndexAt(in.Sentences, subjStart)
			if r := b.newRelation(subjEnt.ID, p.pred, objEnt.ID, subjStart, objEnd, sentIdx, p.confid, "narrative-"+string(p.pred)); r != nil {
				out = append(out, r)
			}

			if p.dualParent {
				// the "X and Y had a child Z" template: both X and Y
				// become parents of Z.
				secondStart, secondEnd := m[4], m[5]
				if secondEnt := idx.entityAt(secondStart, secondEnd); secondEnt != nil {
					if r := b.newRelation(secondEnt.ID, p.pred, objEnt.ID, secondStart, objEnd, sentenceIndexAt(in.Sentences, secondStart), p.confid, "narrative-"+string(p.pred)); r != nil {
						out = append(out, r)
					}
				}
			}
		}
	}
	out = append(out, resolveCollectiveFamily(in, idx, b)...)
	return out
}

var coupleChildRe = regexp.MustCompile(`(?i)\bthe\s+couple\s+had\s+(?:a\s+)?(?:son|daughter|child)\s+([A-Z][a-zA-Z']+)\b`)
var theirChildrenRe = regexp.MustCompile(`(?i)\btheir\s+children\s+(?:included|were|are)\s+([A-Z][a-zA-Z',\s]+?)(?:\.|;|\n)`)

// resolveCollectiveFamily handles "the couple had a son NAME" and
// "their children included A, B, and C" by fanning the captured child
// name(s) out to the PERSON entities mentioned between the start of the
// sentence two before the match and the match itself, keeping at most
// the last two of them (the couple), per spec 4.8's coreference-assisted
// clause.
func resolveCollectiveFamily(in Input, idx *spanIndex, b *relationBuilder) []*model.Relation {
	var out []*model.Relation

	for _, m := range coupleChildRe.FindAllStringSubmatchIndex(in.Text, -1) {
		childStart, childEnd := m[2], m[3]
		childEnt := idx.entityAt(childStart, childEnd)
		if childEnt == nil {
			continue
		}
		for _, parent := range nearbyPersons(in, idx, m[0], 2) {
			sentIdx := sentenceIndexAt(in.Sentences, m[0])
			if r := b.newRelation(parent.Entity.ID, schema.ParentOf, childEnt.ID, m[0], childEnd, sentIdx, 0.7, "narrative-parent_of"); r != nil {
				out = append(out, r)
			}
		}
	}

	for _, m := range theirChildrenRe.FindAllStringSubmatchIndex(in.Text, -1) {
		listStart, listEnd := m[2], m[3]
		children := entitiesNamedIn(idx, in.Text[listStart:listEnd], listStart)
		parents := nearbyPersons(in, idx, m[0], 2)
		sentIdx := sentenceIndexAt(in.Sentences, m[0])
		for _, parent := range parents {
			for _, child := range children {
				if r := b.newRelation(parent.Entity.ID, schema.ParentOf, child.ID, m[0], listEnd, sentIdx, 0.7, "narrative-parent_of"); r != nil {
					out = append(out, r)
				}
			}
		}
	}

	return out
}

// nearbyPersons returns the PERSON entities whose spans end before
// offset, within the preceding numSentences sentences.
func nearbyPersons(in Input, idx *spanIndex, offset int, numSentences int) []spanEntity {
	sentIdx := sentenceIndexAt(in.Sentences, offset)
	lo := 0
	if sentIdx-numSentences >= 0 {
		lo = in.Sentences[sentIdx-numSentences].Start
	}
	var out []spanEntity
	for _, se := range idx.entitiesInRange(lo, offset) {
		if se.Entity.Type == schema.Person {
			out = append(out, se)
		}
	}
	if len(out) > 2 {
		out = out[len(out)-2:]
	}
	return out
}

// entitiesNamedIn scans segment (offset by base) for capitalized name
// tokens and resolves each to an entity via idx.
func entitiesNamedIn(idx *spanIndex, segment string, base int) []*model.Entity {
	nameRe := regexp.MustCompile(`\b[A-Z][a-zA-Z']+\b`)
	var out []*model.Entity
	seen := map[string]bool{}
	for _, m := range nameRe.FindAllStringIndex(segment, -1) {
		word := segment[m[0]:m[1]]
		if word == "And" || strings.EqualFold(word, "and") {
			continue
		}
		if e := idx.entityAt(base+m[0], base+m[1]); e != nil && !seen[e.ID] {
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	return out
}
