// Package relfilter implements C7, the relation quality filter (spec
// 4.9, "Precision Layer 2"): four fixed filters applied in order, plus
// a confidence floor, the only step that reads config. Grounded on the teacher's
// extract.IsExclusiveRelation / Invalidator.CheckInvalidation
// contradiction-suppression idea (internal/extract/deep.go),
// generalized from LLM-driven invalidation into deterministic
// proximity/membership rules.
package relfilter

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mrfishcar/ares/internal/config"
	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

const marriedConfidenceFloor = 0.75

// sentenceWindow is the default married-to proximity window (spec 4.9.1's W).
const sentenceWindow = 2

// Reasons tallies why each relation was dropped.
type Reasons struct {
	MarriedProximity   int
	Sibling            int
	FamilyFriendEnemy  int
	Appositive         int
	LowConfidence      int
}

// Input is C7's typed input.
type Input struct {
	Text      string
	Entities  []*model.Entity
	Relations []*model.Relation
	Config    config.EngineConfig
}

// Result is C7's typed output.
type Result struct {
	Relations []*model.Relation
	Reasons   Reasons
}

// Filter runs the four ordered filters plus the confidence floor over
// in.Relations.
func Filter(in Input) Result {
	byID := make(map[string]*model.Entity, len(in.Entities))
	for _, e := range in.Entities {
		byID[e.ID] = e
	}

	var reasons Reasons
	relations := append([]*model.Relation(nil), in.Relations...)

	relations = suppressMarriedProximity(relations, &reasons)
	relations = suppressSiblingParentage(in.Text, byID, relations, &reasons)
	relations = suppressFamilyFriendsEnemies(relations, &reasons)
	relations = resolveAppositiveVsCoordination(byID, relations, &reasons)
	relations = applyConfidenceFloor(in.Config, relations, &reasons)

	return Result{Relations: relations, Reasons: reasons}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "::" + b
}

func minSentence(r *model.Relation) (int, bool) {
	best := 0
	found := false
	for _, ev := range r.Evidence {
		if !found || ev.SentenceIndex < best {
			best = ev.SentenceIndex
			found = true
		}
	}
	return best, found
}

// suppressMarriedProximity implements spec 4.9 filter 1: a parent_of or
// child_of candidate sharing a married couple's argument pair is
// dropped if any of its evidence sentences falls within
// ±sentenceWindow of a high-confidence married_to sentence for that
// pair.
func suppressMarriedProximity(relations []*model.Relation, reasons *Reasons) []*model.Relation {
	marriedSentences := map[string][]int{}
	for _, r := range relations {
		if r.Pred != schema.MarriedTo || r.Confidence <= marriedConfidenceFloor {
			continue
		}
		key := pairKey(r.Subj, r.Obj)
		for _, ev := range r.Evidence {
			marriedSentences[key] = append(marriedSentences[key], ev.SentenceIndex)
		}
	}

	var out []*model.Relation
	for _, r := range relations {
		if r.Pred != schema.ParentOf && r.Pred != schema.ChildOf {
			out = append(out, r)
			continue
		}
		key := pairKey(r.Subj, r.Obj)
		sentIdxs, ok := marriedSentences[key]
		if !ok {
			out = append(out, r)
			continue
		}
		dropped := false
		for _, ev := range r.Evidence {
			for _, ms := range sentIdxs {
				if abs(ev.SentenceIndex-ms) <= sentenceWindow {
					dropped = true
					break
				}
			}
			if dropped {
				break
			}
		}
		if dropped {
			reasons.MarriedProximity++
			continue
		}
		out = append(out, r)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

var eldestSiblingRe = regexp.MustCompile(`(?i)\b([A-Z][a-zA-Z']+)\s*,?\s+the\s+(?:eldest|youngest|twin)\s+(?:son|daughter|child|brother|sister|sibling)\b`)
var childrenListRe = regexp.MustCompile(`(?i)\btheir\s+children\s+(?:included|were|are)\s+([^.;\n]+)`)

// suppressSiblingParentage implements spec 4.9 filter 2: names appearing
// in an eldest/youngest/twin-sibling construction, or in a "their
// children included A, B, and C" list, are registered as siblings.
// parent_of relations whose subject is a sibling, and child_of
// relations whose object is a sibling, are dropped.
func suppressSiblingParentage(text string, byID map[string]*model.Entity, relations []*model.Relation, reasons *Reasons) []*model.Relation {
	siblings := map[string]bool{}

	nameMatches := func(re *regexp.Regexp, group int) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) <= group {
				continue
			}
			registerSiblingByName(byID, siblings, m[group])
		}
	}
	nameMatches(eldestSiblingRe, 1)

	for _, m := range childrenListRe.FindAllStringSubmatch(text, -1) {
		if len(m) < 2 {
			continue
		}
		for _, name := range splitNameList(m[1]) {
			registerSiblingByName(byID, siblings, name)
		}
	}

	var out []*model.Relation
	for _, r := range relations {
		if r.Pred == schema.ParentOf && siblings[r.Subj] {
			reasons.Sibling++
			continue
		}
		if r.Pred == schema.ChildOf && siblings[r.Obj] {
			reasons.Sibling++
			continue
		}
		out = append(out, r)
	}
	return out
}

func registerSiblingByName(byID map[string]*model.Entity, siblings map[string]bool, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	for id, e := range byID {
		if e.Type != schema.Person {
			continue
		}
		if strings.EqualFold(e.Canonical, name) || e.HasAlias(name) {
			siblings[id] = true
		}
	}
}

var nameListSepRe = regexp.MustCompile(`,|\band\b`)

func splitNameList(s string) []string {
	parts := nameListSepRe.Split(s, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// suppressFamilyFriendsEnemies implements spec 4.9 filter 3: builds the
// family-pair set from parent_of/child_of/married_to/sibling_of (plus
// sibling pairs implied by a shared parent), then drops friends_with or
// enemy_of relations whose pair is in that set, and drops teaches_at
// when the subject is a known child.
func suppressFamilyFriendsEnemies(relations []*model.Relation, reasons *Reasons) []*model.Relation {
	familyPairs := map[string]bool{}
	children := map[string]bool{}
	parentsOf := map[string][]string{}

	for _, r := range relations {
		switch r.Pred {
		case schema.ParentOf:
			familyPairs[pairKey(r.Subj, r.Obj)] = true
			children[r.Obj] = true
			parentsOf[r.Obj] = append(parentsOf[r.Obj], r.Subj)
		case schema.ChildOf:
			familyPairs[pairKey(r.Subj, r.Obj)] = true
			children[r.Subj] = true
			parentsOf[r.Subj] = append(parentsOf[r.Subj], r.Obj)
		case schema.MarriedTo, schema.SiblingOf:
			familyPairs[pairKey(r.Subj, r.Obj)] = true
		}
	}

	// Sibling pairs implied by a shared parent.
	byParent := map[string][]string{}
	for child, parents := range parentsOf {
		for _, p := range parents {
			byParent[p] = append(byParent[p], child)
		}
	}
	for _, kids := range byParent {
		for i := 0; i < len(kids); i++ {
			for j := i + 1; j < len(kids); j++ {
				familyPairs[pairKey(kids[i], kids[j])] = true
			}
		}
	}

	var out []*model.Relation
	for _, r := range relations {
		if (r.Pred == schema.FriendsWith || r.Pred == schema.EnemyOf) && familyPairs[pairKey(r.Subj, r.Obj)] {
			reasons.FamilyFriendEnemy++
			continue
		}
		if r.Pred == schema.TeachesAt && children[r.Subj] {
			reasons.FamilyFriendEnemy++
			continue
		}
		out = append(out, r)
	}
	return out
}

type groupKey struct {
	pred schema.Predicate
	obj  string
}

// resolveAppositiveVsCoordination implements spec 4.9 filter 4: groups
// relations by (pred, obj); a group of >1 subjects is "coordinated"
// (all kept) if every adjacent subject pair (sorted by text position)
// is within the predicate's distance threshold and neither subject's
// canonical is a substring of the other, otherwise it is "appositive"
// and only the first subject survives.
func resolveAppositiveVsCoordination(byID map[string]*model.Entity, relations []*model.Relation, reasons *Reasons) []*model.Relation {
	groups := map[groupKey][]*model.Relation{}
	var order []groupKey
	for _, r := range relations {
		k := groupKey{pred: r.Pred, obj: r.Obj}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	var out []*model.Relation
	for _, k := range order {
		group := groups[k]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			si, _ := minSentence(group[i])
			sj, _ := minSentence(group[j])
			if si != sj {
				return si < sj
			}
			return spanStart(group[i]) < spanStart(group[j])
		})

		threshold := 100
		if isFamilyPredicate(k.pred) {
			threshold = 250
		}

		coordinated := true
		for i := 0; i+1 < len(group); i++ {
			a, b := group[i], group[i+1]
			if spanStart(b)-spanStart(a) > threshold {
				coordinated = false
				break
			}
			ca := canonicalOf(byID, a.Subj)
			cb := canonicalOf(byID, b.Subj)
			if ca != "" && cb != "" && (strings.Contains(strings.ToLower(ca), strings.ToLower(cb)) || strings.Contains(strings.ToLower(cb), strings.ToLower(ca))) {
				coordinated = false
				break
			}
		}

		if coordinated {
			out = append(out, group...)
			continue
		}
		out = append(out, group[0])
		reasons.Appositive += len(group) - 1
	}
	return out
}

func isFamilyPredicate(p schema.Predicate) bool {
	return p == schema.ParentOf || p == schema.ChildOf || p == schema.LivesIn
}

func spanStart(r *model.Relation) int {
	if len(r.Evidence) == 0 {
		return 0
	}
	return r.Evidence[0].SpanStart
}

func canonicalOf(byID map[string]*model.Entity, id string) string {
	if e, ok := byID[id]; ok {
		return e.Canonical
	}
	return ""
}

// applyConfidenceFloor implements spec 4.9 filter 5.
func applyConfidenceFloor(cfg config.EngineConfig, relations []*model.Relation, reasons *Reasons) []*model.Relation {
	floor := cfg.RelationMinConfidence
	if floor <= 0 {
		floor = 0.65
	}
	var out []*model.Relation
	for _, r := range relations {
		if r.Confidence < floor {
			reasons.LowConfidence++
			continue
		}
		out = append(out, r)
	}
	return out
}
