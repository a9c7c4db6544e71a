package identity

import (
	"sort"
	"strings"

	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/profile"
	"github.com/mrfishcar/ares/internal/schema"
)

// CorefMentionText is one coreference-link mention text (spec 4.12 step
// 4(b)), used to populate aliases. isPronoun/isCoordination mark mentions
// that must be excluded.
type CorefMentionText struct {
	Text          string
	IsPronoun     bool
	IsCoordination bool
}

// senseDiscriminationThreshold is the confidence above which the sense
// discriminator's recommendation to split is honored (spec 4.12 step 2).
const senseDiscriminationThreshold = 0.7

// AssignIdentity implements spec section 4.12 in full: resolve, then
// either reuse or split a sense, or mint a new EID; finally recompute
// aliases and canonical form.
func AssignIdentity(store *IdentityStore, e *model.Entity, prof *model.Profile, allProfiles map[string]*model.Profile, corefMentions []CorefMentionText) {
	result, resolved := store.Resolve(e.Canonical, e.Type, prof, allProfiles)

	var eid int64
	var sp []int

	if resolved {
		// Step 2: check existing senses at that name via the sense registry.
		senses := store.Senses(e.Canonical, e.Type)
		reuse := false
		for _, se := range senses {
			if se.EID == result.EID {
				if existing, ok := store.ProfileFor(se.EID); ok && profile.Similarity(prof, existing) >= 0.5 {
					eid = se.EID
					sp = se.SP
					reuse = true
					break
				}
			}
		}
		if !reuse {
			existingProfile, _ := store.ProfileFor(result.EID)
			discriminate, confidence := shouldDisambiguate(prof, existingProfile)
			if discriminate && confidence > senseDiscriminationThreshold {
				eid = store.NextEID()
				sp = store.NextSP(e.Canonical, e.Type)
				store.RegisterSense(e.Canonical, e.Type, sp, eid)
			} else {
				eid = result.EID
				if len(senses) == 0 {
					sp = []int{1}
					store.RegisterSense(e.Canonical, e.Type, sp, eid)
				} else {
					sp = senses[0].SP
				}
			}
		}
	} else {
		// Step 3: mint a new EID, register at confidence 1.0.
		eid = store.NextEID()
		store.RegisterAlias(e.Canonical, e.Type, eid, 1.0)
		senses := store.Senses(e.Canonical, e.Type)
		if len(senses) == 0 {
			sp = []int{1}
		} else {
			sp = store.NextSP(e.Canonical, e.Type)
		}
		store.RegisterSense(e.Canonical, e.Type, sp, eid)
	}

	e.EID = eid
	e.SP = sp
	e.AID = store.NextAID(e.Canonical)

	// Profiles are merged pairwise when two entities are unified onto the
	// same EID, not overwritten: a freshly minted EID has nothing stored
	// yet, but a reused/resolved one may already carry history from an
	// earlier mention or document.
	if existing, ok := store.ProfileFor(eid); ok && existing != prof {
		existing.Merge(prof)
		store.StoreProfile(eid, existing)
	} else {
		store.StoreProfile(eid, prof)
	}

	// Step 4: recompute aliases and canonical.
	recomputeAliases(store, e, corefMentions, eid)
}

// shouldDisambiguate is the sense discriminator: given two profiles,
// decides whether they describe different senses of the same surface
// form. A low overlap in descriptor/title sets at otherwise-similar
// mention volume suggests two distinct referents sharing a name.
func shouldDisambiguate(a, b *model.Profile) (bool, float64) {
	if a == nil || b == nil {
		return false, 0
	}
	sim := profile.Similarity(a, b)
	if sim >= 0.5 {
		return false, 0
	}
	// The more confidently dissimilar the profiles, the higher our
	// confidence that they are in fact different senses.
	confidence := 1.0 - sim
	return true, confidence
}

// recomputeAliases implements spec 4.12 step 4: populate e.Aliases from
// (a) previously stored aliases, (b) coreference-link mention texts
// excluding pronouns/demonstratives/coordination mentions, and (c) all
// alias-registry surface forms for the EID; then recompute canonical as
// the longest non-stopword proper form in that union.
func recomputeAliases(store *IdentityStore, e *model.Entity, corefMentions []CorefMentionText, eid int64) {
	candidates := map[string]bool{e.Canonical: true}
	for _, a := range e.Aliases {
		candidates[a] = true
	}
	for _, m := range corefMentions {
		if m.IsPronoun || m.IsCoordination {
			continue
		}
		if m.Text != "" {
			candidates[m.Text] = true
		}
	}
	store.IterMappings(func(name string, t schema.EntityType, mappedEID int64, _ float64) {
		if mappedEID == eid && t == e.Type {
			candidates[name] = true
		}
	})

	best := bestCanonical(candidates)
	e.Canonical = best
	e.Aliases = nil
	for c := range candidates {
		if !strings.EqualFold(c, best) {
			e.AddAlias(c)
		}
	}
	sort.Strings(e.Aliases)
}

// bestCanonical picks the longest non-stopword proper form from the
// candidate set, per spec 4.12 step 4's closing sentence.
func bestCanonical(candidates map[string]bool) string {
	best := ""
	for c := range candidates {
		if isAllStopwords(c) {
			continue
		}
		if len(c) > len(best) {
			best = c
		}
	}
	if best == "" {
		for c := range candidates {
			return c
		}
	}
	return best
}

func isAllStopwords(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if !isStopwordToken(f) {
			return false
		}
	}
	return true
}

func isStopwordToken(s string) bool {
	return lexicon.IsStopWord(strings.Trim(s, ".,;:!?"))
}
