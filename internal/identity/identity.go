// Package identity implements C4: cross-document stable entity identity
// (EID), per-surface-form alias identity (AID), and per-sense path (SP),
// built on an alias resolver, a sense discriminator, and a coreference-
// aware alias collector.
//
// The registries are process-wide-shaped but explicitly threaded as a
// single IdentityStore value, per spec section 9's guidance, and guarded
// by a sync.RWMutex the way the teacher's graph.DB guards its entity
// cache (internal/graph/db.go's entityCacheMu).
package identity

import (
	"strings"
	"sync"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/profile"
	"github.com/mrfishcar/ares/internal/schema"
)

// aliasKey is the alias-registry lookup key: type + lowercase name.
func aliasKey(t schema.EntityType, name string) string {
	return string(t) + "::" + strings.ToLower(name)
}

// aliasEntry is one registered (name, type) -> EID mapping.
type aliasEntry struct {
	EID        int64
	Confidence float64
}

// senseEntry is one discriminated sense at a given (name, type).
type senseEntry struct {
	SP  []int
	EID int64
}

// IdentityStore holds the process-wide EID/AID/SP registries. The zero
// value is not usable; construct with New.
type IdentityStore struct {
	mu sync.RWMutex

	nextEID int64
	nextAID int64

	aliases map[string]aliasEntry    // aliasKey -> entry
	aidOf   map[string]int64         // lowercase surface form -> AID
	senses  map[string][]senseEntry  // aliasKey -> senses at that name+type
	profiles map[int64]*model.Profile // EID -> merged profile

	// Manual is a caller-supplied manual alias mapping consulted as step
	// (b) of Resolve (spec 4.12).
	Manual map[string]string // lowercase surface form -> canonical name
}

// New returns an empty IdentityStore.
func New() *IdentityStore {
	return &IdentityStore{
		nextEID:  1,
		nextAID:  1,
		aliases:  make(map[string]aliasEntry),
		aidOf:    make(map[string]int64),
		senses:   make(map[string][]senseEntry),
		profiles: make(map[int64]*model.Profile),
		Manual:   make(map[string]string),
	}
}

// ResolveResult is the outcome of resolving a canonical name against the
// registries.
type ResolveResult struct {
	EID        int64
	Confidence float64
	Method     string // "exact", "manual", "title-variant", "similarity", ""
}

// Resolve implements spec 4.12 step 1's aliasResolver.resolve: exact
// match, manual mapping, title-variation matching, then profile
// similarity >= 0.8. Returns ok=false if nothing matched.
func (s *IdentityStore) Resolve(canonical string, t schema.EntityType, prof *model.Profile, allProfiles map[string]*model.Profile) (ResolveResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := aliasKey(t, canonical)

	// (a) exact match in the alias registry
	if e, ok := s.aliases[key]; ok {
		return ResolveResult{EID: e.EID, Confidence: 1.0, Method: "exact"}, true
	}

	// (b) user-supplied manual mapping
	if mapped, ok := s.Manual[strings.ToLower(canonical)]; ok {
		if e, ok := s.aliases[aliasKey(t, mapped)]; ok {
			return ResolveResult{EID: e.EID, Confidence: 0.95, Method: "manual"}, true
		}
	}

	// (c) title-variation matching ("Gandalf" <-> "Gandalf the Grey"),
	// guarded against pure-surname -> compound merges.
	if t == schema.Person {
		for existingKey, e := range s.aliases {
			if !strings.HasPrefix(existingKey, string(t)+"::") {
				continue
			}
			existingName := strings.TrimPrefix(existingKey, string(t)+"::")
			if isTitleVariant(canonical, existingName) && !isPureSurnameCompoundMerge(canonical, existingName) {
				return ResolveResult{EID: e.EID, Confidence: 0.9, Method: "title-variant"}, true
			}
		}
	}

	// (d) profile similarity >= 0.8
	if prof != nil {
		var bestEID int64 = -1
		var bestScore float64
		for otherID, otherProf := range allProfiles {
			if otherID == prof.EntityID {
				continue
			}
			score := profile.Similarity(prof, otherProf)
			if score > bestScore {
				bestScore = score
				bestEID = eidForProfile(s, otherProf)
			}
		}
		if bestScore >= 0.8 && bestEID >= 0 {
			return ResolveResult{EID: bestEID, Confidence: bestScore, Method: "similarity"}, true
		}
	}

	return ResolveResult{}, false
}

func eidForProfile(s *IdentityStore, p *model.Profile) int64 {
	for eid, pr := range s.profiles {
		if pr == p {
			return eid
		}
	}
	return -1
}

// isTitleVariant reports whether a and b are the same base name with one
// having a trailing title ("Gandalf" vs "Gandalf the Grey").
func isTitleVariant(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	shorter, longer := la, lb
	if len(la) > len(lb) {
		shorter, longer = lb, la
	}
	if shorter == longer {
		return false
	}
	return strings.HasPrefix(longer, shorter+" ")
}

// isPureSurnameCompoundMerge blocks merging a bare surname into an
// unrelated compound name that happens to share a trailing word.
func isPureSurnameCompoundMerge(a, b string) bool {
	aw := strings.Fields(a)
	bw := strings.Fields(b)
	if len(aw) != 1 || len(bw) < 2 {
		return false
	}
	// a single bare word only title-varies with b if b's *first* word is a,
	// never if a merely matches b's last word (that would be a surname
	// masquerading as a match, e.g. "Grey" vs "Gandalf the Grey").
	return !strings.EqualFold(aw[0], bw[0])
}

// RegisterAlias records a new (name, type) -> EID mapping with the given
// confidence, used both for fresh registrations and for confirmed merges.
func (s *IdentityStore) RegisterAlias(name string, t schema.EntityType, eid int64, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliases[aliasKey(t, name)] = aliasEntry{EID: eid, Confidence: confidence}
}

// NextEID mints and returns a new, never-before-used EID.
func (s *IdentityStore) NextEID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	eid := s.nextEID
	s.nextEID++
	return eid
}

// NextAID returns the AID registered for a surface form (matched
// case-insensitively), minting a new one the first time the form is seen.
func (s *IdentityStore) NextAID(surfaceForm string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(surfaceForm)
	if aid, ok := s.aidOf[key]; ok {
		return aid
	}
	aid := s.nextAID
	s.nextAID++
	s.aidOf[key] = aid
	return aid
}

// Senses returns the discriminated senses currently registered at (name, t).
func (s *IdentityStore) Senses(name string, t schema.EntityType) []senseEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]senseEntry(nil), s.senses[aliasKey(t, name)]...)
}

// NextSP returns the next sense path at (name, t): [1] if no sense is
// registered yet, otherwise [n+1] where n is the highest existing sense.
func (s *IdentityStore) NextSP(name string, t schema.EntityType) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := aliasKey(t, name)
	existing := s.senses[key]
	if len(existing) == 0 {
		return []int{1}
	}
	max := 0
	for _, se := range existing {
		if len(se.SP) > 0 && se.SP[0] > max {
			max = se.SP[0]
		}
	}
	return []int{max + 1}
}

// RegisterSense records a new discriminated sense at (name, t).
func (s *IdentityStore) RegisterSense(name string, t schema.EntityType, sp []int, eid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := aliasKey(t, name)
	s.senses[key] = append(s.senses[key], senseEntry{SP: sp, EID: eid})
}

// StoreProfile records prof as the merged profile for eid, for future
// cross-document similarity lookups.
func (s *IdentityStore) StoreProfile(eid int64, prof *model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[eid] = prof
}

// ProfileFor returns the stored profile for eid, if any.
func (s *IdentityStore) ProfileFor(eid int64) (*model.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[eid]
	return p, ok
}

// IterMappings exposes the alias registry's entries publicly, avoiding
// the teacher's private-member-access code smell
// (aliasRegistry['mappings'].values()) per spec section 9.
func (s *IdentityStore) IterMappings(fn func(name string, t schema.EntityType, eid int64, confidence float64)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, e := range s.aliases {
		parts := strings.SplitN(key, "::", 2)
		if len(parts) != 2 {
			continue
		}
		fn(parts[1], schema.EntityType(parts[0]), e.EID, e.Confidence)
	}
}
