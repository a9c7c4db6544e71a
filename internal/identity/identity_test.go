package identity

import (
	"testing"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

func TestResolveExactAlias(t *testing.T) {
	store := New()
	store.RegisterAlias("Gandalf", schema.Person, 7, 1.0)

	result, ok := store.Resolve("Gandalf", schema.Person, nil, nil)
	if !ok {
		t.Fatalf("expected resolve to succeed")
	}
	if result.EID != 7 || result.Method != "exact" {
		t.Fatalf("got %+v", result)
	}
}

func TestResolveTitleVariant(t *testing.T) {
	store := New()
	store.RegisterAlias("Gandalf", schema.Person, 3, 1.0)

	result, ok := store.Resolve("Gandalf the Grey", schema.Person, nil, nil)
	if !ok {
		t.Fatalf("expected title-variant resolve to succeed")
	}
	if result.EID != 3 || result.Method != "title-variant" {
		t.Fatalf("got %+v", result)
	}
}

func TestResolveBlocksSurnameCompoundMerge(t *testing.T) {
	store := New()
	store.RegisterAlias("Gandalf the Grey", schema.Person, 5, 1.0)

	if _, ok := store.Resolve("Grey", schema.Person, nil, nil); ok {
		t.Fatalf("expected bare surname 'Grey' not to merge into 'Gandalf the Grey'")
	}
}

func TestResolveNoMatch(t *testing.T) {
	store := New()
	if _, ok := store.Resolve("Unknown", schema.Person, nil, nil); ok {
		t.Fatalf("expected no match for unregistered name")
	}
}

func TestAssignIdentityMintsNewEID(t *testing.T) {
	store := New()
	e := &model.Entity{Type: schema.Person, Canonical: "Frodo"}
	prof := model.NewProfile("eid-placeholder")

	AssignIdentity(store, e, prof, map[string]*model.Profile{}, nil)

	if e.EID == 0 {
		t.Fatalf("expected a minted EID, got 0")
	}
	if len(e.SP) == 0 {
		t.Fatalf("expected a sense path to be assigned")
	}
}

func TestAssignIdentityReusesExactAlias(t *testing.T) {
	store := New()
	first := &model.Entity{Type: schema.Person, Canonical: "Frodo"}
	AssignIdentity(store, first, model.NewProfile("p1"), map[string]*model.Profile{}, nil)

	second := &model.Entity{Type: schema.Person, Canonical: "Frodo"}
	AssignIdentity(store, second, model.NewProfile("p2"), map[string]*model.Profile{}, nil)

	if second.EID != first.EID {
		t.Fatalf("expected same EID on repeat mention: first=%d second=%d", first.EID, second.EID)
	}
}

func TestAssignIdentityMergesProfilesOnReuse(t *testing.T) {
	store := New()

	// Shared context gives the two mentions enough similarity to reuse the
	// same sense; the titles deliberately differ so the test can tell a
	// merge from an overwrite.
	sharedContext := "Frodo carried the ring to Mordor."

	first := &model.Entity{Type: schema.Person, Canonical: "Frodo"}
	p1 := model.NewProfile("p1")
	p1.Titles["Ring-bearer"] = true
	p1.AddContext(sharedContext)
	p1.RecordMention("doc1")
	AssignIdentity(store, first, p1, map[string]*model.Profile{}, nil)

	second := &model.Entity{Type: schema.Person, Canonical: "Frodo"}
	p2 := model.NewProfile("p2")
	p2.Titles["Mr. Baggins"] = true
	p2.AddContext(sharedContext)
	p2.RecordMention("doc2")
	AssignIdentity(store, second, p2, map[string]*model.Profile{}, nil)

	if second.EID != first.EID {
		t.Fatalf("expected the second mention to reuse the first's EID: first=%d second=%d", first.EID, second.EID)
	}

	stored, ok := store.ProfileFor(second.EID)
	if !ok {
		t.Fatalf("expected a stored profile for EID %d", second.EID)
	}
	if !stored.Titles["Ring-bearer"] || !stored.Titles["Mr. Baggins"] {
		t.Fatalf("expected both titles to survive the merge, got %+v", stored.Titles)
	}
	if stored.MentionCount != 2 {
		t.Fatalf("expected mention counts to accumulate across the merge, got %d", stored.MentionCount)
	}
}

func TestRecomputeAliasesExcludesPronouns(t *testing.T) {
	store := New()
	e := &model.Entity{Type: schema.Person, Canonical: "Frodo"}
	mentions := []CorefMentionText{
		{Text: "he", IsPronoun: true},
		{Text: "Frodo Baggins"},
	}
	AssignIdentity(store, e, model.NewProfile("p"), map[string]*model.Profile{}, mentions)

	for _, a := range e.Aliases {
		if a == "he" {
			t.Fatalf("pronoun mention leaked into aliases: %+v", e.Aliases)
		}
	}
}

func TestBestCanonicalPrefersLongestNonStopword(t *testing.T) {
	candidates := map[string]bool{
		"the":           true,
		"Frodo":         true,
		"Frodo Baggins": true,
	}
	got := bestCanonical(candidates)
	if got != "Frodo Baggins" {
		t.Fatalf("bestCanonical = %q, want %q", got, "Frodo Baggins")
	}
}
