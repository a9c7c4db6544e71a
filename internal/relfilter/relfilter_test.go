package relfilter

import (
	"testing"

	"github.com/mrfishcar/ares/internal/config"
	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

func rel(id, subj string, pred schema.Predicate, obj string, confidence float64, sentIdx, spanStart int) *model.Relation {
	return &model.Relation{
		ID: id, Subj: subj, Pred: pred, Obj: obj, Confidence: confidence,
		Evidence: []model.Evidence{{SentenceIndex: sentIdx, SpanStart: spanStart, SpanEnd: spanStart + 5}},
	}
}

func baseConfig() config.EngineConfig {
	return config.EngineConfig{RelationMinConfidence: 0.65}
}

func TestMarriedProximitySuppressesSpousalParentOf(t *testing.T) {
	relations := []*model.Relation{
		rel("r1", "aragorn", schema.MarriedTo, "arwen", 0.9, 0, 0),
		rel("r2", "aragorn", schema.ParentOf, "arwen", 0.8, 1, 10),
		rel("r3", "aragorn", schema.ParentOf, "eldarion", 0.8, 1, 20),
	}
	res := Filter(Input{Relations: relations, Config: baseConfig()})
	for _, r := range res.Relations {
		if r.ID == "r2" {
			t.Fatalf("expected parent_of(aragorn,arwen) to be suppressed by married proximity")
		}
	}
	foundEldarion := false
	for _, r := range res.Relations {
		if r.ID == "r3" {
			foundEldarion = true
		}
	}
	if !foundEldarion {
		t.Fatalf("expected parent_of(aragorn,eldarion) to survive")
	}
	if res.Reasons.MarriedProximity != 1 {
		t.Fatalf("expected MarriedProximity=1, got %d", res.Reasons.MarriedProximity)
	}
}

func TestSiblingDetectionDropsParentOf(t *testing.T) {
	text := "Boromir, the eldest son, led the men of Gondor."
	entities := []*model.Entity{
		{ID: "boromir", Type: schema.Person, Canonical: "Boromir"},
		{ID: "denethor", Type: schema.Person, Canonical: "Denethor"},
	}
	relations := []*model.Relation{
		rel("r1", "boromir", schema.ParentOf, "denethor", 0.8, 0, 0),
	}
	res := Filter(Input{Text: text, Entities: entities, Relations: relations, Config: baseConfig()})
	if len(res.Relations) != 0 {
		t.Fatalf("expected parent_of with a sibling-flagged subject to be dropped, got %+v", res.Relations)
	}
	if res.Reasons.Sibling != 1 {
		t.Fatalf("expected Sibling=1, got %d", res.Reasons.Sibling)
	}
}

func TestFamilyPairsSuppressFriendsWith(t *testing.T) {
	relations := []*model.Relation{
		rel("r1", "frodo", schema.ParentOf, "merry", 0.8, 0, 0),
		rel("r2", "frodo", schema.FriendsWith, "merry", 0.8, 1, 10),
	}
	res := Filter(Input{Relations: relations, Config: baseConfig()})
	for _, r := range res.Relations {
		if r.ID == "r2" {
			t.Fatalf("expected friends_with between a parent/child pair to be suppressed")
		}
	}
	if res.Reasons.FamilyFriendEnemy != 1 {
		t.Fatalf("expected FamilyFriendEnemy=1, got %d", res.Reasons.FamilyFriendEnemy)
	}
}

func TestAppositiveKeepsOnlyFirstSubject(t *testing.T) {
	entities := []*model.Entity{
		{ID: "a", Type: schema.Person, Canonical: "Pippin"},
		{ID: "b", Type: schema.Person, Canonical: "Someone Else Entirely"},
	}
	relations := []*model.Relation{
		rel("r1", "a", schema.MemberOf, "org1", 0.8, 0, 0),
		rel("r2", "b", schema.MemberOf, "org1", 0.8, 0, 900),
	}
	res := Filter(Input{Entities: entities, Relations: relations, Config: baseConfig()})
	if len(res.Relations) != 1 || res.Relations[0].ID != "r1" {
		t.Fatalf("expected only the first (appositive) subject to survive, got %+v", res.Relations)
	}
	if res.Reasons.Appositive != 1 {
		t.Fatalf("expected Appositive=1, got %d", res.Reasons.Appositive)
	}
}

func TestCoordinationKeepsAllNearbySubjects(t *testing.T) {
	entities := []*model.Entity{
		{ID: "a", Type: schema.Person, Canonical: "Merry"},
		{ID: "b", Type: schema.Person, Canonical: "Pippin"},
	}
	relations := []*model.Relation{
		rel("r1", "a", schema.MemberOf, "org1", 0.8, 0, 0),
		rel("r2", "b", schema.MemberOf, "org1", 0.8, 0, 20),
	}
	res := Filter(Input{Entities: entities, Relations: relations, Config: baseConfig()})
	if len(res.Relations) != 2 {
		t.Fatalf("expected both coordinated subjects to survive, got %+v", res.Relations)
	}
}

func TestConfidenceFloorDropsLowConfidenceRelations(t *testing.T) {
	relations := []*model.Relation{
		rel("r1", "a", schema.Met, "b", 0.3, 0, 0),
	}
	res := Filter(Input{Relations: relations, Config: baseConfig()})
	if len(res.Relations) != 0 {
		t.Fatalf("expected low-confidence relation to be dropped")
	}
	if res.Reasons.LowConfidence != 1 {
		t.Fatalf("expected LowConfidence=1, got %d", res.Reasons.LowConfidence)
	}
}
