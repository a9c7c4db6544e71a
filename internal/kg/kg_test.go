package kg

import (
	"testing"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

func entity(id string, typ schema.EntityType, canonical string) *model.Entity {
	return &model.Entity{ID: id, Type: typ, Canonical: canonical}
}

func TestDropHeadingNames(t *testing.T) {
	in := Input{
		Entities: []*model.Entity{
			entity("e1", schema.Misc, "Chapter 12"),
			entity("e2", schema.Misc, "Prologue One"),
			entity("e3", schema.Person, "Frodo"),
		},
	}
	out := Finalize(in)
	if len(out.Entities) != 1 || out.Entities[0].ID != "e3" {
		t.Fatalf("expected only e3 to survive, got %+v", out.Entities)
	}
	if out.Metadata.HeadingDropped != 2 {
		t.Fatalf("expected HeadingDropped=2, got %d", out.Metadata.HeadingDropped)
	}
}

func TestRetagEventishPerson(t *testing.T) {
	in := Input{
		Entities: []*model.Entity{
			entity("e1", schema.Person, "the reunion"),
		},
	}
	out := Finalize(in)
	if len(out.Entities) != 1 {
		t.Fatalf("expected the entity to survive retagged, got %d", len(out.Entities))
	}
	if out.Entities[0].Type != schema.Event {
		t.Fatalf("expected retag to EVENT, got %s", out.Entities[0].Type)
	}
	if out.Metadata.EventRetagged != 1 {
		t.Fatalf("expected EventRetagged=1, got %d", out.Metadata.EventRetagged)
	}
}

func TestRaceNoiseDropsLowMentionNonWhitelisted(t *testing.T) {
	in := Input{
		Entities: []*model.Entity{
			entity("e1", schema.Race, "Uruk-hai"),
			entity("e2", schema.Race, "Elf"),
			entity("e3", schema.Race, "Barty"),
		},
		Spans: []model.Span{
			{EntityID: "e1", Start: 0, End: 8},
		},
	}
	out := Finalize(in)
	ids := map[string]bool{}
	for _, e := range out.Entities {
		ids[e.ID] = true
	}
	if ids["e1"] {
		t.Fatalf("expected low-mention non-whitelisted race to be dropped")
	}
	if !ids["e2"] {
		t.Fatalf("expected whitelisted race Elf to survive")
	}
	if ids["e3"] {
		t.Fatalf("expected blocklisted race Barty to be hard-dropped")
	}
	if out.Metadata.RaceDropped != 2 {
		t.Fatalf("expected RaceDropped=2, got %d", out.Metadata.RaceDropped)
	}
}

func TestJunkPersonHardAndSoftDrop(t *testing.T) {
	in := Input{
		Entities: []*model.Entity{
			entity("e1", schema.Person, "Souls"),
			entity("e2", schema.Person, "Guy"),
			entity("e3", schema.Person, "Frodo"),
		},
		Spans: []model.Span{
			{EntityID: "e2", Start: 0, End: 3},
		},
	}
	out := Finalize(in)
	ids := map[string]bool{}
	for _, e := range out.Entities {
		ids[e.ID] = true
	}
	if ids["e1"] {
		t.Fatalf("expected hard-junk Souls to be dropped regardless of mentions")
	}
	if ids["e2"] {
		t.Fatalf("expected soft-junk Guy with a single mention to be dropped")
	}
	if !ids["e3"] {
		t.Fatalf("expected Frodo to survive")
	}
}

func TestJunkPersonSoftListSurvivesMultipleMentions(t *testing.T) {
	in := Input{
		Entities: []*model.Entity{
			entity("e1", schema.Person, "Guy"),
		},
		Spans: []model.Span{
			{EntityID: "e1", Start: 0, End: 3},
			{EntityID: "e1", Start: 20, End: 23},
		},
	}
	out := Finalize(in)
	if len(out.Entities) != 1 {
		t.Fatalf("expected Guy with 2 mentions to survive the soft junk list, got %d entities", len(out.Entities))
	}
}

func TestFragmentFilterDropsSingleWordInsideMultiWord(t *testing.T) {
	in := Input{
		Entities: []*model.Entity{
			entity("e1", schema.Place, "Souls"),
			entity("e2", schema.Place, "Pool of Souls"),
		},
	}
	out := Finalize(in)
	if len(out.Entities) != 1 || out.Entities[0].ID != "e2" {
		t.Fatalf("expected only Pool of Souls to survive, got %+v", out.Entities)
	}
	if out.Metadata.FragmentDropped != 1 {
		t.Fatalf("expected FragmentDropped=1, got %d", out.Metadata.FragmentDropped)
	}
}

func TestDensityPruneKeepsRelatedOrFrequentEntities(t *testing.T) {
	var entities []*model.Entity
	var spans []model.Span
	var relations []*model.Relation
	for i := 0; i < 13; i++ {
		id := string(rune('a' + i))
		entities = append(entities, entity(id, schema.Person, "Person-"+id))
	}
	// a<->b carry a relation; c is mentioned 3 times; the rest are sparse.
	relations = append(relations, &model.Relation{ID: "r1", Subj: "a", Pred: schema.Met, Obj: "b", Confidence: 0.8})
	for i := 0; i < 13; i++ {
		relations = append(relations, &model.Relation{ID: "pad", Subj: "a", Pred: schema.Met, Obj: "b", Confidence: 0.8})
	}
	spans = append(spans, model.Span{EntityID: "c", Start: 0, End: 1}, model.Span{EntityID: "c", Start: 2, End: 3}, model.Span{EntityID: "c", Start: 4, End: 5})

	out := Finalize(Input{Entities: entities, Spans: spans, Relations: relations})
	ids := map[string]bool{}
	for _, e := range out.Entities {
		ids[e.ID] = true
	}
	if !ids["a"] || !ids["b"] {
		t.Fatalf("expected relation-bearing entities a and b to survive pruning")
	}
	if !ids["c"] {
		t.Fatalf("expected c (mentioned 3 times) to survive pruning")
	}
	if ids["d"] {
		t.Fatalf("expected sparse unrelated entity d to be pruned")
	}
	if out.Metadata.DensityPruned == 0 {
		t.Fatalf("expected DensityPruned > 0")
	}
}

func TestLightDocumentsSkipDensityPruning(t *testing.T) {
	var entities []*model.Entity
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		entities = append(entities, entity(id, schema.Person, "Person-"+id))
	}
	out := Finalize(Input{Entities: entities})
	if len(out.Entities) != 5 {
		t.Fatalf("expected all 5 entities to survive a light document, got %d", len(out.Entities))
	}
}

func TestDanglingRelationsPrunedAfterEntityDrop(t *testing.T) {
	in := Input{
		Entities: []*model.Entity{
			entity("e1", schema.Person, "Frodo"),
			entity("e2", schema.Person, "Souls"),
		},
		Relations: []*model.Relation{
			{ID: "r1", Subj: "e1", Pred: schema.Met, Obj: "e2", Confidence: 0.8},
		},
	}
	out := Finalize(in)
	if len(out.Relations) != 0 {
		t.Fatalf("expected relation referencing a dropped entity to be pruned, got %+v", out.Relations)
	}
	if out.Metadata.RelationsPruned != 1 {
		t.Fatalf("expected RelationsPruned=1, got %d", out.Metadata.RelationsPruned)
	}
}

func TestFictionEntitiesSideOutputDoesNotRemoveFromMain(t *testing.T) {
	in := Input{
		Entities: []*model.Entity{
			entity("e1", schema.Spell, "Fireball"),
			entity("e2", schema.Person, "Frodo"),
		},
	}
	out := Finalize(in)
	if len(out.Entities) != 2 {
		t.Fatalf("expected fiction entities to remain in the main list, got %d", len(out.Entities))
	}
	if len(out.FictionEntities) != 1 || out.FictionEntities[0].ID != "e1" {
		t.Fatalf("expected Fireball in the fiction side output, got %+v", out.FictionEntities)
	}
}
