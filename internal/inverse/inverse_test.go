package inverse

import (
	"testing"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

func TestGenerateAsymmetricMirror(t *testing.T) {
	relations := []*model.Relation{
		{ID: "r1", Subj: "frodo", Pred: schema.ParentOf, Obj: "sam", Confidence: 0.8},
	}
	out := Generate("doc1", relations)
	if len(out.Relations) != 2 {
		t.Fatalf("expected original plus mirror, got %d", len(out.Relations))
	}
	mirror := out.Relations[1]
	if mirror.Subj != "sam" || mirror.Obj != "frodo" || mirror.Pred != schema.ChildOf {
		t.Fatalf("expected child_of(sam, frodo), got %+v", mirror)
	}
	if mirror.Confidence != 0.8 {
		t.Fatalf("expected confidence to be preserved, got %v", mirror.Confidence)
	}
}

func TestGenerateSymmetricMirrorKeepsSamePredicate(t *testing.T) {
	relations := []*model.Relation{
		{ID: "r1", Subj: "aragorn", Pred: schema.MarriedTo, Obj: "arwen", Confidence: 0.9},
	}
	out := Generate("doc1", relations)
	mirror := out.Relations[1]
	if mirror.Pred != schema.MarriedTo || mirror.Subj != "arwen" || mirror.Obj != "aragorn" {
		t.Fatalf("expected married_to(arwen, aragorn), got %+v", mirror)
	}
}

func TestGenerateSkipsPredicatesWithNoInverse(t *testing.T) {
	relations := []*model.Relation{
		{ID: "r1", Subj: "a", Pred: schema.Predicate("unknown_pred"), Obj: "b", Confidence: 0.8},
	}
	out := Generate("doc1", relations)
	if len(out.Relations) != 1 {
		t.Fatalf("expected no mirror for a predicate absent from INVERSE, got %d", len(out.Relations))
	}
	if out.Metadata.Generated != 0 {
		t.Fatalf("expected Generated=0, got %d", out.Metadata.Generated)
	}
}
