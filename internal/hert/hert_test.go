package hert

import (
	"strings"
	"testing"

	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

func TestGenerateProducesOneTagPerSpan(t *testing.T) {
	entities := []*model.Entity{
		{ID: "e1", Type: schema.Person, Canonical: "Frodo", EID: 7, AID: 3, SP: []int{1}},
	}
	spans := []model.Span{
		{EntityID: "e1", Start: 0, End: 5},
		{EntityID: "e1", Start: 20, End: 25},
	}
	out := Generate(Input{DocID: "d1", Text: "Frodo walked.\n\nFrodo rested.", Spans: spans, Entities: entities})
	if len(out.Herts) != 2 {
		t.Fatalf("expected 2 HERTs, got %d", len(out.Herts))
	}
	for _, h := range out.Herts {
		if !strings.HasPrefix(h.Tag, "HERTv1:") {
			t.Fatalf("expected HERTv1: prefix, got %s", h.Tag)
		}
	}
	if out.Metadata.Generated != 2 {
		t.Fatalf("expected Generated=2, got %d", out.Metadata.Generated)
	}
}

func TestGenerateSkipsSpansWithUnknownEntity(t *testing.T) {
	spans := []model.Span{{EntityID: "missing", Start: 0, End: 5}}
	out := Generate(Input{Text: "Frodo walked.", Spans: spans})
	if len(out.Herts) != 0 {
		t.Fatalf("expected no HERTs for an unresolved entity id, got %d", len(out.Herts))
	}
	if out.Metadata.Skipped != 1 {
		t.Fatalf("expected Skipped=1, got %d", out.Metadata.Skipped)
	}
}

func TestGenerateIsDeterministicForSameDocument(t *testing.T) {
	entities := []*model.Entity{{ID: "e1", Type: schema.Person, Canonical: "Frodo", EID: 7}}
	spans := []model.Span{{EntityID: "e1", Start: 0, End: 5}}
	in := Input{Text: "Frodo walked.", Spans: spans, Entities: entities}
	out1 := Generate(in)
	out2 := Generate(in)
	if out1.Herts[0].Tag != out2.Herts[0].Tag {
		t.Fatalf("expected identical HERT tags across runs, got %q vs %q", out1.Herts[0].Tag, out2.Herts[0].Tag)
	}
}

func TestGenerateDifferentEntitiesProduceDifferentTags(t *testing.T) {
	entities := []*model.Entity{
		{ID: "e1", Type: schema.Person, Canonical: "Frodo", EID: 7},
		{ID: "e2", Type: schema.Person, Canonical: "Sam", EID: 8},
	}
	spans := []model.Span{
		{EntityID: "e1", Start: 0, End: 5},
		{EntityID: "e2", Start: 6, End: 9},
	}
	out := Generate(Input{Text: "Frodo Sam", Spans: spans, Entities: entities})
	if out.Herts[0].Tag == out.Herts[1].Tag {
		t.Fatalf("expected distinct tags for distinct entities, both were %q", out.Herts[0].Tag)
	}
}

func TestParagraphIndexCountsDoubleNewlines(t *testing.T) {
	text := "one\n\ntwo\n\nthree"
	if got := paragraphIndex(text, 0); got != 0 {
		t.Fatalf("expected paragraph 0 at offset 0, got %d", got)
	}
	if got := paragraphIndex(text, len("one\n\ntwo")); got != 1 {
		t.Fatalf("expected paragraph 1 after the first break, got %d", got)
	}
}

func TestBase62EncodeRoundTripsThroughDistinctValues(t *testing.T) {
	a := base62Encode(int64ToBytes(1))
	b := base62Encode(int64ToBytes(62))
	c := base62Encode(int64ToBytes(12345))
	if a == b || b == c || a == c {
		t.Fatalf("expected distinct encodings, got %q %q %q", a, b, c)
	}
}
