package deictic

import (
	"testing"

	"github.com/mrfishcar/ares/internal/schema"
)

func TestRewriteSingleThere(t *testing.T) {
	text := "They arrived in Gondor. They stayed there for a year."
	entities := []EntityMention{
		{Canonical: "Gondor", Type: schema.Place, Start: 16, End: 22},
	}
	got := Rewrite(text, entities)
	want := "They arrived in Gondor. They stayed in Gondor for a year."
	if got != want {
		t.Fatalf("Rewrite() = %q, want %q", got, want)
	}
}

func TestRewriteUsesNearestPreceding(t *testing.T) {
	text := "Frodo left Hobbiton for Rivendell. He rested there."
	entities := []EntityMention{
		{Canonical: "Hobbiton", Type: schema.Place, Start: 11, End: 19},
		{Canonical: "Rivendell", Type: schema.Place, Start: 24, End: 33},
	}
	got := Rewrite(text, entities)
	want := "Frodo left Hobbiton for Rivendell. He rested in Rivendell."
	if got != want {
		t.Fatalf("Rewrite() = %q, want %q", got, want)
	}
}

func TestRewriteNoCompatibleEntityLeavesTextUnchanged(t *testing.T) {
	text := "Frodo went there."
	entities := []EntityMention{
		{Canonical: "Frodo", Type: schema.Person, Start: 0, End: 5},
	}
	got := Rewrite(text, entities)
	if got != text {
		t.Fatalf("Rewrite() = %q, want unchanged %q", got, text)
	}
}

func TestRewriteNoThereIsNoOp(t *testing.T) {
	text := "Nothing deictic here at all."
	got := Rewrite(text, nil)
	if got != text {
		t.Fatalf("Rewrite() = %q, want unchanged", got)
	}
}
