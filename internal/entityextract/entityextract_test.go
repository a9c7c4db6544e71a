package entityextract

import (
	"testing"

	"github.com/mrfishcar/ares/internal/parseradapter"
	"github.com/mrfishcar/ares/internal/schema"
)

func TestFastPathShortCircuits(t *testing.T) {
	text := "Person1_2 worked with Person3_4. Person5_6 worked with Person7_8."
	sentences := []parseradapter.Sentence{
		{Text: "Person1_2 worked with Person3_4.", Start: 0, End: 33},
		{Text: "Person5_6 worked with Person7_8.", Start: 34, End: 67},
	}
	out := Extract(Input{Text: text, Sentences: sentences})
	if len(out.Entities) != 4 {
		t.Fatalf("expected 4 PERSON entities from fast path, got %d: %+v", len(out.Entities), out.Entities)
	}
	for _, e := range out.Entities {
		if e.Type != schema.Person {
			t.Fatalf("expected all fast-path entities to be PERSON, got %s", e.Type)
		}
	}
}

func TestFastPathDisabledOnNonMatchingText(t *testing.T) {
	sentences := []parseradapter.Sentence{
		{Text: "Frodo left the Shire.", Start: 0, End: 21},
	}
	out := Extract(Input{Text: "Frodo left the Shire.", Sentences: sentences, NEREntities: []parseradapter.NEREntity{
		{Text: "Frodo", Type: schema.Person, Start: 0, End: 5, Confidence: 0.9},
	}})
	if len(out.Entities) != 1 || out.Entities[0].Canonical != "Frodo" {
		t.Fatalf("expected normal NER extraction, got %+v", out.Entities)
	}
}

func TestBuiltinHonorificPattern(t *testing.T) {
	text := "Dr. Watson examined the patient."
	out := Extract(Input{Text: text, Sentences: []parseradapter.Sentence{{Text: text, Start: 0, End: len(text)}}})
	found := false
	for _, e := range out.Entities {
		if e.Canonical == "Dr. Watson" || e.Canonical == "Dr Watson" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected honorific pattern to recover 'Dr. Watson', got %+v", out.Entities)
	}
}

func TestPersonSubsetMergePrefersLongerCanonical(t *testing.T) {
	text := "Frodo Baggins left the Shire. Frodo carried the ring."
	ents := []parseradapter.NEREntity{
		{Text: "Frodo Baggins", Type: schema.Person, Start: 0, End: 13, Confidence: 0.9},
		{Text: "Frodo", Type: schema.Person, Start: 31, End: 36, Confidence: 0.9},
	}
	out := Extract(Input{Text: text, Sentences: []parseradapter.Sentence{{Text: text, Start: 0, End: len(text)}}, NEREntities: ents})
	if len(out.Entities) != 1 {
		t.Fatalf("expected subset merge into a single entity, got %d: %+v", len(out.Entities), out.Entities)
	}
	if out.Entities[0].Canonical != "Frodo Baggins" {
		t.Fatalf("expected canonical to remain the longer form, got %q", out.Entities[0].Canonical)
	}
	if !out.Entities[0].HasAlias("Frodo") {
		t.Fatalf("expected 'Frodo' to be recorded as an alias")
	}
}
