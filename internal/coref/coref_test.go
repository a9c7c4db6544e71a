package coref

import (
	"testing"

	"github.com/mrfishcar/ares/internal/parseradapter"
	"github.com/mrfishcar/ares/internal/schema"
)

func TestResolvePronounLinksToPrecedingPerson(t *testing.T) {
	text := "Frodo left the Shire. He carried the ring."
	sentences := []parseradapter.Sentence{
		{Text: "Frodo left the Shire.", Start: 0, End: 21},
		{Text: "He carried the ring.", Start: 22, End: 43},
	}
	segments := []parseradapter.Segment{
		{Start: 0, End: 43, ParagraphIdx: 0, SentenceStart: 0, SentenceEnd: 2},
	}
	entities := []EntityMention{
		{EntityID: "e1", Type: schema.Person, Canonical: "Frodo", Start: 0, End: 5, SentenceIdx: 0, ParagraphIdx: 0},
	}

	res := Resolve(text, sentences, segments, entities)
	found := false
	for _, l := range res.Links {
		if l.EntityID == "e1" && l.Method != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a link back to e1, got %+v", res.Links)
	}
}

func TestPronounItCannotLinkToPerson(t *testing.T) {
	text := "Frodo smiled. It walked away."
	sentences := []parseradapter.Sentence{
		{Text: "Frodo smiled.", Start: 0, End: 13},
		{Text: "It walked away.", Start: 14, End: 29},
	}
	segments := []parseradapter.Segment{
		{Start: 0, End: 29, ParagraphIdx: 0, SentenceStart: 0, SentenceEnd: 2},
	}
	entities := []EntityMention{
		{EntityID: "e1", Type: schema.Person, Canonical: "Frodo", Start: 0, End: 5, SentenceIdx: 0, ParagraphIdx: 0},
	}

	res := Resolve(text, sentences, segments, entities)
	for _, l := range res.Links {
		if l.MentionStart == 14 && l.EntityID == "e1" {
			t.Fatalf("'it' must not link to a PERSON entity")
		}
	}
}

func TestTitleBackLinkPrefersKeywordMatch(t *testing.T) {
	text := "Aragorn became the king. The king ruled wisely."
	entities := []EntityMention{
		{EntityID: "e1", Type: schema.Person, Canonical: "Aragorn King", Start: 0, End: 12, SentenceIdx: 0, ParagraphIdx: 0},
	}
	links := resolveTitleBackLinks(text, entities)
	if len(links) == 0 {
		t.Fatalf("expected at least one title back-link")
	}
	for _, l := range links {
		if l.EntityID == "e1" && l.Confidence != 0.90 {
			t.Fatalf("expected keyword-match confidence 0.90, got %v", l.Confidence)
		}
	}
}

func TestWellKnownNicknameResolves(t *testing.T) {
	text := "IBM reported quarterly results. Big Blue announced record earnings."
	entities := []EntityMention{
		{EntityID: "org-3", Type: schema.Org, Canonical: "IBM", Start: 0, End: 3},
	}
	links := resolveNicknames(text, entities)
	if len(links) != 1 || links[0].EntityID != "org-3" {
		t.Fatalf("expected Big Blue to resolve to the real IBM entity org-3, got %+v", links)
	}
}

func TestWellKnownNicknameDoesNotLinkWithoutKnownEntity(t *testing.T) {
	text := "Big Blue announced record earnings."
	links := resolveNicknames(text, nil)
	if len(links) != 0 {
		t.Fatalf("expected no links when IBM was never surfaced as an entity, got %+v", links)
	}
}

func TestCoordinationFanOut(t *testing.T) {
	text := "Sam and Rosie married quietly."
	entities := []EntityMention{
		{EntityID: "e1", Type: schema.Person, Canonical: "Sam", Start: 0, End: 3},
		{EntityID: "e2", Type: schema.Person, Canonical: "Rosie", Start: 8, End: 13},
	}
	links := coordinationLinks(text, entities)
	if len(links) != 2 {
		t.Fatalf("expected 2 coordination links, got %d: %+v", len(links), links)
	}
}

func TestDedupeLinksKeepsHighestConfidence(t *testing.T) {
	links := []Link{
		{MentionStart: 0, MentionEnd: 2, EntityID: "e1", Confidence: 0.5, Method: "a"},
		{MentionStart: 0, MentionEnd: 2, EntityID: "e1", Confidence: 0.9, Method: "b"},
	}
	out := dedupeLinks(links)
	if len(out) != 1 || out[0].Confidence != 0.9 {
		t.Fatalf("expected single deduped link at highest confidence, got %+v", out)
	}
}
