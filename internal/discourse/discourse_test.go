package discourse

import (
	"testing"

	"github.com/mrfishcar/ares/internal/parseradapter"
)

func TestClassifyBackchannel(t *testing.T) {
	for _, s := range []string{"yes", "ok", "thanks!", "mhm", ""} {
		if got := Classify(s); got != Backchannel {
			t.Errorf("Classify(%q) = %q, want backchannel", s, got)
		}
	}
}

func TestClassifyGreeting(t *testing.T) {
	if got := Classify("hello"); got != Greeting {
		t.Fatalf("Classify(hello) = %q, want greeting", got)
	}
}

func TestClassifyQuestion(t *testing.T) {
	if got := Classify("Where did Frodo go?"); got != Question {
		t.Fatalf("Classify(...) = %q, want question", got)
	}
}

func TestClassifyStatementDefault(t *testing.T) {
	if got := Classify("Frodo walked into the Shire at dusk."); got != Statement {
		t.Fatalf("Classify(...) = %q, want statement", got)
	}
}

func TestFilterDropsLowInfoSentences(t *testing.T) {
	in := Input{Sentences: []parseradapter.Sentence{
		{Text: "Hello there.", Start: 0, End: 12},
		{Text: "Frodo set out from the Shire.", Start: 13, End: 43},
		{Text: "ok", Start: 44, End: 46},
	}}
	out := Filter(in)
	if len(out.Kept) != 1 || out.Kept[0].Text != "Frodo set out from the Shire." {
		t.Fatalf("expected exactly the statement sentence kept, got %+v", out.Kept)
	}
	if len(out.Dropped) != 2 || out.Metadata.Dropped != 2 {
		t.Fatalf("expected 2 dropped sentences, got %+v meta=%+v", out.Dropped, out.Metadata)
	}
}
