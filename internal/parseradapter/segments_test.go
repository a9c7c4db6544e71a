package parseradapter

import "testing"

func TestNormalizeCollapsesHorizontalWhitespace(t *testing.T) {
	in := "Hello   world.\t\tBye."
	got := Normalize(in)
	want := "Hello world. Bye."
	if got != want {
		t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
	}
}

func TestNormalizePreservesParagraphBreaks(t *testing.T) {
	in := "Para one.\n\nPara two."
	got := Normalize(in)
	if got != in {
		t.Fatalf("Normalize(%q) = %q, want unchanged", in, got)
	}
}

func TestBuildSegmentsSplitsOnBlankLines(t *testing.T) {
	text := "First paragraph sentence.\n\nSecond paragraph sentence."
	sentences := []Sentence{
		{Text: "First paragraph sentence.", Start: 0, End: 26},
		{Text: "Second paragraph sentence.", Start: 28, End: len(text)},
	}

	segs := BuildSegments(text, sentences)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].ParagraphIdx != 0 || segs[1].ParagraphIdx != 1 {
		t.Fatalf("unexpected paragraph indices: %+v", segs)
	}
	if segs[0].SentenceEnd != 1 || segs[1].SentenceStart != 1 {
		t.Fatalf("unexpected sentence ranges: %+v", segs)
	}
}

func TestNoSentencesYieldsNoSegments(t *testing.T) {
	segs := BuildSegments("", nil)
	if len(segs) != 0 {
		t.Fatalf("expected no segments for empty text, got %d", len(segs))
	}
}
