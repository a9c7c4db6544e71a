package parseradapter

import "strings"

// Segment is a paragraph/sentence chunk suitable for C11's windowing, per
// spec section 4.2's "segments" output.
type Segment struct {
	Start         int
	End           int
	ParagraphIdx  int
	SentenceStart int // index of the first sentence inside this segment
	SentenceEnd   int // index one past the last sentence inside this segment
}

// BuildSegments splits normalized text into paragraph segments (separated
// by blank lines) and records which sentence range each segment covers.
func BuildSegments(text string, sentences []Sentence) []Segment {
	if text == "" {
		return nil
	}

	var segments []Segment
	paraStart := 0
	paraIdx := 0
	sentCursor := 0

	flush := func(end int) {
		if end <= paraStart {
			return
		}
		sentStart := sentCursor
		for sentCursor < len(sentences) && sentences[sentCursor].Start < end {
			sentCursor++
		}
		segments = append(segments, Segment{
			Start:         paraStart,
			End:           end,
			ParagraphIdx:  paraIdx,
			SentenceStart: sentStart,
			SentenceEnd:   sentCursor,
		})
		paraIdx++
	}

	i := 0
	for {
		idx := strings.Index(text[i:], "\n\n")
		if idx < 0 {
			flush(len(text))
			break
		}
		boundary := i + idx
		flush(boundary)
		// skip the blank-line separator
		i = boundary
		for i < len(text) && text[i] == '\n' {
			i++
		}
		paraStart = i
	}

	return segments
}
