package coref

import (
	"sort"
	"strings"

	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/parseradapter"
	"github.com/mrfishcar/ares/internal/schema"
)

const pronounLookbackWindow = 2000

var collectivePlaceWords = map[string]bool{
	"states": true, "nations": true, "kingdoms": true, "countries": true,
	"peoples": true, "empires": true,
}

// resolvePronouns implements spec 4.6 strategy 1: per-paragraph pronoun
// stacks with sentence-start bias, subject/other preference, gender and
// type compatibility, and a 2000-char lookback fallback.
func resolvePronouns(text string, sentences []parseradapter.Sentence, segments []parseradapter.Segment, entities []EntityMention, learned map[string]lexicon.Gender) []Link {
	sorted := append([]EntityMention(nil), entities...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var links []Link
	for _, m := range pronounRe.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		word := strings.ToLower(text[start:end])
		p, ok := lexicon.Pronouns[word]
		if !ok {
			continue
		}

		sentIdx := sentenceIndexAt(sentences, start)
		paraIdx := paragraphForSentence(segments, sentIdx)

		candidates := precedingInParagraph(sorted, segments, paraIdx, start)

		var chosen *EntityMention
		atSentenceStart := sentIdx >= 0 && sentIdx < len(sentences) && start-sentences[sentIdx].Start <= 5

		if atSentenceStart && sentIdx > 0 {
			prevSentCandidates := inSentence(sorted, sentences, sentIdx-1)
			if len(prevSentCandidates) > 0 {
				if p.Possessive {
					last := prevSentCandidates[len(prevSentCandidates)-1]
					if compatible(p, last, learned) {
						chosen = &last
					}
				} else {
					first := prevSentCandidates[0]
					if compatible(p, first, learned) {
						chosen = &first
					}
				}
			}
		}

		if chosen == nil {
			subj, other := classifyByPosition(candidates, sentences)
			for i := len(subj) - 1; i >= 0; i-- {
				if compatible(p, subj[i], learned) {
					c := subj[i]
					chosen = &c
					break
				}
			}
			if chosen == nil {
				for i := len(other) - 1; i >= 0; i-- {
					if compatible(p, other[i], learned) {
						c := other[i]
						chosen = &c
						break
					}
				}
			}
		}

		confidence := 0.85
		method := "pronoun-stack"
		if chosen == nil {
			chosen, confidence = widenedLookback(sorted, start, p, learned)
			method = "pronoun-lookback"
		}

		if chosen != nil {
			links = append(links, Link{
				MentionStart: start,
				MentionEnd:   end,
				EntityID:     chosen.EntityID,
				Confidence:   confidence,
				Method:       method,
			})
		}
	}
	return links
}

func sentenceIndexAt(sentences []parseradapter.Sentence, offset int) int {
	for i, s := range sentences {
		if offset >= s.Start && offset < s.End {
			return i
		}
	}
	return len(sentences) - 1
}

func precedingInParagraph(sorted []EntityMention, segments []parseradapter.Segment, paraIdx, before int) []EntityMention {
	var out []EntityMention
	for _, e := range sorted {
		if e.End > before {
			continue
		}
		if e.ParagraphIdx != paraIdx {
			continue
		}
		out = append(out, e)
	}
	return out
}

func inSentence(sorted []EntityMention, sentences []parseradapter.Sentence, sentIdx int) []EntityMention {
	if sentIdx < 0 || sentIdx >= len(sentences) {
		return nil
	}
	s := sentences[sentIdx]
	var out []EntityMention
	for _, e := range sorted {
		if e.Start >= s.Start && e.End <= s.End {
			out = append(out, e)
		}
	}
	return out
}

// classifyByPosition splits candidates into "subject" (within the first
// 30% of their containing sentence) and "other".
func classifyByPosition(candidates []EntityMention, sentences []parseradapter.Sentence) (subject, other []EntityMention) {
	for _, e := range candidates {
		if e.SentenceIdx < 0 || e.SentenceIdx >= len(sentences) {
			other = append(other, e)
			continue
		}
		s := sentences[e.SentenceIdx]
		length := s.End - s.Start
		if length <= 0 {
			other = append(other, e)
			continue
		}
		pos := float64(e.Start-s.Start) / float64(length)
		if pos <= 0.30 {
			subject = append(subject, e)
		} else {
			other = append(other, e)
		}
	}
	return subject, other
}

// widenedLookback scores candidates within a 2000-char window by
// 0.6*recency + 0.4*salience, accepting the best if score > 0.3.
func widenedLookback(sorted []EntityMention, mentionStart int, p lexicon.Pronoun, learned map[string]lexicon.Gender) (*EntityMention, float64) {
	lo := mentionStart - pronounLookbackWindow
	if lo < 0 {
		lo = 0
	}
	mentionCounts := map[string]int{}
	var inWindow []EntityMention
	for _, e := range sorted {
		if e.End > mentionStart || e.End < lo {
			continue
		}
		if !compatible(p, e, learned) {
			continue
		}
		mentionCounts[e.EntityID]++
		inWindow = append(inWindow, e)
	}
	if len(inWindow) == 0 {
		return nil, 0
	}
	maxCount := 0
	for _, c := range mentionCounts {
		if c > maxCount {
			maxCount = c
		}
	}

	var best *EntityMention
	var bestScore float64
	for i := range inWindow {
		e := inWindow[i]
		recency := float64(e.End-lo) / float64(mentionStart-lo+1)
		salience := float64(mentionCounts[e.EntityID]) / float64(maxCount)
		score := 0.6*recency + 0.4*salience
		if score > bestScore {
			bestScore = score
			best = &e
		}
	}
	if best == nil || bestScore <= 0.3 {
		return nil, 0
	}
	confidence := bestScore
	if confidence > 0.65 {
		confidence = 0.65
	}
	return best, confidence
}

// compatible applies spec 4.6's gender/number/type constraints.
func compatible(p lexicon.Pronoun, e EntityMention, learned map[string]lexicon.Gender) bool {
	if p.Number == lexicon.Singular && e.Type == schema.Org {
		return false
	}
	if p.Form == "it" && e.Type == schema.Person {
		return false
	}
	if p.Number == lexicon.Plural {
		if e.Type != schema.Person && e.Type != schema.Org {
			lower := strings.ToLower(e.Canonical)
			isCollectivePlace := e.Type == schema.Place && hasCollectiveWord(lower)
			if !isCollectivePlace {
				return false
			}
		}
	}
	if (p.Gender == lexicon.Male || p.Gender == lexicon.Female) && e.Type == schema.Person {
		g := genderOf(e.Canonical, learned)
		if g != lexicon.Unknown && g != p.Gender {
			return false
		}
	}
	return true
}

func hasCollectiveWord(lower string) bool {
	for w := range collectivePlaceWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
