package entityextract

import (
	"regexp"
	"strings"

	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/schema"
)

// builtinPatterns recovers common names NER misses, per spec 4.3's
// fixed catalog. Grounded on the teacher's FastExtractor.compilePatterns
// (internal/extract/fast.go): a map of entity type to a small compiled
// regex list, evaluated over the whole document.
var (
	appositiveFamilyRe = regexp.MustCompile(`(?i)\b(?:his|her|their)\s+(father|mother|brother|sister|son|daughter|husband|wife|cousin|uncle|aunt|nephew|niece|grandfather|grandmother)\s*,?\s+([A-Z][a-zA-Z']+)\b`)
	compoundNamesRe     = regexp.MustCompile(`\b([A-Z][a-z']+)\s+and\s+([A-Z][a-z']+)\s+([A-Z][a-z']+)\b`)
	honorificRe         = regexp.MustCompile(`\b(Mr|Mrs|Ms|Dr|Miss)\.?\s+([A-Z][a-zA-Z']+)\b`)
	placeSuffixRe       = regexp.MustCompile(`\b([A-Z][a-zA-Z']*)\s+(Hall|House|Court|Tower|Castle|Manor|Keep)\b`)
	groupRe             = regexp.MustCompile(`\b(?:the\s+)?([A-Z][a-z']+)\s+([A-Z][a-z']+s)\b`)
	vocativeRe          = regexp.MustCompile(`"[^"]*,"?\s*([A-Z][a-zA-Z']+),?"?\s+(said|asked|cried|shouted|whispered|replied|answered|exclaimed)\b`)
	postQuoteAttrRe     = regexp.MustCompile(`"[^"]*"\s+(said|asked|cried|shouted|whispered|replied|answered|exclaimed)\s+([A-Z][a-zA-Z']+)\b`)
)

// runBuiltinPatterns runs the seven built-in families over the whole
// document text and returns the mentions they recover.
func runBuiltinPatterns(text string) []rawMention {
	var out []rawMention

	for _, m := range appositiveFamilyRe.FindAllStringSubmatchIndex(text, -1) {
		nameStart, nameEnd := m[4], m[5]
		out = append(out, rawMention{
			Text: text[nameStart:nameEnd], Type: schema.Person,
			Start: nameStart, End: nameEnd, Confidence: 0.75, Source: "builtin:appositive-family",
		})
	}

	for _, m := range compoundNamesRe.FindAllStringSubmatchIndex(text, -1) {
		first1S, first1E := m[2], m[3]
		first2S, first2E := m[4], m[5]
		surS, surE := m[6], m[7]
		out = append(out,
			rawMention{Text: text[first1S:first1E] + " " + text[surS:surE], Type: schema.Person, Start: first1S, End: surE, Confidence: 0.7, Source: "builtin:compound-names"},
			rawMention{Text: text[first2S:first2E] + " " + text[surS:surE], Type: schema.Person, Start: first2S, End: surE, Confidence: 0.7, Source: "builtin:compound-names"},
		)
	}

	for _, m := range honorificRe.FindAllStringSubmatchIndex(text, -1) {
		titleS, _ := m[2], m[3]
		nameE := m[5]
		out = append(out, rawMention{
			Text: text[titleS:nameE], Type: schema.Person,
			Start: titleS, End: nameE, Confidence: 0.85, Source: "builtin:honorific",
		})
	}

	for _, m := range placeSuffixRe.FindAllStringSubmatchIndex(text, -1) {
		prefixS, prefixE := m[2], m[3]
		_, wordE := m[4], m[5]
		prefix := text[prefixS:prefixE]
		full := text[prefixS:wordE]
		if lexicon.HogwartsHousePrefixes[strings.ToLower(prefix)] {
			out = append(out, rawMention{
				Text: full, Type: schema.Org, Start: prefixS, End: wordE,
				Confidence: 0.8, Source: "builtin:place-suffix-house-exception",
			})
			continue
		}
		out = append(out, rawMention{
			Text: full, Type: schema.Place, Start: prefixS, End: wordE,
			Confidence: 0.75, Source: "builtin:place-suffix",
		})
	}

	for _, m := range groupRe.FindAllStringSubmatchIndex(text, -1) {
		adjS, adjE := m[2], m[3]
		nounS, nounE := m[4], m[5]
		adj := text[adjS:adjE]
		if _, given := lexicon.CommonNameGender[strings.ToLower(adj)]; given {
			// "Frodo Baggins": a known given name is not a group adjective.
			continue
		}
		if lexicon.PersonAdjectiveStoplist[strings.ToLower(adj)] {
			out = append(out, rawMention{
				Text: text[nounS:nounE], Type: schema.Person, Start: nounS, End: nounE,
				Confidence: 0.7, Source: "builtin:group-person-exception",
			})
			continue
		}
		out = append(out, rawMention{
			Text: text[adjS:nounE], Type: schema.Org, Start: adjS, End: nounE,
			Confidence: 0.6, Source: "builtin:group",
		})
	}

	for _, m := range vocativeRe.FindAllStringSubmatchIndex(text, -1) {
		nameS, nameE := m[2], m[3]
		out = append(out, rawMention{
			Text: text[nameS:nameE], Type: schema.Person, Start: nameS, End: nameE,
			Confidence: 0.65, Source: "builtin:vocative",
		})
	}

	for _, m := range postQuoteAttrRe.FindAllStringSubmatchIndex(text, -1) {
		nameS, nameE := m[4], m[5]
		out = append(out, rawMention{
			Text: text[nameS:nameE], Type: schema.Person, Start: nameS, End: nameE,
			Confidence: 0.7, Source: "builtin:post-quote-attribution",
		})
	}

	return out
}

// runPatternLibrary runs caller-supplied patterns after the built-ins,
// with the same merge rules, carrying the pattern's own confidence.
func runPatternLibrary(text string, patterns []*schema.Pattern) []rawMention {
	var out []rawMention
	for _, p := range patterns {
		if p.Regex == "" {
			continue
		}
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			continue
		}
		t := schema.EntityType(strings.ToUpper(p.Type))
		if !schema.ValidEntityType(t) {
			continue
		}
		matches := re.FindAllStringIndex(text, -1)
		for _, m := range matches {
			p.RecordApplication(true)
			out = append(out, rawMention{
				Text: text[m[0]:m[1]], Type: t, Start: m[0], End: m[1],
				Confidence: p.Confidence, Source: "pattern:" + p.ID,
			})
		}
	}
	return out
}
