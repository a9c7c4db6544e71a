// Package lexicon holds the static word lists ARES's filters and
// extractors consult: stopwords, pronouns, honorifics, per-type titles and
// nominals, speech verbs, and a curated well-known-alias map. Every table
// here is closed, hand-curated data — the same shape as the teacher's own
// noise/blocklist maps in its LLM post-processing pass, generalized into a
// standalone lexicon the deterministic pipeline can share across stages.
package lexicon

import "strings"

// Gender is the coarse gender class a pronoun or a curated name implies.
type Gender string

const (
	Male    Gender = "male"
	Female  Gender = "female"
	Neuter  Gender = "neuter"
	Unknown Gender = "unknown"
)

// Number is singular or plural.
type Number string

const (
	Singular Number = "singular"
	Plural   Number = "plural"
)

// Pronoun describes one pronoun surface form's grammatical properties.
type Pronoun struct {
	Form   string
	Gender Gender
	Number Number
	// Possessive marks "his"/"hers"/"their"/"its" style forms; "her" is
	// recorded as non-possessive.
	Possessive bool
}

// Pronouns is the closed pronoun inventory, keyed by lowercase surface form.
var Pronouns = map[string]Pronoun{
	"he":     {"he", Male, Singular, false},
	"him":    {"him", Male, Singular, false},
	"his":    {"his", Male, Singular, true},
	"she":    {"she", Female, Singular, false},
	"her":    {"her", Female, Singular, false},
	"hers":   {"hers", Female, Singular, true},
	"it":     {"it", Neuter, Singular, false},
	"its":    {"its", Neuter, Singular, true},
	"they":   {"they", Unknown, Plural, false},
	"them":   {"them", Unknown, Plural, false},
	"their":  {"their", Unknown, Plural, true},
	"theirs": {"theirs", Unknown, Plural, true},
	"we":     {"we", Unknown, Plural, false},
	"us":     {"us", Unknown, Plural, false},
	"our":    {"our", Unknown, Plural, true},
	"i":      {"i", Unknown, Singular, false},
	"me":     {"me", Unknown, Singular, false},
	"my":     {"my", Unknown, Singular, true},
	"you":    {"you", Unknown, Singular, false},
	"your":   {"your", Unknown, Singular, true},
	"this":   {"this", Neuter, Singular, false},
	"that":   {"that", Neuter, Singular, false},
	"these":  {"these", Neuter, Plural, false},
	"those":  {"those", Neuter, Plural, false},
}

// IsPronoun reports whether s (case-insensitive) is a member of the
// pronoun inventory.
func IsPronoun(s string) bool {
	_, ok := Pronouns[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Deictics lists context-dependent location adverbs. C10
// (internal/deictic) rewrites only "there", using its own pattern, and
// does not read this table.
var Deictics = map[string]bool{"there": true, "here": true}

// StopWords is the global stopword set consulted by C6's absolute
// rejections.
var StopWords = buildStopWords()

func buildStopWords() map[string]bool {
	words := []string{
		"the", "a", "an", "and", "or", "but", "so", "if", "then", "of", "to",
		"in", "on", "at", "for", "with", "from", "by", "as", "is", "are",
		"was", "were", "be", "been", "being", "do", "does", "did", "has",
		"have", "had", "not", "no", "yes", "ok", "okay", "this", "that",
		"these", "those", "there", "here", "what", "when", "where", "who",
		"why", "how", "which", "some", "any", "all", "both", "each", "few",
		"more", "most", "other", "such", "only", "own", "same", "than",
		"too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// IsStopWord reports whether s (case-insensitive) is a global stopword.
func IsStopWord(s string) bool {
	return StopWords[strings.ToLower(strings.TrimSpace(s))]
}

// Honorifics are recognized title prefixes that open a PERSON name; their
// presence satisfies C6's "capital letter unless a recognized title
// prefix" rule and blocks cross-honorific merges in C11.
var Honorifics = map[string]bool{
	"mr": true, "mr.": true, "mrs": true, "mrs.": true, "ms": true,
	"ms.": true, "dr": true, "dr.": true, "miss": true, "lord": true,
	"lady": true, "sir": true, "dame": true, "professor": true, "prof": true,
	"prof.": true, "captain": true, "capt": true, "king": true,
	"queen": true, "prince": true, "princess": true, "duke": true,
	"duchess": true, "father": true, "reverend": true, "rev": true,
}

// HonorificOf returns the lowercase honorific token at the start of name,
// or "" if none is present.
func HonorificOf(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	tok := strings.ToLower(fields[0])
	if Honorifics[tok] {
		return tok
	}
	return ""
}

// SpeechVerbs are verbs that introduce or close direct speech, used by
// C9's quote attribution and C11's vocative/post-quote patterns.
var SpeechVerbs = map[string]bool{
	"said": true, "asked": true, "cried": true, "shouted": true,
	"whispered": true, "replied": true, "answered": true, "exclaimed": true,
	"muttered": true, "murmured": true, "called": true, "yelled": true,
	"declared": true, "announced": true, "continued": true, "added": true,
	"interrupted": true, "demanded": true, "suggested": true, "noted": true,
	"observed": true, "remarked": true, "responded": true, "stated": true,
}

// TitlesAndNominals are the per-type back-reference nouns C9's title/
// nominal back-link strategies search for (e.g. "the king" -> nearest
// preceding PERSON; "the company" -> nearest preceding ORG).
var TitlesAndNominals = map[string][]string{
	"PERSON": {
		"king", "queen", "prince", "princess", "wizard", "witch", "knight",
		"lord", "lady", "man", "woman", "boy", "girl", "scientist",
		"doctor", "teacher", "professor", "captain", "general", "chief",
		"president", "detective", "warrior", "sorcerer", "priest",
	},
	"ORG": {
		"company", "corporation", "firm", "guild", "house", "organization",
		"agency", "team", "crew", "council", "order", "army", "faction",
		"clan", "business",
	},
	"PLACE": {
		"city", "kingdom", "realm", "village", "town", "nation", "country",
		"empire", "land", "province", "island", "region", "state",
	},
}

// RoleWords are descriptor/role terms C5's profiler looks for within a
// fixed distance of an entity mention.
var RoleWords = map[string]bool{
	"wizard": true, "king": true, "queen": true, "scientist": true,
	"teacher": true, "knight": true, "witch": true, "doctor": true,
	"professor": true, "captain": true, "general": true, "president": true,
	"detective": true, "warrior": true, "sorcerer": true, "priest": true,
	"merchant": true, "farmer": true, "soldier": true, "sailor": true,
	"student": true, "apprentice": true,
}

// AttributeKeywords are the attribute names C5 tracks value-sets for.
var AttributeKeywords = []string{"color", "age", "power", "size", "status"}

// FamilyWords appear in C11's appositive-family built-in pattern and C7's
// sibling/family-friends detection.
var FamilyWords = map[string]bool{
	"father": true, "mother": true, "brother": true, "sister": true,
	"son": true, "daughter": true, "husband": true, "wife": true,
	"cousin": true, "uncle": true, "aunt": true, "nephew": true,
	"niece": true, "grandfather": true, "grandmother": true, "sibling": true,
	"child": true, "twin": true,
}

// PersonAdjectiveStoplist names adjectives that, when prefixed to a plural
// noun, should NOT trigger C11's group/ORG pattern -- instead the phrase
// names a PERSON ("Young Sirius" -> PERSON "Sirius").
var PersonAdjectiveStoplist = map[string]bool{
	"young": true, "old": true, "little": true, "big": true, "great": true,
}

// HogwartsHousePrefixes is the curated exception list for C11's place-
// suffix pattern: "<Prefix> House" becomes ORG, not PLACE.
var HogwartsHousePrefixes = map[string]bool{
	"gryffindor": true, "slytherin": true, "hufflepuff": true,
	"ravenclaw": true,
}

// WellKnownAliases is the curated nickname -> canonical map C9's
// well-known-nickname strategy consults.
var WellKnownAliases = map[string]string{
	"big blue":     "IBM",
	"the big apple": "New York City",
	"nyc":          "New York City",
}

// CommonNameGender is the curated base-gender name list C9's pronoun
// strategy consults before falling back to context-learned gender
// (spec 4.6 strategy 1: "base gender comes from a curated name list").
var CommonNameGender = map[string]Gender{
	"frodo": Male, "sam": Male, "samwise": Male, "bilbo": Male,
	"gandalf": Male, "aragorn": Male, "legolas": Male, "gimli": Male,
	"boromir": Male, "faramir": Male, "eldarion": Male, "john": Male,
	"james": Male, "robert": Male, "william": Male, "michael": Male,
	"david": Male, "richard": Male, "thomas": Male, "charles": Male,
	"arwen": Female, "galadriel": Female, "eowyn": Female, "rosie": Female,
	"mary": Female, "jennifer": Female, "linda": Female, "elizabeth": Female,
	"susan": Female, "margaret": Female, "sarah": Female, "karen": Female,
}

// JunkPersonSingletons are canonicals C14 hard-drops regardless of
// mention count.
var JunkPersonSingletons = map[string]bool{
	"souls": true, "steamy": true, "bullet": true, "maybe": true,
	"sounds": true, "a": true, "the": true, "city": true,
}

// RaceBlocklist is C14's hard-dropped RACE blocklist.
var RaceBlocklist = map[string]bool{
	"barty": true, "police": true, "only": true, "just": true,
}

// PersonHeadBlocklist are single tokens that look capitalized but are
// never PERSON heads ("Hell", "Hall", "Well", ...) per C6.
var PersonHeadBlocklist = map[string]bool{
	"hell": true, "hall": true, "well": true, "gods": true, "god": true,
}

// GenericNouns trigger C6's binary-filter generic-noun rejection.
var GenericNouns = map[string]bool{
	"messenger": true, "stranger": true, "man": true, "woman": true,
	"person": true, "thing": true, "place": true, "way": true,
}

// JunkPersonSoftList are PERSON canonicals C14 drops only when mention
// count is exactly 1, unlike JunkPersonSingletons which are always
// dropped.
var JunkPersonSoftList = map[string]bool{
	"guy": true, "dude": true, "thing": true, "whatever": true,
	"nothing": true, "something": true,
}

// RaceWhitelist lists RACE canonicals C14 never drops regardless of
// mention count or keyword presence.
var RaceWhitelist = map[string]bool{
	"elf": true, "elves": true, "dwarf": true, "dwarves": true,
	"hobbit": true, "hobbits": true, "orc": true, "orcs": true,
	"human": true, "humans": true, "ent": true, "ents": true,
}

// RaceKeywords are the substrings that, when present in a RACE
// canonical, exempt it from C14's race-noise drop.
var RaceKeywords = []string{"folk", "people", "clan", "tribe", "race"}

// EventWords signal that a "the X" PERSON canonical is actually an
// EVENT, per C14's event-ish retagging.
var EventWords = map[string]bool{
	"reunion": true, "party": true, "dance": true, "ball": true,
	"festival": true,
}

// FictionEntityTypes are the entity types C14 routes to the
// fiction-entities side output: spells, creatures, artifacts, and
// other invented-world vocabulary with no real-world counterpart.
var FictionEntityTypes = map[string]bool{
	"SPELL": true, "CREATURE": true, "ARTIFACT": true, "MAGIC": true,
	"TECHNIQUE": true, "ABILITY": true, "POWER": true, "DEITY": true,
}
