// Package pipeline implements C16, the pipeline orchestrator: it wires
// the thirteen extraction stages plus the discourse pre-filter and
// identity/finalizer/HERT collaborators into the fixed composition spec
// section 2 names, threading typed state between them and collecting
// per-stage statistics. Grounded on the teacher's cmd/bud/main.go wiring
// style — explicit, sequential construction of collaborators held in a
// long-lived struct — and internal/logging's entry/exit-with-duration
// idiom, generalized from a service's one-time startup wiring into a
// per-document stage sequence.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/mrfishcar/ares/internal/config"
	"github.com/mrfishcar/ares/internal/coref"
	"github.com/mrfishcar/ares/internal/dedup"
	"github.com/mrfishcar/ares/internal/deictic"
	"github.com/mrfishcar/ares/internal/discourse"
	"github.com/mrfishcar/ares/internal/entityextract"
	"github.com/mrfishcar/ares/internal/entityfilter"
	"github.com/mrfishcar/ares/internal/hert"
	"github.com/mrfishcar/ares/internal/identity"
	"github.com/mrfishcar/ares/internal/inverse"
	"github.com/mrfishcar/ares/internal/kg"
	"github.com/mrfishcar/ares/internal/lexicon"
	"github.com/mrfishcar/ares/internal/logging"
	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/parseradapter"
	"github.com/mrfishcar/ares/internal/profile"
	"github.com/mrfishcar/ares/internal/relextract"
	"github.com/mrfishcar/ares/internal/relfilter"
	"github.com/mrfishcar/ares/internal/schema"
)

// StageErrorKind is one of the four error kinds spec section 7 names.
type StageErrorKind string

const (
	InputInvariant    StageErrorKind = "InputInvariant"
	ParserUnavailable StageErrorKind = "ParserUnavailable"
	RegistryConflict  StageErrorKind = "RegistryConflict"
	HERTEncoding      StageErrorKind = "HERTEncoding"
)

// StageError wraps a failing stage's name, error kind, and cause, per
// spec section 7's propagation policy.
type StageError struct {
	Stage string
	Kind  StageErrorKind
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Cause)
}

func (e *StageError) Unwrap() error { return e.Cause }

// StageStats is one stage's entry/exit telemetry.
type StageStats struct {
	Stage      string
	Duration   time.Duration
	InputSize  int
	OutputSize int
}

// Options carries the pipeline entry point's optional inputs (spec
// section 6's existing_profiles?/pattern_library?/options?).
type Options struct {
	ExistingProfiles map[string]*model.Profile
	PatternLibrary   []*schema.Pattern
	BlockedTokens    []string
	GenerateHERTs    bool
}

// Result is the pipeline entry point's full typed output.
type Result struct {
	Entities        []*model.Entity
	Spans           []model.Span
	Relations       []*model.Relation
	FictionEntities []*model.Entity
	Profiles        map[string]*model.Profile
	Herts           []hert.HERT
	Stats           []StageStats
}

// Orchestrator owns the process-wide identity registry and the parser
// collaborator across documents; everything else is per-invocation.
type Orchestrator struct {
	Config   config.EngineConfig
	Parser   parseradapter.Parser
	Identity *identity.IdentityStore
}

// New constructs an Orchestrator with a fresh identity registry.
func New(cfg config.EngineConfig, parser parseradapter.Parser) *Orchestrator {
	return &Orchestrator{Config: cfg, Parser: parser, Identity: identity.New()}
}

// Extract runs the full pipeline over one document: spec section 6's
// extract(doc_id, full_text, existing_profiles?, pattern_library?,
// options?).
func (o *Orchestrator) Extract(docID, fullText string, opts Options) (*Result, error) {
	if docID == "" {
		return nil, &StageError{Stage: "C16", Kind: InputInvariant, Cause: fmt.Errorf("doc_id is required")}
	}

	var stats []StageStats
	stage := func(name string, start time.Time, inSize, outSize int) {
		logging.StageExit(name, start, outSize)
		stats = append(stats, StageStats{Stage: name, Duration: time.Since(start), InputSize: inSize, OutputSize: outSize})
	}

	text := parseradapter.Normalize(fullText)

	// C3: parser adapter.
	t0 := logging.StageEntry("C3", len(text))
	parsed, err := o.Parser.Parse(text)
	if err != nil {
		return nil, &StageError{Stage: "C3", Kind: ParserUnavailable, Cause: err}
	}
	stage("C3", t0, len(text), len(parsed.Tokens))

	segments := parseradapter.BuildSegments(text, parsed.Sentences)

	// Discourse pre-filter: drops backchannel/greeting sentences before C11
	// spends work on their NER mentions.
	t0 = logging.StageEntry("discourse", len(parsed.Sentences))
	discOut := discourse.Filter(discourse.Input{Sentences: parsed.Sentences})
	stage("discourse", t0, len(parsed.Sentences), len(discOut.Kept))

	nerEntities := parsed.Entities
	extractionText := text
	if len(discOut.Dropped) > 0 {
		nerEntities = filterEntitiesOutsideSentences(parsed.Entities, discOut.Dropped)
		extractionText = maskDroppedSentences(text, discOut.Dropped)
	}

	// C11: entity extraction. extractionText has every dropped sentence's
	// characters blanked out (offsets unchanged) so windowed NER re-parses,
	// the built-in pattern catalog, and the pattern library all see zero
	// candidates inside phatic sentences, per spec section 4.2.
	t0 = logging.StageEntry("C11", len(nerEntities))
	extractOut := entityextract.Extract(entityextract.Input{
		DocID:          docID,
		Text:           extractionText,
		Sentences:      parsed.Sentences,
		Segments:       segments,
		NEREntities:    nerEntities,
		Parser:         o.Parser,
		PatternLibrary: opts.PatternLibrary,
	})
	stage("C11", t0, len(nerEntities), len(extractOut.Entities))

	// C6: entity quality filter.
	candidates := buildCandidates(extractOut, parsed.Sentences)
	t0 = logging.StageEntry("C6", len(candidates))
	filterRes := entityfilter.Filter(o.Config, candidates, opts.BlockedTokens)
	stage("C6", t0, len(candidates), len(filterRes.Accepted))

	kept := make(map[string]bool, len(filterRes.Accepted))
	byID := make(map[string]*model.Entity, len(filterRes.Accepted))
	for _, e := range filterRes.Accepted {
		kept[e.ID] = true
		byID[e.ID] = e
	}
	var spans []model.Span
	for _, sp := range extractOut.Spans {
		if kept[sp.EntityID] {
			spans = append(spans, sp)
		}
	}

	// C5: entity profiler.
	profiles := make(map[string]*model.Profile, len(filterRes.Accepted))
	for k, v := range opts.ExistingProfiles {
		profiles[k] = v
	}
	for _, e := range filterRes.Accepted {
		if profiles[e.ID] == nil {
			profiles[e.ID] = model.NewProfile(e.ID)
		}
	}
	t0 = logging.StageEntry("C5", len(spans))
	for _, sp := range spans {
		e, ok := byID[sp.EntityID]
		if !ok {
			continue
		}
		sentIdx := sentenceIndexAt(parsed.Sentences, sp.Start)
		profile.Update(profiles[e.ID], docID, e.Canonical, sentenceText(parsed.Sentences, text, sentIdx))
	}
	stage("C5", t0, len(spans), len(profiles))

	// C9: coreference resolver.
	corefMentions := buildCorefMentions(filterRes.Accepted, spans, parsed.Sentences, segments)
	t0 = logging.StageEntry("C9", len(corefMentions))
	corefOut := coref.Resolve(text, parsed.Sentences, segments, corefMentions)
	stage("C9", t0, len(corefMentions), len(corefOut.Links))

	corefByEntity := make(map[string][]identity.CorefMentionText, len(corefOut.Links))
	for _, l := range corefOut.Links {
		spans = append(spans, model.Span{EntityID: l.EntityID, Start: l.MentionStart, End: l.MentionEnd, Virtual: true, Method: l.Method})
		mtext := safeSlice(text, l.MentionStart, l.MentionEnd)
		corefByEntity[l.EntityID] = append(corefByEntity[l.EntityID], identity.CorefMentionText{
			Text:           mtext,
			IsPronoun:      lexicon.IsPronoun(mtext),
			IsCoordination: l.Method == "coordination",
		})
	}

	// C10: deictic resolver. Produces the processed text C12 extracts
	// over; spans/sentence offsets are remapped into that text's
	// coordinate space so evidence offsets land in the processed text,
	// per spec section 3's Evidence definition.
	deicticEntities := make([]deictic.EntityMention, 0, len(spans))
	for _, sp := range spans {
		if e, ok := byID[sp.EntityID]; ok {
			deicticEntities = append(deicticEntities, deictic.EntityMention{Canonical: e.Canonical, Type: e.Type, Start: sp.Start, End: sp.End})
		}
	}
	t0 = logging.StageEntry("C10", len(deicticEntities))
	processedText := deictic.Rewrite(text, deicticEntities)
	shifts := deictic.Shifts(text, deicticEntities)
	stage("C10", t0, len(text), len(processedText))

	remappedSpans := make([]model.Span, len(spans))
	for i, sp := range spans {
		remappedSpans[i] = model.Span{
			EntityID: sp.EntityID,
			Start:    deictic.RemapOffset(shifts, sp.Start),
			End:      deictic.RemapOffset(shifts, sp.End),
			Virtual:  sp.Virtual,
			Method:   sp.Method,
		}
	}
	remappedSentences := make([]parseradapter.Sentence, len(parsed.Sentences))
	for i, s := range parsed.Sentences {
		remappedSentences[i] = parseradapter.Sentence{
			Text:  s.Text,
			Start: deictic.RemapOffset(shifts, s.Start),
			End:   deictic.RemapOffset(shifts, s.End),
		}
	}

	// C12: relation extraction.
	t0 = logging.StageEntry("C12", len(remappedSpans))
	relOut := relextract.Extract(relextract.Input{
		DocID:     docID,
		Text:      processedText,
		Sentences: remappedSentences,
		Segments:  segments,
		Entities:  filterRes.Accepted,
		Spans:     remappedSpans,
		Parser:    o.Parser,
	})
	stage("C12", t0, len(remappedSpans), len(relOut.Relations))

	// C7: relation quality filter.
	t0 = logging.StageEntry("C7", len(relOut.Relations))
	relFilterOut := relfilter.Filter(relfilter.Input{
		Text:      processedText,
		Entities:  filterRes.Accepted,
		Relations: relOut.Relations,
		Config:    o.Config,
	})
	stage("C7", t0, len(relOut.Relations), len(relFilterOut.Relations))

	// C13: inverse generator.
	t0 = logging.StageEntry("C13", len(relFilterOut.Relations))
	invOut := inverse.Generate(docID, relFilterOut.Relations)
	stage("C13", t0, len(relFilterOut.Relations), len(invOut.Relations))

	// C8: relation deduplicator.
	relations := invOut.Relations
	if o.Config.DeduplicationEnabled {
		t0 = logging.StageEntry("C8", len(invOut.Relations))
		dedupOut := dedup.Dedupe(invOut.Relations)
		stage("C8", t0, len(invOut.Relations), len(dedupOut.Relations))
		relations = dedupOut.Relations
	}

	// (C4): identity registries, run once relations have stabilized so
	// canonical recomputation reflects the final coreference/alias set.
	t0 = logging.StageEntry("C4", len(filterRes.Accepted))
	for _, e := range filterRes.Accepted {
		identity.AssignIdentity(o.Identity, e, profiles[e.ID], profiles, corefByEntity[e.ID])
	}
	stage("C4", t0, len(filterRes.Accepted), len(filterRes.Accepted))

	// C14: knowledge-graph finalizer.
	t0 = logging.StageEntry("C14", len(filterRes.Accepted))
	kgOut := kg.Finalize(kg.Input{Entities: filterRes.Accepted, Spans: spans, Relations: relations})
	stage("C14", t0, len(filterRes.Accepted), len(kgOut.Entities))

	result := &Result{
		Entities:        kgOut.Entities,
		Spans:           kgOut.Spans,
		Relations:       kgOut.Relations,
		FictionEntities: kgOut.FictionEntities,
		Profiles:        profiles,
		Stats:           stats,
	}

	// (C15): optional HERT generation.
	if opts.GenerateHERTs {
		confidence := make(map[string]float64, len(profiles))
		for id, p := range profiles {
			confidence[id] = p.Confidence
		}
		t0 = logging.StageEntry("C15", len(kgOut.Spans))
		hertOut := hert.Generate(hert.Input{DocID: docID, Text: text, Spans: kgOut.Spans, Entities: kgOut.Entities, Confidence: confidence})
		stage("C15", t0, len(kgOut.Spans), len(hertOut.Herts))
		result.Herts = hertOut.Herts
	}

	return result, nil
}

func buildCandidates(out entityextract.Output, sentences []parseradapter.Sentence) []entityfilter.Candidate {
	spansByEntity := make(map[string][]model.Span, len(out.Entities))
	for _, sp := range out.Spans {
		spansByEntity[sp.EntityID] = append(spansByEntity[sp.EntityID], sp)
	}

	candidates := make([]entityfilter.Candidate, 0, len(out.Entities))
	for _, e := range out.Entities {
		entitySpans := spansByEntity[e.ID]
		f := entityfilter.Features{
			TokenCount:    len(strings.Fields(e.Canonical)),
			HasNERSupport: true,
		}
		if len(entitySpans) >= 2 {
			f.Confidence = 0.9
		} else {
			f.Confidence = 0.6
		}
		for _, sp := range entitySpans {
			if isSentenceInitial(sentences, sp.Start) {
				f.IsSentenceInitial = true
			} else {
				f.OccursNonInitial = true
			}
		}
		candidates = append(candidates, entityfilter.Candidate{Entity: e, Features: f})
	}
	return candidates
}

func isSentenceInitial(sentences []parseradapter.Sentence, offset int) bool {
	for _, s := range sentences {
		if offset >= s.Start && offset < s.End {
			return offset-s.Start <= 1
		}
	}
	return false
}

func buildCorefMentions(entities []*model.Entity, spans []model.Span, sentences []parseradapter.Sentence, segments []parseradapter.Segment) []coref.EntityMention {
	byID := make(map[string]*model.Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	out := make([]coref.EntityMention, 0, len(spans))
	for _, sp := range spans {
		e, ok := byID[sp.EntityID]
		if !ok {
			continue
		}
		sentIdx := sentenceIndexAt(sentences, sp.Start)
		out = append(out, coref.EntityMention{
			EntityID:     e.ID,
			Type:         e.Type,
			Canonical:    e.Canonical,
			Start:        sp.Start,
			End:          sp.End,
			SentenceIdx:  sentIdx,
			ParagraphIdx: paragraphOf(segments, sentIdx),
		})
	}
	return out
}

func paragraphOf(segments []parseradapter.Segment, sentIdx int) int {
	for _, s := range segments {
		if sentIdx >= s.SentenceStart && sentIdx < s.SentenceEnd {
			return s.ParagraphIdx
		}
	}
	if len(segments) > 0 {
		return segments[len(segments)-1].ParagraphIdx
	}
	return 0
}

func sentenceIndexAt(sentences []parseradapter.Sentence, offset int) int {
	for i, s := range sentences {
		if offset >= s.Start && offset < s.End {
			return i
		}
	}
	if len(sentences) > 0 {
		return len(sentences) - 1
	}
	return 0
}

func sentenceText(sentences []parseradapter.Sentence, text string, idx int) string {
	if idx < 0 || idx >= len(sentences) {
		return ""
	}
	s := sentences[idx]
	return safeSlice(text, s.Start, s.End)
}

func safeSlice(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		return ""
	}
	return text[start:end]
}

// filterEntitiesOutsideSentences drops NER entities whose start offset
// falls inside one of the dropped (low-info) sentences.
func filterEntitiesOutsideSentences(entities []parseradapter.NEREntity, dropped []parseradapter.Sentence) []parseradapter.NEREntity {
	var out []parseradapter.NEREntity
	for _, e := range entities {
		if sentenceContains(dropped, e.Start) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func sentenceContains(sentences []parseradapter.Sentence, offset int) bool {
	for _, s := range sentences {
		if offset >= s.Start && offset < s.End {
			return true
		}
	}
	return false
}

// maskDroppedSentences blanks every dropped sentence's characters with
// spaces, preserving length and every other span's offsets, so C11's
// windowed re-parse, built-in patterns, and pattern library all see zero
// candidates there instead of silently re-extracting from the
// unfiltered text.
func maskDroppedSentences(text string, dropped []parseradapter.Sentence) string {
	b := []byte(text)
	for _, s := range dropped {
		start, end := s.Start, s.End
		if start < 0 {
			start = 0
		}
		if end > len(b) {
			end = len(b)
		}
		for i := start; i < end; i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	return string(b)
}
