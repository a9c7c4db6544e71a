// Package ares is the public entry point: spec section 6's single
// extract(doc_id, full_text, existing_profiles?, pattern_library?,
// options?) operation, as a thin facade over internal/pipeline's
// Orchestrator. Grounded on the teacher's convention of exposing one
// small top-level API and pushing everything else into internal/.
package ares

import (
	"github.com/mrfishcar/ares/internal/config"
	"github.com/mrfishcar/ares/internal/hert"
	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/parseradapter"
	"github.com/mrfishcar/ares/internal/pipeline"
	"github.com/mrfishcar/ares/internal/schema"
)

// Options mirrors pipeline.Options: the extract operation's optional
// inputs beyond doc_id/full_text.
type Options struct {
	ExistingProfiles map[string]*model.Profile
	PatternLibrary   []*schema.Pattern
	BlockedTokens    []string
	GenerateHERTs    bool
}

// Result is extract's full typed output.
type Result struct {
	Entities        []*model.Entity
	Spans           []model.Span
	Relations       []*model.Relation
	FictionEntities []*model.Entity
	Profiles        map[string]*model.Profile
	Herts           []hert.HERT
	Stats           []pipeline.StageStats
}

// Engine holds the process-wide identity registry and parser collaborator
// shared across Extract calls, so entity identity stays stable across a
// multi-document run.
type Engine struct {
	orch *pipeline.Orchestrator
}

// New constructs an Engine with a fresh identity registry and a
// prose-backed parser.
func New(cfg config.EngineConfig) *Engine {
	return &Engine{orch: pipeline.New(cfg, parseradapter.NewProseParser())}
}

// NewWithParser constructs an Engine using a caller-supplied parser,
// letting callers substitute a fake in tests.
func NewWithParser(cfg config.EngineConfig, parser parseradapter.Parser) *Engine {
	return &Engine{orch: pipeline.New(cfg, parser)}
}

// Extract runs the full thirteen-stage pipeline over one document.
func (e *Engine) Extract(docID, fullText string, opts Options) (*Result, error) {
	out, err := e.orch.Extract(docID, fullText, pipeline.Options{
		ExistingProfiles: opts.ExistingProfiles,
		PatternLibrary:   opts.PatternLibrary,
		BlockedTokens:    opts.BlockedTokens,
		GenerateHERTs:    opts.GenerateHERTs,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Entities:        out.Entities,
		Spans:           out.Spans,
		Relations:       out.Relations,
		FictionEntities: out.FictionEntities,
		Profiles:        out.Profiles,
		Herts:           out.Herts,
		Stats:           out.Stats,
	}, nil
}
