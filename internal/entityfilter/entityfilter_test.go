package entityfilter

import (
	"testing"

	"github.com/mrfishcar/ares/internal/config"
	"github.com/mrfishcar/ares/internal/model"
	"github.com/mrfishcar/ares/internal/schema"
)

func cand(name string, t schema.EntityType, conf float64) Candidate {
	return Candidate{
		Entity:   &model.Entity{ID: name, Type: t, Canonical: name},
		Features: Features{Confidence: conf},
	}
}

func TestAbsoluteRejectionsLowercaseProperNoun(t *testing.T) {
	cfg := config.Load()
	res := Filter(cfg, []Candidate{cand("gandalf", schema.Person, 0.9)}, nil)
	if len(res.Accepted) != 0 {
		t.Fatalf("expected lowercase PERSON to be rejected, got %+v", res.Accepted)
	}
	if res.Reasons["not-capitalized"] != 1 {
		t.Fatalf("expected not-capitalized reason, got %+v", res.Reasons)
	}
}

func TestAbsoluteRejectionsPronoun(t *testing.T) {
	cfg := config.Load()
	res := Filter(cfg, []Candidate{cand("he", schema.Person, 0.9)}, nil)
	if len(res.Accepted) != 0 {
		t.Fatalf("expected pronoun to be rejected")
	}
}

func TestBinaryRejectsBelowConfidenceFloor(t *testing.T) {
	cfg := config.Load()
	cfg.EntityMinConfidence = 0.6
	res := Filter(cfg, []Candidate{cand("Frodo Baggins", schema.Person, 0.4)}, nil)
	if len(res.Accepted) != 0 {
		t.Fatalf("expected low-confidence entity to be rejected, got %+v", res.Accepted)
	}
}

func TestAcceptsWellFormedPerson(t *testing.T) {
	cfg := config.Load()
	cfg.EntityMinConfidence = 0.5
	c := cand("Frodo Baggins", schema.Person, 0.8)
	c.Features.HasNERSupport = true
	res := Filter(cfg, []Candidate{c}, nil)
	if len(res.Accepted) != 1 {
		t.Fatalf("expected entity to be accepted, reasons=%+v", res.Reasons)
	}
	if res.Accepted[0].Tier != schema.TierA {
		t.Fatalf("expected Tier A, got %s", res.Accepted[0].Tier)
	}
}

func TestDateRequiresSignal(t *testing.T) {
	cfg := config.Load()
	cfg.EntityMinConfidence = 0.5
	res := Filter(cfg, []Candidate{cand("Banana", schema.Date, 0.9)}, nil)
	if len(res.Accepted) != 0 {
		t.Fatalf("expected DATE without numeral/keyword to be rejected")
	}

	res2 := Filter(cfg, []Candidate{cand("1999", schema.Date, 0.9)}, nil)
	if len(res2.Accepted) != 1 {
		t.Fatalf("expected 4-digit year DATE to be accepted")
	}
}

func TestPersonHeadBlocklist(t *testing.T) {
	cfg := config.Load()
	cfg.EntityMinConfidence = 0.3
	res := Filter(cfg, []Candidate{cand("Hell", schema.Person, 0.9)}, nil)
	if len(res.Accepted) != 0 {
		t.Fatalf("expected PERSON-head-blocklist token to be rejected")
	}
}

func TestTwoFirstNamesSplit(t *testing.T) {
	cfg := config.Load()
	cfg.EntityMinConfidence = 0.3
	res := Filter(cfg, []Candidate{cand("John Mary", schema.Person, 0.8)}, nil)
	if len(res.Accepted) != 2 {
		t.Fatalf("expected two-first-names split into 2 entities, got %d: %+v", len(res.Accepted), res.Accepted)
	}
}

func TestRoleBasedRejection(t *testing.T) {
	cfg := config.Load()
	cfg.EntityMinConfidence = 0.3
	res := Filter(cfg, []Candidate{cand("Messenger", schema.Person, 0.9)}, nil)
	if len(res.Accepted) != 0 {
		t.Fatalf("expected standalone role word to be rejected")
	}
}

func TestBlockedTokenList(t *testing.T) {
	cfg := config.Load()
	cfg.EntityMinConfidence = 0.3
	res := Filter(cfg, []Candidate{cand("Mordor Inc", schema.Org, 0.9)}, []string{"mordor inc"})
	if len(res.Accepted) != 0 {
		t.Fatalf("expected blocked token to be rejected")
	}
}

func TestFilterDisabledPassesEverythingThrough(t *testing.T) {
	cfg := config.Load()
	cfg.EntityFilterEnabled = false
	res := Filter(cfg, []Candidate{cand("he", schema.Person, 0.1)}, nil)
	if len(res.Accepted) != 1 {
		t.Fatalf("expected disabled filter to pass everything through")
	}
}
