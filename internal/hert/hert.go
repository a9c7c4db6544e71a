// Package hert implements C15, the optional HERT identifier generator:
// for every surviving span it encodes (EID, AID?, SP?, document
// fingerprint, paragraph index, token start, token length, confidence)
// into a single opaque "HERTv1:<base62>" string. Grounded directly on
// the teacher's generateShortID (internal/graph/episodes.go), which
// hashes an ID with BLAKE3 and truncates to a short display form; here
// the BLAKE3 hash becomes the document fingerprint inside a richer
// encoded payload instead of a truncated display ID.
package hert

import (
	"strconv"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/mrfishcar/ares/internal/model"
)

// HERT is one generated identifier, tied back to the span it encodes.
type HERT struct {
	Tag       string
	EntityID  string
	SpanStart int
	SpanEnd   int
}

// Metadata tallies generation outcomes, per spec 7's HERTEncoding error
// kind: non-fatal, logged and skipped per mention.
type Metadata struct {
	Generated int
	Skipped   int
}

// Input is C15's typed input.
type Input struct {
	DocID      string
	Text       string
	Spans      []model.Span
	Entities   []*model.Entity
	Confidence map[string]float64 // entity id -> profile confidence, optional
}

// Output is C15's typed output.
type Output struct {
	Herts    []HERT
	Metadata Metadata
}

const prefix = "HERTv1:"

// Generate produces one HERT per surviving span, in span order.
func Generate(in Input) Output {
	if len(in.Spans) == 0 {
		return Output{}
	}

	byID := make(map[string]*model.Entity, len(in.Entities))
	for _, e := range in.Entities {
		byID[e.ID] = e
	}

	fingerprint := documentFingerprint(in.Text)
	var out []HERT
	var meta Metadata

	for _, sp := range in.Spans {
		ent, ok := byID[sp.EntityID]
		if !ok || sp.End < sp.Start {
			meta.Skipped++
			continue
		}
		paragraph := paragraphIndex(in.Text, sp.Start)
		confidence := in.Confidence[sp.EntityID]
		tag := encode(ent, fingerprint, paragraph, sp.Start, sp.End-sp.Start, confidence)
		out = append(out, HERT{
			Tag:       tag,
			EntityID:  sp.EntityID,
			SpanStart: sp.Start,
			SpanEnd:   sp.End,
		})
		meta.Generated++
	}

	return Output{Herts: out, Metadata: meta}
}

// documentFingerprint is a stable hash of the normalized text, used as
// the fixed-width fingerprint field of every HERT minted for it: the
// first 8 bytes of its BLAKE3 sum in base62, left-padded with '0' to 11
// digits, the most any 8-byte value needs.
func documentFingerprint(text string) string {
	sum := blake3.Sum256([]byte(text))
	fp := base62Encode(sum[:8])
	return strings.Repeat("0", 11-len(fp)) + fp
}

// paragraphIndex counts "\n\n" occurrences before offset.
func paragraphIndex(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n\n")
}

// encode writes the prefix followed by the tuple fields joined with '.':
// EID, AID (empty when zero), SP (dash-joined, empty when none),
// fingerprint, paragraph, token start and token length, each numeric
// field in base62, then the confidence byte in decimal.
func encode(ent *model.Entity, fingerprint string, paragraph, tokenStart, tokenLength int, confidence float64) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(base62Encode(int64ToBytes(ent.EID)))
	b.WriteByte('.')
	if ent.AID != 0 {
		b.WriteString(base62Encode(int64ToBytes(ent.AID)))
	}
	b.WriteByte('.')
	b.WriteString(encodeSP(ent.SP))
	b.WriteByte('.')
	b.WriteString(fingerprint)
	b.WriteByte('.')
	b.WriteString(base62Encode(int64ToBytes(int64(paragraph))))
	b.WriteByte('.')
	b.WriteString(base62Encode(int64ToBytes(int64(tokenStart))))
	b.WriteByte('.')
	b.WriteString(base62Encode(int64ToBytes(int64(tokenLength))))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(confidenceByte(confidence)))
	return b.String()
}

func encodeSP(sp []int) string {
	if len(sp) == 0 {
		return ""
	}
	parts := make([]string, len(sp))
	for i, v := range sp {
		parts[i] = base62Encode(int64ToBytes(int64(v)))
	}
	return strings.Join(parts, "-")
}

// confidenceByte quantizes confidence in [0,1] to a single byte 0-255.
func confidenceByte(confidence float64) int {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return int(confidence * 255)
}

func int64ToBytes(v int64) []byte {
	if v == 0 {
		return []byte{0}
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf []byte
	for v > 0 {
		buf = append([]byte{byte(v & 0xff)}, buf...)
		v >>= 8
	}
	if neg {
		buf = append([]byte{0xff}, buf...)
	}
	return buf
}

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// base62Encode encodes a byte slice as a base62 digit string, treating
// the bytes as a big-endian unsigned integer.
func base62Encode(data []byte) string {
	if len(data) == 0 {
		return "0"
	}
	// Work on a copy so repeated division doesn't mutate the caller's bytes.
	num := append([]byte(nil), data...)

	var out []byte
	var rem int
	for !isZero(num) {
		num, rem = divmod62(num)
		out = append(out, base62Alphabet[rem])
	}
	if len(out) == 0 {
		out = []byte{base62Alphabet[0]}
	}
	reverse(out)
	return string(out)
}

func isZero(num []byte) bool {
	for _, b := range num {
		if b != 0 {
			return false
		}
	}
	return true
}

// divmod62 divides the big-endian unsigned integer num by 62 in place,
// returning the quotient (same length) and the remainder.
func divmod62(num []byte) ([]byte, int) {
	quot := make([]byte, len(num))
	rem := 0
	for i, b := range num {
		cur := rem*256 + int(b)
		quot[i] = byte(cur / 62)
		rem = cur % 62
	}
	return quot, rem
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
