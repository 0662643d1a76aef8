package fingerprint

import (
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// hashSeed is mixed into every token hash so the semantic SimHash is
// reproducible across runs but distinct from other uses of xxhash in
// this module (e.g. feature id derivation in internal/graph).
const hashSeed uint64 = 0x9E3779B97F4A7C15

// ComputeText32 builds the 32-bit semantic SimHash of spec §3.1: the text
// is tokenized (whitespace-split, falling back to per-character tokens for
// scripts without word boundaries such as CJK), each token is hashed with
// a stable 64-bit hash, and each of the 32 bit positions accumulates +1 if
// set in the token hash, -1 otherwise. The final bit is 1 iff its counter
// is positive.
func ComputeText32(text string) uint32 {
	tokens := tokenize(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0
	}

	var counters [32]int
	for _, tok := range tokens {
		h := hashToken(tok)
		for bit := 0; bit < 32; bit++ {
			if h&(1<<uint(bit)) != 0 {
				counters[bit]++
			} else {
				counters[bit]--
			}
		}
	}

	var result uint32
	for bit := 0; bit < 32; bit++ {
		if counters[bit] > 0 {
			result |= 1 << uint(bit)
		}
	}
	return result
}

func hashToken(tok string) uint64 {
	return xxhash.Sum64String(tok) ^ hashSeed
}

// tokenize whitespace-splits text and additionally splits out runs of
// CJK/other-script runes (scripts without reliable word boundaries) into
// individual character tokens, as required by spec §3.1.
func tokenize(text string) []string {
	var tokens []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			tokens = append(tokens, buf.String())
			buf.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case hasWordBoundaries(r):
			buf.WriteRune(r)
		default:
			// No reliable word boundary (CJK and similar scripts):
			// flush any pending ASCII-ish token and emit this rune
			// on its own.
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

// hasWordBoundaries reports whether r belongs to a script where whitespace
// splitting is sufficient (Latin letters, digits, and combining marks).
func hasWordBoundaries(r rune) bool {
	return unicode.Is(unicode.Latin, r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || r == '-' || r == '\''
}
