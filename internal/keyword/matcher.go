// Package keyword builds a multi-pattern matcher over the feature
// vocabulary and matches queries against it with longest-leftmost
// semantics, per spec §4.2.
package keyword

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type trieNode struct {
	children map[rune]*trieNode
	isEnd    bool
	pattern  string
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// Matcher is an immutable, compiled multi-pattern automaton. It is safe
// for concurrent reads from multiple retrievers once Compile has returned,
// per spec §5's "immutable after compile(), shared" contract.
type Matcher struct {
	root     *trieNode
	patterns []string // sorted by length descending, for deterministic compilation
}

// Compile builds the matcher from the full set of feature contents. It
// lowercases every pattern, sorts the pattern list by length descending
// for determinism (spec §4.2), and discards stopwords and empties.
func Compile(featureContents []string) *Matcher {
	seen := make(map[string]struct{}, len(featureContents))
	patterns := make([]string, 0, len(featureContents))

	for _, content := range featureContents {
		lower := strings.ToLower(strings.TrimSpace(content))
		if lower == "" || IsStopword(lower) {
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		patterns = append(patterns, lower)
	}

	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})

	root := newTrieNode()
	for _, p := range patterns {
		insert(root, p)
	}

	return &Matcher{root: root, patterns: patterns}
}

func insert(root *trieNode, pattern string) {
	cur := root
	for _, r := range pattern {
		next, ok := cur.children[r]
		if !ok {
			next = newTrieNode()
			cur.children[r] = next
		}
		cur = next
	}
	cur.isEnd = true
	cur.pattern = pattern
}

// Patterns returns the compiled, length-descending-sorted pattern list.
func (m *Matcher) Patterns() []string {
	return m.patterns
}

// Match runs longest-leftmost matching over the lowercased query,
// returning every matched pattern in left-to-right order (duplicates
// included, once per occurrence). When the automaton finds no match at
// all, it falls back to a bounded (distance <= 1) fuzzy lookup against
// the vocabulary, per the enrichment in SPEC_FULL.md's domain stack.
func (m *Matcher) Match(query string) []string {
	lower := strings.ToLower(query)
	runes := []rune(lower)

	var results []string

	i := 0
	for i < len(runes) {
		matchEnd, pattern := m.longestMatchAt(runes, i)
		if matchEnd > i {
			results = append(results, pattern)
			i = matchEnd
			continue
		}
		i++
	}

	if len(results) == 0 {
		return m.fuzzyFallback(runes)
	}

	return results
}

func (m *Matcher) longestMatchAt(runes []rune, start int) (end int, pattern string) {
	cur := m.root
	lastEnd := start
	lastPattern := ""

	for j := start; j < len(runes); j++ {
		next, ok := cur.children[runes[j]]
		if !ok {
			break
		}
		cur = next
		if cur.isEnd {
			lastEnd = j + 1
			lastPattern = cur.pattern
		}
	}

	return lastEnd, lastPattern
}

// fuzzyFallback splits the query on spaces, tabs and newlines (runs of
// CJK text are not split further) and looks for a vocabulary entry within edit distance 1 of any token. It
// never runs when the automaton already found a match.
func (m *Matcher) fuzzyFallback(runes []rune) []string {
	tokens := splitLoose(string(runes))
	var results []string
	seen := make(map[string]struct{})

	for _, tok := range tokens {
		if tok == "" || IsStopword(tok) {
			continue
		}
		for _, p := range m.patterns {
			if _, ok := seen[p]; ok {
				continue
			}
			if levenshtein.ComputeDistance(tok, p) <= 1 {
				results = append(results, p)
				seen[p] = struct{}{}
			}
		}
	}
	return results
}

func splitLoose(text string) []string {
	var tokens []string
	var buf []rune
	flush := func() {
		if len(buf) > 0 {
			tokens = append(tokens, string(buf))
			buf = buf[:0]
		}
	}
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' {
			flush()
			continue
		}
		buf = append(buf, r)
	}
	flush()
	return tokens
}
