// Package lexicon provides the lexical primitives the gate evaluators are
// built on: tokenization, case-insensitive containment, span location, and a
// keyword-overlap relatedness heuristic.
package lexicon

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}%]+`)

// stopWords lists filler tokens excluded from keyword bags. Only tokens of
// four or more characters matter here; shorter tokens are dropped anyway.
var stopWords = map[string]bool{
	"this": true, "that": true, "these": true, "those": true,
	"with": true, "without": true, "from": true, "into": true,
	"have": true, "will": true, "would": true, "could": true,
	"should": true, "about": true, "after": true, "before": true,
	"when": true, "where": true, "which": true, "while": true,
	"than": true, "then": true, "them": true, "they": true,
	"their": true, "there": true, "been": true, "being": true,
	"because": true, "instead": true, "also": true, "only": true,
	"such": true, "same": true, "other": true, "each": true,
	"must": true, "does": true, "what": true, "your": true,
}

// Span marks one matched substring for UI highlighting. Offsets are byte
// positions into the original text.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Words tokenizes text into letter/digit/percent runs.
func Words(text string) []string {
	if text == "" {
		return nil
	}
	return wordPattern.FindAllString(text, -1)
}

// WordCount returns the number of word tokens in text.
func WordCount(text string) int {
	return len(Words(text))
}

// ContainsAny reports whether text contains any needle, case-insensitively.
func ContainsAny(text string, needles []string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

// FirstSpan locates the first case-insensitive occurrence of needle in text.
// The returned span is for UI highlighting only and never drives a decision.
func FirstSpan(text, needle string) (Span, bool) {
	if text == "" || needle == "" {
		return Span{}, false
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(needle))
	if idx < 0 {
		return Span{}, false
	}
	end := idx + len(needle)
	if end > len(text) {
		end = len(text)
	}
	return Span{Start: idx, End: end, Text: text[idx:end]}, true
}

// CountOccurrences counts non-overlapping case-insensitive occurrences of
// needle in text.
func CountOccurrences(text, needle string) int {
	if text == "" || needle == "" {
		return 0
	}
	return strings.Count(strings.ToLower(text), strings.ToLower(needle))
}

// Keywords lowercases the word tokens of text and keeps the meaningful ones:
// four or more characters and not a stop word.
func Keywords(text string) []string {
	tokens := Words(text)
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		lowered := strings.ToLower(token)
		if len(lowered) < 4 || stopWords[lowered] {
			continue
		}
		keep = append(keep, lowered)
	}
	return keep
}

// Mismatch reports whether two independently authored texts share no
// keywords. An empty keyword bag on either side counts as a mismatch. This is
// a deliberately crude, fully deterministic proxy for semantic alignment.
func Mismatch(a, b string) bool {
	ka := Keywords(a)
	kb := Keywords(b)
	if len(ka) == 0 || len(kb) == 0 {
		return true
	}
	seen := make(map[string]bool, len(ka))
	for _, k := range ka {
		seen[k] = true
	}
	for _, k := range kb {
		if seen[k] {
			return false
		}
	}
	return true
}
