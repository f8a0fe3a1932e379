// Package tokenizer turns raw whitespace-delimited tokens into index keywords.
// A keyword is lower-cased, loses any trailing run of sentence punctuation and
// must not be a noise word.
package tokenizer

import "strings"

// trailingPunct is the set of characters stripped from the end of a token.
const trailingPunct = ".,?:;!'"

// NoiseWords is the set of words excluded from indexing. Membership is an
// exact match against the already lower-cased candidate.
type NoiseWords map[string]struct{}

// NewNoiseWords builds a set from words, adding each verbatim.
func NewNoiseWords(words ...string) NoiseWords {
	set := make(NoiseWords, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func (n NoiseWords) Contains(word string) bool {
	_, ok := n[word]
	return ok
}

// Normalizer screens tokens against a fixed noise-word set.
type Normalizer struct {
	noise  NoiseWords
	strict bool
}

// New returns a Normalizer. In strict mode a keyword must consist of ASCII
// letters only once trailing punctuation is gone; otherwise any non-empty
// remainder is accepted.
func New(noise NoiseWords, strict bool) *Normalizer {
	if noise == nil {
		noise = NoiseWords{}
	}
	return &Normalizer{noise: noise, strict: strict}
}

// Normalize returns the keyword for raw, or ok=false when raw is not one.
func (n *Normalizer) Normalize(raw string) (keyword string, ok bool) {
	word := strings.TrimRight(strings.ToLower(raw), trailingPunct)
	if word == "" || n.noise.Contains(word) {
		return "", false
	}
	if n.strict && !isAlpha(word) {
		return "", false
	}
	return word, true
}

// FoldQuery applies the case folding used for query terms. Query terms are
// not screened for punctuation or noise words.
func FoldQuery(term string) string {
	return strings.ToLower(term)
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
