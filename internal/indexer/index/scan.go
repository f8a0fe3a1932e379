package index

import (
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
)

// Keywords maps each keyword of a single document to its occurrence there.
type Keywords map[string]*Occurrence

// ScanDocument reads whitespace-delimited tokens from r and counts the
// keywords accepted by norm. Every occurrence is attributed to doc.
func ScanDocument(doc string, r io.Reader, norm *tokenizer.Normalizer) (Keywords, error) {
	kws := make(Keywords)
	err := tokenizer.EachWord(r, func(word string) {
		kw, ok := norm.Normalize(word)
		if !ok {
			return
		}
		if occ, exists := kws[kw]; exists {
			occ.Frequency++
			return
		}
		kws[kw] = &Occurrence{Document: doc, Frequency: 1}
	})
	if err != nil {
		return nil, fmt.Errorf("scanning document %s: %w", doc, err)
	}
	return kws, nil
}
