// Package merger combines two frequency-ordered occurrence lists into one
// ranked list of document names.
package merger

import "github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"

// Merge walks first and second from the front, always taking the occurrence
// with the higher frequency. On equal frequencies first wins and second's
// document follows it if there is room. Merging stops after limit documents
// or when both lists are exhausted.
//
// Without dedupe a document present in both lists can be emitted twice. With
// dedupe only its first (highest ranked) appearance is kept and the merge
// continues until limit distinct documents are found.
func Merge(first, second index.OccurrenceList, limit int, dedupe bool) []string {
	if limit <= 0 {
		return []string{}
	}
	out := make([]string, 0, limit)
	var seen map[string]struct{}
	if dedupe {
		seen = make(map[string]struct{}, limit)
	}
	emit := func(doc string) {
		if dedupe {
			if _, dup := seen[doc]; dup {
				return
			}
			seen[doc] = struct{}{}
		}
		out = append(out, doc)
	}

	i, j := 0, 0
	for len(out) < limit && (i < len(first) || j < len(second)) {
		switch {
		case j >= len(second):
			emit(first[i].Document)
			i++
		case i >= len(first):
			emit(second[j].Document)
			j++
		case first[i].Frequency > second[j].Frequency:
			emit(first[i].Document)
			i++
		case second[j].Frequency > first[i].Frequency:
			emit(second[j].Document)
			j++
		default:
			emit(first[i].Document)
			i++
			if len(out) < limit {
				emit(second[j].Document)
				j++
			}
		}
	}
	return out
}

// Head returns up to limit document names from list, optionally skipping
// repeated names.
func Head(list index.OccurrenceList, limit int, dedupe bool) []string {
	return Merge(list, nil, limit, dedupe)
}
