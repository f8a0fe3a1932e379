package index

import "fmt"

// Occurrence records how many times a keyword appears in one document.
type Occurrence struct {
	Document  string `json:"document"`
	Frequency int    `json:"frequency"`
}

func (o Occurrence) String() string {
	return fmt.Sprintf("(%s,%d)", o.Document, o.Frequency)
}

// OccurrenceList holds one Occurrence per document, in non-increasing order
// of Frequency. Equal frequencies keep insertion order.
type OccurrenceList []Occurrence

// Documents returns the document names of the first n occurrences.
func (l OccurrenceList) Documents(n int) []string {
	if n > len(l) {
		n = len(l)
	}
	docs := make([]string, 0, n)
	for _, o := range l[:n] {
		docs = append(docs, o.Document)
	}
	return docs
}

// Sorted reports whether l is in non-increasing frequency order.
func (l OccurrenceList) Sorted() bool {
	for i := 1; i < len(l); i++ {
		if l[i-1].Frequency < l[i].Frequency {
			return false
		}
	}
	return true
}
