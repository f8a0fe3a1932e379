package index

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Builder owns the keyword index while it is being built. It is not safe for
// concurrent use; callers scan documents in parallel if they like but merge
// from one goroutine.
type Builder struct {
	index     map[string]OccurrenceList
	documents []string
	published bool
}

func NewBuilder() *Builder {
	return &Builder{
		index: make(map[string]OccurrenceList),
	}
}

// Merge folds one document's keywords into the index. Each keyword's
// occurrence is appended to its list and moved into frequency order.
func (b *Builder) Merge(doc string, kws Keywords) {
	if b.published {
		panic("index: Merge called after Publish")
	}
	for kw, occ := range kws {
		list, exists := b.index[kw]
		if !exists {
			b.index[kw] = OccurrenceList{*occ}
			continue
		}
		b.index[kw] = InsertLast(append(list, *occ), nil)
	}
	b.documents = append(b.documents, doc)
}

// Publish ends the build phase and returns the finished index under a fresh
// ID. The builder must not be used afterwards.
func (b *Builder) Publish() *Index {
	b.published = true
	idx := &Index{
		id:        uuid.NewString(),
		keywords:  b.index,
		documents: b.documents,
		builtAt:   time.Now().UTC(),
	}
	b.index = nil
	b.documents = nil
	return idx
}

// Index is a read-only keyword index, safe for concurrent readers.
type Index struct {
	id        string
	keywords  map[string]OccurrenceList
	documents []string
	builtAt   time.Time
}

// Lookup returns a copy of the occurrence list for keyword.
func (x *Index) Lookup(keyword string) (OccurrenceList, bool) {
	list, ok := x.keywords[keyword]
	if !ok {
		return nil, false
	}
	out := make(OccurrenceList, len(list))
	copy(out, list)
	return out, true
}

// ID identifies this published index. No two Publish calls share one.
func (x *Index) ID() string {
	return x.id
}

func (x *Index) KeywordCount() int {
	return len(x.keywords)
}

func (x *Index) DocumentCount() int {
	return len(x.documents)
}

// Documents returns the indexed document names in merge order.
func (x *Index) Documents() []string {
	return append([]string(nil), x.documents...)
}

func (x *Index) BuiltAt() time.Time {
	return x.builtAt
}

// Keywords returns every keyword in lexical order.
func (x *Index) Keywords() []string {
	kws := make([]string, 0, len(x.keywords))
	for kw := range x.keywords {
		kws = append(kws, kw)
	}
	sort.Strings(kws)
	return kws
}
