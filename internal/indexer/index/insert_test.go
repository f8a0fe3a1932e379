package index

import (
	"reflect"
	"testing"
)

func occs(pairs ...any) OccurrenceList {
	list := make(OccurrenceList, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		list = append(list, Occurrence{Document: pairs[i].(string), Frequency: pairs[i+1].(int)})
	}
	return list
}

func TestInsertLast(t *testing.T) {
	tests := []struct {
		name     string
		list     OccurrenceList
		want     OccurrenceList
		wantMids []int
	}{
		{
			name:     "single element",
			list:     occs("a", 3),
			want:     occs("a", 3),
			wantMids: nil,
		},
		{
			name:     "tie goes after existing",
			list:     occs("doc1", 5, "doc2", 5),
			want:     occs("doc1", 5, "doc2", 5),
			wantMids: []int{0},
		},
		{
			name:     "new highest",
			list:     occs("a", 5, "b", 3, "c", 1, "d", 9),
			want:     occs("d", 9, "a", 5, "b", 3, "c", 1),
			wantMids: []int{1, 0},
		},
		{
			name:     "new lowest stays last",
			list:     occs("a", 5, "b", 3, "c", 2, "d", 1),
			want:     occs("a", 5, "b", 3, "c", 2, "d", 1),
			wantMids: []int{1, 2},
		},
		{
			name:     "middle",
			list:     occs("a", 12, "b", 8, "c", 7, "d", 5, "e", 3, "f", 2, "g", 6),
			want:     occs("a", 12, "b", 8, "c", 7, "g", 6, "d", 5, "e", 3, "f", 2),
			wantMids: []int{2, 4, 3},
		},
		{
			name:     "after a run of equals",
			list:     occs("a", 4, "b", 4, "c", 4, "d", 1, "e", 4),
			want:     occs("a", 4, "b", 4, "c", 4, "e", 4, "d", 1),
			wantMids: []int{1, 2, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, mids := TraceInsertLast(tt.list)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("list = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(mids, tt.wantMids) {
				t.Errorf("midpoints = %v, want %v", mids, tt.wantMids)
			}
			if !got.Sorted() {
				t.Errorf("result not sorted: %v", got)
			}
		})
	}
}

// Moving left on equal frequencies would visit midpoints [1 0] here and
// return e, a, b, c, d: the newest document would jump ahead of three older
// ones with the same count. Moving left only on greater visits [1 2 3] and
// keeps e behind them.
func TestInsertLastEqualsDoNotMoveLeft(t *testing.T) {
	got, mids := TraceInsertLast(occs("a", 4, "b", 4, "c", 4, "d", 1, "e", 4))
	if want := occs("a", 4, "b", 4, "c", 4, "e", 4, "d", 1); !reflect.DeepEqual(got, want) {
		t.Errorf("list = %v, want %v", got, want)
	}
	if want := []int{1, 2, 3}; !reflect.DeepEqual(mids, want) {
		t.Errorf("midpoints = %v, want %v", mids, want)
	}
	if first := got[0].Document; first != "a" {
		t.Errorf("first = %s, a newer tie moved ahead of a", first)
	}
}

func TestInsertLastNilVisitor(t *testing.T) {
	got := InsertLast(occs("a", 1, "b", 2), nil)
	want := occs("b", 2, "a", 1)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InsertLast = %v, want %v", got, want)
	}
}

func TestInsertLastKeepsSortedUnderRepeatedInserts(t *testing.T) {
	freqs := []int{3, 7, 7, 1, 9, 3, 3, 12, 5, 1, 7}
	var list OccurrenceList
	for i, f := range freqs {
		list = append(list, Occurrence{Document: string(rune('a' + i)), Frequency: f})
		list = InsertLast(list, nil)
		if !list.Sorted() {
			t.Fatalf("after insert %d list unsorted: %v", i, list)
		}
	}
	// the three 7s arrived as b, c, k and must stay in that order
	var sevens []string
	for _, o := range list {
		if o.Frequency == 7 {
			sevens = append(sevens, o.Document)
		}
	}
	if !reflect.DeepEqual(sevens, []string{"b", "c", "k"}) {
		t.Errorf("equal frequencies reordered: %v", sevens)
	}
}

func BenchmarkInsertLast(b *testing.B) {
	base := make(OccurrenceList, 0, 1001)
	for f := 1000; f > 0; f-- {
		base = append(base, Occurrence{Document: "d", Frequency: f})
	}
	work := make(OccurrenceList, len(base)+1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		copy(work, base)
		work[len(base)] = Occurrence{Document: "new", Frequency: i % 1000}
		InsertLast(work, nil)
	}
}
