package merger

import (
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/index"
)

func list(pairs ...any) index.OccurrenceList {
	out := make(index.OccurrenceList, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, index.Occurrence{Document: pairs[i].(string), Frequency: pairs[i+1].(int)})
	}
	return out
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		first  index.OccurrenceList
		second index.OccurrenceList
		limit  int
		dedupe bool
		want   []string
	}{
		{
			name:   "tie then drain first",
			first:  list("A", 5, "B", 3, "C", 3, "D", 1),
			second: list("E", 5, "F", 4),
			limit:  5,
			want:   []string{"A", "E", "F", "B", "C"},
		},
		{
			name:   "second higher",
			first:  list("A", 2),
			second: list("B", 9, "C", 1),
			limit:  5,
			want:   []string{"B", "A", "C"},
		},
		{
			name:   "tie at budget keeps only first keyword",
			first:  list("A", 9, "B", 8, "C", 7, "D", 6, "E", 5),
			second: list("X", 5),
			limit:  5,
			want:   []string{"A", "B", "C", "D", "E"},
		},
		{
			name:   "tie with one slot left",
			first:  list("A", 9, "B", 8, "C", 7, "D", 5),
			second: list("X", 5),
			limit:  5,
			want:   []string{"A", "B", "C", "D", "X"},
		},
		{
			name:   "duplicates kept",
			first:  list("A", 4, "B", 1),
			second: list("A", 2, "C", 1),
			limit:  5,
			want:   []string{"A", "A", "B", "C"},
		},
		{
			name:   "duplicates dropped",
			first:  list("A", 4, "B", 1),
			second: list("A", 2, "C", 1),
			limit:  5,
			dedupe: true,
			want:   []string{"A", "B", "C"},
		},
		{
			name:   "dedupe fills past duplicates",
			first:  list("A", 5, "B", 4, "C", 3),
			second: list("A", 5, "B", 4, "D", 1),
			limit:  4,
			dedupe: true,
			want:   []string{"A", "B", "C", "D"},
		},
		{
			name:   "both exhausted under limit",
			first:  list("A", 1),
			second: list("B", 1),
			limit:  5,
			want:   []string{"A", "B"},
		},
		{
			name:  "zero limit",
			first: list("A", 1),
			limit: 0,
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.first, tt.second, tt.limit, tt.dedupe)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHead(t *testing.T) {
	l := list("A", 9, "B", 8, "C", 7, "D", 6, "E", 5, "F", 4)
	if got := Head(l, 5, false); !reflect.DeepEqual(got, []string{"A", "B", "C", "D", "E"}) {
		t.Errorf("Head = %v", got)
	}
	if got := Head(l[:2], 5, false); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Head(short) = %v", got)
	}
}

func BenchmarkMerge(b *testing.B) {
	first := make(index.OccurrenceList, 0, 200)
	second := make(index.OccurrenceList, 0, 200)
	for f := 200; f > 0; f-- {
		first = append(first, index.Occurrence{Document: "a", Frequency: f})
		second = append(second, index.Occurrence{Document: "b", Frequency: f - f%3})
	}
	for _, dedupe := range []bool{false, true} {
		name := "faithful"
		if dedupe {
			name = "dedupe"
		}
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Merge(first, second, 5, dedupe)
			}
		})
	}
}
