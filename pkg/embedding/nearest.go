package embedding

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/sanonone/wordanalogy/pkg/core/distance"
)

// Neighbor is a word scored against a query vector.
type Neighbor struct {
	ID    int
	Word  string
	Score float32
}

// worse reports whether a ranks below b: lower score, or equal score and higher id.
func worse(a, b Neighbor) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.ID > b.ID
}

// neighborHeap keeps the n best neighbors found so far. The worst of them is
// at the top, so it is the one replaced when a better neighbor is found.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x any)        { *h = append(*h, x.(Neighbor)) }

func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// Nearest returns the n words whose vectors have the largest dot product with
// vec, best first, ties by lowest id. Words listed in exclude are skipped.
// If n is greater than the number of eligible words, fewer results are returned.
func Nearest(e Embedding, vec []float32, n int, exclude ...string) ([]Neighbor, error) {
	if len(vec) != e.Dim() {
		return nil, fmt.Errorf("query has %d dimensions, want %d: %w", len(vec), e.Dim(), ErrDimensionMismatch)
	}
	if n <= 0 || e.Len() == 0 {
		return nil, nil
	}

	scores := make([]float32, e.Len())
	if err := distance.ScoreMatrix(scores, e.Vectors(), e.Len(), vec, 1, e.Dim()); err != nil {
		return nil, err
	}

	skip := make(map[int]struct{}, len(exclude))
	vocab := e.Vocabulary()
	for _, w := range exclude {
		if id, ok := vocab.ID(w); ok {
			skip[id] = struct{}{}
		}
	}

	h := make(neighborHeap, 0, n+1)
	for id, score := range scores {
		if _, ok := skip[id]; ok {
			continue
		}
		cand := Neighbor{ID: id, Score: score}
		if h.Len() < n {
			heap.Push(&h, cand)
		} else if worse(h[0], cand) {
			h[0] = cand
			heap.Fix(&h, 0)
		}
	}

	res := []Neighbor(h)
	sort.Slice(res, func(i, j int) bool { return worse(res[j], res[i]) })
	for i := range res {
		res[i].Word = vocab.Word(res[i].ID)
	}
	return res, nil
}
