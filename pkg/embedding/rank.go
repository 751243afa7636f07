package embedding

import "github.com/tidwall/btree"

type rankEntry struct {
	count int
	id    int
}

// frequencyRank orders word ids by descending count, ties by ascending id.
type frequencyRank struct {
	tree *btree.BTreeG[rankEntry]
}

func newFrequencyRank(counts []int) *frequencyRank {
	tree := btree.NewBTreeG(func(a, b rankEntry) bool {
		if a.count != b.count {
			return a.count > b.count
		}
		return a.id < b.id
	})
	for id, c := range counts {
		tree.Set(rankEntry{count: c, id: id})
	}
	return &frequencyRank{tree: tree}
}

// top returns the ids of the k most frequent words in rank order.
func (r *frequencyRank) top(k int) []int {
	ids := make([]int, 0, k)
	r.tree.Scan(func(e rankEntry) bool {
		ids = append(ids, e.id)
		return len(ids) < k
	})
	return ids
}
