package executor

import "container/heap"

// Merge folds the per-shard result lists into a single list of at most
// limit docs, ordered by descending score with ties broken by ascending
// id. A min-heap bounded at limit keeps the merge O(total * log limit).
func Merge(shardResults [][]ScoredDoc, limit int) []ScoredDoc {
	if limit <= 0 {
		limit = 10
	}
	h := &scoredDocHeap{}
	heap.Init(h)
	for _, results := range shardResults {
		for _, doc := range results {
			heap.Push(h, doc)
			if h.Len() > limit {
				heap.Pop(h)
			}
		}
	}
	merged := make([]ScoredDoc, h.Len())
	for i := len(merged) - 1; i >= 0; i-- {
		merged[i] = heap.Pop(h).(ScoredDoc)
	}
	return merged
}

type scoredDocHeap []ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].ID > h[j].ID
}

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
