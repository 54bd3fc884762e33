package matcher

import (
	"sort"

	"ledger-recon-engine/internal/domain"
)

// AmountIndex buckets one side's transactions by exact integer-cent amount
// and supports ranged lookups within a cent tolerance, preserving
// within-bucket insertion order.
type AmountIndex struct {
	buckets map[int64][]domain.Transaction
	keys    []int64
}

// NewAmountIndex constructs an index over txs, keyed by AmountCents.
func NewAmountIndex(txs []domain.Transaction) *AmountIndex {
	idx := &AmountIndex{buckets: make(map[int64][]domain.Transaction)}
	for _, tx := range txs {
		if _, exists := idx.buckets[tx.AmountCents]; !exists {
			idx.keys = append(idx.keys, tx.AmountCents)
		}
		idx.buckets[tx.AmountCents] = append(idx.buckets[tx.AmountCents], tx)
	}
	sort.Slice(idx.keys, func(i, j int) bool { return idx.keys[i] < idx.keys[j] })
	return idx
}

// Candidates returns every transaction whose amount falls within
// [targetCents-toleranceCents, targetCents+toleranceCents], concatenated in
// ascending key order and preserving insertion order within each bucket.
func (idx *AmountIndex) Candidates(targetCents, toleranceCents int64) []domain.Transaction {
	lo := targetCents - toleranceCents
	hi := targetCents + toleranceCents

	start := sort.Search(len(idx.keys), func(i int) bool { return idx.keys[i] >= lo })

	var out []domain.Transaction
	for i := start; i < len(idx.keys) && idx.keys[i] <= hi; i++ {
		out = append(out, idx.buckets[idx.keys[i]]...)
	}
	return out
}
