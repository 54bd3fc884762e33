package matcher

import "sort"

// SubsetSumItem is the minimal shape SubsetSumSearcher needs: an amount
// (in cents) and an opaque index back into the caller's pool. Kept free of
// domain.Transaction coupling so it can be tested independently.
type SubsetSumItem struct {
	Index  int
	Amount int64
}

// findSubset performs a bounded-depth, largest-first backtracking search
// for a subset of pool whose amounts sum to within toleranceCents of
// targetCents. Pool is sorted descending by amount before the search so
// the result is deterministic and biased toward fewer, larger items. It
// returns the first accepting subset found in search order, or nil.
func findSubset(pool []SubsetSumItem, targetCents, toleranceCents int64, maxDepth int) []SubsetSumItem {
	if maxDepth == 0 || len(pool) == 0 {
		return nil
	}

	sorted := make([]SubsetSumItem, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	var current []SubsetSumItem
	var search func(index int, sum int64) []SubsetSumItem

	search = func(index int, sum int64) []SubsetSumItem {
		diff := sum - targetCents
		if diff < 0 {
			diff = -diff
		}
		if len(current) > 0 && diff <= toleranceCents {
			found := make([]SubsetSumItem, len(current))
			copy(found, current)
			return found
		}
		if len(current) >= maxDepth || index >= len(sorted) || sum > targetCents+toleranceCents {
			return nil
		}

		for i := index; i < len(sorted); i++ {
			if sum+sorted[i].Amount > targetCents+toleranceCents {
				continue
			}
			current = append(current, sorted[i])
			if result := search(i+1, sum+sorted[i].Amount); result != nil {
				return result
			}
			current = current[:len(current)-1]
		}
		return nil
	}

	return search(0, 0)
}
