package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindSubset_ExactPair(t *testing.T) {
	pool := []SubsetSumItem{{Index: 0, Amount: 40000}, {Index: 1, Amount: 60000}, {Index: 2, Amount: 25000}}
	found := findSubset(pool, 100000, 5, 4)
	assert.NotNil(t, found)

	var sum int64
	for _, item := range found {
		sum += item.Amount
	}
	assert.Equal(t, int64(100000), sum)
}

func TestFindSubset_NoCombinationWithinTolerance(t *testing.T) {
	pool := []SubsetSumItem{{Index: 0, Amount: 100}, {Index: 1, Amount: 200}}
	found := findSubset(pool, 100000, 5, 4)
	assert.Nil(t, found)
}

func TestFindSubset_RespectsMaxDepth(t *testing.T) {
	pool := []SubsetSumItem{
		{Index: 0, Amount: 10000},
		{Index: 1, Amount: 10000},
		{Index: 2, Amount: 10000},
	}
	// Needs all three items to reach the target, but depth is capped at 2.
	found := findSubset(pool, 30000, 0, 2)
	assert.Nil(t, found)
}

func TestFindSubset_MaxDepthZeroDisabled(t *testing.T) {
	pool := []SubsetSumItem{{Index: 0, Amount: 10000}}
	found := findSubset(pool, 10000, 0, 0)
	assert.Nil(t, found)
}

func TestFindSubset_EmptyPool(t *testing.T) {
	found := findSubset(nil, 10000, 0, 4)
	assert.Nil(t, found)
}
