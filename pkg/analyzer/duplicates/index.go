package duplicates

import "github.com/augurhq/augur/pkg/models"

// blockIndex groups block indices by digest so candidate lookup is O(1)
// instead of a pairwise scan. Built in a single pass and read-only for the
// remainder of the run, so workers share it without synchronization.
type blockIndex struct {
	byHash           map[uint64][]int
	byNormalizedHash map[uint64][]int
}

func buildIndex(blocks []models.CodeBlock) *blockIndex {
	idx := &blockIndex{
		byHash:           make(map[uint64][]int, len(blocks)),
		byNormalizedHash: make(map[uint64][]int, len(blocks)),
	}
	for i := range blocks {
		idx.byHash[blocks[i].Hash] = append(idx.byHash[blocks[i].Hash], i)
		idx.byNormalizedHash[blocks[i].NormalizedHash] = append(idx.byNormalizedHash[blocks[i].NormalizedHash], i)
	}
	return idx
}
