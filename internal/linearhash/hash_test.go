package linearhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowBits(t *testing.T) {
	assert.Equal(t, uint64(0b101), lowBits(0b11101, 3))
	assert.Equal(t, uint64(0), lowBits(0b1000, 3))
	assert.Equal(t, uint64(0b1000), lowBits(0b1000, 4))
}

func TestHashKeyNegativeID(t *testing.T) {
	// Negative ids hash through their two's-complement low bits.
	assert.Equal(t, uint64(0xFFFFFFFF), hashKey(-1))
	assert.Equal(t, hashKey(-1+1<<hashBits), hashKey(-1))
}

func TestBucketOfRealBucket(t *testing.T) {
	idx := &Index{level: 1, buckets: 2}
	assert.Equal(t, 1, idx.bucketOf(7))
	assert.Equal(t, 0, idx.bucketOf(4))
}

// With level=2 and three live buckets, address 3 is virtual and folds
// back onto its unsplit sibling 1.
func TestBucketOfVirtualFold(t *testing.T) {
	idx := &Index{level: 2, buckets: 3}
	assert.Equal(t, 1, idx.bucketOf(3))  // 3&3 == 3 >= 3 -> clear bit 1
	assert.Equal(t, 1, idx.bucketOf(7))  // 7&3 == 3
	assert.Equal(t, 2, idx.bucketOf(2))  // 2 < 3, real
	assert.Equal(t, 0, idx.bucketOf(16)) // 16&3 == 0
}

// Boundary from the addressing rule: low bits equal to the bucket
// count fold to count - 2^(level-1).
func TestBucketOfFoldBoundary(t *testing.T) {
	idx := &Index{level: 3, buckets: 5}
	assert.Equal(t, 1, idx.bucketOf(5)) // 5 >= 5 -> 5 &^ 4 == 1
	assert.Equal(t, 4, idx.bucketOf(4)) // real: 4 < 5
}

func TestBucketOfDeterministic(t *testing.T) {
	idx := &Index{level: 4, buckets: 11}
	for id := int64(-50); id < 50; id++ {
		b := idx.bucketOf(id)
		assert.Equal(t, b, idx.bucketOf(id))
		assert.GreaterOrEqual(t, b, 0)
		assert.Less(t, b, idx.buckets)
	}
}
