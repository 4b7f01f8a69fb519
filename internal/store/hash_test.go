package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkIndex_Deterministic(t *testing.T) {
	a := ChunkIndex("HHHC(HHC/HHH/)")
	b := ChunkIndex("HHHC(HHC/HHH/)")
	assert.Equal(t, a, b)
}

func TestChunkIndex_InRange(t *testing.T) {
	for _, key := range []string{"", "C", "HHHC(HHC/HHH/)", "H*C*C(H,H,*C,*C/H,H,*C,*&/H*&)"} {
		idx := ChunkIndex(key)
		assert.True(t, idx >= 0 && idx < NumChunks, "index %d out of range for %q", idx, key)
	}
}

func TestChunkIndex_SpreadsKeysAcrossChunks(t *testing.T) {
	// The 26 distinct single-letter keys must not all land in one chunk.
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		key := string(rune('a' + i%26))
		seen[ChunkIndex(key)] = true
	}
	assert.True(t, len(seen) > 1)
}
