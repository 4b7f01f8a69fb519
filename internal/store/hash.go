package store

import "unicode/utf16"

// NumChunks is the fixed partition count the whole store is sharded into.
const NumChunks = 256

// ChunkIndex answers the chunk a HOSE key belongs to. The hash walks the
// UTF-16 code units of key (not decoded Unicode scalars) so that sharder
// and loader agree regardless of which string encoding either was built
// with; re-encode before hashing if your source strings are UTF-32 or a
// legacy encoding.
func ChunkIndex(key string) int {
	var h int32
	for _, unit := range utf16.Encode([]rune(key)) {
		h = (h << 5) - h + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % NumChunks)
}
