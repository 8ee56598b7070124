package hasher

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"

	"github.com/hazendaz/smartsprites-sub000/internal/bitmap"
)

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to the given length. Sprite file names use 16 hex chars.
func ContentHash(data []byte, hexLen int) string {
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], xxhash.Sum64(data))
	full := hex.EncodeToString(sum[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}

// Bitmap hashes the size of b and a sparse grid of its pixels, with
// fully transparent pixels normalized to zero. Equal bitmaps (as defined
// by bitmap.Buffer.Equal) always hash equal; unequal ones may collide, so
// callers confirm matches with a full comparison.
func Bitmap(b *bitmap.Buffer) uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(b.W))
	binary.LittleEndian.PutUint32(buf[4:], uint32(b.H))
	d.Write(buf[:])

	dx, dy := stride(b.W), stride(b.H)
	for y := 0; y < b.H; y += dy {
		for x := 0; x < b.W; x += dx {
			binary.LittleEndian.PutUint32(buf[:4], bitmap.Visible(b.At(x, y)))
			d.Write(buf[:4])
		}
	}
	return d.Sum64()
}

func stride(n int) int {
	if n > 7 {
		return n >> 2
	}
	return 1
}
