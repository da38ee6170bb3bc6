package combat

import (
	"crypto/cipher"
	"math/big"
	"math/bits"

	"github.com/luca-patrignani/tactical-duel/domain/grid"
	"go.dedis.ch/kyber/v4/util/random"
)

// sampleTiles draws up to n distinct tiles uniformly from candidates with a
// partial Fisher-Yates shuffle. candidates is reordered.
func sampleTiles(candidates []grid.TileCoordinate, n int, rand cipher.Stream) []grid.TileCoordinate {
	if n > len(candidates) {
		n = len(candidates)
	}
	if n < 0 {
		n = 0
	}
	for i := 0; i < n; i++ {
		j := i + randomIndex(len(candidates)-i, rand)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return append([]grid.TileCoordinate(nil), candidates[:n]...)
}

// randomIndex returns a uniform integer in [0, n) by rejection sampling over
// the smallest number of bits that can hold n-1.
func randomIndex(n int, rand cipher.Stream) int {
	if n <= 1 {
		return 0
	}
	bitlen := uint(bits.Len(uint(n - 1)))
	limit := big.NewInt(int64(n))
	for {
		v := new(big.Int).SetBytes(random.Bits(bitlen, false, rand))
		if v.Cmp(limit) < 0 {
			return int(v.Int64())
		}
	}
}
