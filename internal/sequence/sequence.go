// Package sequence orders discovered files for admission.
package sequence

import (
	"math/rand/v2"

	"github.com/treelineops/s3ship/shiptypes"
)

// Order arranges files for admission. Sequential keeps discovery order.
// Shuffled applies a uniform random permutation, which spreads key
// prefixes across partitions when many runs target the same bucket.
//
// The returned slice is a copy; the input is never mutated. Every
// discovered file appears exactly once regardless of order.
func Order(files []shiptypes.FileInfo, mode shiptypes.OrderMode, seed *int64) []shiptypes.FileInfo {
	out := make([]shiptypes.FileInfo, len(files))
	copy(out, files)

	if mode != shiptypes.OrderShuffled {
		return out
	}

	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewPCG(uint64(*seed), 0))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
