// Package entropy resolves simulation seeds and hands out independent,
// reproducible random streams derived from them.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
)

// Stream offsets keep subsystems from sharing a sequence.
const (
	StreamTerrain int64 = 0
	StreamSpawner int64 = 300
)

// ResolveSeed returns seed unchanged, or a fresh crypto-random seed when
// seed is 0. The chosen seed is logged so a run can be replayed.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	seed = cryptoSeed()
	slog.Info("generated random seed", "seed", seed)
	return seed
}

// New returns a deterministic stream for the given seed and offset.
func New(seed, stream int64) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed + stream))
}

func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 1
	}
	n := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if n == 0 {
		n = 1
	}
	return n
}
