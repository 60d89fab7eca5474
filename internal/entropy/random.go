// Package entropy provides the pseudo-random sources behind capacity
// drift, event rolls, and chain delay sampling. The simulation takes a
// Source so tests can substitute a seeded deterministic stream.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
)

// Source is the single random stream shared by the simulation.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform value in [0, n). n must be > 0.
	IntN(n int) int
}

// Between returns a uniform value in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

type seeded struct {
	rng *mrand.Rand
}

// Seeded returns a deterministic source for a seed. Two sources built
// from the same seed produce identical streams.
func Seeded(seed int64) Source {
	return &seeded{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *seeded) Float64() float64 { return s.rng.Float64() }
func (s *seeded) IntN(n int) int   { return s.rng.Intn(n) }

type cryptoSource struct{}

// Crypto returns a non-deterministic source backed by crypto/rand.
func Crypto() Source {
	return cryptoSource{}
}

func (cryptoSource) Float64() float64 {
	return cryptoFloat()
}

func (c cryptoSource) IntN(n int) int {
	v := int(math.Floor(c.Float64() * float64(n)))
	if v >= n {
		v = n - 1
	}
	return v
}

// cryptoFloat generates a uniform float64 in [0, 1) from crypto/rand.
func cryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Should never happen; 0.5 is a safe neutral draw.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
