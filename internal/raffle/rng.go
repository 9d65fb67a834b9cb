package raffle

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand/v2"
	"strconv"
)

// TicketSource yields uniform ticket indexes in [0, bound). The draw engine
// only ever consumes randomness through this interface so tests can swap in a
// scripted source.
type TicketSource interface {
	Next(bound int64) int64
}

// Stream selector for the PCG; keeps the two seed words distinct.
const pcgStreamSalt = 0x9e3779b97f4a7c15

type pcgSource struct {
	r *mathrand.Rand
}

// NewTicketSource builds a deterministic ticket source from a draw seed. The
// generator is math/rand/v2's PCG: seedable and reproducible across runs and
// platforms, which is what makes a persisted seed replayable bit-for-bit.
// Cryptographic strength is not needed here; the seed itself comes from
// crypto/rand via NewDrawSeed.
func NewTicketSource(seed uint64) TicketSource {
	return &pcgSource{r: mathrand.New(mathrand.NewPCG(seed, seed^pcgStreamSalt))}
}

func (s *pcgSource) Next(bound int64) int64 {
	return s.r.Int64N(bound)
}

// NewDrawSeed generates a fresh 64-bit seed from the OS entropy source. It is
// called exactly once per draw and must be persisted before any ticket is
// sampled.
func NewDrawSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to generate draw seed: %w", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// FormatSeed renders a seed in the opaque decimal form stored on the raffle.
func FormatSeed(seed uint64) string {
	return strconv.FormatUint(seed, 10)
}

// ParseSeed reverses FormatSeed for replay and audit.
func ParseSeed(s string) (uint64, error) {
	seed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed draw seed %q: %w", s, err)
	}
	return seed, nil
}
