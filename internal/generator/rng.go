package generator

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// randUint32 reads one uniformly distributed uint32 from r.
func randUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// randIndex returns a uniformly distributed integer in [0, n) by
// rejection sampling over r. It never reduces a RNG output modulo n,
// which would bias the low end of the range whenever n does not evenly
// divide 2^32; instead it discards draws that fall in the biased tail
// and retries.
func randIndex(r io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidPolicy
	}
	limit := uint32(n)
	// Largest multiple of n that fits in uint32; draws at or above it
	// are discarded so every remaining outcome is equally likely.
	maxMultiple := (^uint32(0) / limit) * limit
	for {
		v, err := randUint32(r)
		if err != nil {
			return 0, err
		}
		if v < maxMultiple {
			return int(v % limit), nil
		}
	}
}

// shuffle performs an in-place Fisher-Yates shuffle of b using r for
// every swap index, so the same RNG that sampled the characters also
// decides their final order.
func shuffle(r io.Reader, b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randIndex(r, i+1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

// defaultRNG returns the process-wide cryptographic RNG. Tests that need
// determinism supply their own io.Reader via Options.RandReader instead.
func defaultRNG() io.Reader { return rand.Reader }
