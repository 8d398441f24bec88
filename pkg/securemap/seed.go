package securemap

import (
	"encoding/binary"
	"fmt"
	"io"
)

// seedDraws bounds how many draws are made looking for a seed that differs
// from the one being replaced.
const seedDraws = 2

func drawSeed(r io.Reader) (Seed, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Seed{}, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return Seed{
		K0: binary.LittleEndian.Uint64(buf[:8]),
		K1: binary.LittleEndian.Uint64(buf[8:]),
	}, nil
}

// freshSeed draws a seed that is not equal to prev.
func freshSeed(r io.Reader, prev Seed) (Seed, error) {
	for range seedDraws {
		s, err := drawSeed(r)
		if err != nil {
			return Seed{}, err
		}
		if s != prev {
			return s, nil
		}
	}
	return Seed{}, fmt.Errorf("%w: %w", ErrEntropyUnavailable, ErrSeedReuse)
}

// NewSeed draws a seed from r. It is exported for callers that key their
// own SipHash instances, such as shard selection.
func NewSeed(r io.Reader) (Seed, error) {
	return drawSeed(r)
}
