package scramble

import (
	"github.com/ghostlink/ghostlink/pkg/keystream"
)

// Params holds one line's derived scrambling parameters. Perm is a
// bijection over segment indices; Shifts and Invert are indexed by
// output segment position. Params are regenerated on both ends from
// the same (key, nonce), never stored.
type Params struct {
	Perm   []int
	Shifts []int
	Invert []bool
}

// DeriveParams consumes keystream bytes in a fixed order (permutation
// bytes first, then shift bytes, then inversion bits) so scrambler and
// descrambler stay synchronized on the same keystream. Bytes for all
// three parameter kinds are always consumed; flags only force the
// corresponding parameter to its identity value afterwards.
func DeriveParams(cur *keystream.Cursor, segments, segLen int, flags Flags) (Params, error) {
	perm, err := derivePermutation(cur, segments)
	if err != nil {
		return Params{}, err
	}

	shifts := make([]int, segments)
	for i := range shifts {
		b, err := cur.NextByte()
		if err != nil {
			return Params{}, err
		}
		shifts[i] = int(b) % segLen
	}

	invert := make([]bool, segments)
	for i := range invert {
		if i%8 == 0 {
			b, err := cur.NextByte()
			if err != nil {
				return Params{}, err
			}
			for j := 0; j < 8 && i+j < segments; j++ {
				invert[i+j] = (b>>j)&1 == 1
			}
		}
	}

	if !flags.Permutation {
		for i := range perm {
			perm[i] = i
		}
	}
	if !flags.Shift {
		for i := range shifts {
			shifts[i] = 0
		}
	}
	if !flags.Inversion {
		for i := range invert {
			invert[i] = false
		}
	}

	return Params{Perm: perm, Shifts: shifts, Invert: invert}, nil
}

// derivePermutation builds a Fisher-Yates shuffle of [0,n) with swap
// indices drawn by unbiased rejection sampling. The exact method is the
// interoperability contract: both ends must draw the same bytes.
func derivePermutation(cur *keystream.Cursor, n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	for i := n - 1; i >= 1; i-- {
		j, err := uniformInt(cur, i+1)
		if err != nil {
			return nil, err
		}
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm, nil
}

// uniformInt draws an unbiased integer in [0,n) by rejecting bytes that
// would introduce modulo bias when n is not a power of two. n must be
// at most 256.
func uniformInt(cur *keystream.Cursor, n int) (int, error) {
	limit := 256 - 256%n
	for {
		b, err := cur.NextByte()
		if err != nil {
			return 0, err
		}
		if int(b) < limit {
			return int(b) % n, nil
		}
	}
}

// InversePermutation returns the permutation q with q[p[i]] = i
func InversePermutation(p []int) []int {
	inv := make([]int, len(p))
	for i, v := range p {
		inv[v] = i
	}
	return inv
}
