package entropy

import (
	"fmt"

	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

// Preallocation is a finite entropy tape: a fixed byte buffer drawn down
// by NextBytes/Next calls instead of a live keystream, for payload mux
// configurations that bind their schedule decisions to a
// pre-distributed entropy blob (spec.md §4.5's "preallocation" entropy
// scheme) rather than deriving one from a running cipher. Exhausting the
// tape before a mux finishes its schedule is the EndOfStreamBinding case
// in obscurerr.EndOfStreamError.
type Preallocation struct {
	tape []byte
	pos  int
}

// NewPreallocation wraps tape as a fixed entropy source. tape is
// consumed in place; callers that need to reuse the same bytes should
// pass a copy.
func NewPreallocation(tape []byte) *Preallocation {
	return &Preallocation{tape: tape}
}

// Remaining reports how many undrawn bytes remain on the tape.
func (p *Preallocation) Remaining() int { return len(p.tape) - p.pos }

// NextBytes fills dst from the tape, advancing the read position.
func (p *Preallocation) NextBytes(dst []byte) error {
	if len(dst) > p.Remaining() {
		return &obscurerr.EndOfStreamError{Kind: obscurerr.EndOfStreamBinding, Want: len(dst), Got: p.Remaining()}
	}
	copy(dst, p.tape[p.pos:p.pos+len(dst)])
	p.pos += len(dst)
	return nil
}

// Next draws a uniform integer in [min, max) from the tape by the same
// rejection-sampling scheme as CSPRNG.Next, consuming 4 tape bytes per
// attempt.
func (p *Preallocation) Next(min, max int) (int, error) {
	if max <= min {
		return 0, fmt.Errorf("entropy: invalid range [%d, %d)", min, max)
	}
	span := uint32(max - min)
	limit := (^uint32(0) / span) * span
	var buf [4]byte
	for {
		if err := p.NextBytes(buf[:]); err != nil {
			return 0, err
		}
		v := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		if v < limit {
			return min + int(v%span), nil
		}
	}
}
