// Package streamcrypt implements the streaming decorators spec.md §4.2/§4.3
// and §4.6 specify over a cipherwrap.Wrapper or hash.Hash: a Write/Read
// pair staged through two fixed-size ring buffers so callers can push and
// pull data in whatever chunk sizes they like, independent of the
// underlying cipher's natural operation size. While decrypting, the
// drain loop withholds the most recently completed whole operation
// rather than running it through Process right away, so that whichever
// chunk turns out to be the stream's actual last one is always finalised
// through ProcessFinal instead of an ordinary Process — the §4.3
// "hold back one operation's worth of output" rule, without which
// padding verification on a plain Write-then-Finish caller would run
// against the wrong block. Grounded in shape on the teacher's
// CBCStreamingEncryptor/Decryptor part-by-part chaining
// (internal/crypto/streaming.go), generalized from "one CBC part per
// call" to "any number of bytes per call, staged through a ring".
package streamcrypt

import (
	"fmt"

	"github.com/rescale-labs/obscurcore/internal/cipherwrap"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

type streamState int

const (
	stateWriting streamState = iota
	stateFinished
	stateDisposed
)

// CipherStream is the streaming decorator over a cipherwrap.Wrapper.
// Callers Write plaintext (encrypting) or ciphertext (decrypting) in any
// chunk size, Read the correspondingly transformed bytes back out in any
// chunk size, and call Finish once to flush the last partial operation
// (applying or verifying padding as the wrapper requires).
type CipherStream struct {
	wrapper    cipherwrap.Wrapper
	encrypting bool
	opIn       *ring
	opOut      *ring
	state      streamState

	// heldIn is, while decrypting, the most recent whole operation-sized
	// chunk read out of opIn but not yet run through Process — see drain.
	heldIn []byte
}

// New constructs a CipherStream ready to accept Write calls.
func New(wrapper cipherwrap.Wrapper, encrypting bool) *CipherStream {
	return &CipherStream{
		wrapper:    wrapper,
		encrypting: encrypting,
		opIn:       newRing(),
		opOut:      newRing(),
		state:      stateWriting,
	}
}

// Write stages p for transformation, eagerly processing any whole
// operation-sized chunks that have accumulated. It never blocks: if the
// input ring is full, n < len(p) and the caller must Read to make room
// before writing the remainder — mirroring spec.md §4.3's
// write_exactly, which loops Write until every byte is accepted.
func (s *CipherStream) Write(p []byte) (int, error) {
	if s.state != stateWriting {
		return 0, stateErrorFor(s.state)
	}
	n := s.opIn.Write(p)
	if err := s.drain(); err != nil {
		return n, err
	}
	return n, nil
}

// drain processes every whole operation-sized chunk currently staged in
// opIn into opOut, stopping (without error) once opOut lacks room for
// another chunk's worth of output — the caller is expected to Read
// before writing more.
func (s *CipherStream) drain() error {
	if !s.encrypting {
		return s.drainDecrypt()
	}
	opSize := s.wrapper.OperationSize()
	for s.opIn.Len() >= opSize && s.opOut.Free() >= opSize {
		chunk := make([]byte, opSize)
		s.opIn.Read(chunk)
		out, err := s.wrapper.Process(chunk)
		if err != nil {
			return err
		}
		s.opOut.Write(out)
	}
	return nil
}

// drainDecrypt is drain's decrypt-side variant. It never runs Process on
// the most recently read whole chunk directly — that chunk becomes
// heldIn instead, and the previously held chunk (now known not to be
// the stream's last) is the one actually processed and queued to
// opOut. Whichever chunk is left in heldIn when the stream ends is
// combined with any true leftover and re-routed through ProcessFinal by
// Finish/WriteFinal, so the padding check always sees the real final
// block rather than one drain finalised early.
func (s *CipherStream) drainDecrypt() error {
	opSize := s.wrapper.OperationSize()
	for s.opIn.Len() >= opSize && s.opOut.Free() >= opSize {
		chunk := make([]byte, opSize)
		s.opIn.Read(chunk)
		if s.heldIn != nil {
			out, err := s.wrapper.Process(s.heldIn)
			if err != nil {
				return err
			}
			s.opOut.Write(out)
		}
		s.heldIn = chunk
	}
	return nil
}

// Read copies transformed bytes out of the output ring, in FIFO order,
// into p, returning the number copied.
func (s *CipherStream) Read(p []byte) (int, error) {
	if s.state == stateDisposed {
		return 0, stateErrorFor(s.state)
	}
	return s.opOut.Read(p), nil
}

// Pending reports how many transformed bytes are buffered and ready to
// Read without a further Write or Finish.
func (s *CipherStream) Pending() int { return s.opOut.Len() }

// OperationSize reports the underlying wrapper's operation_size, the
// unit callers should write/read in for best efficiency (spec.md §4.1).
func (s *CipherStream) OperationSize() int { return s.wrapper.OperationSize() }

// Finish flushes the last, possibly partial, operation: applying padding
// (encrypting) or verifying and stripping it (decrypting). While
// decrypting it also folds in heldIn, the one whole operation drain
// withheld from Process on the chance a later Write would prove it
// wasn't final, so ProcessFinal always sees the true last block.
// Finish must be called exactly once, after the last Write, before the
// final bytes can be read. The output ring must have enough free space
// for the flushed bytes plus the wrapper's MaxDelta — callers that have
// not drained enough via Read get ErrDataLength back and should Read
// more first.
func (s *CipherStream) Finish() error {
	if s.state != stateWriting {
		return stateErrorFor(s.state)
	}
	// Check room before consuming any staged input, so a caller that gets
	// ErrDataLength can Read and call Finish again without losing data.
	if need := s.opIn.Len() + len(s.heldIn) + s.wrapper.MaxDelta(s.encrypting); s.opOut.Free() < need {
		return fmt.Errorf("%w: output ring has no room for up to %d final bytes (%d free) — Read more before Finish", obscurerr.ErrDataLength, need, s.opOut.Free())
	}
	remainder := make([]byte, s.opIn.Len())
	s.opIn.Read(remainder)
	if !s.encrypting && s.heldIn != nil {
		remainder = append(s.heldIn, remainder...)
		s.heldIn = nil
	}
	out, err := s.wrapper.ProcessFinal(remainder, s.encrypting)
	if err != nil {
		return err
	}
	if s.opOut.Free() < len(out) {
		return fmt.Errorf("%w: output ring has no room for %d final bytes (%d free) — Read more before Finish", obscurerr.ErrDataLength, len(out), s.opOut.Free())
	}
	s.opOut.Write(out)
	s.state = stateFinished
	return nil
}

// WriteFinal writes the last chunk of a stream and immediately finalises
// it in one step: any bytes already staged in opIn are combined with p
// and passed to the wrapper's ProcessFinal together, so block-mode
// padding verification sees the whole final plaintext/ciphertext run
// rather than being split across a Write/Finish boundary. Callers that
// already know p is the last chunk should prefer this over Write+Finish.
func (s *CipherStream) WriteFinal(p []byte) error {
	if s.state != stateWriting {
		return stateErrorFor(s.state)
	}
	// As in Finish, check room before consuming any staged input.
	if need := s.opIn.Len() + len(s.heldIn) + len(p) + s.wrapper.MaxDelta(s.encrypting); s.opOut.Free() < need {
		return fmt.Errorf("%w: output ring has no room for up to %d final bytes (%d free) — Read more before WriteFinal", obscurerr.ErrDataLength, need, s.opOut.Free())
	}
	leftover := make([]byte, s.opIn.Len())
	s.opIn.Read(leftover)
	if !s.encrypting && s.heldIn != nil {
		leftover = append(s.heldIn, leftover...)
		s.heldIn = nil
	}
	full := append(leftover, p...)
	out, err := s.wrapper.ProcessFinal(full, s.encrypting)
	if err != nil {
		return err
	}
	if s.opOut.Free() < len(out) {
		return fmt.Errorf("%w: output ring has no room for %d final bytes (%d free) — Read more before WriteFinal", obscurerr.ErrDataLength, len(out), s.opOut.Free())
	}
	s.opOut.Write(out)
	s.state = stateFinished
	return nil
}

// Reset reinitialises the stream with a fresh IV/nonce for processing an
// independent stream without reallocating its ring buffers.
func (s *CipherStream) Reset(iv []byte) error {
	if s.state == stateDisposed {
		return stateErrorFor(s.state)
	}
	if err := s.wrapper.Reset(iv); err != nil {
		return err
	}
	s.opIn.start, s.opIn.len = 0, 0
	s.opOut.start, s.opOut.len = 0, 0
	s.heldIn = nil
	s.state = stateWriting
	return nil
}

// Dispose releases the stream's ring buffers back to the shared pool.
// The stream must not be used afterward.
func (s *CipherStream) Dispose() {
	if s.state == stateDisposed {
		return
	}
	s.opIn.Release()
	s.opOut.Release()
	s.state = stateDisposed
}

func stateErrorFor(s streamState) error {
	switch s {
	case stateFinished:
		return obscurerr.State(obscurerr.StateFinished)
	case stateDisposed:
		return obscurerr.State(obscurerr.StateDisposed)
	default:
		return obscurerr.State(obscurerr.StateNotWriting)
	}
}
