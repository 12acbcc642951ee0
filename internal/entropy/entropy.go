// Package entropy provides the CSPRNG and entropy-supplier components
// spec.md §4.4 specifies: a stream cipher's keystream exposed as a
// random byte source, and a process-wide supplier seeded from the OS the
// first time it is requested. Grounded in shape on the pack's
// sixafter-prng-chacha Reader — a package-level io.Reader backed by a
// ChaCha20 keystream, seeded from crypto/rand at init — generalized here
// to drive off any registered stream cipher rather than being
// ChaCha20-specific, and paired with a re-seed operation the teacher's
// version never exposes.
package entropy

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"github.com/rescale-labs/obscurcore/internal/primitive"
)

// CSPRNG exposes a keyed stream cipher's keystream as an io.Reader,
// matching spec.md §4.4's "keystream-driven" CSPRNG: next_bytes is just
// XORKeyStream against an all-zero buffer.
type CSPRNG struct {
	mu     sync.Mutex
	stream interface {
		XORKeyStream(dst, src []byte)
	}
}

// NewCSPRNG constructs a CSPRNG over the named stream cipher, seeded
// with key and iv (both caller-supplied, typically freshly drawn from
// crypto/rand).
func NewCSPRNG(algorithm string, key, iv []byte) (*CSPRNG, error) {
	spec, err := primitive.LookupStreamCipher(algorithm)
	if err != nil {
		return nil, err
	}
	stream, err := spec.New(key, iv)
	if err != nil {
		return nil, fmt.Errorf("csprng: %w", err)
	}
	return &CSPRNG{stream: stream}, nil
}

// NextBytes fills dst with keystream bytes. It never fails — present as
// an error-returning method so CSPRNG and Preallocation satisfy the same
// Source interface (internal/mux).
func (c *CSPRNG) NextBytes(dst []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range dst {
		dst[i] = 0
	}
	c.stream.XORKeyStream(dst, dst)
	return nil
}

// Read implements io.Reader so a CSPRNG can be handed to any stdlib API
// expecting a random source.
func (c *CSPRNG) Read(p []byte) (int, error) {
	c.NextBytes(p)
	return len(p), nil
}

// Next draws a uniform integer in [min, max) by rejection sampling over
// 32-bit keystream draws, discarding values that would bias the result —
// the same modulo-bias-avoidance the payload mux uses for item
// selection (internal/mux), exposed here as a general-purpose primitive.
func (c *CSPRNG) Next(min, max int) (int, error) {
	if max <= min {
		return 0, fmt.Errorf("entropy: invalid range [%d, %d)", min, max)
	}
	span := uint32(max - min)
	limit := (^uint32(0) / span) * span
	var buf [4]byte
	for {
		_ = c.NextBytes(buf[:])
		v := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		if v < limit {
			return min + int(v%span), nil
		}
	}
}

// defaultSupplier is the process-wide EntropySupplier, seeded from the
// OS CSPRNG by Default the first time Default is called.
var defaultSupplier *CSPRNG
var defaultOnce sync.Once

// Default returns the process-wide entropy supplier, lazily constructing
// it (seeded from crypto/rand) on first use.
func Default() *CSPRNG {
	defaultOnce.Do(func() {
		key := make([]byte, 32)
		iv := make([]byte, 12)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			panic(fmt.Errorf("entropy: failed to seed default supplier: %w", err))
		}
		if _, err := io.ReadFull(rand.Reader, iv); err != nil {
			panic(fmt.Errorf("entropy: failed to seed default supplier: %w", err))
		}
		s, err := NewCSPRNG("chacha20", key, iv)
		if err != nil {
			panic(fmt.Errorf("entropy: failed to construct default supplier: %w", err))
		}
		defaultSupplier = s
	})
	return defaultSupplier
}

// Reseed replaces the process-wide supplier's key/nonce with fresh OS
// entropy. Rarely needed — mostly for long-running processes wanting to
// bound how much keystream a single seed ever produces.
func Reseed() error {
	key := make([]byte, 32)
	iv := make([]byte, 12)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return fmt.Errorf("entropy: reseed: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return fmt.Errorf("entropy: reseed: %w", err)
	}
	s, err := NewCSPRNG("chacha20", key, iv)
	if err != nil {
		return fmt.Errorf("entropy: reseed: %w", err)
	}
	Default() // ensure defaultOnce has already fired
	defaultSupplier = s
	return nil
}
