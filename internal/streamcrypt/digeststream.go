package streamcrypt

import "hash"

// DigestStream is the streaming decorator spec.md §4.6 layers over a
// ciphertext stream for Encrypt-then-MAC composition: every byte written
// is absorbed into the running hash/MAC, with no operation-size or
// padding concerns of its own (that's CipherStream's job one layer
// down). It is deliberately simpler than CipherStream — there is nothing
// to stage, since hash.Hash already accepts arbitrary-length writes.
type DigestStream struct {
	h hash.Hash
}

// NewDigestStream wraps h (freshly constructed, e.g. from
// internal/primitive's MAC/hash registries).
func NewDigestStream(h hash.Hash) *DigestStream {
	return &DigestStream{h: h}
}

// Write absorbs p into the running digest. It never fails — hash.Hash's
// own Write contract guarantees this.
func (d *DigestStream) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

// Sum returns the current digest/MAC value without resetting state.
func (d *DigestStream) Sum() []byte {
	return d.h.Sum(nil)
}

// Reset clears the running digest so the stream can be reused for a new
// message with the same key (MAC) or algorithm (hash).
func (d *DigestStream) Reset() {
	d.h.Reset()
}

// Size returns the digest's output length in bytes.
func (d *DigestStream) Size() int { return d.h.Size() }
