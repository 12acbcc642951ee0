// Package buffers provides reusable byte buffers to reduce heap allocation
// and GC pressure for the cipher stream decorator's staging rings.
package buffers

import (
	"sync"

	"github.com/rescale-labs/obscurcore/internal/constants"
)

// ringPool provides constants.RingBufferSize backing arrays for the two
// staging rings (pre-cipher, post-cipher) every CipherStream keeps.
var ringPool = &sync.Pool{
	New: func() interface{} {
		buf := make([]byte, constants.RingBufferSize)
		return &buf
	},
}

// GetRingBuffer retrieves a RingBufferSize-length buffer from the pool. The
// buffer must be returned with PutRingBuffer when the owning stream is
// disposed; Reset keeps the same buffer.
func GetRingBuffer() *[]byte {
	return ringPool.Get().(*[]byte)
}

// PutRingBuffer returns a buffer to the pool. The contents are zeroed
// first since ring buffers stage plaintext and key-derived ciphertext —
// letting them linger in a pooled allocation would leak one caller's data
// into the next's buffer.
func PutRingBuffer(buf *[]byte) {
	if buf == nil || len(*buf) != constants.RingBufferSize {
		return
	}
	clear(*buf)
	ringPool.Put(buf)
}
