package streamcrypt

import "github.com/rescale-labs/obscurcore/internal/util/buffers"

// ring is a fixed-capacity byte ring buffer backed by a pooled array
// (internal/util/buffers), used as the two staging buffers spec.md §4.2
// gives every CipherStream: op_in stages writes until a full operation's
// worth of input has accumulated, op_out stages produced output until a
// caller reads it off.
type ring struct {
	buf        *[]byte
	start, len int
}

func newRing() *ring {
	return &ring{buf: buffers.GetRingBuffer()}
}

func (r *ring) cap() int { return len(*r.buf) }
func (r *ring) Len() int { return r.len }
func (r *ring) Free() int { return r.cap() - r.len }

// Write appends as much of p as fits, returning the number of bytes
// consumed. It never blocks or grows past the ring's fixed capacity.
func (r *ring) Write(p []byte) int {
	n := len(p)
	if n > r.Free() {
		n = r.Free()
	}
	buf := *r.buf
	for i := 0; i < n; i++ {
		buf[(r.start+r.len+i)%len(buf)] = p[i]
	}
	r.len += n
	return n
}

// Read copies up to len(p) bytes out of the ring into p in FIFO order,
// advancing the read position, and returns the number copied.
func (r *ring) Read(p []byte) int {
	n := len(p)
	if n > r.len {
		n = r.len
	}
	buf := *r.buf
	for i := 0; i < n; i++ {
		p[i] = buf[(r.start+i)%len(buf)]
	}
	r.start = (r.start + n) % len(buf)
	r.len -= n
	return n
}

// Release returns the ring's backing array to the shared pool. Call once
// when the owning CipherStream is disposed.
func (r *ring) Release() {
	buffers.PutRingBuffer(r.buf)
	r.buf = nil
}
