// Package constants centralises the sizing and bound parameters that
// appear throughout the cipher stream and payload mux implementations, the
// way the teacher project keeps one constants package per concern instead
// of scattering magic numbers.
package constants

// Cipher stream decorator (internal/streamcrypt) ring buffer sizing.
const (
	// RingBufferSize is the capacity of each of the two staging rings
	// (pre-cipher and post-cipher) a CipherStream keeps, per spec.md §4.2.
	RingBufferSize = 16 * 1024

	// StreamCipherStrideShift is the "stride_increase_factor" in spec.md
	// §4.1: a stream cipher's operation_size is its native state size left
	// shifted by this amount, clamped into [StreamCipherStrideMin,
	// StreamCipherStrideMax].
	StreamCipherStrideShift = 2

	// StreamCipherStrideMin/Max clamp every stream cipher's stride; a
	// cipher lacking a natural "state size" (e.g. RC4) gets
	// StreamCipherStrideMin, per spec.md §4.1's "64-128 B is a reasonable
	// default".
	StreamCipherStrideMin = 64
	StreamCipherStrideMax = 128
)

// Payload mux layout scheme bounds (spec.md §4.5).
const (
	FrameshiftMinDefault = 2
	FrameshiftMaxDefault = 512

	FabricMinDefault = 16
	FabricMaxDefault = 32768
)

// Key sizes for the confirmation canary (spec.md §4.7) and generic
// symmetric key material defaults.
const (
	CanarySize = 32
)
