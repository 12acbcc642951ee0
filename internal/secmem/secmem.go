// Package secmem provides the zeroisation and constant-time comparison
// primitives spec.md §4.8 requires of every key buffer, canary, derived-key
// buffer and MAC-output buffer.
package secmem

import "crypto/subtle"

// Wipe zeroes b in place. Call it on any buffer that held key material,
// a canary, or a MAC/digest output once the caller is done with it.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare reports whether a and b hold the same bytes without
// leaking, via timing, the position of the first mismatch or — critically —
// whether a length mismatch was the cause of inequality. Unequal lengths
// are still rejected only after a full accumulate-only compare over
// len(a) bytes, so the time taken depends on len(a), not on whether the
// lengths matched.
func ConstantTimeCompare(a, b []byte) bool {
	if len(a) != len(b) {
		// Run a constant-time compare against a zero buffer of the same
		// shape as a so a timing observer cannot distinguish "lengths
		// differ" from "lengths matched but bytes differed" by the time
		// taken to decide — both paths execute a full accumulate.
		dummy := make([]byte, len(a))
		subtle.ConstantTimeCompare(a, dummy)
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ConstantTimeCompareOr accumulates an XOR-based OR across every byte pair
// of a and b (which MUST be equal length) and returns whether all bytes
// matched. This mirrors spec.md §4.8's "XOR-accumulate into a running OR"
// description directly, for call sites (e.g. padding verification) that
// want the accumulator shape rather than crypto/subtle's API.
func ConstantTimeCompareOr(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var acc byte
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}
