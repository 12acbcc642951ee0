// Package mux implements the payload multiplexer (spec.md §4.5): it owns
// a set of PayloadItems, lazily builds an Encrypt-then-MAC chain per
// item the first time that item is selected, and interleaves their
// output bytes according to a layout scheme (Simple, Frameshift, or
// Fabric) driven by an entropy source's item-selection draws.
package mux

// Source is anything the mux can draw schedule decisions from: a live
// CSPRNG or a fixed Preallocation tape (internal/entropy), unified here
// so the mux's selection logic doesn't care which backs it.
type Source interface {
	Next(min, max int) (int, error)
	NextBytes(dst []byte) error
}
