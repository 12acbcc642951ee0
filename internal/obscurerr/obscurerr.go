// Package obscurerr defines ObscurCore's error taxonomy (spec.md §7): a
// small set of discriminated error kinds in place of the source's
// exception-hierarchy-plus-string-matching, grounded on the teacher's
// sentinel-error-plus-predicate style (internal/cloud/storage/errors.go).
package obscurerr

import (
	"errors"
	"fmt"
)

// Sentinel errors usable with errors.Is. Each corresponds to one row of
// spec.md §7's taxonomy that isn't better modeled as a typed State/Stream
// kind (below).
var (
	// ErrConfigurationInvalid marks a declared configuration combination
	// that is disallowed, surfaced eagerly at construction time.
	ErrConfigurationInvalid = errors.New("configuration invalid")

	// ErrDataLength marks a buffer too short, or a declared length
	// impossible to honor.
	ErrDataLength = errors.New("data length error")

	// ErrBadPadding marks padding verification failure on decrypt. Its
	// timing and, where user-facing, its error class MUST be
	// indistinguishable from ErrIntegrityFailure — see PackageAuthFailed.
	ErrBadPadding = errors.New("bad padding")

	// ErrIntegrityFailure marks an item MAC mismatch at finish_item.
	ErrIntegrityFailure = errors.New("integrity failure")

	// ErrItemKeyMissing marks a mux unable to derive or find a working
	// key for a payload item.
	ErrItemKeyMissing = errors.New("item key missing")

	// ErrEnumerationParsing marks a configuration name that did not
	// resolve to a known algorithm.
	ErrEnumerationParsing = errors.New("unknown algorithm name")
)

// EndOfStreamKind distinguishes the two EndOfStream sub-kinds spec.md §7
// calls out: the backing source exhausting mid-write_exactly/read_exactly,
// versus the mux's entropy binding (a preallocated entropy tape) running
// out before all items complete.
type EndOfStreamKind int

const (
	EndOfStreamSource EndOfStreamKind = iota
	EndOfStreamBinding
)

func (k EndOfStreamKind) String() string {
	switch k {
	case EndOfStreamSource:
		return "source"
	case EndOfStreamBinding:
		return "binding"
	default:
		return "unknown"
	}
}

// EndOfStreamError reports a source (or entropy binding) exhausting before
// a *_exactly call had read/written the number of bytes it owed.
type EndOfStreamError struct {
	Kind EndOfStreamKind
	Want int
	Got  int
}

func (e *EndOfStreamError) Error() string {
	return fmt.Sprintf("end of stream (%s): wanted %d bytes, got %d", e.Kind, e.Want, e.Got)
}

// StateKind enumerates the CipherStream/Mux lifecycle violations spec.md
// §7 lists under StateError. These are never locally recovered: a stream
// or mux that returns one of these is expected to keep returning it.
type StateKind int

const (
	StateDisposed StateKind = iota
	StateFinished
	StateNotInitialised
	StateNotWriting
	StateNotReading
	StatePoisoned
)

func (k StateKind) String() string {
	switch k {
	case StateDisposed:
		return "disposed"
	case StateFinished:
		return "finished"
	case StateNotInitialised:
		return "not initialised"
	case StateNotWriting:
		return "not writing"
	case StateNotReading:
		return "not reading"
	case StatePoisoned:
		return "poisoned"
	default:
		return "unknown state"
	}
}

// StateError reports an operation attempted against a CipherStream, digest
// stream, or Mux that is not in a state that allows it.
type StateError struct {
	Kind StateKind
}

func (e *StateError) Error() string {
	return "state error: " + e.Kind.String()
}

// Is lets errors.Is(err, State(StatePoisoned)) match regardless of
// wrapping, by comparing Kind rather than pointer identity.
func (e *StateError) Is(target error) bool {
	other, ok := target.(*StateError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// State constructs a StateError of the given kind.
func State(kind StateKind) *StateError {
	return &StateError{Kind: kind}
}

// WritingError reports a cipher primitive's "output buffer too short"
// failure without exposing the primitive's exact message (spec.md §7).
// No package in this module constructs it: the cipher wrapper allocates
// every output buffer itself.
type WritingError struct {
	Err error
}

func (e *WritingError) Error() string { return "writing error: output buffer too short" }
func (e *WritingError) Unwrap() error { return e.Err }

// PackageAuthFailed is the single user-facing error class that ErrBadPadding
// and ErrIntegrityFailure both collapse into when reading a malformed
// package, so a caller cannot distinguish "padding broke" from "the MAC
// didn't verify" — spec.md §7's anti-leakage requirement.
var ErrPackageAuthFailed = errors.New("package failed authentication")

// AsPackageAuthFailed reports whether err is ErrBadPadding or
// ErrIntegrityFailure (however deeply wrapped) and, if so, returns the
// single collapsed user-facing error instead.
func AsPackageAuthFailed(err error) (error, bool) {
	if errors.Is(err, ErrBadPadding) || errors.Is(err, ErrIntegrityFailure) {
		return ErrPackageAuthFailed, true
	}
	return err, false
}
