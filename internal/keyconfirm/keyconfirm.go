// Package keyconfirm implements key confirmation (spec.md §4.7): proving
// a candidate key is "the" key for a package without decrypting any
// payload item, by reproducing a published verified-output value from
// the candidate key's own secret canary. Grounded in shape on internal/primitive's
// HKDF wrapper (the same derive-then-compare idiom
// internal/crypto/keyderive.go uses for per-part keys), generalized to
// the canary/verified-output construction spec.md describes.
package keyconfirm

import (
	"fmt"

	"github.com/rescale-labs/obscurcore/internal/constants"
	"github.com/rescale-labs/obscurcore/internal/model"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
	"github.com/rescale-labs/obscurcore/internal/primitive"
	"github.com/rescale-labs/obscurcore/internal/secmem"
)

const verifiedOutputInfo = "obscurcore-key-confirmation"

// VerifiedOutput derives the confirmation value for key: HKDF (extract,
// then expand) keyed on key.Canary (the secret random value generated
// with the key and never itself revealed), with the super-salt
// tag_constant‖salt‖additional_data as the expand info. A package author computes this once
// from the real key's canary and publishes the result; a reader
// presenting a candidate key recomputes it from that candidate's own
// canary and compares.
func VerifiedOutput(key *model.SymmetricKey, salt []byte) ([]byte, error) {
	if len(salt) != constants.CanarySize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", obscurerr.ErrConfigurationInvalid, constants.CanarySize, len(salt))
	}
	if len(key.Canary) == 0 {
		return nil, fmt.Errorf("%w: key has no canary to confirm with", obscurerr.ErrItemKeyMissing)
	}
	superSalt := append(append([]byte(verifiedOutputInfo), salt...), key.AdditionalData...)
	return primitive.DeriveHKDF(key.Canary, nil, superSalt, constants.CanarySize)
}

// Confirm checks whether key's canary reproduces publishedOutput, the
// package's published verified-output, salted with salt (a public,
// package-level nonce), comparing in constant time.
func Confirm(key *model.SymmetricKey, salt, publishedOutput []byte) (bool, error) {
	out, err := VerifiedOutput(key, salt)
	if err != nil {
		return false, err
	}
	defer secmem.Wipe(out)
	return secmem.ConstantTimeCompare(out, publishedOutput), nil
}

// ConfirmAny runs Confirm against every candidate in keys and returns the
// first one that reproduces publishedOutput, or ErrItemKeyMissing if none
// do. Candidates are tried independently — a caller wanting concurrent
// evaluation with early-exit can instead call Confirm per key in its own
// goroutines and cancel the rest once one succeeds.
func ConfirmAny(keys []*model.SymmetricKey, salt, publishedOutput []byte) (*model.SymmetricKey, error) {
	for _, k := range keys {
		ok, err := Confirm(k, salt, publishedOutput)
		if err != nil {
			return nil, err
		}
		if ok {
			return k, nil
		}
	}
	return nil, fmt.Errorf("%w: no candidate key confirmed against the published verified-output", obscurerr.ErrItemKeyMissing)
}

// CombineTwoCanaries XOR-combines two canaries into one, for the EC
// hybrid confirmation flavour spec.md §4.7 describes: confirmation
// succeeds only when both the classical and post-quantum/EC shares
// agree. The result is meant to replace Canary on a SymmetricKey built
// from the two share keys' material before that key is run through
// VerifiedOutput/Confirm — the combined canary becomes the single KDF
// input the rest of the confirmation algorithm already expects.
func CombineTwoCanaries(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: canary shares must be equal length (%d vs %d)", obscurerr.ErrConfigurationInvalid, len(a), len(b))
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}
