package primitive

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/rescale-labs/obscurcore/internal/obscurerr"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// DeriveHKDF derives outputLen bytes of key material from ikm (input
// keying material), bound to salt and info, the way per-item keys are
// derived from a mux pre-key (spec.md §4.5) and the way confirmation
// verified-output is derived from a candidate key (spec.md §4.7).
func DeriveHKDF(ikm, salt, info []byte, outputLen int) ([]byte, error) {
	r := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, outputLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: hkdf expand: %v", obscurerr.ErrConfigurationInvalid, err)
	}
	return out, nil
}

// DerivePBKDF2 derives outputLen bytes from a low-entropy secret (e.g. a
// passphrase) using PBKDF2-HMAC-SHA256, for call sites deriving a
// top-level master key rather than an already-uniform pre-key.
func DerivePBKDF2(password, salt []byte, iterations, outputLen int) []byte {
	return pbkdf2.Key(password, salt, iterations, outputLen, sha256.New)
}
