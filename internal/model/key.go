package model

import (
	"fmt"

	"github.com/rescale-labs/obscurcore/internal/constants"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
	"github.com/rescale-labs/obscurcore/internal/secmem"
)

// UsePermission restricts what a SymmetricKey may be used for, the way
// spec.md §4.7 scopes a candidate key to "confirmation only" versus
// "confirmation and payload decryption".
type UsePermission int

const (
	UseConfirmAndDecrypt UsePermission = iota
	UseConfirmOnly
)

// SymmetricKey is a candidate key plus the context needed to confirm it
// belongs to a package (spec.md §4.7): raw key material, additional
// authenticated data bound into the confirmation, the declared use
// permission, and the confirmation canary generated alongside the key.
type SymmetricKey struct {
	Raw            []byte
	AdditionalData []byte
	Use            UsePermission

	// Canary is fixed, secret random bytes generated together with the
	// key and never itself revealed; it is the KDF/MAC input the
	// confirmation scheme runs over to reproduce a package's published
	// verified-output. It is CanarySize bytes once populated.
	Canary []byte
}

func (k *SymmetricKey) Validate() error {
	if len(k.Raw) == 0 {
		return fmt.Errorf("%w: symmetric key has no raw material", obscurerr.ErrConfigurationInvalid)
	}
	if len(k.Canary) != 0 && len(k.Canary) != constants.CanarySize {
		return fmt.Errorf("%w: symmetric key canary is %d bytes, want %d", obscurerr.ErrConfigurationInvalid, len(k.Canary), constants.CanarySize)
	}
	return nil
}

// Equals reports whether two keys carry the same raw material, in
// constant time with respect to the comparison's outcome.
func (k *SymmetricKey) Equals(other *SymmetricKey) bool {
	if other == nil {
		return false
	}
	return secmem.ConstantTimeCompare(k.Raw, other.Raw)
}

// Zeroise wipes the key's raw material and canary.
func (k *SymmetricKey) Zeroise() {
	secmem.Wipe(k.Raw)
	secmem.Wipe(k.Canary)
}
