package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
	"github.com/rescale-labs/obscurcore/internal/secmem"
)

// PayloadItem describes one logical item multiplexed into a package: its
// identity, its external (pre-cipher) length, and the cipher/auth
// configuration and key material used to protect it (spec.md §3, §4.5).
type PayloadItem struct {
	ID uuid.UUID

	// RelativePath is the item's logical name within the package (e.g. a
	// file path); it carries no on-wire meaning beyond being part of the
	// key-derivation context for per-item keys.
	RelativePath string

	ExternalLength int64

	Cipher CipherConfiguration
	Auth   AuthenticationConfiguration

	// PreKey, when set, is the HKDF input (salted with RelativePath) from
	// which CipherKey/AuthKey are derived lazily (spec.md §4.5's "lazy
	// Encrypt-then-MAC chain construction"). Either PreKey or both of
	// CipherKey/AuthKey must be supplied; a cipher that takes an IV also
	// needs PreKey, from which the mux derives that IV.
	PreKey    []byte
	CipherKey []byte
	AuthKey   []byte

	// completed marks an item that has already finished its
	// Encrypt-then-MAC chain and been verified; the mux consults this bit
	// when resuming a partially-written package.
	completed bool
}

// NewPayloadItem constructs a PayloadItem with a fresh random identifier.
func NewPayloadItem(relativePath string, length int64, cipher CipherConfiguration, auth AuthenticationConfiguration) *PayloadItem {
	return &PayloadItem{
		ID:             uuid.New(),
		RelativePath:   relativePath,
		ExternalLength: length,
		Cipher:         cipher,
		Auth:           auth,
	}
}

func (p *PayloadItem) Validate() error {
	if p.RelativePath == "" {
		return fmt.Errorf("%w: payload item missing relative path", obscurerr.ErrConfigurationInvalid)
	}
	if p.ExternalLength < 0 {
		return fmt.Errorf("%w: payload item %s has negative length", obscurerr.ErrConfigurationInvalid, p.RelativePath)
	}
	if err := p.Cipher.Validate(); err != nil {
		return fmt.Errorf("payload item %s: %w", p.RelativePath, err)
	}
	if err := p.Auth.Validate(); err != nil {
		return fmt.Errorf("payload item %s: %w", p.RelativePath, err)
	}
	if len(p.PreKey) == 0 && (len(p.CipherKey) == 0 || (p.Auth.Kind != AuthNone && len(p.AuthKey) == 0)) {
		return fmt.Errorf("%w: payload item %s has no usable key material", obscurerr.ErrItemKeyMissing, p.RelativePath)
	}
	return nil
}

// Completed reports whether this item's chain has already been verified.
func (p *PayloadItem) Completed() bool { return p.completed }

// MarkCompleted records that this item's Encrypt-then-MAC chain finished
// and its MAC verified.
func (p *PayloadItem) MarkCompleted() { p.completed = true }

// Zeroise wipes every key buffer this item owns. Call it once the item's
// chain is finished and its keys are no longer needed.
func (p *PayloadItem) Zeroise() {
	secmem.Wipe(p.PreKey)
	secmem.Wipe(p.CipherKey)
	secmem.Wipe(p.AuthKey)
}
