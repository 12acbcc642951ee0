// Package obscurcore is a library for building authenticated,
// confidential binary packages: a registry of cipher primitives, a
// uniform streaming wrapper over block and stream ciphers, and a
// payload multiplexer that interleaves many independently-keyed items
// into one combined, tamper-evident stream.
//
// The package is a thin facade over obscurcore's internal
// implementation packages — mirroring how the teacher project keeps its
// concrete logic in internal/ and exposes only what callers need at the
// root.
package obscurcore

import (
	"io"

	"github.com/google/uuid"
	"github.com/rescale-labs/obscurcore/internal/entropy"
	"github.com/rescale-labs/obscurcore/internal/keyconfirm"
	"github.com/rescale-labs/obscurcore/internal/model"
	"github.com/rescale-labs/obscurcore/internal/mux"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

// Re-exported enums and configuration types (internal/model), so callers
// never need to import an internal package directly.
type (
	CipherKind                  = model.CipherKind
	BlockMode                   = model.BlockMode
	Padding                     = model.Padding
	LayoutScheme                = model.LayoutScheme
	AuthFnKind                  = model.AuthFnKind
	MuxEntropyScheme            = model.MuxEntropyScheme
	CipherConfiguration         = model.CipherConfiguration
	AuthenticationConfiguration = model.AuthenticationConfiguration
	PayloadConfiguration        = model.PayloadConfiguration
	PayloadItem                 = model.PayloadItem
	SymmetricKey                = model.SymmetricKey
)

const (
	CipherBlock  = model.CipherBlock
	CipherStream = model.CipherStream

	ModeCbc = model.ModeCbc
	ModeCfb = model.ModeCfb
	ModeCtr = model.ModeCtr
	ModeOfb = model.ModeOfb

	PaddingPkcs7      = model.PaddingPkcs7
	PaddingIso7816D4  = model.PaddingIso7816D4
	PaddingIso10126D2 = model.PaddingIso10126D2
	PaddingTbc        = model.PaddingTbc
	PaddingX923       = model.PaddingX923

	LayoutSimple     = model.LayoutSimple
	LayoutFrameshift = model.LayoutFrameshift
	LayoutFabric     = model.LayoutFabric

	AuthHash = model.AuthHash
	AuthMac  = model.AuthMac
)

// NewPayloadItem constructs a new item to be multiplexed into a package.
func NewPayloadItem(relativePath string, length int64, cipher CipherConfiguration, auth AuthenticationConfiguration) *PayloadItem {
	return model.NewPayloadItem(relativePath, length, cipher, auth)
}

// Package drives a PayloadMux through encryption or decryption of a full
// set of items against a single combined stream.
type Package struct {
	m *mux.Mux
}

// NewEncryptingPackage constructs a Package that will multiplex items
// into a single encrypted output stream, driving item-selection and any
// layout padding from the process-wide CSPRNG returned by
// entropy.Default(). That generator's seed is not exposed, so a
// decrypting Package cannot reproduce a schedule that draws from it.
func NewEncryptingPackage(items []*PayloadItem, cfg PayloadConfiguration) (*Package, error) {
	m, err := mux.New(items, cfg, entropy.Default(), true)
	if err != nil {
		return nil, err
	}
	return &Package{m: m}, nil
}

// NewDecryptingPackage constructs a Package to demultiplex a combined
// stream back into its items. source must reproduce, byte for byte, the
// same draw sequence the encrypting side's source produced — callers
// are responsible for seeding it identically (e.g. from a shared
// pre-key-derived CSPRNG, or the same Preallocation tape).
func NewDecryptingPackage(items []*PayloadItem, cfg PayloadConfiguration, source Source) (*Package, error) {
	m, err := mux.New(items, cfg, source, false)
	if err != nil {
		return nil, err
	}
	return &Package{m: m}, nil
}

// Source is anything that can drive a Package's deterministic
// item-selection schedule: internal/entropy's CSPRNG or Preallocation
// both satisfy it.
type Source = mux.Source

// Encrypt drains plaintexts (keyed by item ID) into w.
func (p *Package) Encrypt(w io.Writer, plaintexts map[uuid.UUID]io.Reader) error {
	return p.m.ExecuteEncrypt(w, plaintexts)
}

// Decrypt demultiplexes r into sinks (keyed by item ID), verifying every
// item's MAC as its chain finishes. A padding failure and a MAC mismatch
// are both returned as ErrPackageAuthFailed.
func (p *Package) Decrypt(r io.Reader, sinks map[uuid.UUID]io.Writer) error {
	err := p.m.ExecuteDecrypt(r, sinks)
	if collapsed, ok := obscurerr.AsPackageAuthFailed(err); ok {
		return collapsed
	}
	return err
}

// ConfirmKey reports whether key is the package's key, without
// decrypting any item, by reproducing publishedOutput — the package's
// published verified-output — from key's own (secret) canary.
func ConfirmKey(key *SymmetricKey, salt, publishedOutput []byte) (bool, error) {
	return keyconfirm.Confirm(key, salt, publishedOutput)
}

// ConfirmAnyKey tries every candidate in keys and returns the first one
// that reproduces publishedOutput.
func ConfirmAnyKey(keys []*SymmetricKey, salt, publishedOutput []byte) (*SymmetricKey, error) {
	return keyconfirm.ConfirmAny(keys, salt, publishedOutput)
}
