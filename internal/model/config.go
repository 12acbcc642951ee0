package model

import (
	"fmt"

	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

// CipherConfiguration declares how a single cipher primitive is composed:
// its kind (block/stream), the algorithm name, key/IV sizes, and — for
// block ciphers — the mode of operation and padding scheme. Validate is
// called eagerly at construction so a bad combination never reaches the
// streaming layer (spec.md §3, §7 ErrConfigurationInvalid).
type CipherConfiguration struct {
	Kind        CipherKind
	Algorithm   string
	KeySizeBits int
	IVSizeBytes int

	// Mode and Padding only apply when Kind == CipherBlock.
	Mode    BlockMode
	Padding Padding
}

func (c *CipherConfiguration) Validate() error {
	if c.Algorithm == "" {
		return fmt.Errorf("%w: cipher configuration missing algorithm name", obscurerr.ErrConfigurationInvalid)
	}
	if c.KeySizeBits <= 0 || c.KeySizeBits%8 != 0 {
		return fmt.Errorf("%w: cipher %s has invalid key size %d bits", obscurerr.ErrConfigurationInvalid, c.Algorithm, c.KeySizeBits)
	}
	switch c.Kind {
	case CipherBlock:
		if c.Mode.RequiresPadding() && c.Padding == PaddingNone {
			return fmt.Errorf("%w: cipher %s under %s requires a padding scheme", obscurerr.ErrConfigurationInvalid, c.Algorithm, c.Mode)
		}
		if !c.Mode.RequiresPadding() && c.Padding != PaddingNone {
			return fmt.Errorf("%w: cipher %s under %s forbids padding (got %s)", obscurerr.ErrConfigurationInvalid, c.Algorithm, c.Mode, c.Padding)
		}
	case CipherStream:
		if c.Padding != PaddingNone {
			return fmt.Errorf("%w: stream cipher %s forbids padding", obscurerr.ErrConfigurationInvalid, c.Algorithm)
		}
	default:
		return fmt.Errorf("%w: cipher configuration has no declared kind", obscurerr.ErrConfigurationInvalid)
	}
	if c.IVSizeBytes < 0 {
		return fmt.Errorf("%w: cipher %s has negative IV size", obscurerr.ErrConfigurationInvalid, c.Algorithm)
	}
	return nil
}

// AuthenticationConfiguration declares the Encrypt-then-MAC (or bare
// hash/KDF) authentication function layered over a ciphertext stream
// (spec.md §4.6).
type AuthenticationConfiguration struct {
	Kind        AuthFnKind
	Algorithm   string
	KeySizeBits int // only meaningful for Kind == AuthMac
}

func (a *AuthenticationConfiguration) Validate() error {
	if a.Kind == AuthNone {
		return nil
	}
	if a.Algorithm == "" {
		return fmt.Errorf("%w: authentication configuration missing algorithm name", obscurerr.ErrConfigurationInvalid)
	}
	if a.Kind == AuthMac && (a.KeySizeBits <= 0 || a.KeySizeBits%8 != 0) {
		return fmt.Errorf("%w: mac %s has invalid key size %d bits", obscurerr.ErrConfigurationInvalid, a.Algorithm, a.KeySizeBits)
	}
	return nil
}

// PayloadConfiguration declares the multiplexer's layout scheme and its
// tunable parameters (spec.md §4.5).
type PayloadConfiguration struct {
	Scheme  LayoutScheme
	Entropy MuxEntropyScheme

	// FrameshiftMin/Max bound the random padding frame Frameshift inserts
	// between items. Fabric{Min,Max} bound Fabric's fixed-stripe width.
	FrameshiftMin, FrameshiftMax int
	FabricMin, FabricMax        int
}

func (p *PayloadConfiguration) Validate() error {
	switch p.Scheme {
	case LayoutSimple:
		return nil
	case LayoutFrameshift:
		if p.FrameshiftMin < 2 || p.FrameshiftMax < p.FrameshiftMin {
			return fmt.Errorf("%w: frameshift bounds invalid (min=%d max=%d, min must be >= 2)", obscurerr.ErrConfigurationInvalid, p.FrameshiftMin, p.FrameshiftMax)
		}
	case LayoutFabric:
		if p.FabricMin <= 0 || p.FabricMax < p.FabricMin {
			return fmt.Errorf("%w: fabric bounds invalid (min=%d max=%d)", obscurerr.ErrConfigurationInvalid, p.FabricMin, p.FabricMax)
		}
	default:
		return fmt.Errorf("%w: payload configuration has no declared layout scheme", obscurerr.ErrConfigurationInvalid)
	}
	return nil
}
