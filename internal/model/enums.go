// Package model holds ObscurCore's data model (spec.md §3): the
// configuration records and payload/key types every other component is
// specified in terms of. Enum values resolve case-insensitively, the way
// the teacher's declarative configs resolve named options
// (strings.EqualFold), per SPEC_FULL.md's ambient "Configuration" section.
package model

import (
	"fmt"
	"strings"

	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

// CipherKind is the top-level discriminant of a CipherConfiguration.
type CipherKind int

const (
	CipherNone CipherKind = iota
	CipherBlock
	CipherStream
)

func ParseCipherKind(s string) (CipherKind, error) {
	switch {
	case strings.EqualFold(s, "none"):
		return CipherNone, nil
	case strings.EqualFold(s, "block"):
		return CipherBlock, nil
	case strings.EqualFold(s, "stream"):
		return CipherStream, nil
	default:
		return 0, fmt.Errorf("%w: cipher kind %q", obscurerr.ErrEnumerationParsing, s)
	}
}

func (k CipherKind) String() string {
	switch k {
	case CipherNone:
		return "None"
	case CipherBlock:
		return "Block"
	case CipherStream:
		return "Stream"
	default:
		return "Unknown"
	}
}

// BlockMode names the mode of operation wrapping a raw block cipher.
type BlockMode int

const (
	ModeCbc BlockMode = iota
	ModeCfb
	ModeCtr
	ModeOfb
)

func ParseBlockMode(s string) (BlockMode, error) {
	switch {
	case strings.EqualFold(s, "cbc"):
		return ModeCbc, nil
	case strings.EqualFold(s, "cfb"):
		return ModeCfb, nil
	case strings.EqualFold(s, "ctr"):
		return ModeCtr, nil
	case strings.EqualFold(s, "ofb"):
		return ModeOfb, nil
	default:
		return 0, fmt.Errorf("%w: block mode %q", obscurerr.ErrEnumerationParsing, s)
	}
}

func (m BlockMode) String() string {
	switch m {
	case ModeCbc:
		return "Cbc"
	case ModeCfb:
		return "Cfb"
	case ModeCtr:
		return "Ctr"
	case ModeOfb:
		return "Ofb"
	default:
		return "Unknown"
	}
}

// RequiresPadding reports whether this mode needs a padding scheme —
// true only for CBC (spec.md §3: "padding is required under CBC and
// forbidden under CTR/CFB/OFB/stream").
func (m BlockMode) RequiresPadding() bool { return m == ModeCbc }

// Padding names a block-cipher padding scheme.
type Padding int

const (
	PaddingNone Padding = iota
	PaddingIso10126D2
	PaddingIso7816D4
	PaddingPkcs7
	PaddingTbc
	PaddingX923
)

func ParsePadding(s string) (Padding, error) {
	switch {
	case strings.EqualFold(s, "none"):
		return PaddingNone, nil
	case strings.EqualFold(s, "iso10126d2"), strings.EqualFold(s, "iso10126-2"):
		return PaddingIso10126D2, nil
	case strings.EqualFold(s, "iso7816d4"), strings.EqualFold(s, "iso7816-4"):
		return PaddingIso7816D4, nil
	case strings.EqualFold(s, "pkcs7"):
		return PaddingPkcs7, nil
	case strings.EqualFold(s, "tbc"):
		return PaddingTbc, nil
	case strings.EqualFold(s, "x923"):
		return PaddingX923, nil
	default:
		return 0, fmt.Errorf("%w: padding %q", obscurerr.ErrEnumerationParsing, s)
	}
}

func (p Padding) String() string {
	switch p {
	case PaddingNone:
		return "None"
	case PaddingIso10126D2:
		return "Iso10126D2"
	case PaddingIso7816D4:
		return "Iso7816D4"
	case PaddingPkcs7:
		return "Pkcs7"
	case PaddingTbc:
		return "Tbc"
	case PaddingX923:
		return "X923"
	default:
		return "Unknown"
	}
}

// LayoutScheme names a payload-mux layout scheme (spec.md §4.5).
type LayoutScheme int

const (
	LayoutSimple LayoutScheme = iota
	LayoutFrameshift
	LayoutFabric
)

func ParseLayoutScheme(s string) (LayoutScheme, error) {
	switch {
	case strings.EqualFold(s, "simple"):
		return LayoutSimple, nil
	case strings.EqualFold(s, "frameshift"):
		return LayoutFrameshift, nil
	case strings.EqualFold(s, "fabric"):
		return LayoutFabric, nil
	default:
		return 0, fmt.Errorf("%w: layout scheme %q", obscurerr.ErrEnumerationParsing, s)
	}
}

func (s LayoutScheme) String() string {
	switch s {
	case LayoutSimple:
		return "Simple"
	case LayoutFrameshift:
		return "Frameshift"
	case LayoutFabric:
		return "Fabric"
	default:
		return "Unknown"
	}
}

// AuthFnKind is the top-level discriminant of an AuthenticationConfiguration.
type AuthFnKind int

const (
	AuthNone AuthFnKind = iota
	AuthHash
	AuthMac
	AuthKdf
)

func ParseAuthFnKind(s string) (AuthFnKind, error) {
	switch {
	case strings.EqualFold(s, "none"):
		return AuthNone, nil
	case strings.EqualFold(s, "hash"):
		return AuthHash, nil
	case strings.EqualFold(s, "mac"):
		return AuthMac, nil
	case strings.EqualFold(s, "kdf"):
		return AuthKdf, nil
	default:
		return 0, fmt.Errorf("%w: auth function kind %q", obscurerr.ErrEnumerationParsing, s)
	}
}

func (k AuthFnKind) String() string {
	switch k {
	case AuthNone:
		return "None"
	case AuthHash:
		return "Hash"
	case AuthMac:
		return "Mac"
	case AuthKdf:
		return "Kdf"
	default:
		return "Unknown"
	}
}

// MuxEntropyScheme names how the mux sources its schedule decisions.
type MuxEntropyScheme int

const (
	EntropyStreamCipherCsprng MuxEntropyScheme = iota
	EntropyPreallocation
)

func ParseMuxEntropyScheme(s string) (MuxEntropyScheme, error) {
	switch {
	case strings.EqualFold(s, "streamciphercsprng"):
		return EntropyStreamCipherCsprng, nil
	case strings.EqualFold(s, "preallocation"):
		return EntropyPreallocation, nil
	default:
		return 0, fmt.Errorf("%w: mux entropy scheme %q", obscurerr.ErrEnumerationParsing, s)
	}
}
