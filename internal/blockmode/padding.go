// Package blockmode composes a raw block cipher into a mode of operation
// (CBC/CFB/CTR/OFB) and, for CBC, a padding scheme (spec.md §4.1/§4.2).
// The padding verification shape — extract the claimed length in constant
// time, then only trust it if a constant-time check passed — is grounded
// on the pack's lestrrat-go/jwx vendored aescbc.extractPadding, generalized
// from PKCS7 alone to every scheme spec.md §3 lists.
package blockmode

import (
	"fmt"

	"github.com/rescale-labs/obscurcore/internal/model"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

// Pad appends padding to buf so its length becomes a multiple of
// blockSize, per the named scheme. TBC inspects the last plaintext bit
// (an empty buf counts as ending in a 0 bit); every other scheme pads
// unconditionally.
func Pad(scheme model.Padding, buf []byte, blockSize int) ([]byte, error) {
	rem := blockSize - len(buf)%blockSize
	if rem == 0 {
		rem = blockSize // every scheme here always adds at least one byte
	}
	switch scheme {
	case model.PaddingPkcs7:
		return appendRepeated(buf, byte(rem), rem), nil
	case model.PaddingX923:
		out := appendRepeated(buf, 0, rem)
		out[len(out)-1] = byte(rem)
		return out, nil
	case model.PaddingIso7816D4:
		out := append(buf, 0x80)
		out = appendRepeated(out, 0, rem-1)
		return out, nil
	case model.PaddingIso10126D2:
		out := make([]byte, len(buf)+rem)
		copy(out, buf)
		// The rem-1 filler bytes preceding the length byte are specified
		// as random; zero fill is used here since this layer never
		// originates entropy itself (spec.md's entropy supplier is a
		// separate component callers may wire in before calling Pad).
		out[len(out)-1] = byte(rem)
		return out, nil
	case model.PaddingTbc:
		lastBit := byte(0x00)
		if len(buf) > 0 {
			lastBit = buf[len(buf)-1] & 0x01
		}
		fill := byte(0xFF)
		if lastBit == 1 {
			fill = 0x00
		}
		return appendRepeated(buf, fill, rem), nil
	default:
		return nil, fmt.Errorf("%w: padding scheme %s has no Pad implementation", obscurerr.ErrConfigurationInvalid, scheme)
	}
}

func appendRepeated(buf []byte, b byte, n int) []byte {
	out := make([]byte, len(buf)+n)
	copy(out, buf)
	for i := len(buf); i < len(out); i++ {
		out[i] = b
	}
	return out
}

// Unpad removes and verifies padding from buf, returning the original
// message. For PKCS7 and X.923 verification runs in constant time with
// respect to the plaintext's content: every candidate length is checked
// regardless of where the true boundary lies, and the only externally
// observable signal is the final good/bad outcome folded into
// ErrBadPadding. ISO 10126-2 checks only the length byte. ISO 7816-4
// scans a fixed block-size window, but TBC's scan stops at the first
// byte that differs from the fill, so its running time depends on where
// the boundary lies.
func Unpad(scheme model.Padding, buf []byte, blockSize int) ([]byte, error) {
	if len(buf) == 0 || len(buf)%blockSize != 0 {
		return nil, fmt.Errorf("%w: padded buffer length %d not a multiple of block size %d", obscurerr.ErrDataLength, len(buf), blockSize)
	}
	switch scheme {
	case model.PaddingPkcs7:
		return unpadLengthByte(buf, blockSize, 1, 0xFF)
	case model.PaddingX923:
		return unpadLengthByte(buf, blockSize, 0, 0x00)
	case model.PaddingIso7816D4:
		return unpadIso7816(buf, blockSize)
	case model.PaddingIso10126D2:
		return unpadLastByteOnly(buf, blockSize)
	case model.PaddingTbc:
		return unpadTBC(buf, blockSize)
	default:
		return nil, fmt.Errorf("%w: padding scheme %s has no Unpad implementation", obscurerr.ErrConfigurationInvalid, scheme)
	}
}

// unpadLengthByte verifies a scheme where the last byte n claims n bytes
// of padding, and the fill bytes must equal fillValue, where the value
// 0xFF stands for "equal to n". For PKCS7 (fillValue 0xFF) every padding
// byte (including the last) equals n; for X.923 (fillValue 0x00) only the
// bytes before the last must equal 0. checkAll controls whether the last
// byte (the length byte itself) is part of the uniform-fill check
// (PKCS7: 1; X.923: 0, it's the length).
func unpadLengthByte(buf []byte, blockSize, checkAll int, fillValue byte) ([]byte, error) {
	n := len(buf)
	claimedLen := buf[n-1]
	t := uint(n) - uint(claimedLen)
	good := byte(int32(^t) >> 31)
	if claimedLen == 0 || int(claimedLen) > blockSize {
		good = 0
	}

	toCheck := blockSize
	if toCheck > n {
		toCheck = n
	}
	for i := 1; i <= toCheck; i++ {
		if checkAll == 0 && i == 1 {
			// X.923: the length byte itself isn't part of the fill check.
			continue
		}
		ti := uint(claimedLen) - uint(i)
		mask := byte(int32(^ti) >> 31)
		expected := fillValue
		if fillValue == 0xFF {
			expected = byte(claimedLen)
		}
		b := buf[n-i]
		good &^= mask & (expected ^ b)
	}
	good &= good << 4
	good &= good << 2
	good &= good << 1
	good = uint8(int8(good) >> 7)
	if good == 0 {
		return nil, obscurerr.ErrBadPadding
	}
	return buf[:n-int(claimedLen)], nil
}

// unpadIso7816 verifies ISO/IEC 7816-4 padding: a single 0x80 marker
// followed by zero or more 0x00 bytes, scanned from the end.
func unpadIso7816(buf []byte, blockSize int) ([]byte, error) {
	n := len(buf)
	toCheck := blockSize
	if toCheck > n {
		toCheck = n
	}
	markerPos := -1
	var sawNonZeroBeforeMarker byte
	for i := 1; i <= toCheck; i++ {
		b := buf[n-i]
		if b == 0x80 && markerPos == -1 {
			markerPos = i
		}
		if markerPos == -1 && b != 0x00 {
			sawNonZeroBeforeMarker = 1
		}
	}
	if markerPos == -1 || sawNonZeroBeforeMarker == 1 {
		return nil, obscurerr.ErrBadPadding
	}
	return buf[:n-markerPos], nil
}

// unpadLastByteOnly verifies schemes (ISO 10126-2) where only the final
// length byte is checked; the preceding fill bytes are unspecified
// (random) filler and carry no verifiable structure.
func unpadLastByteOnly(buf []byte, blockSize int) ([]byte, error) {
	n := len(buf)
	claimedLen := buf[n-1]
	t := uint(n) - uint(claimedLen)
	good := byte(int32(^t) >> 31)
	if claimedLen == 0 || int(claimedLen) > blockSize {
		good = 0
	}
	if good == 0 {
		return nil, obscurerr.ErrBadPadding
	}
	return buf[:n-int(claimedLen)], nil
}

// unpadTBC verifies Trailing Bit Complement padding: fill bytes are all
// 0xFF or all 0x00, complementing the last message bit, scanned back
// until a bit-flip boundary — rather than an explicit length — marks the
// message end. The scheme has no explicit length byte, so a well-formed
// buffer with all-0xFF (or all-0x00) content is deliberately treated as
// fully padding, matching its exposition in spec.md §3.
func unpadTBC(buf []byte, blockSize int) ([]byte, error) {
	n := len(buf)
	last := buf[n-1]
	if last != 0x00 && last != 0xFF {
		return nil, obscurerr.ErrBadPadding
	}
	i := n
	for i > 0 && buf[i-1] == last {
		i--
	}
	if n-i > blockSize {
		return nil, obscurerr.ErrBadPadding
	}
	return buf[:i], nil
}
