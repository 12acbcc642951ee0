package blockmode

import (
	"crypto/cipher"
	"fmt"

	"github.com/rescale-labs/obscurcore/internal/model"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

// Composer produces the encrypt and decrypt cipher.BlockMode (or, for
// CFB/CTR/OFB, the cipher.Stream wrapped to the same shape) for one block
// cipher under one named mode.
type Composer struct {
	Mode      model.BlockMode
	BlockSize int
}

// streamAsBlockMode adapts a cipher.Stream (CFB, CTR, OFB) to the
// CryptBlocks shape that only CBC has natively, so
// cipherwrap's wrapper can treat every mode uniformly.
type streamAsBlockMode struct {
	stream    cipher.Stream
	blockSize int
}

func (s *streamAsBlockMode) BlockSize() int { return s.blockSize }
func (s *streamAsBlockMode) CryptBlocks(dst, src []byte) {
	s.stream.XORKeyStream(dst, src)
}

// NewEncrypter returns the encrypting BlockMode for iv.
func (c Composer) NewEncrypter(block cipher.Block, iv []byte) (cipher.BlockMode, error) {
	switch c.Mode {
	case model.ModeCbc:
		return cipher.NewCBCEncrypter(block, iv), nil
	case model.ModeCfb:
		return &streamAsBlockMode{stream: cipher.NewCFBEncrypter(block, iv), blockSize: 1}, nil
	case model.ModeCtr:
		return &streamAsBlockMode{stream: cipher.NewCTR(block, iv), blockSize: 1}, nil
	case model.ModeOfb:
		return &streamAsBlockMode{stream: cipher.NewOFB(block, iv), blockSize: 1}, nil
	default:
		return nil, fmt.Errorf("%w: block mode %s", obscurerr.ErrEnumerationParsing, c.Mode)
	}
}

// NewDecrypter returns the decrypting BlockMode for iv.
func (c Composer) NewDecrypter(block cipher.Block, iv []byte) (cipher.BlockMode, error) {
	switch c.Mode {
	case model.ModeCbc:
		return cipher.NewCBCDecrypter(block, iv), nil
	case model.ModeCfb:
		return &streamAsBlockMode{stream: cipher.NewCFBDecrypter(block, iv), blockSize: 1}, nil
	case model.ModeCtr:
		return &streamAsBlockMode{stream: cipher.NewCTR(block, iv), blockSize: 1}, nil
	case model.ModeOfb:
		return &streamAsBlockMode{stream: cipher.NewOFB(block, iv), blockSize: 1}, nil
	default:
		return nil, fmt.Errorf("%w: block mode %s", obscurerr.ErrEnumerationParsing, c.Mode)
	}
}
