// Package cipherwrap presents every cipher construction — block-mode
// composed or raw stream — through one uniform interface (spec.md §4.1):
// an operation_size callers should feed it in multiples of, a max_delta
// bounding how much larger encrypting output can be than its input, and
// process/process_final/reset operations. Grounded on the teacher's
// streaming.go, which wraps a concrete AES-CBC construction behind a
// small process/finalize pair; generalized here to dispatch over any
// registered block or stream cipher.
package cipherwrap

import (
	"crypto/cipher"
	"fmt"

	"github.com/rescale-labs/obscurcore/internal/blockmode"
	"github.com/rescale-labs/obscurcore/internal/constants"
	"github.com/rescale-labs/obscurcore/internal/model"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
	"github.com/rescale-labs/obscurcore/internal/primitive"
)

// Wrapper is the uniform interface every cipher construction presents to
// the streaming decorator (internal/streamcrypt).
type Wrapper interface {
	// OperationSize is the size, in bytes, that Process should be called
	// with for best efficiency; for block ciphers this is the block
	// size, for stream ciphers a shifted multiple of native state size.
	OperationSize() int

	// MaxDelta bounds len(output)-len(input) across a ProcessFinal call
	// while encrypting (it is always 0 while decrypting and always 0 for
	// unpadded modes/stream ciphers).
	MaxDelta(encrypting bool) int

	// Process transforms src, which must be a multiple of OperationSize
	// for block-mode ciphers, into a freshly allocated buffer.
	Process(src []byte) ([]byte, error)

	// ProcessFinal transforms the last chunk of a stream, applying (on
	// encrypt) or verifying-and-stripping (on decrypt) padding where the
	// construction needs it.
	ProcessFinal(src []byte, encrypting bool) ([]byte, error)

	// Reset reinitialises the wrapper with a fresh IV/nonce, for callers
	// reusing a wrapper across multiple independent streams.
	Reset(iv []byte) error
}

// New constructs a Wrapper for cfg, seeded with key and iv. Block ciphers
// are composed through blockmode.Composer; stream ciphers are used
// directly as a keystream source.
func New(cfg model.CipherConfiguration, key, iv []byte, encrypting bool) (Wrapper, error) {
	switch cfg.Kind {
	case model.CipherBlock:
		return newBlockWrapper(cfg, key, iv, encrypting)
	case model.CipherStream:
		return newStreamWrapper(cfg, key, iv)
	default:
		return nil, fmt.Errorf("%w: cipher configuration has no kind", obscurerr.ErrConfigurationInvalid)
	}
}

type blockWrapper struct {
	cfg        model.CipherConfiguration
	block      cipher.Block
	composer   blockmode.Composer
	mode       cipher.BlockMode
	encrypting bool
}

func newBlockWrapper(cfg model.CipherConfiguration, key, iv []byte, encrypting bool) (*blockWrapper, error) {
	spec, err := primitive.LookupBlockCipher(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	block, err := spec.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", obscurerr.ErrConfigurationInvalid, err)
	}
	w := &blockWrapper{
		cfg:        cfg,
		block:      block,
		composer:   blockmode.Composer{Mode: cfg.Mode, BlockSize: block.BlockSize()},
		encrypting: encrypting,
	}
	if err := w.Reset(iv); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *blockWrapper) OperationSize() int { return w.block.BlockSize() }

func (w *blockWrapper) MaxDelta(encrypting bool) int {
	if encrypting && w.cfg.Mode.RequiresPadding() {
		return w.block.BlockSize()
	}
	return 0
}

func (w *blockWrapper) Process(src []byte) ([]byte, error) {
	bs := w.block.BlockSize()
	if len(src)%bs != 0 {
		return nil, fmt.Errorf("%w: input length %d not a multiple of block size %d", obscurerr.ErrDataLength, len(src), bs)
	}
	dst := make([]byte, len(src))
	w.mode.CryptBlocks(dst, src)
	return dst, nil
}

func (w *blockWrapper) ProcessFinal(src []byte, encrypting bool) ([]byte, error) {
	bs := w.block.BlockSize()
	if !w.cfg.Mode.RequiresPadding() {
		// CFB/CTR/OFB run as streams, so a partial final block is
		// XORed with just as much keystream as it needs.
		dst := make([]byte, len(src))
		if len(src) > 0 {
			w.mode.CryptBlocks(dst, src)
		}
		return dst, nil
	}
	if encrypting {
		padded, err := blockmode.Pad(w.cfg.Padding, src, bs)
		if err != nil {
			return nil, err
		}
		dst := make([]byte, len(padded))
		w.mode.CryptBlocks(dst, padded)
		return dst, nil
	}
	if len(src)%bs != 0 || len(src) == 0 {
		return nil, fmt.Errorf("%w: padded ciphertext length %d not a positive multiple of block size %d", obscurerr.ErrDataLength, len(src), bs)
	}
	dst := make([]byte, len(src))
	w.mode.CryptBlocks(dst, src)
	return blockmode.Unpad(w.cfg.Padding, dst, bs)
}

func (w *blockWrapper) Reset(iv []byte) error {
	var mode cipher.BlockMode
	var err error
	if w.encrypting {
		mode, err = w.composer.NewEncrypter(w.block, iv)
	} else {
		mode, err = w.composer.NewDecrypter(w.block, iv)
	}
	if err != nil {
		return err
	}
	w.mode = mode
	return nil
}

type streamWrapper struct {
	cfg           model.CipherConfiguration
	spec          primitive.StreamCipherSpec
	key           []byte
	stream        cipher.Stream
	operationSize int
}

func newStreamWrapper(cfg model.CipherConfiguration, key, iv []byte) (*streamWrapper, error) {
	spec, err := primitive.LookupStreamCipher(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	w := &streamWrapper{cfg: cfg, spec: spec, key: key, operationSize: strideFor(spec)}
	if err := w.Reset(iv); err != nil {
		return nil, err
	}
	return w, nil
}

// strideFor computes operation_size per spec.md §4.1: a stream cipher's
// native state size left-shifted by a stride factor, clamped into
// [min,max]; ciphers with no natural state size (RC4) get the default
// stride window's minimum.
func strideFor(spec primitive.StreamCipherSpec) int {
	if spec.NativeStateSizeBytes == 0 {
		return constants.StreamCipherStrideMin
	}
	size := spec.NativeStateSizeBytes << constants.StreamCipherStrideShift
	if size < constants.StreamCipherStrideMin {
		return constants.StreamCipherStrideMin
	}
	if size > constants.StreamCipherStrideMax {
		return constants.StreamCipherStrideMax
	}
	return size
}

func (w *streamWrapper) OperationSize() int { return w.operationSize }
func (w *streamWrapper) MaxDelta(bool) int  { return 0 }

func (w *streamWrapper) Process(src []byte) ([]byte, error) {
	dst := make([]byte, len(src))
	w.stream.XORKeyStream(dst, src)
	return dst, nil
}

func (w *streamWrapper) ProcessFinal(src []byte, _ bool) ([]byte, error) {
	return w.Process(src)
}

func (w *streamWrapper) Reset(iv []byte) error {
	stream, err := w.spec.New(w.key, iv)
	if err != nil {
		return fmt.Errorf("%w: %v", obscurerr.ErrConfigurationInvalid, err)
	}
	w.stream = stream
	return nil
}
