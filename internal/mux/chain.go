package mux

import (
	"fmt"

	"github.com/rescale-labs/obscurcore/internal/cipherwrap"
	"github.com/rescale-labs/obscurcore/internal/model"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
	"github.com/rescale-labs/obscurcore/internal/primitive"
	"github.com/rescale-labs/obscurcore/internal/secmem"
	"github.com/rescale-labs/obscurcore/internal/streamcrypt"
)

// chain is the Encrypt-then-MAC pipeline for one PayloadItem: a
// CipherStream doing the confidentiality transform, optionally wrapped
// by a DigestStream computing a MAC (or bare hash) over the ciphertext.
// Built lazily — chain construction derives per-item keys via HKDF from
// the item's pre-key, which is wasted work for items a given mux run
// never visits (spec.md §4.5).
type chain struct {
	item     *model.PayloadItem
	cipher   *streamcrypt.CipherStream
	digest   *streamcrypt.DigestStream
	consumed int64 // external plaintext bytes accounted so far (mux bookkeeping)
}

const (
	hkdfInfoCipher = "obscurcore-item-cipher-key"
	hkdfInfoAuth   = "obscurcore-item-auth-key"
)

// newChain derives (if needed) the item's cipher/auth keys from its
// pre-key and constructs its streaming pipeline.
func newChain(item *model.PayloadItem, iv []byte, encrypting bool) (*chain, error) {
	cipherKey := item.CipherKey
	authKey := item.AuthKey
	if len(item.PreKey) > 0 {
		var err error
		keyBits := item.Cipher.KeySizeBits
		cipherKey, err = primitive.DeriveHKDF(item.PreKey, []byte(item.RelativePath), []byte(hkdfInfoCipher), keyBits/8)
		if err != nil {
			return nil, fmt.Errorf("item %s: deriving cipher key: %w", item.RelativePath, err)
		}
		if item.Auth.Kind != model.AuthNone {
			authBits := item.Auth.KeySizeBits
			if authBits == 0 {
				authBits = 256
			}
			authKey, err = primitive.DeriveHKDF(item.PreKey, []byte(item.RelativePath), []byte(hkdfInfoAuth), authBits/8)
			if err != nil {
				return nil, fmt.Errorf("item %s: deriving auth key: %w", item.RelativePath, err)
			}
		}
	}
	if len(cipherKey) == 0 {
		return nil, fmt.Errorf("%w: item %s has no cipher key material", obscurerr.ErrItemKeyMissing, item.RelativePath)
	}

	wrapper, err := cipherwrap.New(item.Cipher, cipherKey, iv, encrypting)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", item.RelativePath, err)
	}
	cs := streamcrypt.New(wrapper, encrypting)

	var ds *streamcrypt.DigestStream
	switch item.Auth.Kind {
	case model.AuthNone:
	case model.AuthHash:
		spec, err := primitive.LookupHash(item.Auth.Algorithm)
		if err != nil {
			return nil, err
		}
		ds = streamcrypt.NewDigestStream(spec.New())
	case model.AuthMac:
		spec, err := primitive.LookupMAC(item.Auth.Algorithm)
		if err != nil {
			return nil, err
		}
		h, err := spec.New(authKey)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.RelativePath, err)
		}
		ds = streamcrypt.NewDigestStream(h)
	default:
		return nil, fmt.Errorf("%w: item %s has unsupported auth kind", obscurerr.ErrConfigurationInvalid, item.RelativePath)
	}

	item.CipherKey = cipherKey
	item.AuthKey = authKey
	return &chain{item: item, cipher: cs, digest: ds}, nil
}

// writeCiphertext feeds one chunk of ciphertext (produced by c.cipher,
// when encrypting) or about-to-be-decrypted ciphertext (when decrypting)
// into the running MAC, Encrypt-then-MAC style: the MAC always runs over
// ciphertext, never plaintext.
func (c *chain) writeCiphertext(p []byte) {
	if c.digest != nil {
		c.digest.Write(p)
	}
}

// finish verifies, when decrypting, the accumulated MAC against the
// item's expected tag in constant time, raising ErrIntegrityFailure on
// mismatch (spec.md §4.6/§7). The caller must already have called
// c.cipher.Finish() (or WriteFinal) and drained its final plaintext before calling this,
// since the MAC covers ciphertext the cipher stream has by then already
// consumed.
func (c *chain) finish(encrypting bool, expectedTag []byte) error {
	if c.digest == nil || encrypting {
		c.item.MarkCompleted()
		return nil
	}
	got := c.digest.Sum()
	if !secmem.ConstantTimeCompare(got, expectedTag) {
		return fmt.Errorf("item %s: %w", c.item.RelativePath, obscurerr.ErrIntegrityFailure)
	}
	c.item.MarkCompleted()
	return nil
}

// tag returns the current MAC/hash value, for an encrypting chain to
// append as the item's trailer once finished.
func (c *chain) tag() []byte {
	if c.digest == nil {
		return nil
	}
	return c.digest.Sum()
}

// dispose releases the chain's cipher stream ring buffers and wipes its
// derived keys.
func (c *chain) dispose() {
	c.cipher.Dispose()
	secmem.Wipe(c.item.CipherKey)
	secmem.Wipe(c.item.AuthKey)
}
