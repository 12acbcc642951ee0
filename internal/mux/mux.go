package mux

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rescale-labs/obscurcore/internal/model"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
	"github.com/rescale-labs/obscurcore/internal/primitive"
)

// chunkSize sizes the initial plaintext scratch buffer only. The actual
// per-visit read/write quantum for Simple and Frameshift is each item's
// own cipher operation_size (spec.md §4.5: "pump one operation-size
// quantum"); Fabric substitutes its own drawn, fixed stripe width
// instead (layout.stripeWidth ignores the quantum argument for Fabric).
const chunkSize = 4096

const hkdfInfoIV = "obscurcore-item-iv"

// Mux is the payload multiplexer (spec.md §4.5): a set of items, each
// with a completion bit and a lazily-built Encrypt-then-MAC chain,
// interleaved into (or extracted from) one combined stream according to
// a layout scheme driven by a deterministic entropy source. Encrypting
// and decrypting sides must construct their Source identically (same
// seed material) so the item-selection schedule replays in lockstep.
type Mux struct {
	items      []*model.PayloadItem
	pending    []*model.PayloadItem
	chains     map[uuid.UUID]*chain
	cfg        model.PayloadConfiguration
	source     Source
	encrypting bool
	layout     *layout
}

// New constructs a Mux over items, eagerly validating every item and the
// layout configuration (spec.md §7 ErrConfigurationInvalid).
func New(items []*model.PayloadItem, cfg model.PayloadConfiguration, source Source, encrypting bool) (*Mux, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pending := make([]*model.PayloadItem, 0, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if !it.Completed() {
			pending = append(pending, it)
		}
	}
	return &Mux{
		items:      items,
		pending:    pending,
		chains:     make(map[uuid.UUID]*chain),
		cfg:        cfg,
		source:     source,
		encrypting: encrypting,
		layout:     newLayout(cfg, source),
	}, nil
}

func (m *Mux) ivFor(item *model.PayloadItem) ([]byte, error) {
	ivLen := item.Cipher.IVSizeBytes
	if ivLen == 0 {
		return nil, nil
	}
	if len(item.PreKey) == 0 {
		return nil, fmt.Errorf("%w: item %s needs a derived IV but has no pre-key", obscurerr.ErrItemKeyMissing, item.RelativePath)
	}
	return primitive.DeriveHKDF(item.PreKey, []byte(item.RelativePath), []byte(hkdfInfoIV), ivLen)
}

// chainFor returns item's chain, constructing it lazily on first touch.
// The bool result reports whether this call did the constructing — a
// caller uses it to know this is the item's first visit, the point
// Frameshift's header-padding block belongs (spec.md §4.5).
func (m *Mux) chainFor(item *model.PayloadItem) (*chain, bool, error) {
	if c, ok := m.chains[item.ID]; ok {
		return c, false, nil
	}
	iv, err := m.ivFor(item)
	if err != nil {
		return nil, false, err
	}
	c, err := newChain(item, iv, m.encrypting)
	if err != nil {
		return nil, false, err
	}
	m.chains[item.ID] = c
	return c, true, nil
}

// selectNext draws the next item to service from the pending set via a
// modulo-bias-avoided index draw over the source (spec.md §4.5).
func (m *Mux) selectNext() (*model.PayloadItem, error) {
	if len(m.pending) == 0 {
		return nil, io.EOF
	}
	if len(m.pending) == 1 {
		return m.pending[0], nil
	}
	idx, err := m.source.Next(0, len(m.pending))
	if err != nil {
		return nil, err
	}
	return m.pending[idx], nil
}

func (m *Mux) markDone(item *model.PayloadItem) {
	for i, it := range m.pending {
		if it.ID == item.ID {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// ExecuteEncrypt drains plaintext readers (keyed by item ID) into w,
// Encrypt-then-MAC'ing each item's bytes through its chain and
// interleaving chunks across items per the configured layout scheme
// (spec.md §4.5's execute() loop).
func (m *Mux) ExecuteEncrypt(w io.Writer, plaintexts map[uuid.UUID]io.Reader) error {
	if !m.encrypting {
		return fmt.Errorf("%w: mux constructed for decrypting", obscurerr.ErrConfigurationInvalid)
	}
	buf := make([]byte, chunkSize)
	for {
		item, err := m.selectNext()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		c, firstTouch, err := m.chainFor(item)
		if err != nil {
			return err
		}
		if firstTouch {
			if err := m.writeHeaderPad(w); err != nil {
				return err
			}
		}
		pr, ok := plaintexts[item.ID]
		if !ok {
			return fmt.Errorf("%w: no plaintext source for item %s", obscurerr.ErrItemKeyMissing, item.RelativePath)
		}
		width, err := m.layout.stripeWidth(c.cipher.OperationSize())
		if err != nil {
			return err
		}
		if width > len(buf) {
			buf = make([]byte, width)
		}
		n, rerr := io.ReadFull(pr, buf[:width])
		if n > 0 {
			if err := m.encryptChunk(w, c, buf[:n]); err != nil {
				return err
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			if err := m.finishItem(w, c); err != nil {
				return err
			}
			m.markDone(item)
			continue
		}
		if rerr != nil {
			return rerr
		}
	}
}

// writeHeaderPad writes Frameshift's once-per-item header padding block,
// emitted before an item's first ciphertext byte (spec.md §4.5); a no-op
// for every other scheme.
func (m *Mux) writeHeaderPad(w io.Writer) error {
	pad, err := m.layout.headerPad()
	if err != nil {
		return err
	}
	if len(pad) == 0 {
		return nil
	}
	_, err = w.Write(pad)
	return err
}

func (m *Mux) encryptChunk(w io.Writer, c *chain, plaintext []byte) error {
	c.consumed += int64(len(plaintext))
	if _, err := c.cipher.Write(plaintext); err != nil {
		return err
	}
	out := make([]byte, c.cipher.Pending())
	c.cipher.Read(out)
	if len(out) > 0 {
		c.writeCiphertext(out)
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mux) finishItem(w io.Writer, c *chain) error {
	if err := c.cipher.Finish(); err != nil {
		return err
	}
	out := make([]byte, c.cipher.Pending())
	c.cipher.Read(out)
	if len(out) > 0 {
		c.writeCiphertext(out)
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	// Frameshift's trailer-padding block is written only on the visit
	// that exhausts the item, after its last ciphertext byte and before
	// its MAC tag (spec.md §4.5).
	trailer, err := m.layout.trailerPad()
	if err != nil {
		return err
	}
	if len(trailer) > 0 {
		if _, err := w.Write(trailer); err != nil {
			return err
		}
	}
	if tag := c.tag(); len(tag) > 0 {
		if _, err := w.Write(tag); err != nil {
			return err
		}
	}
	return c.finish(true, nil)
}

// ExecuteDecrypt replays the same item-selection schedule over r as
// ExecuteEncrypt produced, demultiplexing each item's ciphertext into
// sinks (keyed by item ID) and verifying each item's MAC at its finish
// boundary. Callers must supply a Source seeded identically to the one
// used at encryption time.
func (m *Mux) ExecuteDecrypt(r io.Reader, sinks map[uuid.UUID]io.Writer) error {
	if m.encrypting {
		return fmt.Errorf("%w: mux constructed for encrypting", obscurerr.ErrConfigurationInvalid)
	}
	for {
		item, err := m.selectNext()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		c, firstTouch, err := m.chainFor(item)
		if err != nil {
			return err
		}
		sink, ok := sinks[item.ID]
		if !ok {
			return fmt.Errorf("%w: no sink for item %s", obscurerr.ErrItemKeyMissing, item.RelativePath)
		}
		if firstTouch {
			if err := m.skipHeaderPad(r); err != nil {
				return err
			}
		}

		width, err := m.layout.stripeWidth(c.cipher.OperationSize())
		if err != nil {
			return err
		}
		plainRemaining := item.ExternalLength - itemBytesConsumed(c)
		// A chunk is final only when it is strictly shorter than width.
		// An item whose length lands exactly on a width boundary (as
		// encrypt discovers only on a following, empty-read visit) takes
		// a matching trailing zero-length finalize visit here, keeping
		// both sides' visit counts — and so their selection/layout draw
		// schedules — in lockstep.
		last := plainRemaining < int64(width)

		var want int64
		if last {
			want, err = finalCiphertextLen(item, plainRemaining)
			if err != nil {
				return err
			}
		} else {
			want = int64(width)
		}

		chunk := make([]byte, want)
		if want > 0 {
			if _, err := io.ReadFull(r, chunk); err != nil {
				return &obscurerr.EndOfStreamError{Kind: obscurerr.EndOfStreamSource, Want: int(want), Got: 0}
			}
			c.writeCiphertext(chunk)
		}
		if last {
			if err := c.cipher.WriteFinal(chunk); err != nil {
				return err
			}
		} else {
			c.consumed += want
			if _, err := c.cipher.Write(chunk); err != nil {
				return err
			}
		}
		out := make([]byte, c.cipher.Pending())
		c.cipher.Read(out)
		if _, err := sink.Write(out); err != nil {
			return err
		}

		if last {
			if err := m.skipTrailerPad(r); err != nil {
				return err
			}
			expectedTag := make([]byte, tagSize(c))
			if len(expectedTag) > 0 {
				if _, err := io.ReadFull(r, expectedTag); err != nil {
					return &obscurerr.EndOfStreamError{Kind: obscurerr.EndOfStreamSource, Want: len(expectedTag), Got: 0}
				}
			}
			if err := c.finish(false, expectedTag); err != nil {
				return err
			}
			m.markDone(item)
		}
	}
}

// skipHeaderPad discards Frameshift's once-per-item header padding block
// on an item's first visit; a no-op for every other scheme.
func (m *Mux) skipHeaderPad(r io.Reader) error {
	pad, err := m.layout.headerPad()
	if err != nil {
		return err
	}
	return discardPad(r, pad)
}

// skipTrailerPad discards Frameshift's once-per-item trailer padding
// block on the visit that exhausts an item; a no-op for every other
// scheme.
func (m *Mux) skipTrailerPad(r io.Reader) error {
	pad, err := m.layout.trailerPad()
	if err != nil {
		return err
	}
	return discardPad(r, pad)
}

func discardPad(r io.Reader, pad []byte) error {
	if len(pad) == 0 {
		return nil
	}
	discard := make([]byte, len(pad))
	if _, err := io.ReadFull(r, discard); err != nil {
		return &obscurerr.EndOfStreamError{Kind: obscurerr.EndOfStreamSource, Want: len(pad), Got: 0}
	}
	return nil
}

func tagSize(c *chain) int {
	if c.digest == nil {
		return 0
	}
	return c.digest.Size()
}

func itemBytesConsumed(c *chain) int64 { return c.consumed }

// finalCiphertextLen computes how many ciphertext bytes the item's last
// stripe holds: plainRemaining bytes for any unpadded construction
// (stream ciphers, CTR/CFB/OFB), or plainRemaining rounded up to the
// cipher's block size — always adding at least one full padding byte,
// and a whole extra block when already aligned — for CBC, matching
// blockmode.Pad's behavior exactly.
func finalCiphertextLen(item *model.PayloadItem, plainRemaining int64) (int64, error) {
	if item.Cipher.Kind != model.CipherBlock || !item.Cipher.Mode.RequiresPadding() {
		return plainRemaining, nil
	}
	spec, err := primitive.LookupBlockCipher(item.Cipher.Algorithm)
	if err != nil {
		return 0, err
	}
	bs := int64(spec.BlockSizeBytes)
	return bs*(plainRemaining/bs) + bs, nil
}
