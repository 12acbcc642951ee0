package mux

import "github.com/rescale-labs/obscurcore/internal/model"

// layout describes how much padding (if any) a layout scheme wants
// written after a chunk, and how wide a Fabric stripe chunk must be.
type layout struct {
	cfg         model.PayloadConfiguration
	source      Source
	fabricWidth int // fixed once, on first use, for LayoutFabric
}

func newLayout(cfg model.PayloadConfiguration, source Source) *layout {
	return &layout{cfg: cfg, source: source}
}

// headerPad draws Frameshift's header padding block, written once before
// an item's first ciphertext byte; nil for every other scheme (spec.md
// §4.5).
func (l *layout) headerPad() ([]byte, error) { return l.framePad() }

// trailerPad draws Frameshift's trailer padding block, written once
// after an item's last ciphertext byte; nil for every other scheme
// (spec.md §4.5). Drawn independently of headerPad so the two blocks'
// lengths don't correlate.
func (l *layout) trailerPad() ([]byte, error) { return l.framePad() }

func (l *layout) framePad() ([]byte, error) {
	if l.cfg.Scheme != model.LayoutFrameshift {
		return nil, nil
	}
	n, err := l.source.Next(l.cfg.FrameshiftMin, l.cfg.FrameshiftMax+1) // max is inclusive
	if err != nil {
		return nil, err
	}
	pad := make([]byte, n)
	if err := l.source.NextBytes(pad); err != nil {
		return nil, err
	}
	return pad, nil
}

// stripeWidth returns the fixed chunk width Fabric wants, drawing and
// caching it once from the entropy source the first time it's asked;
// for Simple/Frameshift it returns want unchanged (no fixed stripe).
func (l *layout) stripeWidth(want int) (int, error) {
	if l.cfg.Scheme != model.LayoutFabric {
		return want, nil
	}
	if l.fabricWidth == 0 {
		w, err := l.source.Next(l.cfg.FabricMin, l.cfg.FabricMax+1) // max is inclusive
		if err != nil {
			return 0, err
		}
		l.fabricWidth = w
	}
	return l.fabricWidth, nil
}
