package mux

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rescale-labs/obscurcore/internal/entropy"
	"github.com/rescale-labs/obscurcore/internal/model"
	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

func sharedTape(t *testing.T, n int) (a, b *entropy.Preallocation) {
	t.Helper()
	tape := bytes.Repeat([]byte{0x5c, 0xa3, 0x91, 0x0f}, n/4+1)[:n]
	return entropy.NewPreallocation(append([]byte(nil), tape...)), entropy.NewPreallocation(append([]byte(nil), tape...))
}

func streamCipherItem(t *testing.T, path string, plaintext []byte) *model.PayloadItem {
	t.Helper()
	item := model.NewPayloadItem(path, int64(len(plaintext)),
		model.CipherConfiguration{Kind: model.CipherStream, Algorithm: "chacha20", KeySizeBits: 256, IVSizeBytes: 12},
		model.AuthenticationConfiguration{Kind: model.AuthMac, Algorithm: "hmac-sha256", KeySizeBits: 256})
	item.PreKey = bytes.Repeat([]byte{0x42}, 32)
	return item
}

func blockCipherItem(t *testing.T, path string, plaintext []byte) *model.PayloadItem {
	t.Helper()
	item := model.NewPayloadItem(path, int64(len(plaintext)),
		model.CipherConfiguration{Kind: model.CipherBlock, Algorithm: "aes", Mode: model.ModeCbc, Padding: model.PaddingPkcs7, KeySizeBits: 256, IVSizeBytes: 16},
		model.AuthenticationConfiguration{Kind: model.AuthHash, Algorithm: "sha256"})
	item.PreKey = bytes.Repeat([]byte{0x77}, 32)
	return item
}

// cloneItemsForDecrypt builds a fresh item list carrying the same
// identity/config/pre-key as items, but with no derived keys and no
// completion state — modeling the reader side reconstructing items from a
// manifest before decrypting.
func cloneItemsForDecrypt(items []*model.PayloadItem) []*model.PayloadItem {
	out := make([]*model.PayloadItem, len(items))
	for i, it := range items {
		clone := model.NewPayloadItem(it.RelativePath, it.ExternalLength, it.Cipher, it.Auth)
		clone.ID = it.ID
		clone.PreKey = append([]byte(nil), it.PreKey...)
		out[i] = clone
	}
	return out
}

func TestMuxEncryptDecryptRoundTripSingleItem(t *testing.T) {
	plaintext := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 100)
	item := streamCipherItem(t, "single.txt", plaintext)

	srcA, srcB := sharedTape(t, 4096)
	cfg := model.PayloadConfiguration{Scheme: model.LayoutSimple}

	encMux, err := New([]*model.PayloadItem{item}, cfg, srcA, true)
	if err != nil {
		t.Fatalf("New (encrypt): %v", err)
	}
	var combined bytes.Buffer
	if err := encMux.ExecuteEncrypt(&combined, map[uuid.UUID]io.Reader{item.ID: bytes.NewReader(plaintext)}); err != nil {
		t.Fatalf("ExecuteEncrypt: %v", err)
	}

	decItems := cloneItemsForDecrypt([]*model.PayloadItem{item})
	decMux, err := New(decItems, cfg, srcB, false)
	if err != nil {
		t.Fatalf("New (decrypt): %v", err)
	}
	var recovered bytes.Buffer
	sinks := map[uuid.UUID]io.Writer{decItems[0].ID: &recovered}
	if err := decMux.ExecuteDecrypt(bytes.NewReader(combined.Bytes()), sinks); err != nil {
		t.Fatalf("ExecuteDecrypt: %v", err)
	}

	if !bytes.Equal(recovered.Bytes(), plaintext) {
		t.Errorf("round trip mismatch: got %d bytes, want %d bytes", recovered.Len(), len(plaintext))
	}
	if !decItems[0].Completed() {
		t.Error("expected item marked completed after successful decrypt")
	}
}

func TestMuxEncryptDecryptRoundTripMultiItemInterleaved(t *testing.T) {
	plainA := bytes.Repeat([]byte("AAAA-payload-one-"), 50)
	plainB := bytes.Repeat([]byte("BBBB-payload-two-"), 80)
	plainC := []byte("a short third item, block cipher padded")

	itemA := streamCipherItem(t, "a.bin", plainA)
	itemB := streamCipherItem(t, "b.bin", plainB)
	itemC := blockCipherItem(t, "c.bin", plainC)
	items := []*model.PayloadItem{itemA, itemB, itemC}

	srcA, srcB := sharedTape(t, 8192)
	cfg := model.PayloadConfiguration{Scheme: model.LayoutSimple}

	encMux, err := New(items, cfg, srcA, true)
	if err != nil {
		t.Fatalf("New (encrypt): %v", err)
	}
	plaintexts := map[uuid.UUID]io.Reader{
		itemA.ID: bytes.NewReader(plainA),
		itemB.ID: bytes.NewReader(plainB),
		itemC.ID: bytes.NewReader(plainC),
	}
	var combined bytes.Buffer
	if err := encMux.ExecuteEncrypt(&combined, plaintexts); err != nil {
		t.Fatalf("ExecuteEncrypt: %v", err)
	}

	decItems := cloneItemsForDecrypt(items)
	decMux, err := New(decItems, cfg, srcB, false)
	if err != nil {
		t.Fatalf("New (decrypt): %v", err)
	}
	recoveredA := &bytes.Buffer{}
	recoveredB := &bytes.Buffer{}
	recoveredC := &bytes.Buffer{}
	sinks := map[uuid.UUID]io.Writer{
		decItems[0].ID: recoveredA,
		decItems[1].ID: recoveredB,
		decItems[2].ID: recoveredC,
	}
	if err := decMux.ExecuteDecrypt(bytes.NewReader(combined.Bytes()), sinks); err != nil {
		t.Fatalf("ExecuteDecrypt: %v", err)
	}

	if !bytes.Equal(recoveredA.Bytes(), plainA) {
		t.Errorf("item A mismatch: got %d bytes want %d", recoveredA.Len(), len(plainA))
	}
	if !bytes.Equal(recoveredB.Bytes(), plainB) {
		t.Errorf("item B mismatch: got %d bytes want %d", recoveredB.Len(), len(plainB))
	}
	if !bytes.Equal(recoveredC.Bytes(), plainC) {
		t.Errorf("item C mismatch: got %q want %q", recoveredC.Bytes(), plainC)
	}
	for _, it := range decItems {
		if !it.Completed() {
			t.Errorf("item %s not marked completed", it.RelativePath)
		}
	}
}

func TestMuxEncryptDecryptRoundTripExactOperationMultiple(t *testing.T) {
	// AES-CBC's operation_size is its 16-byte block size; an item whose
	// plaintext is an exact multiple of it only discovers it is done on
	// a following, empty read (encrypt side) — regression for the visit-
	// count desync that exact-multiple items used to trigger against a
	// second, interleaved item.
	plainA := bytes.Repeat([]byte{0xAB}, 32) // 2 * block size
	plainB := []byte("a second item interleaved alongside it")

	itemA := blockCipherItem(t, "exact.bin", plainA)
	itemB := streamCipherItem(t, "second.bin", plainB)
	items := []*model.PayloadItem{itemA, itemB}

	srcA, srcB := sharedTape(t, 4096)
	cfg := model.PayloadConfiguration{Scheme: model.LayoutSimple}

	encMux, err := New(items, cfg, srcA, true)
	if err != nil {
		t.Fatalf("New (encrypt): %v", err)
	}
	plaintexts := map[uuid.UUID]io.Reader{
		itemA.ID: bytes.NewReader(plainA),
		itemB.ID: bytes.NewReader(plainB),
	}
	var combined bytes.Buffer
	if err := encMux.ExecuteEncrypt(&combined, plaintexts); err != nil {
		t.Fatalf("ExecuteEncrypt: %v", err)
	}

	decItems := cloneItemsForDecrypt(items)
	decMux, err := New(decItems, cfg, srcB, false)
	if err != nil {
		t.Fatalf("New (decrypt): %v", err)
	}
	recoveredA := &bytes.Buffer{}
	recoveredB := &bytes.Buffer{}
	sinks := map[uuid.UUID]io.Writer{
		decItems[0].ID: recoveredA,
		decItems[1].ID: recoveredB,
	}
	if err := decMux.ExecuteDecrypt(bytes.NewReader(combined.Bytes()), sinks); err != nil {
		t.Fatalf("ExecuteDecrypt: %v", err)
	}
	if !bytes.Equal(recoveredA.Bytes(), plainA) {
		t.Errorf("item A (exact block multiple) mismatch: got %d bytes want %d", recoveredA.Len(), len(plainA))
	}
	if !bytes.Equal(recoveredB.Bytes(), plainB) {
		t.Errorf("item B mismatch: got %d bytes want %d", recoveredB.Len(), len(plainB))
	}
	for _, it := range decItems {
		if !it.Completed() {
			t.Errorf("item %s not marked completed", it.RelativePath)
		}
	}
}

func TestMuxDecryptRejectsTamperedStream(t *testing.T) {
	plaintext := bytes.Repeat([]byte("integrity-checked-data-"), 40)
	item := streamCipherItem(t, "tamper.bin", plaintext)

	srcA, srcB := sharedTape(t, 4096)
	cfg := model.PayloadConfiguration{Scheme: model.LayoutSimple}

	encMux, err := New([]*model.PayloadItem{item}, cfg, srcA, true)
	if err != nil {
		t.Fatal(err)
	}
	var combined bytes.Buffer
	if err := encMux.ExecuteEncrypt(&combined, map[uuid.UUID]io.Reader{item.ID: bytes.NewReader(plaintext)}); err != nil {
		t.Fatal(err)
	}

	tampered := combined.Bytes()
	tampered[len(tampered)-1] ^= 0x01 // corrupt a MAC tag byte

	decItems := cloneItemsForDecrypt([]*model.PayloadItem{item})
	decMux, err := New(decItems, cfg, srcB, false)
	if err != nil {
		t.Fatal(err)
	}
	var recovered bytes.Buffer
	err = decMux.ExecuteDecrypt(bytes.NewReader(tampered), map[uuid.UUID]io.Writer{decItems[0].ID: &recovered})
	if !errors.Is(err, obscurerr.ErrIntegrityFailure) {
		t.Errorf("expected ErrIntegrityFailure, got %v", err)
	}
}

func TestMuxFrameshiftLayoutRoundTrip(t *testing.T) {
	plaintext := bytes.Repeat([]byte("frameshift-padded-segments "), 60)
	item := streamCipherItem(t, "frameshift.bin", plaintext)

	srcA, srcB := sharedTape(t, 8192)
	cfg := model.PayloadConfiguration{Scheme: model.LayoutFrameshift, FrameshiftMin: 2, FrameshiftMax: 16}

	encMux, err := New([]*model.PayloadItem{item}, cfg, srcA, true)
	if err != nil {
		t.Fatal(err)
	}
	var combined bytes.Buffer
	if err := encMux.ExecuteEncrypt(&combined, map[uuid.UUID]io.Reader{item.ID: bytes.NewReader(plaintext)}); err != nil {
		t.Fatal(err)
	}

	decItems := cloneItemsForDecrypt([]*model.PayloadItem{item})
	decMux, err := New(decItems, cfg, srcB, false)
	if err != nil {
		t.Fatal(err)
	}
	var recovered bytes.Buffer
	if err := decMux.ExecuteDecrypt(bytes.NewReader(combined.Bytes()), map[uuid.UUID]io.Writer{decItems[0].ID: &recovered}); err != nil {
		t.Fatalf("ExecuteDecrypt: %v", err)
	}
	if !bytes.Equal(recovered.Bytes(), plaintext) {
		t.Errorf("round trip mismatch under frameshift layout")
	}
}
