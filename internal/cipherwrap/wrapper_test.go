package cipherwrap

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/rescale-labs/obscurcore/internal/model"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// TestAesCtrNistVector exercises the first block of NIST SP 800-38A's
// F.5.1 AES-128-CTR example.
func TestAesCtrNistVector(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	iv := mustHex(t, "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	plaintext := mustHex(t, "6bc1bee22e409f96e93d7e117393172a")
	want := mustHex(t, "874d6191b620e3261bef6864990db6ce")

	cfg := model.CipherConfiguration{Kind: model.CipherBlock, Algorithm: "aes", Mode: model.ModeCtr, KeySizeBits: 128}
	w, err := New(cfg, key, iv, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := w.Process(plaintext)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x want %x", got, want)
	}
}

func TestAesCbcPkcs7RoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	iv := bytes.Repeat([]byte{0x22}, 16)
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	cfg := model.CipherConfiguration{Kind: model.CipherBlock, Algorithm: "aes", Mode: model.ModeCbc, Padding: model.PaddingPkcs7, KeySizeBits: 256}

	enc, err := New(cfg, key, iv, true)
	if err != nil {
		t.Fatalf("New encrypt: %v", err)
	}
	ciphertext, err := enc.ProcessFinal(plaintext, true)
	if err != nil {
		t.Fatalf("ProcessFinal encrypt: %v", err)
	}
	if len(ciphertext)%16 != 0 {
		t.Fatalf("ciphertext length %d not block aligned", len(ciphertext))
	}

	dec, err := New(cfg, key, iv, false)
	if err != nil {
		t.Fatalf("New decrypt: %v", err)
	}
	got, err := dec.ProcessFinal(ciphertext, false)
	if err != nil {
		t.Fatalf("ProcessFinal decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("got %q want %q", got, plaintext)
	}
}

func TestAesCbcTamperedCiphertextRejected(t *testing.T) {
	key := bytes.Repeat([]byte{0x33}, 32)
	iv := bytes.Repeat([]byte{0x44}, 16)
	plaintext := []byte("0123456789abcdef0123456789abcdef")

	cfg := model.CipherConfiguration{Kind: model.CipherBlock, Algorithm: "aes", Mode: model.ModeCbc, Padding: model.PaddingPkcs7, KeySizeBits: 256}
	enc, err := New(cfg, key, iv, true)
	if err != nil {
		t.Fatal(err)
	}
	ciphertext, err := enc.ProcessFinal(plaintext, true)
	if err != nil {
		t.Fatal(err)
	}
	ciphertext[len(ciphertext)-1] ^= 0xFF

	dec, err := New(cfg, key, iv, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dec.ProcessFinal(ciphertext, false); err == nil {
		t.Error("expected tampered ciphertext to fail padding verification")
	}
}

func TestOperationSizeAndMaxDelta(t *testing.T) {
	blockCfg := model.CipherConfiguration{Kind: model.CipherBlock, Algorithm: "aes", Mode: model.ModeCbc, Padding: model.PaddingPkcs7, KeySizeBits: 256}
	w, err := New(blockCfg, bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 16), true)
	if err != nil {
		t.Fatal(err)
	}
	if w.OperationSize() != 16 {
		t.Errorf("expected block cipher OperationSize 16, got %d", w.OperationSize())
	}
	if w.MaxDelta(true) != 16 {
		t.Errorf("expected MaxDelta(encrypting=true) == block size for CBC+padding, got %d", w.MaxDelta(true))
	}
	if w.MaxDelta(false) != 0 {
		t.Errorf("expected MaxDelta(encrypting=false) == 0, got %d", w.MaxDelta(false))
	}

	streamCfg := model.CipherConfiguration{Kind: model.CipherStream, Algorithm: "chacha20", KeySizeBits: 256}
	sw, err := New(streamCfg, bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 12), true)
	if err != nil {
		t.Fatal(err)
	}
	if sw.MaxDelta(true) != 0 {
		t.Errorf("expected stream cipher MaxDelta 0, got %d", sw.MaxDelta(true))
	}
	if sw.OperationSize() <= 0 {
		t.Errorf("expected positive stream cipher operation size, got %d", sw.OperationSize())
	}
}
