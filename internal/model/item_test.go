package model

import (
	"errors"
	"testing"

	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

func validCipherConfig() CipherConfiguration {
	return CipherConfiguration{Kind: CipherStream, Algorithm: "chacha20", KeySizeBits: 256}
}

func TestPayloadItemValidateRequiresKeyMaterial(t *testing.T) {
	item := NewPayloadItem("foo/bar.txt", 1024, validCipherConfig(), AuthenticationConfiguration{Kind: AuthNone})
	if err := item.Validate(); !errors.Is(err, obscurerr.ErrItemKeyMissing) {
		t.Fatalf("expected ErrItemKeyMissing with no key material, got %v", err)
	}

	item.PreKey = []byte("shared-pre-key-material")
	if err := item.Validate(); err != nil {
		t.Fatalf("expected valid with PreKey set, got %v", err)
	}
}

func TestPayloadItemValidateExplicitKeysNoPreKey(t *testing.T) {
	item := NewPayloadItem("foo/bar.txt", 1024,
		validCipherConfig(),
		AuthenticationConfiguration{Kind: AuthMac, Algorithm: "hmac-sha256", KeySizeBits: 256})
	item.CipherKey = make([]byte, 32)
	if err := item.Validate(); !errors.Is(err, obscurerr.ErrItemKeyMissing) {
		t.Fatalf("expected ErrItemKeyMissing without an auth key, got %v", err)
	}
	item.AuthKey = make([]byte, 32)
	if err := item.Validate(); err != nil {
		t.Fatalf("expected valid with explicit CipherKey+AuthKey, got %v", err)
	}
}

func TestPayloadItemValidateRejectsNegativeLength(t *testing.T) {
	item := NewPayloadItem("x", -1, validCipherConfig(), AuthenticationConfiguration{Kind: AuthNone})
	item.PreKey = []byte("k")
	if err := item.Validate(); !errors.Is(err, obscurerr.ErrConfigurationInvalid) {
		t.Fatalf("expected ErrConfigurationInvalid, got %v", err)
	}
}

func TestPayloadItemCompletedFlag(t *testing.T) {
	item := NewPayloadItem("x", 0, validCipherConfig(), AuthenticationConfiguration{Kind: AuthNone})
	if item.Completed() {
		t.Fatal("new item should not be completed")
	}
	item.MarkCompleted()
	if !item.Completed() {
		t.Fatal("expected Completed() true after MarkCompleted")
	}
}

func TestSymmetricKeyValidateAndEquals(t *testing.T) {
	k1 := &SymmetricKey{Raw: []byte("some-key-material")}
	if err := k1.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k2 := &SymmetricKey{Raw: []byte("some-key-material")}
	if !k1.Equals(k2) {
		t.Error("expected equal keys to compare equal")
	}
	k3 := &SymmetricKey{Raw: []byte("different-material")}
	if k1.Equals(k3) {
		t.Error("expected different keys to compare unequal")
	}

	empty := &SymmetricKey{}
	if err := empty.Validate(); !errors.Is(err, obscurerr.ErrConfigurationInvalid) {
		t.Errorf("expected ErrConfigurationInvalid for empty raw key, got %v", err)
	}
}
