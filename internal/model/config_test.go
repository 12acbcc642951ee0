package model

import (
	"errors"
	"testing"

	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

func TestCipherConfigurationValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     CipherConfiguration
		wantErr bool
	}{
		{"valid cbc with pkcs7", CipherConfiguration{Kind: CipherBlock, Algorithm: "aes", KeySizeBits: 256, Mode: ModeCbc, Padding: PaddingPkcs7}, false},
		{"cbc missing padding", CipherConfiguration{Kind: CipherBlock, Algorithm: "aes", KeySizeBits: 256, Mode: ModeCbc, Padding: PaddingNone}, true},
		{"ctr with padding forbidden", CipherConfiguration{Kind: CipherBlock, Algorithm: "aes", KeySizeBits: 256, Mode: ModeCtr, Padding: PaddingPkcs7}, true},
		{"valid ctr no padding", CipherConfiguration{Kind: CipherBlock, Algorithm: "aes", KeySizeBits: 256, Mode: ModeCtr}, false},
		{"stream cipher with padding forbidden", CipherConfiguration{Kind: CipherStream, Algorithm: "chacha20", KeySizeBits: 256, Padding: PaddingPkcs7}, true},
		{"valid stream cipher", CipherConfiguration{Kind: CipherStream, Algorithm: "chacha20", KeySizeBits: 256}, false},
		{"missing algorithm", CipherConfiguration{Kind: CipherStream, KeySizeBits: 256}, true},
		{"bad key size", CipherConfiguration{Kind: CipherStream, Algorithm: "chacha20", KeySizeBits: 7}, true},
		{"undeclared kind", CipherConfiguration{Algorithm: "aes", KeySizeBits: 256}, true},
		{"negative iv size", CipherConfiguration{Kind: CipherStream, Algorithm: "chacha20", KeySizeBits: 256, IVSizeBytes: -1}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.wantErr && !errors.Is(err, obscurerr.ErrConfigurationInvalid) {
				t.Fatalf("expected ErrConfigurationInvalid, got %v", err)
			}
		})
	}
}

func TestAuthenticationConfigurationValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     AuthenticationConfiguration
		wantErr bool
	}{
		{"none is always valid", AuthenticationConfiguration{Kind: AuthNone}, false},
		{"hash requires algorithm", AuthenticationConfiguration{Kind: AuthHash}, true},
		{"valid hash", AuthenticationConfiguration{Kind: AuthHash, Algorithm: "sha256"}, false},
		{"mac requires key size", AuthenticationConfiguration{Kind: AuthMac, Algorithm: "hmac-sha256"}, true},
		{"valid mac", AuthenticationConfiguration{Kind: AuthMac, Algorithm: "hmac-sha256", KeySizeBits: 256}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPayloadConfigurationValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     PayloadConfiguration
		wantErr bool
	}{
		{"simple always valid", PayloadConfiguration{Scheme: LayoutSimple}, false},
		{"frameshift valid bounds", PayloadConfiguration{Scheme: LayoutFrameshift, FrameshiftMin: 8, FrameshiftMax: 64}, false},
		{"frameshift zero min", PayloadConfiguration{Scheme: LayoutFrameshift, FrameshiftMin: 0, FrameshiftMax: 64}, true},
		{"frameshift inverted bounds", PayloadConfiguration{Scheme: LayoutFrameshift, FrameshiftMin: 64, FrameshiftMax: 8}, true},
		{"fabric valid bounds", PayloadConfiguration{Scheme: LayoutFabric, FabricMin: 512, FabricMax: 4096}, false},
		{"fabric zero min", PayloadConfiguration{Scheme: LayoutFabric, FabricMin: 0, FabricMax: 4096}, true},
		{"undeclared scheme", PayloadConfiguration{}, false}, // LayoutSimple is the zero value
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
