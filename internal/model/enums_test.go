package model

import (
	"errors"
	"testing"

	"github.com/rescale-labs/obscurcore/internal/obscurerr"
)

func TestParseCipherKindCaseInsensitive(t *testing.T) {
	for _, s := range []string{"block", "Block", "BLOCK", "bLoCk"} {
		got, err := ParseCipherKind(s)
		if err != nil {
			t.Fatalf("ParseCipherKind(%q): %v", s, err)
		}
		if got != CipherBlock {
			t.Errorf("ParseCipherKind(%q) = %v, want CipherBlock", s, got)
		}
	}
}

func TestParseCipherKindUnknown(t *testing.T) {
	if _, err := ParseCipherKind("nonsense"); !errors.Is(err, obscurerr.ErrEnumerationParsing) {
		t.Errorf("expected ErrEnumerationParsing, got %v", err)
	}
}

func TestBlockModeRequiresPadding(t *testing.T) {
	cases := []struct {
		mode BlockMode
		want bool
	}{
		{ModeCbc, true},
		{ModeCfb, false},
		{ModeCtr, false},
		{ModeOfb, false},
	}
	for _, c := range cases {
		if got := c.mode.RequiresPadding(); got != c.want {
			t.Errorf("%v.RequiresPadding() = %v, want %v", c.mode, got, c.want)
		}
	}
}

func TestParsePaddingAliases(t *testing.T) {
	cases := map[string]Padding{
		"pkcs7":      PaddingPkcs7,
		"iso7816d4":  PaddingIso7816D4,
		"iso7816-4":  PaddingIso7816D4,
		"iso10126d2": PaddingIso10126D2,
		"iso10126-2": PaddingIso10126D2,
		"tbc":        PaddingTbc,
		"x923":       PaddingX923,
		"none":       PaddingNone,
	}
	for s, want := range cases {
		got, err := ParsePadding(s)
		if err != nil {
			t.Fatalf("ParsePadding(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParsePadding(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseLayoutSchemeAndAuthFnKind(t *testing.T) {
	if _, err := ParseLayoutScheme("bogus"); !errors.Is(err, obscurerr.ErrEnumerationParsing) {
		t.Errorf("expected ErrEnumerationParsing, got %v", err)
	}
	got, err := ParseAuthFnKind("MAC")
	if err != nil {
		t.Fatal(err)
	}
	if got != AuthMac {
		t.Errorf("got %v want AuthMac", got)
	}
}

func TestStringersCoverKnownValues(t *testing.T) {
	if CipherBlock.String() != "Block" {
		t.Errorf("got %q", CipherBlock.String())
	}
	if ModeCtr.String() != "Ctr" {
		t.Errorf("got %q", ModeCtr.String())
	}
	if PaddingPkcs7.String() != "Pkcs7" {
		t.Errorf("got %q", PaddingPkcs7.String())
	}
	if LayoutFabric.String() != "Fabric" {
		t.Errorf("got %q", LayoutFabric.String())
	}
	if AuthHash.String() != "Hash" {
		t.Errorf("got %q", AuthHash.String())
	}
}
