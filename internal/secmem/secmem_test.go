package secmem

import "testing"

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5}
	Wipe(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("byte %d not wiped: got %d", i, v)
		}
	}
}

func TestConstantTimeCompare(t *testing.T) {
	cases := []struct {
		name string
		a, b []byte
		want bool
	}{
		{"equal", []byte("abcdef"), []byte("abcdef"), true},
		{"differ-last-byte", []byte("abcdef"), []byte("abcdeg"), false},
		{"differ-first-byte", []byte("abcdef"), []byte("zbcdef"), false},
		{"differ-length", []byte("abc"), []byte("abcd"), false},
		{"both-empty", []byte{}, []byte{}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ConstantTimeCompare(c.a, c.b); got != c.want {
				t.Errorf("ConstantTimeCompare(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
			}
			// Must agree with a structural compare for every equal-length pair.
			if len(c.a) == len(c.b) {
				structural := true
				for i := range c.a {
					if c.a[i] != c.b[i] {
						structural = false
						break
					}
				}
				if got := ConstantTimeCompare(c.a, c.b); got != structural {
					t.Errorf("ConstantTimeCompare disagrees with structural compare: got %v want %v", got, structural)
				}
			}
		})
	}
}

func TestConstantTimeCompareOr(t *testing.T) {
	if !ConstantTimeCompareOr([]byte{1, 2, 3}, []byte{1, 2, 3}) {
		t.Error("expected equal slices to compare equal")
	}
	if ConstantTimeCompareOr([]byte{1, 2, 3}, []byte{1, 2, 4}) {
		t.Error("expected differing slices to compare unequal")
	}
	if ConstantTimeCompareOr([]byte{1, 2}, []byte{1, 2, 3}) {
		t.Error("expected differing-length slices to compare unequal")
	}
}
