package keystream

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testKey(t *testing.T) KeyMaterial {
	t.Helper()
	km, err := FromPassword("ghostlink test key")
	if err != nil {
		t.Fatalf("FromPassword failed: %v", err)
	}
	return km
}

func TestFromHex(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		wantErr bool
	}{
		{"valid", strings.Repeat("ab", 32), false},
		{"too short", "abcd", true},
		{"too long", strings.Repeat("ab", 33), true},
		{"not hex", strings.Repeat("zz", 32), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromHex(tt.hex)
			if tt.wantErr {
				var ke *KeyError
				if !errors.As(err, &ke) {
					t.Fatalf("expected *KeyError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromHex failed: %v", err)
			}
		})
	}
}

func TestFromPassword(t *testing.T) {
	if _, err := FromPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}

	a, _ := FromPassword("secret")
	b, _ := FromPassword("secret")
	c, _ := FromPassword("other")

	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("same password must derive the same key")
	}
	if bytes.Equal(a.Bytes(), c.Bytes()) {
		t.Error("different passwords must derive different keys")
	}
	if len(a.Bytes()) != KeySize {
		t.Errorf("expected %d-byte key, got %d", KeySize, len(a.Bytes()))
	}
}

func TestFingerprint_DoesNotLeakKey(t *testing.T) {
	km, _ := FromHex(strings.Repeat("ab", 32))
	fp := km.Fingerprint()
	if len(fp) != 8 {
		t.Errorf("expected 8 hex chars, got %q", fp)
	}
	if strings.Contains(strings.Repeat("ab", 32), fp) && fp == "abababab" {
		t.Error("fingerprint must not be a key prefix")
	}
}

func TestNonce_Bytes(t *testing.T) {
	n := Nonce{StreamID: 0x0102030405060708, Frame: 7, Line: 42}
	b := n.Bytes()

	want := []byte{
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // stream id LE
		0x07, 0, 0, 0, 0, 0, 0, 0, // frame LE
		0x2a, 0, 0, 0, // line LE
		0, 0, 0, 0, // padding
	}
	if !bytes.Equal(b[:], want) {
		t.Errorf("nonce layout mismatch:\n got %v\nwant %v", b, want)
	}
}

func TestSources_DeterministicAndDistinct(t *testing.T) {
	km := testKey(t)

	for _, backend := range []string{BackendChaCha20, BackendPRNG} {
		t.Run(backend, func(t *testing.T) {
			src, err := NewSource(backend, km)
			if err != nil {
				t.Fatalf("NewSource failed: %v", err)
			}

			nonce := Nonce{StreamID: 1, Frame: 2, Line: 3}
			a, err := src.Derive(nonce, 128)
			if err != nil {
				t.Fatalf("Derive failed: %v", err)
			}
			b, _ := src.Derive(nonce, 128)
			if !bytes.Equal(a, b) {
				t.Error("same (key, nonce) must derive identical bytes")
			}

			other, _ := src.Derive(Nonce{StreamID: 1, Frame: 2, Line: 4}, 128)
			if bytes.Equal(a, other) {
				t.Error("different nonces must derive different bytes")
			}

			// Prefix consistency is the cursor's correctness contract
			short, _ := src.Derive(nonce, 16)
			if !bytes.Equal(short, a[:16]) {
				t.Error("Derive(n) must be a prefix of Derive(m) for n < m")
			}
		})
	}
}

func TestSources_KeySensitivity(t *testing.T) {
	k1, _ := FromPassword("key one")
	k2, _ := FromPassword("key two")
	nonce := Nonce{StreamID: 9, Frame: 0, Line: 0}

	for _, backend := range []string{BackendChaCha20, BackendPRNG} {
		s1, _ := NewSource(backend, k1)
		s2, _ := NewSource(backend, k2)
		a, _ := s1.Derive(nonce, 64)
		b, _ := s2.Derive(nonce, 64)
		if bytes.Equal(a, b) {
			t.Errorf("%s: different keys derived identical keystream", backend)
		}
	}
}

func TestNewSource_UnknownBackend(t *testing.T) {
	if _, err := NewSource("rot13", testKey(t)); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	// Empty backend defaults to the cipher
	src, err := NewSource("", testKey(t))
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}
	if src.Name() != BackendChaCha20 {
		t.Errorf("expected default backend %s, got %s", BackendChaCha20, src.Name())
	}
}

func TestCursor_MatchesDeriveAcrossGrowth(t *testing.T) {
	km := testKey(t)
	src, _ := NewSource(BackendChaCha20, km)
	nonce := Nonce{StreamID: 5, Frame: 1, Line: 100}

	want, _ := src.Derive(nonce, 300)

	cur := NewCursor(src, nonce)
	got := make([]byte, 300)
	for i := range got {
		b, err := cur.NextByte()
		if err != nil {
			t.Fatalf("NextByte failed at %d: %v", i, err)
		}
		got[i] = b
	}

	if !bytes.Equal(got, want) {
		t.Error("cursor bytes diverge from direct derivation")
	}
	if cur.Consumed() != 300 {
		t.Errorf("expected 300 consumed, got %d", cur.Consumed())
	}
}
