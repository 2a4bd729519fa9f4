// Package keystream derives deterministic per-line byte streams from a
// secret key and a line nonce. Two interchangeable backends implement
// the same contract: an XChaCha20 stream cipher and a seeded PRNG
// fallback for environments without the cipher. The PRNG backend is NOT
// cryptographically secure and is never selected silently.
package keystream

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// KeySize is the key length in bytes (256-bit)
const KeySize = 32

// KeyError reports malformed key material
type KeyError struct {
	Reason string
}

func (e *KeyError) Error() string {
	return "invalid key material: " + e.Reason
}

// KeyMaterial is an immutable 256-bit secret
type KeyMaterial struct {
	k [KeySize]byte
}

// FromHex builds key material from a 64-character hex string
func FromHex(s string) (KeyMaterial, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return KeyMaterial{}, &KeyError{Reason: fmt.Sprintf("bad hex: %v", err)}
	}
	if len(raw) != KeySize {
		return KeyMaterial{}, &KeyError{Reason: fmt.Sprintf("key is %d bytes, need %d", len(raw), KeySize)}
	}

	var km KeyMaterial
	copy(km.k[:], raw)
	return km, nil
}

// FromPassword derives key material as the SHA-256 of a password
func FromPassword(password string) (KeyMaterial, error) {
	if password == "" {
		return KeyMaterial{}, &KeyError{Reason: "empty password"}
	}
	return KeyMaterial{k: sha256.Sum256([]byte(password))}, nil
}

// Bytes returns a copy of the raw key
func (km KeyMaterial) Bytes() []byte {
	out := make([]byte, KeySize)
	copy(out, km.k[:])
	return out
}

// Fingerprint returns a short non-reversible identifier for logs and
// session records. It never exposes the key itself.
func (km KeyMaterial) Fingerprint() string {
	sum := sha256.Sum256(km.k[:])
	return hex.EncodeToString(sum[:4])
}
