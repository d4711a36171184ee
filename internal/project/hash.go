package project

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Sum hashes raw file bytes.
func Sum(raw []byte) Digest { return sha256.Sum256(raw) }

func (d Digest) IsZero() bool { return d == Digest{} }

func (d Digest) Hex() string { return hex.EncodeToString(d[:]) }

// ParseDigest decodes the Hex form.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("bad digest %q: %w", s, err)
	}
	if len(raw) != len(d) {
		return d, fmt.Errorf("bad digest %q: want %d bytes, got %d", s, len(d), len(raw))
	}
	copy(d[:], raw)
	return d, nil
}
