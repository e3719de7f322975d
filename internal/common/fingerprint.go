package common

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"os"
)

// Fingerprint is a fixed-length digest over a canonicalized input bundle plus
// file contents (spec §3, §4.1). It's the only identity used by the cache
// layer. Stored as four uint64 words rather than a raw byte slice so it's a
// cheap, comparable, zero-alloc map key — the same shape the teacher uses for
// its content hashes.
//
//goland:noinspection GoSnakeCaseUsage
type Fingerprint struct {
	B0_7, B8_15, B16_23, B24_31 uint64
}

func (h Fingerprint) IsEmpty() bool {
	return h.B0_7 == 0 && h.B8_15 == 0 && h.B16_23 == 0 && h.B24_31 == 0
}

func (h Fingerprint) Equal(other Fingerprint) bool {
	return h == other
}

// Hex renders the fingerprint as a fixed-length (64 character) lowercase hex
// string. It can start with a digit — callers that
// need a valid Go/C identifier (spec §4.1 "module name must be a valid
// identifier; the implementation prepends a letter if needed") should use
// ModuleName instead.
func (h Fingerprint) Hex() string {
	return fmt.Sprintf("%016x%016x%016x%016x", h.B0_7, h.B8_15, h.B16_23, h.B24_31)
}

// ModuleName renders the fingerprint as a valid identifier: a conventional
// prefix letter plus the hex digest (spec §4.1).
func (h Fingerprint) ModuleName() string {
	return "m" + h.Hex()
}

func (h Fingerprint) String() string {
	return h.Hex()
}

// fingerprintHexLen is the fixed width of Hex()'s output: four %016x fields.
const fingerprintHexLen = 64

// ParseFingerprintHex parses the Hex()/ModuleName() representation back into
// a Fingerprint, used to read back a stored .checksum file (spec §4.7). The
// two representations differ only by ModuleName()'s leading "m", so the
// prefix is stripped only when the string is one byte longer than a Hex()
// digest and that first byte is 'm' (never a hex digit).
func ParseFingerprintHex(hexDigest string) (Fingerprint, bool) {
	if len(hexDigest) == fingerprintHexLen+1 && hexDigest[0] == 'm' {
		hexDigest = hexDigest[1:]
	}
	var h Fingerprint
	n, err := fmt.Sscanf(hexDigest, "%016x%016x%016x%016x", &h.B0_7, &h.B8_15, &h.B16_23, &h.B24_31)
	if err != nil || n != 4 {
		return Fingerprint{}, false
	}
	return h, true
}

func MakeFingerprint(hasher hash.Hash) Fingerprint {
	b := hasher.Sum(nil) // len is 32 for sha256
	return Fingerprint{
		B0_7:   binary.BigEndian.Uint64(b[0:8]),
		B8_15:  binary.BigEndian.Uint64(b[8:16]),
		B16_23: binary.BigEndian.Uint64(b[16:24]),
		B24_31: binary.BigEndian.Uint64(b[24:32]),
	}
}

// NewFingerprintHasher returns the hasher used throughout the cache layer,
// so fingerprint computation always goes through one collision-resistant
// digest (spec §4.1: "any collision-resistant digest producing a hex string
// of fixed length").
func NewFingerprintHasher() hash.Hash {
	return sha256.New()
}

// HashFileInto reads filePath and writes its bytes into hasher, once. Used by
// both fingerprint stages (spec §4.1) to append file contents in order after
// the canonicalized textual serialization.
func HashFileInto(hasher hash.Hash, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(hasher, f)
	return err
}
