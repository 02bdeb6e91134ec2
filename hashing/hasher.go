// Package hashing contains implementations of the hash function the accumulator is built upon.
// Every implementation maps an arbitrary byte sequence to a 32 byte common.Digest
package hashing

import (
	"github.com/iotaledger/accumulator.go/common"
)

// Hasher is a collision resistant hash function with 32 byte output.
// Implementations must be deterministic and safe to call concurrently
type Hasher interface {
	// Name is a unique name of the hash family, used in the registry and in serialized proofs
	Name() string
	// Sum hashes arbitrary data
	Sum(data []byte) common.Digest
	// MultihashCode is the multicodec code of the hash family
	MultihashCode() uint64
}

// Combine hashes concatenation left||right. Left always comes first
func Combine(h Hasher, left, right common.Digest) common.Digest {
	var buf [2 * common.DigestSize]byte
	copy(buf[:common.DigestSize], left[:])
	copy(buf[common.DigestSize:], right[:])
	return h.Sum(buf[:])
}
