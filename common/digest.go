package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
)

// DigestSize is the size in bytes of every digest committed by the accumulator
const DigestSize = 32

// Digest is a fixed size output of the hash function. It is used both as a record fingerprint
// and as a tree node value. Digests are totally ordered by byte-lexicographic comparison
type Digest [DigestSize]byte

// Serializable is a common interface for serialization of proof data
type Serializable interface {
	Read(r io.Reader) error
	Write(w io.Writer) error
	Bytes() []byte
}

// DigestFromBytes makes a digest from a slice which must be exactly DigestSize long
func DigestFromBytes(data []byte) (ret Digest, err error) {
	if len(data) != DigestSize {
		return ret, fmt.Errorf("wrong digest length %d, expected %d", len(data), DigestSize)
	}
	copy(ret[:], data)
	return ret, nil
}

// DigestFromHex parses hex representation of the digest
func DigestFromHex(s string) (Digest, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, err
	}
	return DigestFromBytes(data)
}

// MustDigestFromHex is DigestFromHex which panics on error. Used in tests and constants
func MustDigestFromHex(s string) Digest {
	ret, err := DigestFromHex(s)
	if err != nil {
		panic(err)
	}
	return ret
}

// CompareDigests returns -1, 0 or +1 as in bytes.Compare
func CompareDigests(d1, d2 Digest) int {
	return bytes.Compare(d1[:], d2[:])
}

func (d Digest) Compare(d1 Digest) int {
	return CompareDigests(d, d1)
}

// Less is strict byte-lexicographic order
func (d Digest) Less(d1 Digest) bool {
	return CompareDigests(d, d1) < 0
}

func (d Digest) Equal(d1 Digest) bool {
	return d == d1
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) Bytes() []byte {
	ret := make([]byte, DigestSize)
	copy(ret, d[:])
	return ret
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns first 4 bytes in hex. For logging
func (d Digest) Short() string {
	return hex.EncodeToString(d[:4])
}

func (d Digest) Write(w io.Writer) error {
	_, err := w.Write(d[:])
	return err
}

func (d *Digest) Read(r io.Reader) error {
	_, err := io.ReadFull(r, d[:])
	return err
}
