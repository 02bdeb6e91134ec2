package hashing

import (
	"crypto/sha256"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/multiformats/go-multihash"
	"github.com/tjfoc/gmsm/sm3"
	"golang.org/x/crypto/blake2b"
	"lukechampine.com/blake3"
)

const (
	NameBlake2b256 = "blake2b-256"
	NameSHA256     = "sha2-256"
	NameBlake3     = "blake3"
	NameSM3        = "sm3"
)

// multicodec codes. sm3-256 is not among go-multihash constants
const (
	codeBlake2b256 = multihash.BLAKE2B_MIN + 31
	codeSM3        = uint64(0x534d)
)

// Blake2b256 is the default hash function
type Blake2b256 struct{}

func (Blake2b256) Name() string { return NameBlake2b256 }

func (Blake2b256) Sum(data []byte) common.Digest {
	return blake2b.Sum256(data)
}

func (Blake2b256) MultihashCode() uint64 { return codeBlake2b256 }

// SHA256 is the standard SHA2-256
type SHA256 struct{}

func (SHA256) Name() string { return NameSHA256 }

func (SHA256) Sum(data []byte) common.Digest {
	return sha256.Sum256(data)
}

func (SHA256) MultihashCode() uint64 { return multihash.SHA2_256 }

// Blake3 is BLAKE3 with 32 byte output
type Blake3 struct{}

func (Blake3) Name() string { return NameBlake3 }

func (Blake3) Sum(data []byte) common.Digest {
	return blake3.Sum256(data)
}

func (Blake3) MultihashCode() uint64 { return multihash.BLAKE3 }

// SM3 is the Chinese national standard hash GB/T 32905-2016
type SM3 struct{}

func (SM3) Name() string { return NameSM3 }

func (SM3) Sum(data []byte) common.Digest {
	ret, err := common.DigestFromBytes(sm3.Sm3Sum(data))
	common.AssertNoError(err)
	return ret
}

func (SM3) MultihashCode() uint64 { return codeSM3 }
