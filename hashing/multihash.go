package hashing

import (
	"fmt"

	"github.com/iotaledger/accumulator.go/common"
	"github.com/multiformats/go-multihash"
)

// EncodeMultihash makes self-describing representation of the digest
func EncodeMultihash(h Hasher, d common.Digest) ([]byte, error) {
	return multihash.Encode(d[:], h.MultihashCode())
}

// MultihashString is base58 encoded multihash of the digest
func MultihashString(h Hasher, d common.Digest) string {
	mh, err := EncodeMultihash(h, d)
	common.AssertNoError(err)
	return multihash.Multihash(mh).B58String()
}

// DecodeMultihash parses multihash and resolves the hash function
func DecodeMultihash(data []byte) (Hasher, common.Digest, error) {
	dec, err := multihash.Decode(data)
	if err != nil {
		return nil, common.Digest{}, err
	}
	h, err := ByMultihashCode(dec.Code)
	if err != nil {
		return nil, common.Digest{}, err
	}
	d, err := common.DigestFromBytes(dec.Digest)
	if err != nil {
		return nil, common.Digest{}, fmt.Errorf("multihash %s: %w", h.Name(), err)
	}
	return h, d, nil
}

// ParseMultihashString is the inverse of MultihashString
func ParseMultihashString(s string) (Hasher, common.Digest, error) {
	mh, err := multihash.FromB58String(s)
	if err != nil {
		return nil, common.Digest{}, err
	}
	return DecodeMultihash(mh)
}
