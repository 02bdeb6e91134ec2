package proof

import (
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/iotaledger/accumulator.go/common"
	"golang.org/x/xerrors"
)

var ErrWrongEncoding = xerrors.New("wrong proof encoding")

// InclusionProofFromBytes decodes inclusion proof and checks all data was consumed
func InclusionProofFromBytes(data []byte) (InclusionProof, error) {
	var ret InclusionProof
	if err := common.ReadAllFrom(&ret, data); err != nil {
		return nil, err
	}
	return ret, nil
}

func (p InclusionProof) Bytes() []byte {
	return common.MustBytes(p)
}

// Write encodes the path: number of steps, orientation bits as 64-bit words, then pairs of hashes
func (p InclusionProof) Write(w io.Writer) error {
	if len(p) > MaxPathLength {
		return fmt.Errorf("%w: path length %d exceeds maximum %d", ErrWrongEncoding, len(p), MaxPathLength)
	}
	if err := common.WriteUint16(w, uint16(len(p))); err != nil {
		return err
	}
	flags := bitset.MustNew(uint(len(p)))
	for i := range p {
		if p[i].IsLeft {
			flags.Set(uint(i))
		}
	}
	words := flags.Words()
	if err := common.WriteUint16(w, uint16(len(words))); err != nil {
		return err
	}
	for _, word := range words {
		if err := common.WriteUint64(w, word); err != nil {
			return err
		}
	}
	for i := range p {
		if err := p[i].Left.Write(w); err != nil {
			return err
		}
		if err := p[i].Right.Write(w); err != nil {
			return err
		}
	}
	return nil
}

func (p *InclusionProof) Read(r io.Reader) error {
	var n, nWords uint16
	if err := common.ReadUint16(r, &n); err != nil {
		return err
	}
	if int(n) > MaxPathLength {
		return fmt.Errorf("%w: path length %d exceeds maximum %d", ErrWrongEncoding, n, MaxPathLength)
	}
	if err := common.ReadUint16(r, &nWords); err != nil {
		return err
	}
	if int(nWords) != (int(n)+63)/64 {
		return fmt.Errorf("%w: %d flag words for %d steps", ErrWrongEncoding, nWords, n)
	}
	words := make([]uint64, nWords)
	for i := range words {
		if err := common.ReadUint64(r, &words[i]); err != nil {
			return err
		}
	}
	flags := bitset.FromWithLength(uint(n), words)
	ret := make(InclusionProof, n)
	for i := range ret {
		if err := ret[i].Left.Read(r); err != nil {
			return err
		}
		if err := ret[i].Right.Read(r); err != nil {
			return err
		}
		ret[i].IsLeft = flags.Test(uint(i))
	}
	*p = ret
	return nil
}

// ExclusionProofFromBytes decodes exclusion proof and checks all data was consumed
func ExclusionProofFromBytes(data []byte) (*ExclusionProof, error) {
	ret := &ExclusionProof{}
	if err := common.ReadAllFrom(ret, data); err != nil {
		return nil, err
	}
	return ret, nil
}

func (p *ExclusionProof) Bytes() []byte {
	return common.MustBytes(p)
}

func (p *ExclusionProof) Write(w io.Writer) error {
	if err := p.Predecessor.Write(w); err != nil {
		return err
	}
	return p.Successor.Write(w)
}

func (p *ExclusionProof) Read(r io.Reader) error {
	if err := p.Predecessor.Read(r); err != nil {
		return err
	}
	return p.Successor.Read(r)
}
